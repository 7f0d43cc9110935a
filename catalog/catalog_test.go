package catalog

import "testing"

func TestCatalogSizes(t *testing.T) {
	if len(Music) != 13 {
		t.Errorf("expected 13 music entries, got %d", len(Music))
	}
	if len(Effects) != 29 {
		t.Errorf("expected 29 effect entries, got %d", len(Effects))
	}
}

func TestEveryEntryResolvesToAsset(t *testing.T) {
	for _, m := range Music {
		asset, ok := MusicAsset(m.ID)
		if !ok || asset == "" {
			t.Errorf("music %s has no asset", m.ID)
		}
	}
	for _, e := range Effects {
		asset, ok := EffectAsset(e.ID)
		if !ok || asset == "" {
			t.Errorf("effect %s has no asset", e.ID)
		}
	}
}

func TestMembership(t *testing.T) {
	if !IsValidMusic(DefaultMusicID) {
		t.Fatal("default music id must be catalog-valid")
	}
	if IsValidMusic("M99") {
		t.Error("M99 should not be valid")
	}
	if IsValidMusic("") {
		t.Error("empty id should not be valid")
	}
	if !IsValidEffect("E1b") {
		t.Error("E1b should be valid")
	}
	if IsValidEffect("BOGUS") {
		t.Error("BOGUS should not be valid")
	}
}

func TestEffectCategories(t *testing.T) {
	counts := map[EffectCategory]int{}
	for _, e := range Effects {
		counts[e.Category]++
	}
	want := map[EffectCategory]int{
		CategoryWeather:       6,
		CategoryMiscellaneous: 11,
		CategoryAnimal:        5,
		CategoryBeat:          4,
		CategoryMachine:       3,
	}
	for cat, n := range want {
		if counts[cat] != n {
			t.Errorf("category %s: expected %d effects, got %d", cat, n, counts[cat])
		}
	}
}
