// Package catalog holds the fixed registries of background music and sound
// effect identifiers used by the recommendation pipeline. The registries are
// read-only lookup tables; resolving an asset path into bytes is the job of
// the storage layer.
package catalog

// MusicID identifies one of the background music moods.
type MusicID string

// EffectID identifies one of the sound effects.
type EffectID string

// DefaultMusicID is the neutral fallback used whenever a producer returns an
// unknown or empty music id.
const DefaultMusicID MusicID = "M12"

// EffectCategory groups effects for prompt building and diagnostics.
type EffectCategory string

const (
	CategoryWeather       EffectCategory = "weather"
	CategoryMiscellaneous EffectCategory = "miscellaneous"
	CategoryAnimal        EffectCategory = "animal"
	CategoryBeat          EffectCategory = "beat"
	CategoryMachine       EffectCategory = "machine"
)

// MusicEntry describes one background music catalog entry.
type MusicEntry struct {
	ID    MusicID
	Label string
	Asset string
}

// EffectEntry describes one sound effect catalog entry.
type EffectEntry struct {
	ID       EffectID
	Label    string
	Category EffectCategory
	Asset    string
}

// Music is the full background music catalog, 13 mood categories.
var Music = []MusicEntry{
	{ID: "M1", Label: "Curiosity Music", Asset: "music/M1.mp3"},
	{ID: "M2", Label: "Motivational Music", Asset: "music/M2.mp3"},
	{ID: "M3", Label: "Instructional Music", Asset: "music/M3.mp3"},
	{ID: "M4", Label: "Philosophical Music", Asset: "music/M4.mp3"},
	{ID: "M5", Label: "Happy Music", Asset: "music/M5.mp3"},
	{ID: "M6", Label: "Optimistic Music", Asset: "music/M6.mp3"},
	{ID: "M7", Label: "Sad Music", Asset: "music/M7.mp3"},
	{ID: "M8", Label: "Pessimistic Music", Asset: "music/M8.mp3"},
	{ID: "M9", Label: "Heroic Music", Asset: "music/M9.mp3"},
	{ID: "M10", Label: "Horror Music", Asset: "music/M10.mp3"},
	{ID: "M11", Label: "Beat Music", Asset: "music/M11.mp3"},
	{ID: "M12", Label: "Newspaper Music", Asset: "music/M12.mp3"},
	{ID: "M13", Label: "Nostalgic Music", Asset: "music/M13.mp3"},
}

// Effects is the full sound effect catalog.
var Effects = []EffectEntry{
	// Weather
	{ID: "E1a", Label: "Thunder", Category: CategoryWeather, Asset: "effects/E1a.mp3"},
	{ID: "E1b", Label: "Rain", Category: CategoryWeather, Asset: "effects/E1b.mp3"},
	{ID: "E1c", Label: "Sunny Day with Birds Chirping", Category: CategoryWeather, Asset: "effects/E1c.mp3"},
	{ID: "E1d", Label: "Night with Frog Sounds", Category: CategoryWeather, Asset: "effects/E1d.mp3"},
	{ID: "E1e", Label: "Gentle Breeze", Category: CategoryWeather, Asset: "effects/E1e.mp3"},
	{ID: "E1f", Label: "Blizzard Howling", Category: CategoryWeather, Asset: "effects/E1f.mp3"},

	// Miscellaneous
	{ID: "E2a", Label: "Market People Sound", Category: CategoryMiscellaneous, Asset: "effects/E2a.mp3"},
	{ID: "E2b", Label: "Steps Sound", Category: CategoryMiscellaneous, Asset: "effects/E2b.mp3"},
	{ID: "E2c", Label: "Knocking Sound", Category: CategoryMiscellaneous, Asset: "effects/E2c.mp3"},
	{ID: "E2d", Label: "Glass Shattering Sound", Category: CategoryMiscellaneous, Asset: "effects/E2d.mp3"},
	{ID: "E2e", Label: "Water Sound", Category: CategoryMiscellaneous, Asset: "effects/E2e.mp3"},
	{ID: "E2f", Label: "Cup Filling Sound", Category: CategoryMiscellaneous, Asset: "effects/E2f.mp3"},
	{ID: "E2g", Label: "Deep Breath Sounds", Category: CategoryMiscellaneous, Asset: "effects/E2g.mp3"},
	{ID: "E2h", Label: "Doorbell Ringing", Category: CategoryMiscellaneous, Asset: "effects/E2h.mp3"},
	{ID: "E2i", Label: "Phone Ringing", Category: CategoryMiscellaneous, Asset: "effects/E2i.mp3"},
	{ID: "E2j", Label: "Car Engine Starting", Category: CategoryMiscellaneous, Asset: "effects/E2j.mp3"},
	{ID: "E2k", Label: "Crowd Noise", Category: CategoryMiscellaneous, Asset: "effects/E2k.mp3"},

	// Animal sounds
	{ID: "E3a", Label: "Birds Chirping", Category: CategoryAnimal, Asset: "effects/E3a.mp3"},
	{ID: "E3b", Label: "Street Dog Barking", Category: CategoryAnimal, Asset: "effects/E3b.mp3"},
	{ID: "E3c", Label: "Horse Running", Category: CategoryAnimal, Asset: "effects/E3c.mp3"},
	{ID: "E3d", Label: "Cat Purring", Category: CategoryAnimal, Asset: "effects/E3d.mp3"},
	{ID: "E3e", Label: "Owl Hooting", Category: CategoryAnimal, Asset: "effects/E3e.mp3"},

	// Beats
	{ID: "E4a", Label: "Fast-Paced Drumbeat", Category: CategoryBeat, Asset: "effects/E4a.mp3"},
	{ID: "E4b", Label: "Tense String Section", Category: CategoryBeat, Asset: "effects/E4b.mp3"},
	{ID: "E4c", Label: "Dramatic Swells", Category: CategoryBeat, Asset: "effects/E4c.mp3"},
	{ID: "E4d", Label: "Light Percussion", Category: CategoryBeat, Asset: "effects/E4d.mp3"},

	// Machine sounds
	{ID: "E5a", Label: "Factory Machinery", Category: CategoryMachine, Asset: "effects/E5a.mp3"},
	{ID: "E5b", Label: "Spaceship Engine Hum", Category: CategoryMachine, Asset: "effects/E5b.mp3"},
	{ID: "E5c", Label: "Gunshots", Category: CategoryMachine, Asset: "effects/E5c.mp3"},
}

var (
	musicByID  = make(map[MusicID]MusicEntry, len(Music))
	effectByID = make(map[EffectID]EffectEntry, len(Effects))
)

func init() {
	for _, m := range Music {
		musicByID[m.ID] = m
	}
	for _, e := range Effects {
		effectByID[e.ID] = e
	}
}

// IsValidMusic reports whether id is a catalog music id.
func IsValidMusic(id MusicID) bool {
	_, ok := musicByID[id]
	return ok
}

// IsValidEffect reports whether id is a catalog effect id.
func IsValidEffect(id EffectID) bool {
	_, ok := effectByID[id]
	return ok
}

// MusicAsset returns the asset path for a music id. The second return value
// is false when the id is not in the catalog.
func MusicAsset(id MusicID) (string, bool) {
	m, ok := musicByID[id]
	return m.Asset, ok
}

// EffectAsset returns the asset path for an effect id.
func EffectAsset(id EffectID) (string, bool) {
	e, ok := effectByID[id]
	return e.Asset, ok
}

// EffectEntryByID returns the full catalog entry for an effect id.
func EffectEntryByID(id EffectID) (EffectEntry, bool) {
	e, ok := effectByID[id]
	return e, ok
}
