package playback

import (
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"sonicpdf/core/clock"
	"sonicpdf/model"
)

func newTestScheduler(probe func() bool) (*Scheduler, *clock.Manual, *mockPlayer) {
	clk := clock.NewManual()
	player := newMockPlayer()
	sched := NewScheduler(clk, player, identityResolver, NewGuard(probe), DefaultConfig())
	return sched, clk, player
}

func pageOfWords(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}

func TestSchedulerStartsLoopingMusic(t *testing.T) {
	sched, _, player := newTestScheduler(nil)

	sched.Start("a short page", model.Recommendation{BackgroundMusic: "M5"})

	if player.playCount() != 1 {
		t.Fatalf("play calls = %d, want 1", player.playCount())
	}
	h := player.handle(0)
	if h.url != "music/M5.mp3" {
		t.Errorf("music url = %q, want music/M5.mp3", h.url)
	}
	if !h.loop {
		t.Error("background music should loop")
	}
	if h.currentVolume() != DefaultConfig().MusicVolume {
		t.Errorf("music volume = %v, want %v", h.currentVolume(), DefaultConfig().MusicVolume)
	}
	if sched.State() != StateRunning {
		t.Errorf("state = %v, want running", sched.State())
	}
}

func TestSchedulerFiresEffectAtTimeline(t *testing.T) {
	sched, clk, player := newTestScheduler(nil)

	rec := model.Recommendation{
		BackgroundMusic: "M12",
		Effects:         []model.EffectCue{{ID: "E1b", Timeline: 5}},
	}
	sched.Start(pageOfWords(310), rec)

	clk.Advance(4900 * time.Millisecond)
	if got := player.playCount(); got != 1 {
		t.Fatalf("before the cue deadline: play calls = %d, want only music", got)
	}

	clk.Advance(100 * time.Millisecond)
	if got := player.playCount(); got != 2 {
		t.Fatalf("after the cue deadline: play calls = %d, want 2", got)
	}
	h := player.handle(1)
	if h.url != "effects/E1b.mp3" {
		t.Errorf("effect url = %q, want effects/E1b.mp3", h.url)
	}
	if h.loop {
		t.Error("effects must not loop")
	}
	if h.currentVolume() != DefaultConfig().EffectsVolume {
		t.Errorf("effect volume = %v, want %v", h.currentVolume(), DefaultConfig().EffectsVolume)
	}
}

func TestSchedulerProgressSaturatesAndStops(t *testing.T) {
	sched, clk, _ := newTestScheduler(nil)

	var mu sync.Mutex
	ticks := 0
	last := 0.0
	sched.OnProgress(func(pct, _ float64) {
		mu.Lock()
		ticks++
		if pct < last {
			t.Errorf("progress went backwards: %v after %v", pct, last)
		}
		last = pct
		mu.Unlock()
	})

	// 310 words at 155 wpm reads in exactly two minutes.
	sched.Start(pageOfWords(310), model.Recommendation{BackgroundMusic: "M12"})

	if got := sched.EstimatedDuration(); got != 120 {
		t.Fatalf("estimated duration = %v, want 120", got)
	}

	clk.Advance(60 * time.Second)
	if got := sched.Progress(); math.Abs(got-50) > 0.5 {
		t.Errorf("progress at halfway = %v, want ~50", got)
	}

	clk.Advance(61 * time.Second)
	if got := sched.Progress(); got != 100 {
		t.Errorf("progress after full read = %v, want exactly 100", got)
	}
	if sched.State() != StateCompleted {
		t.Errorf("state = %v, want completed", sched.State())
	}

	mu.Lock()
	atSaturation := ticks
	mu.Unlock()

	clk.Advance(10 * time.Second)
	mu.Lock()
	after := ticks
	mu.Unlock()
	if after != atSaturation {
		t.Errorf("tick kept firing after saturation: %d -> %d", atSaturation, after)
	}
}

func TestSchedulerStopCancelsEverything(t *testing.T) {
	sched, clk, player := newTestScheduler(nil)

	rec := model.Recommendation{
		BackgroundMusic: "M12",
		Effects:         []model.EffectCue{{ID: "E2a", Timeline: 5}},
	}
	sched.Start(pageOfWords(310), rec)
	clk.Advance(2 * time.Second)

	sched.Stop()
	sched.Stop() // idempotent

	if !player.handle(0).isStopped() {
		t.Error("music should be stopped, not paused")
	}

	// The cue deadline passing after Stop must not start anything.
	clk.Advance(10 * time.Second)
	if got := player.playCount(); got != 1 {
		t.Errorf("play calls after stop = %d, want 1 (music only)", got)
	}
	if sched.State() != StateIdle {
		t.Errorf("state = %v, want idle", sched.State())
	}
	if sched.Progress() != 0 {
		t.Errorf("progress after stop = %v, want 0", sched.Progress())
	}
}

func TestSchedulerRestartReplacesSession(t *testing.T) {
	sched, clk, player := newTestScheduler(nil)

	first := model.Recommendation{
		BackgroundMusic: "M10",
		Effects:         []model.EffectCue{{ID: "E2b", Timeline: 5}},
	}
	sched.Start(pageOfWords(310), first)
	clk.Advance(1 * time.Second)

	second := model.Recommendation{BackgroundMusic: "M5"}
	sched.Start(pageOfWords(155), second)

	if !player.handle(0).isStopped() {
		t.Error("previous page's music should be stopped on restart")
	}

	// The first page's effect deadline passes; its timer was cancelled.
	clk.Advance(10 * time.Second)
	for _, url := range player.urls() {
		if url == "effects/E2b.mp3" {
			t.Error("cancelled session's effect still played")
		}
	}
	if h := player.handle(1); h.url != "music/M5.mp3" {
		t.Errorf("new music url = %q, want music/M5.mp3", h.url)
	}
}

func TestSchedulerDefersMusicWhenAutoplayBlocked(t *testing.T) {
	blocked := true
	sched, _, player := newTestScheduler(func() bool { return !blocked })

	sched.Start(pageOfWords(155), model.Recommendation{BackgroundMusic: "M1"})
	if player.playCount() != 0 {
		t.Fatal("music must not start while autoplay is blocked")
	}

	blocked = false
	sched.Guard().NotifyGesture(func() error { return nil })

	if player.playCount() != 1 {
		t.Fatalf("play calls after gesture = %d, want 1", player.playCount())
	}
	if h := player.handle(0); h.url != "music/M1.mp3" || !h.loop {
		t.Errorf("deferred music = %q loop=%v, want music/M1.mp3 looping", h.url, h.loop)
	}
}

func TestSchedulerDefersMusicOnBlockedPlayError(t *testing.T) {
	sched, _, player := newTestScheduler(nil)
	player.failWith["music/M7.mp3"] = ErrAutoplayBlocked

	sched.Start(pageOfWords(155), model.Recommendation{BackgroundMusic: "M7"})
	if player.playCount() != 0 {
		t.Fatal("blocked play should not produce a handle")
	}

	delete(player.failWith, "music/M7.mp3")
	sched.Guard().NotifyGesture(nil)

	if player.playCount() != 1 {
		t.Fatalf("play calls after gesture = %d, want 1", player.playCount())
	}
}

func TestSchedulerIsolatesEffectFailures(t *testing.T) {
	sched, clk, player := newTestScheduler(nil)
	player.failWith["effects/E1a.mp3"] = ErrPlaybackDevice

	rec := model.Recommendation{
		BackgroundMusic: "M12",
		Effects: []model.EffectCue{
			{ID: "E1a", Timeline: 2},
			{ID: "E1b", Timeline: 4},
		},
	}
	sched.Start(pageOfWords(310), rec)
	clk.Advance(5 * time.Second)

	urls := player.urls()
	if len(urls) != 2 {
		t.Fatalf("play calls = %d, want music plus the surviving effect", len(urls))
	}
	if urls[1] != "effects/E1b.mp3" {
		t.Errorf("surviving effect = %q, want effects/E1b.mp3", urls[1])
	}
	if sched.State() != StateRunning {
		t.Errorf("a failed cue must not abort the session, state = %v", sched.State())
	}
}

func TestSchedulerLiveVolumeChanges(t *testing.T) {
	sched, clk, player := newTestScheduler(nil)

	rec := model.Recommendation{
		BackgroundMusic: "M12",
		Effects:         []model.EffectCue{{ID: "E3a", Timeline: 1}},
	}
	sched.Start(pageOfWords(310), rec)
	clk.Advance(1 * time.Second)

	sched.SetMusicVolume(0.1)
	sched.SetEffectsVolume(0.9)

	if got := player.handle(0).currentVolume(); got != 0.1 {
		t.Errorf("music volume = %v, want 0.1", got)
	}
	if got := player.handle(1).currentVolume(); got != 0.9 {
		t.Errorf("playing effect volume = %v, want 0.9", got)
	}

	// An effect that finished is dropped from live volume tracking.
	player.handle(1).finish()
	sched.SetEffectsVolume(0.2)
	if got := player.handle(1).currentVolume(); got != 0.9 {
		t.Errorf("finished effect volume = %v, want unchanged 0.9", got)
	}
}

func TestSchedulerEmptyPage(t *testing.T) {
	sched, clk, player := newTestScheduler(nil)

	ticks := 0
	sched.OnProgress(func(_, _ float64) { ticks++ })
	sched.Start("   ", model.Recommendation{BackgroundMusic: "M12"})

	if got := sched.Progress(); got != 100 {
		t.Errorf("progress for an empty page = %v, want 100", got)
	}
	clk.Advance(time.Minute)
	if ticks != 0 {
		t.Errorf("progress ticked %d times for an empty page", ticks)
	}
	if player.playCount() != 1 {
		t.Errorf("music should still play for an empty page, got %d calls", player.playCount())
	}
}
