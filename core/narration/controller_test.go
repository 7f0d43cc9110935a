package narration

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"sonicpdf/core/clock"
)

// fakeEngine records utterances and lets tests steer outcomes.
type fakeEngine struct {
	mu         sync.Mutex
	spoken     []Utterance
	events     Events
	busy       bool
	failNext   int   // upcoming Speak calls reported as failed
	failErr    error // error used for those failures
	pauses     int
	resumes    int
	cancels    int
}

func (e *fakeEngine) Speak(utt Utterance, events Events) error {
	e.mu.Lock()
	e.spoken = append(e.spoken, utt)
	e.events = events
	fail := e.failNext > 0
	if fail {
		e.failNext--
	} else {
		e.busy = true
	}
	err := e.failErr
	e.mu.Unlock()

	if fail {
		events.OnError(err)
	}
	return nil
}

func (e *fakeEngine) Pause() error  { e.mu.Lock(); e.pauses++; e.mu.Unlock(); return nil }
func (e *fakeEngine) Resume() error { e.mu.Lock(); e.resumes++; e.mu.Unlock(); return nil }

func (e *fakeEngine) Cancel() {
	e.mu.Lock()
	e.cancels++
	e.busy = false
	e.mu.Unlock()
}

func (e *fakeEngine) Busy() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.busy
}

// endCurrent simulates the engine finishing its utterance.
func (e *fakeEngine) endCurrent() {
	e.mu.Lock()
	e.busy = false
	ev := e.events
	e.mu.Unlock()
	ev.OnEnd()
}

// stall simulates an engine going quiet without firing any event.
func (e *fakeEngine) stall() {
	e.mu.Lock()
	e.busy = false
	e.mu.Unlock()
}

func (e *fakeEngine) spokenCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.spoken)
}

func (e *fakeEngine) utterance(i int) Utterance {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.spoken[i]
}

func newTestController() (*Controller, *clock.Manual, *fakeEngine) {
	clk := clock.NewManual()
	eng := &fakeEngine{}
	return NewController(clk, eng, DefaultConfig()), clk, eng
}

// multiChunkText reads as four chunks under the default limit.
func multiChunkText() string {
	return strings.TrimSpace(strings.Repeat("The quick brown fox jumps over the lazy dog. ", 10))
}

func TestControllerSpeaksChunksInOrder(t *testing.T) {
	ctrl, clk, eng := newTestController()

	done := 0
	ctrl.OnDone(func() { done++ })

	if err := ctrl.Speak(multiChunkText()); err != nil {
		t.Fatalf("Speak: %v", err)
	}
	if ctrl.State() != StateSpeaking {
		t.Fatalf("state = %v, want speaking", ctrl.State())
	}
	if eng.spokenCount() != 1 {
		t.Fatalf("exactly one utterance should be in flight, got %d", eng.spokenCount())
	}

	total := len(SplitChunks(multiChunkText()))
	for i := 0; i < total; i++ {
		eng.endCurrent()
		clk.Advance(time.Second)
	}

	if eng.spokenCount() != total {
		t.Errorf("spoken utterances = %d, want %d", eng.spokenCount(), total)
	}
	for i := 0; i < eng.spokenCount(); i++ {
		utt := eng.utterance(i)
		if utt.Index != i+1 || utt.Total != total {
			t.Errorf("utterance %d position = %d/%d, want %d/%d",
				i, utt.Index, utt.Total, i+1, total)
		}
	}
	if done != 1 {
		t.Errorf("done callback fired %d times, want 1", done)
	}
	if ctrl.State() != StateIdle {
		t.Errorf("state after completion = %v, want idle", ctrl.State())
	}
}

func TestControllerEmptyText(t *testing.T) {
	ctrl, _, eng := newTestController()

	if err := ctrl.Speak("   \n  "); !errors.Is(err, ErrNoText) {
		t.Fatalf("Speak(blank) = %v, want ErrNoText", err)
	}
	if eng.spokenCount() != 0 {
		t.Error("nothing should reach the engine for blank text")
	}
}

func TestControllerNewSpeakCancelsPrevious(t *testing.T) {
	ctrl, clk, eng := newTestController()

	if err := ctrl.Speak(multiChunkText()); err != nil {
		t.Fatalf("Speak: %v", err)
	}
	if err := ctrl.Speak("A fresh page."); err != nil {
		t.Fatalf("second Speak: %v", err)
	}

	if eng.cancels < 1 {
		t.Error("starting a new narration should cancel the engine")
	}

	eng.endCurrent()
	clk.Advance(time.Second)

	// The fresh page is a single chunk; nothing from the first narration
	// should run after it.
	last := eng.utterance(eng.spokenCount() - 1)
	if last.Text != "A fresh page." {
		t.Errorf("last utterance = %q, want the new page's chunk", last.Text)
	}
	if ctrl.State() != StateIdle {
		t.Errorf("state = %v, want idle after the short page finished", ctrl.State())
	}
}

func TestControllerRetriesSlower(t *testing.T) {
	ctrl, clk, eng := newTestController()
	eng.failErr = errors.New("synthesis-fail")
	eng.failNext = 2

	if err := ctrl.Speak("A single short chunk."); err != nil {
		t.Fatalf("Speak: %v", err)
	}

	// Two failures, then the third attempt sticks.
	clk.Advance(500 * time.Millisecond)
	clk.Advance(500 * time.Millisecond)

	if eng.spokenCount() != 3 {
		t.Fatalf("attempts = %d, want 3", eng.spokenCount())
	}
	base := DefaultConfig().Rate
	r1, r2, r3 := eng.utterance(0).Rate, eng.utterance(1).Rate, eng.utterance(2).Rate
	if r1 != base {
		t.Errorf("first attempt rate = %v, want base %v", r1, base)
	}
	if !(r2 < r1 && r3 < r2) {
		t.Errorf("retry rates should decrease: %v, %v, %v", r1, r2, r3)
	}
	if ctrl.State() != StateSpeaking {
		t.Errorf("state = %v, want speaking after recovery", ctrl.State())
	}
}

func TestControllerGivesUpAfterMaxRetries(t *testing.T) {
	ctrl, clk, eng := newTestController()
	eng.failErr = errors.New("synthesis-fail")
	eng.failNext = 10

	var failed error
	ctrl.OnError(func(err error) { failed = err })

	if err := ctrl.Speak("A single short chunk."); err != nil {
		t.Fatalf("Speak: %v", err)
	}
	for i := 0; i < DefaultConfig().MaxRetries; i++ {
		clk.Advance(500 * time.Millisecond)
	}

	if eng.spokenCount() != 1+DefaultConfig().MaxRetries {
		t.Errorf("attempts = %d, want %d", eng.spokenCount(), 1+DefaultConfig().MaxRetries)
	}
	if !errors.Is(failed, ErrSpeechFailed) {
		t.Errorf("error callback got %v, want ErrSpeechFailed", failed)
	}
	if ctrl.State() != StateIdle {
		t.Errorf("state = %v, want idle after giving up", ctrl.State())
	}
}

func TestControllerInterruptionSkipsChunk(t *testing.T) {
	ctrl, clk, eng := newTestController()
	eng.failErr = ErrInterrupted
	eng.failNext = 1

	var failed error
	ctrl.OnError(func(err error) { failed = err })

	// Two sentences too long to merge into one chunk, with distinct text
	// so a skip is distinguishable from a retry.
	first := "The first movement of the symphony introduces a quiet theme carried by the low strings of the orchestra."
	second := "The second movement answers it with a bright dance in the woodwinds over pizzicato cellos and violas."
	if err := ctrl.Speak(first + " " + second); err != nil {
		t.Fatalf("Speak: %v", err)
	}

	// The interrupted first chunk is skipped, not retried.
	clk.Advance(time.Second)
	if eng.spokenCount() != 2 {
		t.Fatalf("spoken = %d, want interrupted chunk skipped and next started", eng.spokenCount())
	}
	if eng.utterance(1).Text != second {
		t.Errorf("second utterance = %q, want the chunk after the interrupted one", eng.utterance(1).Text)
	}
	if got := eng.utterance(1).Rate; got != DefaultConfig().Rate {
		t.Errorf("rate after skip = %v, want the base rate %v", got, DefaultConfig().Rate)
	}
	if failed != nil {
		t.Errorf("interruption surfaced as error: %v", failed)
	}
}

func TestControllerWatchdogRestartsStalledEngine(t *testing.T) {
	ctrl, clk, eng := newTestController()

	if err := ctrl.Speak("A single short chunk."); err != nil {
		t.Fatalf("Speak: %v", err)
	}
	if eng.spokenCount() != 1 {
		t.Fatalf("spoken = %d, want 1", eng.spokenCount())
	}

	eng.stall()
	clk.Advance(time.Second)

	if eng.spokenCount() != 2 {
		t.Errorf("spoken = %d, want the stalled chunk spoken again", eng.spokenCount())
	}
	if eng.utterance(1).Text != eng.utterance(0).Text {
		t.Error("watchdog should re-speak the same chunk")
	}
}

func TestControllerWatchdogLeavesHealthyEngineAlone(t *testing.T) {
	ctrl, clk, eng := newTestController()

	if err := ctrl.Speak("A single short chunk."); err != nil {
		t.Fatalf("Speak: %v", err)
	}

	// Engine stays busy: several watchdog intervals must not duplicate it.
	clk.Advance(5 * time.Second)
	if eng.spokenCount() != 1 {
		t.Errorf("spoken = %d, want 1 while the engine is healthy", eng.spokenCount())
	}
}

func TestControllerPauseResume(t *testing.T) {
	ctrl, clk, eng := newTestController()

	if err := ctrl.Speak("A single short chunk."); err != nil {
		t.Fatalf("Speak: %v", err)
	}
	if err := ctrl.Pause(); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if ctrl.State() != StatePaused {
		t.Errorf("state = %v, want paused", ctrl.State())
	}

	// Paused narration must not trip the watchdog.
	eng.stall()
	clk.Advance(3 * time.Second)
	if eng.spokenCount() != 1 {
		t.Errorf("watchdog fired while paused: spoken = %d", eng.spokenCount())
	}

	if err := ctrl.Resume(); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if ctrl.State() != StateSpeaking {
		t.Errorf("state = %v, want speaking", ctrl.State())
	}
	if eng.pauses != 1 || eng.resumes != 1 {
		t.Errorf("engine pause/resume = %d/%d, want 1/1", eng.pauses, eng.resumes)
	}
}

func TestControllerStopIsIdempotent(t *testing.T) {
	ctrl, clk, eng := newTestController()

	if err := ctrl.Speak(multiChunkText()); err != nil {
		t.Fatalf("Speak: %v", err)
	}
	ctrl.Stop()
	ctrl.Stop()

	if ctrl.State() != StateIdle {
		t.Errorf("state = %v, want idle", ctrl.State())
	}
	if eng.cancels < 1 {
		t.Error("Stop should cancel the engine")
	}

	// Nothing left armed after Stop.
	before := eng.spokenCount()
	clk.Advance(10 * time.Second)
	if eng.spokenCount() != before {
		t.Error("timers survived Stop")
	}
}
