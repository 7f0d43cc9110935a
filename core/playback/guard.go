package playback

import (
	"sync"

	"sonicpdf/logger"
)

// Guard defers audio actions until the environment permits autoplay. When
// the capability probe reports autoplay unavailable, at most one action is
// parked; the first qualifying user gesture attempts the unlock once and
// replays the parked action exactly once. A failed unlock still releases the
// caller: no audio is an acceptable degraded state, a hung session is not.
type Guard struct {
	mu       sync.Mutex
	probe    func() bool
	unlocked bool
	deferred func()
}

// NewGuard creates a guard around an autoplay capability probe. A nil probe
// is treated as "autoplay always allowed".
func NewGuard(probe func() bool) *Guard {
	return &Guard{probe: probe}
}

// CanAutoplay reports whether playback may start without a gesture.
func (g *Guard) CanAutoplay() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.canAutoplayLocked()
}

func (g *Guard) canAutoplayLocked() bool {
	if g.unlocked {
		return true
	}
	if g.probe == nil {
		return true
	}
	return g.probe()
}

// Run executes action immediately when autoplay is available; otherwise it
// parks the action for replay on the next gesture. Parking a second action
// replaces the first: only the most recent deferred action is retried.
func (g *Guard) Run(action func()) {
	g.mu.Lock()
	if g.canAutoplayLocked() {
		g.mu.Unlock()
		action()
		return
	}
	g.deferred = action
	g.mu.Unlock()
	logger.Debug("autoplay unavailable, action deferred until user gesture")
}

// Defer parks action for replay on the next gesture without attempting it
// now. Used by the scheduler when a play call already failed with an
// autoplay block.
func (g *Guard) Defer(action func()) {
	g.mu.Lock()
	g.deferred = action
	g.mu.Unlock()
}

// NotifyGesture is called when a qualifying user interaction occurred. It
// runs the unlock attempt once, marks the guard unlocked regardless of the
// attempt's outcome, and replays the single deferred action exactly once.
func (g *Guard) NotifyGesture(unlock func() error) {
	g.mu.Lock()
	if g.unlocked {
		// Later gestures do not replay anything again.
		deferred := g.deferred
		g.deferred = nil
		g.mu.Unlock()
		if deferred != nil {
			deferred()
		}
		return
	}
	g.unlocked = true
	deferred := g.deferred
	g.deferred = nil
	g.mu.Unlock()

	if unlock != nil {
		if err := unlock(); err != nil {
			// Degrade silently: the caller proceeds without audio.
			logger.Warn("audio unlock attempt failed, continuing without audio",
				logger.ErrorField(err))
		}
	}
	if deferred != nil {
		deferred()
	}
}
