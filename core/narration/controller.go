package narration

import (
	"errors"
	"sync"
	"time"

	"sonicpdf/core/clock"
	"sonicpdf/logger"
)

// State of the narration controller.
type State int

const (
	StateIdle State = iota
	StateSpeaking
	StatePaused
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSpeaking:
		return "speaking"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// Config tunes narration delivery and recovery behavior.
type Config struct {
	Rate      float64
	Pitch     float64
	Volume    float64
	VoiceLang string

	MaxRetries       int           // retries per chunk before giving up
	RetryDelay       time.Duration // wait before re-speaking a failed chunk
	RetrySlowdown    float64       // rate multiplier applied on each retry
	MinRate          float64       // retries never slow below this
	InterChunkDelay  time.Duration // pause between chunks
	WatchdogInterval time.Duration // stall detector cadence
}

// DefaultConfig uses a slightly slow base rate for engine stability and the
// recovery behavior the reader relies on: three retries per chunk, each one
// slower than the last.
func DefaultConfig() Config {
	return Config{
		Rate:             0.85,
		Pitch:            1.0,
		Volume:           1.0,
		VoiceLang:        "en-US",
		MaxRetries:       3,
		RetryDelay:       500 * time.Millisecond,
		RetrySlowdown:    0.8,
		MinRate:          0.5,
		InterChunkDelay:  150 * time.Millisecond,
		WatchdogInterval: time.Second,
	}
}

// Controller narrates one page at a time. At most one utterance is in flight:
// starting a new narration cancels the previous one completely. Failed chunks
// are retried at a progressively slower rate; interrupted utterances are
// skipped silently. A watchdog re-kicks engines that stop without reporting
// anything, which some synthesis backends do when the reader loses focus.
type Controller struct {
	mu     sync.Mutex
	clk    clock.Clock
	engine SpeechEngine
	cfg    Config

	state       State
	chunks      []string
	index       int
	retries     int
	currentRate float64
	pending     bool // a timer will call speakCurrent, watchdog must wait
	gen         uint64

	next     clock.Timer
	watchdog clock.Timer

	onDone  func()
	onError func(err error)
}

// NewController builds a narration controller around a speech engine.
func NewController(clk clock.Clock, engine SpeechEngine, cfg Config) *Controller {
	def := DefaultConfig()
	if cfg.Rate <= 0 {
		cfg.Rate = def.Rate
	}
	if cfg.Volume <= 0 {
		cfg.Volume = def.Volume
	}
	if cfg.Pitch <= 0 {
		cfg.Pitch = def.Pitch
	}
	if cfg.VoiceLang == "" {
		cfg.VoiceLang = def.VoiceLang
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = def.MaxRetries
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = def.RetryDelay
	}
	if cfg.RetrySlowdown <= 0 || cfg.RetrySlowdown >= 1 {
		cfg.RetrySlowdown = def.RetrySlowdown
	}
	if cfg.MinRate <= 0 {
		cfg.MinRate = def.MinRate
	}
	if cfg.InterChunkDelay <= 0 {
		cfg.InterChunkDelay = def.InterChunkDelay
	}
	if cfg.WatchdogInterval <= 0 {
		cfg.WatchdogInterval = def.WatchdogInterval
	}
	return &Controller{clk: clk, engine: engine, cfg: cfg}
}

// OnDone registers the callback fired when every chunk finished.
func (c *Controller) OnDone(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onDone = fn
}

// OnError registers the callback fired when a chunk exhausts its retries.
func (c *Controller) OnError(fn func(err error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onError = fn
}

// Speak narrates text from the beginning, cancelling any narration in
// progress. Text with no speakable content returns ErrNoText.
func (c *Controller) Speak(text string) error {
	chunks := SplitChunks(text)
	if len(chunks) == 0 {
		return ErrNoText
	}

	c.mu.Lock()
	c.cancelLocked()
	c.gen++
	gen := c.gen
	c.state = StateSpeaking
	c.chunks = chunks
	c.index = 0
	c.retries = 0
	c.currentRate = c.cfg.Rate
	c.armWatchdogLocked(gen)
	c.mu.Unlock()

	// Discard whatever the engine was saying; its interruption event lands
	// on the old generation and is ignored.
	c.engine.Cancel()

	logger.Debug("narration started", logger.Int("chunks", len(chunks)))
	c.speakCurrent(gen)
	return nil
}

// Pause suspends the current utterance.
func (c *Controller) Pause() error {
	c.mu.Lock()
	if c.state != StateSpeaking {
		c.mu.Unlock()
		return nil
	}
	c.state = StatePaused
	c.mu.Unlock()
	return c.engine.Pause()
}

// Resume continues a paused narration.
func (c *Controller) Resume() error {
	c.mu.Lock()
	if c.state != StatePaused {
		c.mu.Unlock()
		return nil
	}
	c.state = StateSpeaking
	c.mu.Unlock()
	return c.engine.Resume()
}

// Stop cancels narration. Safe to call in any state, any number of times.
func (c *Controller) Stop() {
	c.mu.Lock()
	c.cancelLocked()
	c.mu.Unlock()
	c.engine.Cancel()
}

// State returns the controller state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// cancelLocked tears down the active narration. The generation bump makes
// in-flight engine events and armed timers no-ops.
func (c *Controller) cancelLocked() {
	c.gen++
	if c.next != nil {
		c.next.Stop()
		c.next = nil
	}
	if c.watchdog != nil {
		c.watchdog.Stop()
		c.watchdog = nil
	}
	c.pending = false
	c.state = StateIdle
	c.chunks = nil
	c.index = 0
	c.retries = 0
}

// speakCurrent hands the current chunk to the engine.
func (c *Controller) speakCurrent(gen uint64) {
	c.mu.Lock()
	if c.gen != gen || c.state == StateIdle {
		c.mu.Unlock()
		return
	}
	c.pending = false
	if c.index >= len(c.chunks) {
		c.finishLocked() // unlocks
		return
	}
	utt := Utterance{
		Text:      c.chunks[c.index],
		Index:     c.index + 1,
		Total:     len(c.chunks),
		Rate:      c.currentRate,
		Pitch:     c.cfg.Pitch,
		Volume:    c.cfg.Volume,
		VoiceLang: c.cfg.VoiceLang,
	}
	c.mu.Unlock()

	events := Events{
		OnEnd:   func() { c.chunkEnded(gen) },
		OnError: func(err error) { c.chunkFailed(gen, err) },
	}
	if err := c.engine.Speak(utt, events); err != nil {
		c.chunkFailed(gen, err)
	}
}

// chunkEnded advances past a successfully spoken chunk.
func (c *Controller) chunkEnded(gen uint64) {
	c.mu.Lock()
	if c.gen != gen || c.state == StateIdle {
		c.mu.Unlock()
		return
	}
	c.index++
	c.retries = 0
	c.currentRate = c.cfg.Rate
	if c.index >= len(c.chunks) {
		c.finishLocked() // unlocks
		return
	}
	// A short gap between chunks avoids spurious interruption errors.
	c.pending = true
	c.next = c.clk.AfterFunc(c.cfg.InterChunkDelay, func() { c.speakCurrent(gen) })
	c.mu.Unlock()
}

// chunkFailed applies the recovery policy: interruptions skip the chunk,
// other errors retry slower up to the limit, then the narration fails.
func (c *Controller) chunkFailed(gen uint64, err error) {
	c.mu.Lock()
	if c.gen != gen || c.state == StateIdle {
		c.mu.Unlock()
		return
	}

	if errors.Is(err, ErrInterrupted) {
		// Expected when speech is cancelled mid-utterance. Skip ahead
		// rather than retrying the same chunk against a closing engine.
		c.index++
		c.retries = 0
		if c.index >= len(c.chunks) {
			c.finishLocked() // unlocks
			return
		}
		c.pending = true
		c.next = c.clk.AfterFunc(c.cfg.InterChunkDelay, func() { c.speakCurrent(gen) })
		c.mu.Unlock()
		return
	}

	if c.retries < c.cfg.MaxRetries {
		c.retries++
		c.currentRate *= c.cfg.RetrySlowdown
		if c.currentRate < c.cfg.MinRate {
			c.currentRate = c.cfg.MinRate
		}
		logger.Warn("utterance failed, retrying slower",
			logger.Int("chunk", c.index),
			logger.Int("attempt", c.retries),
			logger.Float64("rate", c.currentRate),
			logger.ErrorField(err))
		c.pending = true
		c.next = c.clk.AfterFunc(c.cfg.RetryDelay, func() { c.speakCurrent(gen) })
		c.mu.Unlock()
		return
	}

	logger.Error("utterance failed after retries",
		logger.Int("chunk", c.index), logger.ErrorField(err))
	cb := c.onError
	c.cancelLocked()
	c.mu.Unlock()
	if cb != nil {
		cb(errors.Join(ErrSpeechFailed, err))
	}
}

// finishLocked completes the narration. Called with the lock held; unlocks.
func (c *Controller) finishLocked() {
	cb := c.onDone
	c.cancelLocked()
	c.mu.Unlock()
	logger.Debug("narration complete")
	if cb != nil {
		cb()
	}
}

// armWatchdogLocked starts the stall detector. Some engines stop producing
// audio without firing any event; when that happens the current chunk is
// spoken again.
func (c *Controller) armWatchdogLocked(gen uint64) {
	var tick func()
	tick = func() {
		c.mu.Lock()
		if c.gen != gen || c.state == StateIdle {
			c.mu.Unlock()
			return
		}
		stalled := c.state == StateSpeaking && !c.pending && !c.engine.Busy()
		c.watchdog = c.clk.AfterFunc(c.cfg.WatchdogInterval, tick)
		c.mu.Unlock()

		if stalled {
			logger.Warn("speech engine stalled, re-speaking current chunk")
			c.speakCurrent(gen)
		}
	}
	c.watchdog = c.clk.AfterFunc(c.cfg.WatchdogInterval, tick)
}
