package playback

import (
	"errors"
	"strings"
	"sync"
	"time"

	"sonicpdf/catalog"
	"sonicpdf/core/clock"
	"sonicpdf/logger"
	"sonicpdf/model"
)

// State of the active reading session.
type State int

const (
	StateIdle State = iota
	StateScheduled
	StateRunning
	StateCompleted
	StateCancelled
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScheduled:
		return "scheduled"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Config holds the scheduler's tuning knobs.
type Config struct {
	WordsPerMinute int           // reading speed for the progress clock
	TickInterval   time.Duration // progress update cadence
	MusicVolume    float64
	EffectsVolume  float64
}

// DefaultConfig mirrors the reader's defaults: 155 wpm, 100ms ticks, quiet
// music under louder effects.
func DefaultConfig() Config {
	return Config{
		WordsPerMinute: 155,
		TickInterval:   100 * time.Millisecond,
		MusicVolume:    0.3,
		EffectsVolume:  0.5,
	}
}

// Scheduler runs at most one reading session at a time. Starting a new
// session tears the previous one down completely: every pending effect timer
// and the progress tick are cancelled before anything new is armed, so a
// stale callback can never touch the device after a page change.
type Scheduler struct {
	mu       sync.Mutex
	clk      clock.Clock
	player   Player
	resolver AssetResolver
	guard    *Guard
	cfg      Config

	musicVolume   float64
	effectsVolume float64

	gen     uint64 // bumped on every start/stop; timer callbacks check it
	session *session

	onProgress func(percent, elapsedSeconds float64)
}

// session is the per-page scheduling state.
type session struct {
	gen           uint64
	state         State
	wordCount     int
	estimatedSecs float64
	elapsedSecs   float64
	progress      float64
	rec           model.Recommendation
	timers        []clock.Timer
	music         Handle
	effects       []Handle
}

// NewScheduler wires the scheduler to its collaborators. A nil guard means
// autoplay is assumed available.
func NewScheduler(clk clock.Clock, player Player, resolver AssetResolver, guard *Guard, cfg Config) *Scheduler {
	if cfg.WordsPerMinute <= 0 {
		cfg.WordsPerMinute = DefaultConfig().WordsPerMinute
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultConfig().TickInterval
	}
	if guard == nil {
		guard = NewGuard(nil)
	}
	return &Scheduler{
		clk:           clk,
		player:        player,
		resolver:      resolver,
		guard:         guard,
		cfg:           cfg,
		musicVolume:   cfg.MusicVolume,
		effectsVolume: cfg.EffectsVolume,
	}
}

// OnProgress registers the reading-progress callback. It fires on every tick
// with a 0-100 percentage, saturating at 100.
func (sc *Scheduler) OnProgress(fn func(percent, elapsedSeconds float64)) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.onProgress = fn
}

// Start begins playback for a page. Any running session is cancelled first;
// the call is safe when nothing is running. The recommendation must already
// be validated.
func (sc *Scheduler) Start(pageText string, rec model.Recommendation) {
	sc.mu.Lock()
	sc.teardownLocked(StateCancelled)

	sc.gen++
	s := &session{
		gen:       sc.gen,
		state:     StateScheduled,
		wordCount: len(strings.Fields(pageText)),
		rec:       rec,
	}
	s.estimatedSecs = float64(s.wordCount) / float64(sc.cfg.WordsPerMinute) * 60
	sc.session = s

	sc.startMusicLocked(s)
	sc.armEffectsLocked(s)
	sc.armProgressTickLocked(s)

	s.state = StateRunning
	sc.mu.Unlock()
}

// Stop cancels the active session: every pending timer is stopped, the music
// is stopped (not paused) and device handles are released. Safe to call
// repeatedly and from a torn-down state.
func (sc *Scheduler) Stop() {
	sc.mu.Lock()
	sc.teardownLocked(StateCancelled)
	sc.mu.Unlock()
}

// SetMusicVolume adjusts the music volume live, for the current and any
// future session.
func (sc *Scheduler) SetMusicVolume(v float64) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.musicVolume = v
	if sc.session != nil && sc.session.music != nil {
		sc.session.music.SetVolume(v)
	}
}

// SetEffectsVolume adjusts effect volume live: currently playing effects and
// effects scheduled afterwards both pick it up.
func (sc *Scheduler) SetEffectsVolume(v float64) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.effectsVolume = v
	if sc.session != nil {
		for _, h := range sc.session.effects {
			h.SetVolume(v)
		}
	}
}

// State returns the current session state, StateIdle when none is active.
func (sc *Scheduler) State() State {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.session == nil {
		return StateIdle
	}
	return sc.session.state
}

// Progress returns the 0-100 reading progress of the active session.
func (sc *Scheduler) Progress() float64 {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.session == nil {
		return 0
	}
	return sc.session.progress
}

// EstimatedDuration returns the active session's estimated reading time in
// seconds.
func (sc *Scheduler) EstimatedDuration() float64 {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.session == nil {
		return 0
	}
	return sc.session.estimatedSecs
}

// Guard exposes the unlock guard so transports can forward user gestures.
func (sc *Scheduler) Guard() *Guard { return sc.guard }

// teardownLocked stops everything belonging to the current session. Bumping
// the generation makes any already-fired callback a no-op.
func (sc *Scheduler) teardownLocked(final State) {
	s := sc.session
	if s == nil {
		return
	}
	sc.gen++
	for _, t := range s.timers {
		t.Stop()
	}
	s.timers = nil
	if s.music != nil {
		s.music.Stop()
		s.music = nil
	}
	for _, h := range s.effects {
		h.Stop()
	}
	s.effects = nil
	s.state = final
	sc.session = nil
}

// startMusicLocked begins looping background music. A blocked or failing
// play is retried once through the unlock guard's deferred path, then given
// up silently: no music is an acceptable degraded state.
func (sc *Scheduler) startMusicLocked(s *session) {
	asset, ok := catalog.MusicAsset(s.rec.BackgroundMusic)
	if !ok {
		// Validate upstream makes this unreachable; guard anyway.
		logger.Debug("no asset for music id", logger.String("music", string(s.rec.BackgroundMusic)))
		return
	}
	url, err := sc.resolver.Resolve(asset)
	if err != nil {
		logger.Warn("music asset unavailable", logger.String("asset", asset), logger.ErrorField(err))
		return
	}

	gen := s.gen
	play := func() {
		sc.mu.Lock()
		if sc.session == nil || sc.session.gen != gen {
			sc.mu.Unlock()
			return
		}
		volume := sc.musicVolume
		sc.mu.Unlock()

		h, err := sc.player.Play(url, PlayOptions{Volume: volume, Loop: true})
		if err != nil {
			logger.Warn("background music failed to start",
				logger.String("asset", asset), logger.ErrorField(err))
			return
		}
		sc.mu.Lock()
		if sc.session == nil || sc.session.gen != gen {
			sc.mu.Unlock()
			h.Stop()
			return
		}
		sc.session.music = h
		sc.mu.Unlock()
	}

	if !sc.guard.CanAutoplay() {
		sc.guard.Defer(play)
		return
	}

	h, err := sc.player.Play(url, PlayOptions{Volume: sc.musicVolume, Loop: true})
	if err != nil {
		if errors.Is(err, ErrAutoplayBlocked) {
			sc.guard.Defer(play)
			return
		}
		logger.Warn("background music failed to start",
			logger.String("asset", asset), logger.ErrorField(err))
		return
	}
	s.music = h
}

// armEffectsLocked arms one timer per validated effect cue. Failures are
// isolated per cue.
func (sc *Scheduler) armEffectsLocked(s *session) {
	gen := s.gen
	for _, cue := range s.rec.Effects {
		cue := cue
		d := time.Duration(cue.Timeline * float64(time.Second))
		t := sc.clk.AfterFunc(d, func() {
			sc.fireEffect(gen, cue)
		})
		s.timers = append(s.timers, t)
	}
}

// fireEffect plays one effect cue if its session is still alive.
func (sc *Scheduler) fireEffect(gen uint64, cue model.EffectCue) {
	sc.mu.Lock()
	if sc.session == nil || sc.session.gen != gen {
		sc.mu.Unlock()
		return
	}
	volume := sc.effectsVolume
	sc.mu.Unlock()

	asset, ok := catalog.EffectAsset(cue.ID)
	if !ok {
		return
	}
	url, err := sc.resolver.Resolve(asset)
	if err != nil {
		logger.Warn("effect asset unavailable",
			logger.String("effect", string(cue.ID)), logger.ErrorField(err))
		return
	}

	var h Handle
	remove := func() {
		sc.mu.Lock()
		if sc.session != nil && sc.session.gen == gen {
			for i, eh := range sc.session.effects {
				if eh == h {
					sc.session.effects = append(sc.session.effects[:i], sc.session.effects[i+1:]...)
					break
				}
			}
		}
		sc.mu.Unlock()
	}

	h, err = sc.player.Play(url, PlayOptions{Volume: volume, OnEnded: remove})
	if err != nil {
		// Per-cue isolation: log and move on, siblings are unaffected.
		logger.Warn("effect failed to play",
			logger.String("effect", string(cue.ID)), logger.ErrorField(err))
		return
	}

	sc.mu.Lock()
	if sc.session == nil || sc.session.gen != gen {
		sc.mu.Unlock()
		h.Stop()
		return
	}
	sc.session.effects = append(sc.session.effects, h)
	sc.mu.Unlock()
}

// armProgressTickLocked starts the reading-progress clock. The tick re-arms
// itself until progress saturates at 100, then stops.
func (sc *Scheduler) armProgressTickLocked(s *session) {
	if s.estimatedSecs <= 0 {
		// Degenerate page: nothing to track.
		s.progress = 100
		return
	}

	gen := s.gen
	interval := sc.cfg.TickInterval
	var tick func()
	tick = func() {
		sc.mu.Lock()
		if sc.session == nil || sc.session.gen != gen {
			sc.mu.Unlock()
			return
		}
		cur := sc.session
		cur.elapsedSecs += interval.Seconds()
		pct := cur.elapsedSecs / cur.estimatedSecs * 100
		if pct >= 100 {
			pct = 100
			cur.state = StateCompleted
		}
		cur.progress = pct
		elapsed := cur.elapsedSecs
		cb := sc.onProgress
		if pct < 100 {
			cur.timers = append(cur.timers, sc.clk.AfterFunc(interval, tick))
		}
		sc.mu.Unlock()

		if cb != nil {
			cb(pct, elapsed)
		}
	}
	s.timers = append(s.timers, sc.clk.AfterFunc(interval, tick))
}
