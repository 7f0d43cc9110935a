// Package playback owns the reading-progress clock for the current page and
// schedules background music and timed sound effects against it. The actual
// device I/O happens behind the Player interface; in production that is the
// WebSocket bridge pushing cue messages to the browser.
package playback

import "errors"

// Sentinel errors for the playback layer.
var (
	// ErrAutoplayBlocked is returned by a Player when the environment
	// refuses to start audio without a user gesture.
	ErrAutoplayBlocked = errors.New("autoplay blocked, user gesture required")

	// ErrPlaybackDevice covers missing assets, decode failures and other
	// device-side rejections. Per-cue: one failing effect never aborts its
	// siblings, the music, or the progress clock.
	ErrPlaybackDevice = errors.New("playback device error")
)

// PlayOptions configures one playback of an asset.
type PlayOptions struct {
	Volume  float64
	Loop    bool
	OnEnded func() // optional, called when a non-looping asset finishes
}

// Handle controls one playing asset.
type Handle interface {
	// Stop halts playback and releases the underlying resources. Stopping
	// an already-stopped handle is a no-op.
	Stop()

	// SetVolume adjusts volume live, without restarting playback.
	SetVolume(v float64)
}

// Player is the playback primitive the scheduler drives. Implementations
// must be safe for use from timer callbacks.
type Player interface {
	Play(assetURL string, opts PlayOptions) (Handle, error)
}

// AssetResolver turns a catalog asset path into a playable reference.
type AssetResolver interface {
	Resolve(assetPath string) (string, error)
}

// ResolverFunc adapts a function to the AssetResolver interface.
type ResolverFunc func(assetPath string) (string, error)

// Resolve implements AssetResolver.
func (f ResolverFunc) Resolve(assetPath string) (string, error) { return f(assetPath) }
