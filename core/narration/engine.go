package narration

import "errors"

// Sentinel errors for the narration layer.
var (
	// ErrNoText is returned when there is nothing to narrate.
	ErrNoText = errors.New("no text to narrate")

	// ErrInterrupted marks an utterance cut off on purpose, typically by a
	// page change or mode switch. It is expected during normal operation
	// and never surfaces as a failure.
	ErrInterrupted = errors.New("utterance interrupted")

	// ErrEngineUnavailable means the synthesis backend cannot speak at all.
	ErrEngineUnavailable = errors.New("speech engine unavailable")

	// ErrSpeechFailed is reported after an utterance exhausts its retries.
	ErrSpeechFailed = errors.New("speech synthesis failed")
)

// Utterance is one chunk of text with its delivery parameters and its
// position within the narration.
type Utterance struct {
	Text      string
	Index     int     // 1-based chunk position
	Total     int     // chunk count of the whole narration
	Rate      float64 // 0.1 to 10, 1 is normal speed
	Pitch     float64 // 0 to 2
	Volume    float64 // 0 to 1
	VoiceLang string  // BCP 47 tag, e.g. "en-US"
}

// Events receives the outcome of one utterance. The engine calls at most one
// of OnEnd and OnError per Speak, after OnStart if synthesis began.
type Events struct {
	OnStart func()
	OnEnd   func()
	OnError func(err error)
}

// SpeechEngine is the synthesis backend. In production it is the WebSocket
// bridge that hands chunks to the reader device and relays its events back;
// tests use an in-process fake.
type SpeechEngine interface {
	// Speak starts one utterance without blocking. The result arrives
	// through events.
	Speak(utt Utterance, events Events) error

	// Pause suspends the current utterance, Resume continues it.
	Pause() error
	Resume() error

	// Cancel discards the current utterance. The engine reports the
	// cancellation through OnError with ErrInterrupted, or not at all.
	Cancel()

	// Busy reports whether the engine is currently producing audio.
	Busy() bool
}
