package model

import "encoding/json"

// SessionMessageType enumerates the messages exchanged over the reading
// session WebSocket. The server owns the playback timeline; the client only
// performs device I/O and reports gestures back.
type SessionMessageType string

const (
	// Client -> server
	MsgTypePage    SessionMessageType = "page"    // new page text, starts a session
	MsgTypeStop    SessionMessageType = "stop"    // stop playback and narration
	MsgTypePause   SessionMessageType = "pause"   // pause narration
	MsgTypeResume  SessionMessageType = "resume"  // resume narration
	MsgTypeUnlock  SessionMessageType = "unlock"  // user gesture observed, autoplay unlocked
	MsgTypeVolume  SessionMessageType = "volume"  // live music/effects volume change
	MsgTypePing    SessionMessageType = "ping"    // heartbeat
	MsgTypeListen  SessionMessageType = "listen"  // toggle listening mode
	MsgTypeBlocked SessionMessageType = "blocked" // client reports autoplay is blocked

	// Client -> server device reports
	MsgTypeCueEnded       SessionMessageType = "cue_ended"       // a non-looping cue finished
	MsgTypeNarrationEnded SessionMessageType = "narration_ended" // device finished a chunk
	MsgTypeNarrationError SessionMessageType = "narration_error" // device failed a chunk

	// Server -> client
	MsgTypeMusicStart     SessionMessageType = "music_start"     // begin looping music asset
	MsgTypeMusicStop      SessionMessageType = "music_stop"      // stop music
	MsgTypeEffect         SessionMessageType = "effect"          // play an effect asset now
	MsgTypeCueStop        SessionMessageType = "cue_stop"        // stop one playing cue
	MsgTypeCueVolume      SessionMessageType = "cue_volume"      // live volume for one cue
	MsgTypeProgress       SessionMessageType = "progress"        // reading progress 0-100
	MsgTypeNarration      SessionMessageType = "narration_chunk" // speak a chunk of text
	MsgTypeNarrationStop  SessionMessageType = "narration_stop"  // cancel device speech
	MsgTypePageAdvance    SessionMessageType = "page_advance"    // listening mode auto-advance
	MsgTypeSpeechFailed   SessionMessageType = "speech_failed"   // narration gave up after retries
	MsgTypeRecommendation SessionMessageType = "recommendation"  // validated cues for the page
	MsgTypePong           SessionMessageType = "pong"
	MsgTypeError          SessionMessageType = "error"
)

// SessionMessage is the envelope for all reading session WebSocket traffic.
type SessionMessage struct {
	Type SessionMessageType `json:"type"`
	Data json.RawMessage    `json:"data,omitempty"`
}

// PagePayload carries the text of the page the client is displaying.
type PagePayload struct {
	DocumentID int64  `json:"documentId"`
	PageNumber int    `json:"pageNumber"`
	Text       string `json:"text"`
}

// CuePayload tells the client to start one asset. CueID comes back in
// cue_ended and volume updates.
type CuePayload struct {
	CueID    int64   `json:"cueId"`
	AssetURL string  `json:"assetUrl"`
	Volume   float64 `json:"volume"`
	Loop     bool    `json:"loop"`
}

// CueEndedPayload reports a finished cue back to the server.
type CueEndedPayload struct {
	CueID int64 `json:"cueId"`
}

// CueControlPayload addresses one playing cue for stop or volume changes.
type CueControlPayload struct {
	CueID  int64   `json:"cueId"`
	Volume float64 `json:"volume,omitempty"`
}

// NarrationEventPayload reports the device-side outcome of a chunk.
type NarrationEventPayload struct {
	Interrupted bool   `json:"interrupted,omitempty"`
	Error       string `json:"error,omitempty"`
}

// ListenPayload toggles listening mode.
type ListenPayload struct {
	Enabled bool `json:"enabled"`
}

// ProgressPayload reports reading progress for the active page.
type ProgressPayload struct {
	Percent float64 `json:"percent"`
	Elapsed float64 `json:"elapsedSeconds"`
}

// NarrationPayload tells the client to speak one chunk.
type NarrationPayload struct {
	Text  string  `json:"text"`
	Index int     `json:"index"`
	Total int     `json:"total"`
	Rate  float64 `json:"rate"`
	Lang  string  `json:"lang"`
}

// VolumePayload adjusts music/effects volume mid-session.
type VolumePayload struct {
	Music   *float64 `json:"music,omitempty"`
	Effects *float64 `json:"effects,omitempty"`
}
