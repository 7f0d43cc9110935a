package server

import (
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"

	"sonicpdf/core/narration"
	"sonicpdf/core/playback"
	"sonicpdf/model"
)

// sender pushes a session message to the connected reader.
type sender interface {
	sendMessage(msgType model.SessionMessageType, payload interface{})
}

// wsPlayer implements the playback player over the session socket. Each
// Play becomes a cue message; the client reports non-looping cues back with
// cue_ended so OnEnded callbacks fire server side.
type wsPlayer struct {
	out     sender
	allowed *atomic.Bool // autoplay capability as last reported by the client

	mu     sync.Mutex
	nextID int64
	live   map[int64]*wsHandle
}

func newWSPlayer(out sender, allowed *atomic.Bool) *wsPlayer {
	return &wsPlayer{out: out, allowed: allowed, live: make(map[int64]*wsHandle)}
}

// Play sends one cue to the device.
func (p *wsPlayer) Play(assetURL string, opts playback.PlayOptions) (playback.Handle, error) {
	if !p.allowed.Load() {
		return nil, playback.ErrAutoplayBlocked
	}

	p.mu.Lock()
	p.nextID++
	h := &wsHandle{id: p.nextID, player: p, onEnded: opts.OnEnded}
	p.live[h.id] = h
	p.mu.Unlock()

	msgType := model.MsgTypeEffect
	if opts.Loop {
		msgType = model.MsgTypeMusicStart
	}
	p.out.sendMessage(msgType, model.CuePayload{
		CueID:    h.id,
		AssetURL: assetURL,
		Volume:   opts.Volume,
		Loop:     opts.Loop,
	})
	return h, nil
}

// cueEnded handles the client's report that a cue finished.
func (p *wsPlayer) cueEnded(id int64) {
	p.mu.Lock()
	h := p.live[id]
	delete(p.live, id)
	p.mu.Unlock()
	if h != nil && h.onEnded != nil {
		h.onEnded()
	}
}

// wsHandle controls one cue on the device.
type wsHandle struct {
	id      int64
	player  *wsPlayer
	onEnded func()
	stopped atomic.Bool
}

func (h *wsHandle) Stop() {
	if h.stopped.Swap(true) {
		return
	}
	h.player.mu.Lock()
	delete(h.player.live, h.id)
	h.player.mu.Unlock()
	h.player.out.sendMessage(model.MsgTypeCueStop, model.CueControlPayload{CueID: h.id})
}

func (h *wsHandle) SetVolume(v float64) {
	if h.stopped.Load() {
		return
	}
	h.player.out.sendMessage(model.MsgTypeCueVolume, model.CueControlPayload{CueID: h.id, Volume: v})
}

// wsEngine implements the narration speech engine over the session socket.
// The device synthesizes each chunk and reports narration_ended or
// narration_error back.
type wsEngine struct {
	out sender

	mu     sync.Mutex
	events narration.Events
	busy   bool
}

func newWSEngine(out sender) *wsEngine {
	return &wsEngine{out: out}
}

// Speak ships one chunk to the device.
func (e *wsEngine) Speak(utt narration.Utterance, events narration.Events) error {
	e.mu.Lock()
	e.events = events
	e.busy = true
	e.mu.Unlock()

	e.out.sendMessage(model.MsgTypeNarration, model.NarrationPayload{
		Text:  utt.Text,
		Index: utt.Index,
		Total: utt.Total,
		Rate:  utt.Rate,
		Lang:  utt.VoiceLang,
	})
	if events.OnStart != nil {
		events.OnStart()
	}
	return nil
}

// Pause and Resume are device-initiated over this transport: the client
// pauses its own synthesizer before telling the server.
func (e *wsEngine) Pause() error  { return nil }
func (e *wsEngine) Resume() error { return nil }

// Cancel tells the device to drop the current utterance.
func (e *wsEngine) Cancel() {
	e.mu.Lock()
	e.events = narration.Events{}
	e.busy = false
	e.mu.Unlock()
	e.out.sendMessage(model.MsgTypeNarrationStop, nil)
}

// Busy reports whether a chunk is in flight.
func (e *wsEngine) Busy() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.busy
}

// chunkEnded handles the device's completion report.
func (e *wsEngine) chunkEnded() {
	e.mu.Lock()
	ev := e.events
	e.events = narration.Events{}
	e.busy = false
	e.mu.Unlock()
	if ev.OnEnd != nil {
		ev.OnEnd()
	}
}

// chunkFailed handles the device's failure report.
func (e *wsEngine) chunkFailed(raw json.RawMessage) {
	var payload model.NarrationEventPayload
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &payload)
	}

	err := error(narration.ErrSpeechFailed)
	if payload.Interrupted {
		err = narration.ErrInterrupted
	} else if payload.Error != "" {
		err = errors.New(payload.Error)
	}

	e.mu.Lock()
	ev := e.events
	e.events = narration.Events{}
	e.busy = false
	e.mu.Unlock()
	if ev.OnError != nil {
		ev.OnError(err)
	}
}
