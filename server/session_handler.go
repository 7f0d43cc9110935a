package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"sonicpdf/core/auth"
	"sonicpdf/core/clock"
	"sonicpdf/core/narration"
	"sonicpdf/core/playback"
	"sonicpdf/logger"
	"sonicpdf/model"
)

const (
	sessionWriteWait  = 10 * time.Second
	sessionPongWait   = 60 * time.Second
	sessionPingPeriod = 30 * time.Second
	sessionReadLimit  = 256 * 1024 // page text rides on this socket

	// pageAdvanceDelay is the pause between finishing a page's narration
	// and telling a listening-mode reader to turn the page.
	pageAdvanceDelay = 2 * time.Second
)

var sessionUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// readingSession owns one reader's connection: the scheduler drives music
// and effects against the reading clock, the narration controller feeds the
// device speech chunks, and this type bridges both onto the socket.
type readingSession struct {
	conn    *websocket.Conn
	send    chan []byte
	handler *APIHandler
	userID  int64
	premium bool

	autoplay atomic.Bool
	player   *wsPlayer
	engine   *wsEngine
	sched    *playback.Scheduler
	narrator *narration.Controller
	clk      clock.Clock

	mu        sync.Mutex
	listening bool
	docID     int64
	page      int
	pageText  string
	advance   clock.Timer

	closeOnce sync.Once
}

// SessionHandler upgrades to WebSocket and runs a reading session. The JWT
// rides in the token query parameter because browsers cannot set headers on
// WebSocket dials.
func (h *APIHandler) SessionHandler(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.ParseToken(r.URL.Query().Get("token"))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	settings, err := h.settingsRepo.GetByUserID(claims.UserID)
	if err != nil {
		logger.Error("failed to load settings for session", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to start session")
		return
	}

	conn, err := sessionUpgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("session upgrade failed", logger.ErrorField(err))
		return
	}

	s := &readingSession{
		conn:    conn,
		send:    make(chan []byte, 64),
		handler: h,
		userID:  claims.UserID,
		premium: h.isPremium(claims.UserID),
		clk:     clock.Real(),
	}
	s.autoplay.Store(true) // trust autoplay until the client reports blocked
	s.listening = settings.ListeningMode

	s.player = newWSPlayer(s, &s.autoplay)
	s.engine = newWSEngine(s)

	guard := playback.NewGuard(s.autoplay.Load)
	schedCfg := playback.DefaultConfig()
	schedCfg.MusicVolume = settings.MusicVolume
	schedCfg.EffectsVolume = settings.EffectsVolume
	s.sched = playback.NewScheduler(s.clk, s.player, h.assets, guard, schedCfg)
	s.sched.OnProgress(func(percent, elapsed float64) {
		s.sendMessage(model.MsgTypeProgress, model.ProgressPayload{
			Percent: percent,
			Elapsed: elapsed,
		})
	})

	narrCfg := narration.DefaultConfig()
	narrCfg.Rate = settings.SpeechRate
	narrCfg.VoiceLang = settings.VoiceLang
	s.narrator = narration.NewController(s.clk, s.engine, narrCfg)
	s.narrator.OnDone(func() { s.narrationDone() })
	s.narrator.OnError(func(err error) {
		s.sendMessage(model.MsgTypeSpeechFailed, map[string]string{"error": err.Error()})
	})

	logger.Info("reading session opened", logger.Int64("user", s.userID))
	go s.writePump()
	go s.readPump()
}

// sendMessage queues a message; full buffers drop rather than block the
// timeline.
func (s *readingSession) sendMessage(msgType model.SessionMessageType, payload interface{}) {
	msg := model.SessionMessage{Type: msgType}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			logger.Error("failed to marshal session payload", logger.ErrorField(err))
			return
		}
		msg.Data = data
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case s.send <- raw:
	default:
		logger.Warn("session send buffer full, dropping message",
			logger.String("type", string(msgType)))
	}
}

// readPump consumes client messages until the socket dies.
func (s *readingSession) readPump() {
	defer s.teardown()

	s.conn.SetReadLimit(sessionReadLimit)
	s.conn.SetReadDeadline(time.Now().Add(sessionPongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(sessionPongWait))
		return nil
	})

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("session read error",
					logger.Int64("user", s.userID), logger.ErrorField(err))
			}
			return
		}

		var msg model.SessionMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			s.sendMessage(model.MsgTypeError, map[string]string{"error": "invalid message"})
			continue
		}
		s.handleMessage(&msg)
	}
}

// writePump flushes queued messages and keeps the connection alive.
func (s *readingSession) writePump() {
	ticker := time.NewTicker(sessionPingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case raw, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(sessionWriteWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(sessionWriteWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage dispatches one client message.
func (s *readingSession) handleMessage(msg *model.SessionMessage) {
	switch msg.Type {
	case model.MsgTypePage:
		s.handlePage(msg.Data)

	case model.MsgTypeStop:
		s.cancelAdvance()
		s.sched.Stop()
		s.narrator.Stop()

	case model.MsgTypePause:
		if err := s.narrator.Pause(); err != nil {
			logger.Warn("pause failed", logger.ErrorField(err))
		}

	case model.MsgTypeResume:
		if err := s.narrator.Resume(); err != nil {
			logger.Warn("resume failed", logger.ErrorField(err))
		}

	case model.MsgTypeUnlock:
		s.autoplay.Store(true)
		s.sched.Guard().NotifyGesture(nil)

	case model.MsgTypeBlocked:
		s.autoplay.Store(false)

	case model.MsgTypeVolume:
		var payload model.VolumePayload
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			return
		}
		if payload.Music != nil {
			s.sched.SetMusicVolume(*payload.Music)
		}
		if payload.Effects != nil {
			s.sched.SetEffectsVolume(*payload.Effects)
		}

	case model.MsgTypeListen:
		var payload model.ListenPayload
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			return
		}
		s.setListening(payload.Enabled)

	case model.MsgTypePing:
		s.sendMessage(model.MsgTypePong, nil)

	case model.MsgTypeCueEnded:
		var payload model.CueEndedPayload
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			return
		}
		s.player.cueEnded(payload.CueID)

	case model.MsgTypeNarrationEnded:
		s.engine.chunkEnded()

	case model.MsgTypeNarrationError:
		s.engine.chunkFailed(msg.Data)

	default:
		s.sendMessage(model.MsgTypeError, map[string]string{
			"error": "unknown message type: " + string(msg.Type),
		})
	}
}

// handlePage starts a fresh page: recommendation, playback schedule, and in
// listening mode the narration.
func (s *readingSession) handlePage(raw json.RawMessage) {
	var payload model.PagePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		s.sendMessage(model.MsgTypeError, map[string]string{"error": "invalid page payload"})
		return
	}

	s.cancelAdvance()

	s.mu.Lock()
	s.docID = payload.DocumentID
	s.page = payload.PageNumber
	s.pageText = payload.Text
	listening := s.listening
	s.mu.Unlock()

	rec, err := s.handler.recommender.ForPage(context.Background(), payload.DocumentID, payload.PageNumber, payload.Text, s.premium)
	if err != nil {
		logger.Error("page recommendation failed", logger.ErrorField(err))
		rec = model.DefaultRecommendation()
	}
	s.sendMessage(model.MsgTypeRecommendation, rec)

	s.sched.Start(payload.Text, rec)
	if listening {
		if err := s.narrator.Speak(payload.Text); err != nil {
			logger.Debug("nothing to narrate", logger.ErrorField(err))
		}
	} else {
		s.narrator.Stop()
	}

	// Persist the resume position in the background.
	if payload.DocumentID > 0 && payload.PageNumber > 0 {
		go func() {
			if err := s.handler.documentRepo.UpdateLastPage(payload.DocumentID, s.userID, payload.PageNumber); err != nil {
				logger.Debug("failed to persist reading position", logger.ErrorField(err))
			}
		}()
	}
}

// setListening toggles listening mode mid-page.
func (s *readingSession) setListening(enabled bool) {
	s.mu.Lock()
	s.listening = enabled
	text := s.pageText
	s.mu.Unlock()

	if enabled {
		if text != "" {
			if err := s.narrator.Speak(text); err != nil {
				logger.Debug("nothing to narrate", logger.ErrorField(err))
			}
		}
	} else {
		s.cancelAdvance()
		s.narrator.Stop()
	}
}

// narrationDone fires when the page finished being read aloud. In listening
// mode the reader is told to turn the page after a short pause.
func (s *readingSession) narrationDone() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.listening {
		return
	}
	page := s.page
	if s.advance != nil {
		s.advance.Stop()
	}
	s.advance = s.clk.AfterFunc(pageAdvanceDelay, func() {
		s.sendMessage(model.MsgTypePageAdvance, map[string]int{"nextPage": page + 1})
	})
}

// cancelAdvance stops a pending listening-mode page turn.
func (s *readingSession) cancelAdvance() {
	s.mu.Lock()
	if s.advance != nil {
		s.advance.Stop()
		s.advance = nil
	}
	s.mu.Unlock()
}

// teardown stops everything tied to the connection.
func (s *readingSession) teardown() {
	s.closeOnce.Do(func() {
		s.cancelAdvance()
		s.sched.Stop()
		s.narrator.Stop()
		close(s.send)
		s.conn.Close()
		logger.Info("reading session closed", logger.Int64("user", s.userID))
	})
}
