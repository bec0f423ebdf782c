package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"

	apperrors "github.com/vango-dev/atom/internal/errors"
	"github.com/vango-dev/atom/pkg/form"
	"github.com/vango-dev/atom/pkg/view"
)

const (
	heartbeatInterval = 30 * time.Second
	maxMessageSize    = 64 << 10
	outboxSize        = 16
)

// Frame types exchanged with the browser.
const (
	FrameInit  = "init"
	FrameInput = "input"
	FramePatch = "patch"
	FrameError = "error"
)

// ClientFrame is a message from the browser.
type ClientFrame struct {
	Type   string `json:"type"`
	Target string `json:"target,omitempty"`
	Value  string `json:"value,omitempty"`
}

// Patch replaces the element with id ID by HTML.
type Patch struct {
	ID   string `json:"id"`
	HTML string `json:"html"`
}

// ServerFrame is a message to the browser.
type ServerFrame struct {
	Type    string           `json:"type"`
	Session string           `json:"session,omitempty"`
	HTML    string           `json:"html,omitempty"`
	Patches []Patch          `json:"patches,omitempty"`
	Error   *apperrors.Error `json:"error,omitempty"`
}

// Session is one live browser connection with its own view tree.
type Session struct {
	id     string
	server *Server
	conn   *websocket.Conn

	root *view.Root
	view *form.View

	// wake is signaled when a component becomes dirty.
	wake chan struct{}

	// outbox carries frames produced off the write goroutine.
	outbox chan ServerFrame

	done      chan struct{}
	closeOnce sync.Once
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		s.logger.Error("websocket upgrade failed", "error", apperrors.New("E203").Wrap(err))
		if s.metrics != nil {
			s.metrics.RecordWSError("upgrade")
		}
		return
	}
	conn.SetReadLimit(maxMessageSize)

	sess := &Session{
		id:     uuid.NewString(),
		server: s,
		conn:   conn,
		wake:   make(chan struct{}, 1),
		outbox: make(chan ServerFrame, outboxSize),
		done:   make(chan struct{}),
	}
	sess.root = view.NewRoot(
		view.WithLogger(s.logger.With("session", sess.id)),
		view.OnDirty(sess.signal),
	)

	// Mount on the loop so the first render sees a state no edit is racing.
	var html string
	err = s.loop.Do(r.Context(), func() error {
		sess.view = form.Mount(sess.root, s.fields)
		html = sess.view.HTML()
		return nil
	})
	if err != nil {
		s.logger.Warn("session rejected", "error", err)
		conn.Close()
		return
	}

	s.addSession(sess)
	s.logger.Info("session started", "session", sess.id, "remote", r.RemoteAddr)

	sess.outbox <- ServerFrame{Type: FrameInit, Session: sess.id, HTML: html}
	go sess.writeLoop()
	sess.readLoop(context.WithoutCancel(r.Context()))
}

// signal wakes the write loop without blocking the notifying goroutine.
func (sess *Session) signal() {
	select {
	case sess.wake <- struct{}{}:
	default:
	}
}

// send queues a frame for the write loop.
func (sess *Session) send(f ServerFrame) {
	select {
	case sess.outbox <- f:
	case <-sess.done:
	}
}

func (sess *Session) readLoop(ctx context.Context) {
	defer sess.Close()
	s := sess.server
	readTimeout := s.cfg.ReadTimeout()

	sess.conn.SetPongHandler(func(string) error {
		return sess.conn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	for {
		sess.conn.SetReadDeadline(time.Now().Add(readTimeout))

		_, msg, err := sess.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("read error", "session", sess.id, "error", err)
				if s.metrics != nil {
					s.metrics.RecordWSError("read")
				}
			}
			return
		}

		var f ClientFrame
		if err := json.Unmarshal(msg, &f); err != nil || f.Type != FrameInput {
			e := apperrors.New("E201")
			if err != nil {
				e = e.Wrap(err)
			}
			s.logger.Warn("frame decode error", "session", sess.id, "error", e.Error())
			if s.metrics != nil {
				s.metrics.RecordEvent("invalid", e)
			}
			sess.send(ServerFrame{Type: FrameError, Error: e})
			continue
		}

		err = s.loop.Do(ctx, func() error {
			return s.traceEdit(ctx, "websocket", func() error {
				return sess.view.Input(f.Target, f.Value)
			}, attribute.String("atomdemo.session", sess.id), attribute.String("atomdemo.target", f.Target))
		})
		if s.metrics != nil {
			s.metrics.RecordEvent(FrameInput, err)
		}
		if err != nil {
			e := editError(err)
			s.logger.Warn("input rejected", "session", sess.id, "target", f.Target, "error", e.Error())
			sess.send(ServerFrame{Type: FrameError, Error: e})
			if e.Code == "E204" {
				return
			}
		}
	}
}

func (sess *Session) writeLoop() {
	s := sess.server
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()
	defer sess.Close()

	for {
		select {
		case f := <-sess.outbox:
			if err := sess.write(f); err != nil {
				return
			}

		case <-sess.wake:
			patches := sess.flush()
			if len(patches) == 0 {
				continue
			}
			if err := sess.write(ServerFrame{Type: FramePatch, Patches: patches}); err != nil {
				return
			}
			if s.metrics != nil {
				s.metrics.RecordPatches(len(patches))
			}

		case <-ticker.C:
			deadline := time.Now().Add(s.cfg.WriteTimeout())
			if err := sess.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				s.logger.Debug("ping failed", "session", sess.id, "error", err)
				return
			}

		case <-sess.done:
			return
		}
	}
}

// flush re-renders dirty components and returns their markup.
func (sess *Session) flush() []Patch {
	rendered := sess.root.Flush()
	patches := make([]Patch, 0, len(rendered))
	for _, c := range rendered {
		patches = append(patches, Patch{ID: c.DOMID(), HTML: c.Output()})
	}
	return patches
}

func (sess *Session) write(f ServerFrame) error {
	s := sess.server
	sess.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout()))
	if err := sess.conn.WriteJSON(f); err != nil {
		s.logger.Error("write error", "session", sess.id, "error", err)
		if s.metrics != nil {
			s.metrics.RecordWSError("write")
		}
		return err
	}
	return nil
}

// Close releases the view tree and the connection. It is safe to call
// more than once.
func (sess *Session) Close() {
	sess.closeOnce.Do(func() {
		s := sess.server
		close(sess.done)

		sess.root.Close()
		s.removeSession(sess)

		sess.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		sess.conn.Close()

		s.logger.Info("session closed", "session", sess.id, "renders", form.FormatStats(form.Stats(sess.root)))
	})
}
