package server

import (
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"

	"github.com/gridfall/gridfall-server/pkg/protocol"
)

// GatewayHandler bridges websocket clients onto the same session and
// packet machinery as raw TCP clients. Each binary message carries one
// packet payload; the length-prefix framing is unnecessary because the
// websocket layer already preserves message boundaries.
func (s *Server) GatewayHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := websocket.Accept(w, r, nil)
		if err != nil {
			s.log.Warnw("websocket accept failed", "remote", r.RemoteAddr, "err", err)
			return
		}
		s.serveWS(r.Context(), ws, r.RemoteAddr)
	})
}

func (s *Server) serveWS(ctx context.Context, ws *websocket.Conn, remote string) {
	sess := newSession(remote, func() { _ = ws.CloseNow() })
	s.log.Infow("gateway connected", "remote", remote, "session", sess.ID)

	go s.wsWriteLoop(ctx, sess, ws)
	s.inbox <- joinMsg{sess: sess}
	s.wsReadLoop(ctx, sess, ws)
}

func (s *Server) wsReadLoop(ctx context.Context, sess *Session, ws *websocket.Conn) {
	defer func() {
		sess.closeTransport()
		s.inbox <- leaveMsg{id: sess.ID, reason: "hangup"}
	}()

	for {
		readCtx, cancel := context.WithTimeout(ctx, s.timeout+time.Second)
		_, payload, err := ws.Read(readCtx)
		cancel()
		if err != nil {
			return
		}
		pkt, err := protocol.DecodeClient(payload)
		if err != nil {
			s.log.Warnw("malformed gateway packet", "remote", sess.Remote, "err", err)
			return
		}
		s.inbox <- packetMsg{id: sess.ID, pkt: pkt}
	}
}

func (s *Server) wsWriteLoop(ctx context.Context, sess *Session, ws *websocket.Conn) {
	for payload := range sess.outbox {
		writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
		err := ws.Write(writeCtx, websocket.MessageBinary, payload)
		cancel()
		if err != nil {
			sess.closeTransport()
			for range sess.outbox {
			}
			return
		}
	}
	_ = ws.Close(websocket.StatusNormalClosure, "")
	sess.closeTransport()
}
