// Package server composes the frame transport, sessions and the turn
// scheduler into the live game authority. Each connection gets its own
// reader and writer goroutines; all world mutation is serialized
// through a single authority loop fed by a typed inbox, so no session
// failure can ever corrupt world state.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gridfall/gridfall-server/internal/console"
	"github.com/gridfall/gridfall-server/internal/journal"
	"github.com/gridfall/gridfall-server/internal/sim"
	"github.com/gridfall/gridfall-server/pkg/protocol"
)

const (
	// idleBackoff keeps the authority loop from spinning when no
	// session has traffic and no piece is ready to resolve.
	idleBackoff = time.Millisecond
	// writeTimeout bounds a single flush to a peer.
	writeTimeout = 5 * time.Second
)

type message interface{ isMsg() }

type joinMsg struct{ sess *Session }

type leaveMsg struct {
	id     uuid.UUID
	reason string
}

type packetMsg struct {
	id  uuid.UUID
	pkt protocol.ClientPacket
}

type viewMsg struct{ reply chan View }

func (joinMsg) isMsg()   {}
func (leaveMsg) isMsg()  {}
func (packetMsg) isMsg() {}
func (viewMsg) isMsg()   {}

// View is a read-only reflection of the authority's state for the
// admin surface and tests.
type View struct {
	Sessions int             `json:"sessions"`
	Turn     uint64          `json:"turn"`
	Awaiting bool            `json:"awaiting_input"`
	World    json.RawMessage `json:"world"`
}

// Server is the composition root of the core: transport + sessions +
// scheduler.
type Server struct {
	log     *zap.SugaredLogger
	sched   *sim.Scheduler
	bus     *console.Bus
	journal journal.Journal

	timeout time.Duration

	inbox    chan message
	sessions map[uuid.UUID]*Session
}

// New wires the authority. The console bus must be the same handle the
// world writes combat messages to.
func New(log *zap.SugaredLogger, sched *sim.Scheduler, bus *console.Bus, jr journal.Journal, timeout time.Duration) *Server {
	return &Server{
		log:      log,
		sched:    sched,
		bus:      bus,
		journal:  jr,
		timeout:  timeout,
		inbox:    make(chan message, 256),
		sessions: make(map[uuid.UUID]*Session),
	}
}

// Run accepts connections on ln and drives the authority loop until
// ctx is cancelled.
func (s *Server) Run(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()
	go s.acceptLoop(ctx, ln)

	idle := time.NewTicker(idleBackoff)
	defer idle.Stop()

	for {
		select {
		case <-ctx.Done():
			s.shutdown()
			return nil
		case m := <-s.inbox:
			s.handle(m)
		case <-idle.C:
		}

		s.sweep(time.Now())

		actor := s.sched.Ready()
		progressed, err := s.sched.Step()
		if err != nil {
			// Decision policy failures are operator-visible but never
			// fatal; the scheduler already fell back to a safe action.
			s.log.Warnw("turn resolution", "err", err)
		}
		if progressed {
			if actor != nil {
				s.journal.Record(journal.Entry{
					Turn:      s.sched.World().Turn,
					ActorID:   actor.ID.String(),
					ActorName: actor.Sheet.Name,
					Kind:      "ai",
				})
			}
			s.broadcastWorld()
		}
		s.flushConsole()
	}
}

func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return
			}
			s.log.Warnw("accept failed", "err", err)
			continue
		}
		go s.serveConn(conn)
	}
}

// serveConn owns one TCP connection: a writer goroutine draining the
// session outbox and a reader loop feeding decoded packets to the
// authority. Either side failing tears the connection down.
func (s *Server) serveConn(conn net.Conn) {
	sess := newSession(conn.RemoteAddr().String(), func() { _ = conn.Close() })
	s.log.Infow("connected", "remote", sess.Remote, "session", sess.ID)

	go s.writeLoop(sess, conn)
	s.inbox <- joinMsg{sess: sess}
	s.readLoop(sess, conn)
}

func (s *Server) readLoop(sess *Session, conn net.Conn) {
	defer func() {
		sess.closeTransport()
		s.inbox <- leaveMsg{id: sess.ID, reason: "hangup"}
	}()

	var dec protocol.FrameDecoder
	buf := make([]byte, 4096)
	for {
		// The deadline outlives the liveness timeout; the sweep drops
		// quiet sessions long before the read gives up.
		_ = conn.SetReadDeadline(time.Now().Add(s.timeout + time.Second))
		n, err := conn.Read(buf)
		if n > 0 {
			dec.Feed(buf[:n])
			for {
				payload, ok, derr := dec.Next()
				if derr != nil {
					s.log.Warnw("malformed frame", "remote", sess.Remote, "err", derr)
					return
				}
				if !ok {
					break
				}
				pkt, perr := protocol.DecodeClient(payload)
				if perr != nil {
					s.log.Warnw("malformed packet", "remote", sess.Remote, "err", perr)
					return
				}
				s.inbox <- packetMsg{id: sess.ID, pkt: pkt}
			}
		}
		if err != nil {
			return
		}
	}
}

func (s *Server) writeLoop(sess *Session, conn net.Conn) {
	var fw protocol.FrameWriter
	for payload := range sess.outbox {
		fw.Queue(payload)
		for fw.Buffered() > 0 {
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if _, err := fw.Flush(conn); err != nil {
				sess.closeTransport()
				for range sess.outbox {
					// Drain until the authority closes the channel.
				}
				return
			}
		}
	}
	sess.closeTransport()
}

// handle processes one authority message. Runs only on the authority
// goroutine.
func (s *Server) handle(m message) {
	switch msg := m.(type) {
	case joinMsg:
		s.sessions[msg.sess.ID] = msg.sess
		// Handshake: an unsolicited snapshot before the client sends
		// anything, then a ping to prime liveness tracking.
		s.sendWorld(msg.sess)
		s.send(msg.sess, protocol.ServerPacket{Type: protocol.KindPing})

	case leaveMsg:
		if sess, ok := s.sessions[msg.id]; ok {
			s.drop(sess, msg.reason)
		}

	case packetMsg:
		sess, ok := s.sessions[msg.id]
		if !ok {
			return
		}
		sess.LastPing = time.Now()
		s.dispatch(sess, msg.pkt)

	case viewMsg:
		world, err := s.sched.World().SnapshotJSON()
		if err != nil {
			world = nil
		}
		msg.reply <- View{
			Sessions: len(s.sessions),
			Turn:     s.sched.World().Turn,
			Awaiting: s.sched.State() == sim.AwaitingInput,
			World:    world,
		}
	}
}

func (s *Server) dispatch(sess *Session, pkt protocol.ClientPacket) {
	switch pkt.Type {
	case protocol.KindPing:
		s.send(sess, protocol.ServerPacket{Type: protocol.KindPing})

	case protocol.KindAuthenticate:
		sess.Auth = pkt.Auth
		s.claimPieces(sess)
		s.log.Infow("authenticated", "remote", sess.Remote, "username", sess.Auth.Username)

	case protocol.KindAction:
		s.handleAction(sess, *pkt.Action)

	case protocol.KindRoute:
		// Already routed; reserved for multi-instance dispatch.
	}
}

// handleAction enforces turn and ownership rules. Violations are
// recovered locally: the action is ignored and an authoritative
// snapshot forces the client to resynchronize.
func (s *Server) handleAction(sess *Session, wire protocol.Action) {
	action, err := toGameAction(wire)
	if err != nil {
		s.log.Warnw("unusable action", "remote", sess.Remote, "err", err)
		s.sendWorld(sess)
		return
	}

	ready := s.sched.Ready()
	if ready == nil || !ready.PlayerControlled || sess.Auth == nil {
		s.log.Warnw("action out of turn", "remote", sess.Remote, "username", sess.Username())
		s.sendWorld(sess)
		return
	}
	if !sess.owns(ready.ID) {
		if s.ownedElsewhere(ready.ID, sess.ID) {
			s.log.Warnw("session tried to move a piece it does not own",
				"remote", sess.Remote, "piece", ready.ID)
			s.sendWorld(sess)
			return
		}
		// Unowned player piece: first valid action claims it.
		sess.Owned[ready.ID] = struct{}{}
	}

	turn := s.sched.World().Turn
	if err := s.sched.PerformPlayer(action); err != nil {
		s.log.Infow("action rejected", "username", sess.Username(), "err", err)
		s.sendWorld(sess)
		return
	}

	detail, _ := json.Marshal(action)
	s.journal.Record(journal.Entry{
		Turn:      turn,
		ActorID:   ready.ID.String(),
		ActorName: ready.Sheet.Name,
		Kind:      string(action.Kind),
		Detail:    string(detail),
	})
	s.broadcastWorld()
}

// claimPieces grants the session every player piece nobody owns yet.
func (s *Server) claimPieces(sess *Session) {
	for _, p := range s.sched.World().Pieces() {
		if !p.PlayerControlled {
			continue
		}
		if s.ownedElsewhere(p.ID, sess.ID) {
			continue
		}
		sess.Owned[p.ID] = struct{}{}
	}
}

func (s *Server) ownedElsewhere(piece uuid.UUID, exclude uuid.UUID) bool {
	for id, other := range s.sessions {
		if id == exclude {
			continue
		}
		if other.owns(piece) {
			return true
		}
	}
	return false
}

// sweep enforces liveness and the owned ⊆ live invariant.
func (s *Server) sweep(now time.Time) {
	world := s.sched.World()
	for _, sess := range s.sessions {
		if now.Sub(sess.LastPing) > s.timeout {
			s.drop(sess, "timeout")
			continue
		}
		for id := range sess.Owned {
			if world.Piece(id) == nil {
				delete(sess.Owned, id)
			}
		}
	}
}

// drop removes a session and releases (not destroys) its pieces.
func (s *Server) drop(sess *Session, reason string) {
	if _, ok := s.sessions[sess.ID]; !ok {
		return
	}
	delete(s.sessions, sess.ID)
	close(sess.outbox)
	sess.closeTransport()
	s.log.Infow("session dropped", "remote", sess.Remote, "username", sess.Username(), "reason", reason)
}

func (s *Server) shutdown() {
	for _, sess := range s.sessions {
		s.drop(sess, "shutdown")
	}
}

// send queues one packet; a full outbox means the client is too slow
// and gets dropped.
func (s *Server) send(sess *Session, pkt protocol.ServerPacket) {
	payload, err := protocol.EncodeServer(pkt)
	if err != nil {
		s.log.Errorw("encode packet", "err", err)
		return
	}
	select {
	case sess.outbox <- payload:
	default:
		s.drop(sess, "slow consumer")
	}
}

func (s *Server) sendWorld(sess *Session) {
	snap, err := s.sched.World().SnapshotJSON()
	if err != nil {
		s.log.Errorw("snapshot", "err", err)
		return
	}
	s.send(sess, protocol.ServerPacket{Type: protocol.KindWorld, World: snap})
}

// broadcastWorld pushes the authoritative snapshot to every session
// after observable state changed.
func (s *Server) broadcastWorld() {
	snap, err := s.sched.World().SnapshotJSON()
	if err != nil {
		s.log.Errorw("snapshot", "err", err)
		return
	}
	pkt := protocol.ServerPacket{Type: protocol.KindWorld, World: snap}
	for _, sess := range s.sessions {
		s.send(sess, pkt)
	}
}

func (s *Server) flushConsole() {
	for _, m := range s.bus.Drain() {
		pkt := protocol.ServerPacket{
			Type:    protocol.KindMessage,
			Message: &protocol.Message{Text: m.Text, Kind: string(m.Kind)},
		}
		for _, sess := range s.sessions {
			s.send(sess, pkt)
		}
	}
}

// ViewState asks the authority for its current view. Safe from any
// goroutine.
func (s *Server) ViewState(ctx context.Context) (View, error) {
	reply := make(chan View, 1)
	select {
	case s.inbox <- viewMsg{reply: reply}:
	case <-ctx.Done():
		return View{}, ctx.Err()
	}
	select {
	case v := <-reply:
		return v, nil
	case <-ctx.Done():
		return View{}, ctx.Err()
	}
}
