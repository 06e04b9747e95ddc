package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"warpgate.gg/internal/gui/action"
	"warpgate.gg/internal/gui/engine"
	"warpgate.gg/internal/gui/session"
	"warpgate.gg/internal/protocol"
)

// Server bridges websocket clients onto the engine's request channels. One
// goroutine reads frames, one drains the per-user output queue; all GUI
// state stays on the engine side.
type Server struct {
	eng *engine.Engine
	log *log.Logger

	upgrader websocket.Upgrader
}

func NewServer(eng *engine.Engine, logger *log.Logger) *Server {
	return &Server{
		eng: eng,
		log: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		userID, connID, out := s.handshake(conn)
		if userID == "" {
			return
		}

		done := make(chan struct{})

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-done:
					return
				case b, ok := <-out:
					if !ok {
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						return
					}
				}
			}
		}()

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				break
			}
			s.route(userID, msg)
		}

		// Cleanup. The conn id keeps a slow teardown here from tearing down a
		// connection the user has since replaced.
		close(done)
		s.eng.Leave() <- engine.LeaveRequest{UserID: userID, ConnID: connID}
	}
}

func (s *Server) route(userID string, msg []byte) {
	base, err := protocol.DecodeBase(msg)
	if err != nil {
		return
	}
	if base.ProtocolVersion != protocol.Version {
		return
	}
	switch base.Type {
	case protocol.TypeOpen:
		var m protocol.OpenMsg
		if err := json.Unmarshal(msg, &m); err != nil || m.Panel == "" {
			return
		}
		s.eng.Open() <- engine.OpenRequest{UserID: userID, Panel: m.Panel}
	case protocol.TypeClick:
		var m protocol.ClickMsg
		if err := json.Unmarshal(msg, &m); err != nil {
			return
		}
		// Range checking is the engine's job; it answers with a NOTICE.
		s.eng.Click() <- engine.ClickEnvelope{
			UserID: userID,
			Click:  action.Click{Cell: m.Cell, Secondary: m.Secondary, Modifier: m.Modifier},
		}
	case protocol.TypeClose:
		s.eng.Close() <- userID
	}
}

func (s *Server) handshake(conn *websocket.Conn) (userID, connID string, out chan []byte) {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return "", "", nil
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		closePolicy(conn, "expected HELLO")
		return "", "", nil
	}

	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return "", "", nil
	}
	if hello.ProtocolVersion != protocol.Version {
		closePolicy(conn, "bad protocol_version")
		return "", "", nil
	}
	if hello.UserID == "" {
		closePolicy(conn, "missing user_id")
		return "", "", nil
	}
	if hello.UserName == "" {
		hello.UserName = hello.UserID
	}

	maxQ := hello.MaxQueue
	if maxQ <= 0 {
		maxQ = 16
	}
	if maxQ > 64 {
		maxQ = 64
	}
	out = make(chan []byte, maxQ)

	perms := make(map[string]bool, len(hello.Perms))
	for _, p := range hello.Perms {
		perms[p] = true
	}

	respCh := make(chan engine.JoinResponse, 1)
	s.eng.Join() <- engine.JoinRequest{
		User: session.User{
			ID:     hello.UserID,
			Name:   hello.UserName,
			Locale: hello.Locale,
			Op:     hello.Op,
			Perms:  perms,
		},
		Out:  out,
		Resp: respCh,
	}
	resp := <-respCh

	if err := writeJSON(conn, resp.Welcome); err != nil {
		return "", "", nil
	}
	return hello.UserID, resp.Welcome.SessionID, out
}

func closePolicy(conn *websocket.Conn, reason string) {
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason),
		time.Now().Add(time.Second))
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
