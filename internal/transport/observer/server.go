package observer

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"glassbox/internal/protocol"
)

// Server streams simulation events and tick digests to read-only websocket
// observers. It never feeds anything back into the simulation: a slow or
// dead observer only loses messages.
type Server struct {
	bootstrap func() protocol.BootstrapResponse

	upgrader websocket.Upgrader
	nextID   atomic.Uint64

	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	out        chan []byte
	everyTicks int
}

func NewServer(bootstrap func() protocol.BootstrapResponse) *Server {
	return &Server{
		bootstrap: bootstrap,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
		sessions: map[string]*session{},
	}
}

func (s *Server) BootstrapHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(s.bootstrap())
	}
}

func (s *Server) WSHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}

		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		// Handshake: must send SUBSCRIBE first.
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var sub protocol.SubscribeMsg
		if err := json.Unmarshal(msg, &sub); err != nil {
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad subscribe"), time.Now().Add(time.Second))
			return
		}
		if sub.Type != protocol.TypeSubscribe || sub.ProtocolVersion != protocol.Version {
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected SUBSCRIBE"), time.Now().Add(time.Second))
			return
		}

		sid := fmt.Sprintf("O%d", s.nextID.Add(1))
		sess := &session{out: make(chan []byte, 1024), everyTicks: sub.EveryTicks}

		s.mu.Lock()
		s.sessions[sid] = sess
		s.mu.Unlock()
		defer func() {
			s.mu.Lock()
			delete(s.sessions, sid)
			s.mu.Unlock()
		}()

		// Writer goroutine.
		done := make(chan struct{})
		go func() {
			defer close(done)
			for b := range sess.out {
				_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
					return
				}
			}
		}()

		// Reader loop: allow SUBSCRIBE retunes, drop everything else.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				break
			}
			var sub protocol.SubscribeMsg
			if err := json.Unmarshal(msg, &sub); err != nil {
				continue
			}
			if sub.Type != protocol.TypeSubscribe || sub.ProtocolVersion != protocol.Version {
				continue
			}
			s.mu.Lock()
			sess.everyTicks = sub.EveryTicks
			s.mu.Unlock()
		}

		// Unregister before closing the channel so no broadcast can race a
		// send against the close.
		s.mu.Lock()
		delete(s.sessions, sid)
		s.mu.Unlock()
		close(sess.out)
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))

		select {
		case <-done:
		case <-time.After(500 * time.Millisecond):
		}
	}
}

// PublishEvent fans an event out to every session.
func (s *Server) PublishEvent(ev protocol.EventMsg) {
	b, err := json.Marshal(ev)
	if err != nil {
		return
	}
	s.broadcast(b, 0)
}

// PublishTick fans a tick digest out, honoring each session's thinning.
func (s *Server) PublishTick(t protocol.TickMsg) {
	b, err := json.Marshal(t)
	if err != nil {
		return
	}
	s.broadcast(b, t.Tick)
}

func (s *Server) broadcast(b []byte, tick uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.sessions {
		if tick != 0 && sess.everyTicks > 1 && tick%uint64(sess.everyTicks) != 0 {
			continue
		}
		sendLatest(sess.out, b)
	}
}

// sendLatest drops the oldest queued message instead of blocking the
// simulation thread.
func sendLatest(ch chan []byte, b []byte) {
	select {
	case ch <- b:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- b:
	default:
	}
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
