package events

import (
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/socialfeed/server/pkg/api/events/packets"
	"github.com/socialfeed/server/pkg/logger"
	"go.uber.org/zap"
)

const sendBufferSize = 256

// Session outlives its websocket connection by up to one ping interval, so a
// client that reconnects with its session id and last nonce gets the packets
// it missed.
type Session struct {
	id     int64
	server *Server
	format int8

	send chan *Packet
	done chan struct{}

	mu             sync.Mutex
	conn           *websocket.Conn
	packets        []*Packet
	lastSeenNonce  int64
	disconnectedAt time.Time
	ended          bool

	writeMu sync.Mutex
}

func newSession(server *Server, format int8) *Session {
	s := &Session{
		id:            server.getNextNonce(),
		server:        server,
		format:        format,
		send:          make(chan *Packet, sendBufferSize),
		done:          make(chan struct{}),
		lastSeenNonce: -1,
	}
	server.addSession(s)

	go s.writeLoop()
	go s.maintain()

	return s
}

func (s *Session) Id() int64 {
	return s.id
}

// enqueue hands p to the write loop without blocking. A session that can't
// keep up is ended.
func (s *Session) enqueue(p *Packet) {
	select {
	case <-s.done:
	case s.send <- p:
	default:
		logger.L.Warn("events session send buffer full", zap.Int64("session_id", s.id))
		s.end()
	}
}

func (s *Session) writeLoop() {
	for {
		select {
		case <-s.done:
			return
		case p := <-s.send:
			s.mu.Lock()
			// Make sure to not re-send packets
			if p.Nonce <= s.lastSeenNonce {
				s.mu.Unlock()
				continue
			}
			s.lastSeenNonce = p.Nonce
			s.packets = append(s.packets, p)
			conn := s.conn
			s.mu.Unlock()

			if conn != nil {
				s.write(conn, p)
			}
		}
	}
}

// maintain pings the connection, trims the packet history and ends the
// session once it has been disconnected for longer than the ping interval.
func (s *Session) maintain() {
	interval := s.server.pingInterval
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case now := <-ticker.C:
			s.mu.Lock()
			conn := s.conn
			if conn == nil && now.Sub(s.disconnectedAt) >= interval {
				s.mu.Unlock()
				s.end()
				return
			}
			cutoff := now.Add(-interval)
			trim := 0
			for _, p := range s.packets {
				if !p.CreatedAt.Before(cutoff) {
					break
				}
				trim++
			}
			s.packets = s.packets[trim:]
			s.mu.Unlock()

			if conn != nil {
				_ = conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(interval/2))
			}
		}
	}
}

// attach makes conn the session's connection, replacing any earlier one, and
// returns the history packets newer than lastNonce.
func (s *Session) attach(conn *websocket.Conn, lastNonce int64) ([]*Packet, bool) {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return nil, false
	}
	prev := s.conn
	s.conn = conn
	var missed []*Packet
	for _, p := range s.packets {
		if p.Nonce > lastNonce {
			missed = append(missed, p)
		}
	}
	s.mu.Unlock()

	if prev != nil {
		closeConn(prev, websocket.CloseGoingAway)
	}
	go s.readLoop(conn)

	return missed, true
}

// hello greets a newly attached connection.
func (s *Session) hello() error {
	p, err := createPacket(s.server.getNextNonce(), packets.Packet{
		Cmd: "hello",
		Val: packets.Hello{
			SessionId:    strconv.FormatInt(s.id, 10),
			PingInterval: s.server.pingInterval.Milliseconds(),
		},
	})
	if err != nil {
		return err
	}
	s.enqueue(p)
	return nil
}

func (s *Session) readLoop(conn *websocket.Conn) {
	for {
		// Clients only send control frames
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				s.end()
			} else {
				s.detach(conn)
			}
			return
		}
	}
}

// detach forgets conn if it is still the current connection.
func (s *Session) detach(conn *websocket.Conn) {
	s.mu.Lock()
	current := s.conn == conn
	if current {
		s.conn = nil
		s.disconnectedAt = time.Now()
	}
	s.mu.Unlock()

	conn.Close()
}

func (s *Session) write(conn *websocket.Conn, p *Packet) {
	msgType := websocket.TextMessage
	if s.format == FormatMsgpack {
		msgType = websocket.BinaryMessage
	}

	s.writeMu.Lock()
	err := conn.WriteMessage(msgType, p.encoded(s.format))
	s.writeMu.Unlock()
	if err != nil {
		logger.L.Debug("failed writing events packet", zap.Int64("session_id", s.id), zap.Error(err))
		s.detach(conn)
	}
}

func (s *Session) end() {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return
	}
	s.ended = true
	conn := s.conn
	s.conn = nil
	s.packets = nil
	s.mu.Unlock()

	close(s.done)
	s.server.removeSession(s.id)

	if conn != nil {
		closeConn(conn, websocket.CloseNormalClosure)
	}
}

func closeConn(conn *websocket.Conn, code int) {
	_ = conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(code, ""),
		time.Now().Add(time.Second),
	)
	conn.Close()
}
