package events

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gorilla/websocket"
	"github.com/socialfeed/server/pkg/events"
	"github.com/socialfeed/server/pkg/logger"
	"github.com/socialfeed/server/pkg/rdb"
	"go.uber.org/zap"
)

const DefaultPingInterval = 45 * time.Second

type Server struct {
	upgrader     websocket.Upgrader
	pingInterval time.Duration

	mu       sync.Mutex
	sessions map[int64]*Session

	nextNonce atomic.Int64
}

func NewServer() *Server {
	return &Server{
		upgrader: websocket.Upgrader{
			ReadBufferSize:    1024,
			WriteBufferSize:   1024,
			CheckOrigin:       func(r *http.Request) bool { return true },
			EnableCompression: true,
		},
		pingInterval: DefaultPingInterval,
		sessions:     make(map[int64]*Session),
	}
}

func (s *Server) getNextNonce() int64 {
	return s.nextNonce.Add(1)
}

func (s *Server) addSession(sess *Session) {
	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()
}

func (s *Server) removeSession(id int64) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

func (s *Server) getSession(id int64) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[id]
}

func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// ServeHTTP upgrades the request to a websocket. Passing sid and nonce
// resumes an existing session and replays the packets sent after nonce.
// format=msgpack switches the session to binary msgpack frames.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	// Get current session or create new session
	var session *Session
	var lastNonce int64
	resuming := query.Has("sid") && query.Has("nonce")
	if resuming {
		sid, _ := strconv.ParseInt(query.Get("sid"), 10, 64)
		lastNonce, _ = strconv.ParseInt(query.Get("nonce"), 10, 64)
		session = s.getSession(sid)
		if session == nil {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte("Session not found."))
			return
		}
	}

	// Upgrade connection
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	if session == nil {
		format := FormatJSON
		if query.Get("format") == "msgpack" {
			format = FormatMsgpack
		}
		session = newSession(s, format)
	}

	// Register connection
	missed, ok := session.attach(conn, lastNonce)
	if !ok {
		closeConn(conn, websocket.CloseGoingAway)
		return
	}
	if err := session.hello(); err != nil {
		logger.L.Error("failed creating hello packet", zap.Error(err))
		session.end()
		return
	}

	// Re-send missed packets
	for _, p := range missed {
		session.write(conn, p)
	}
}

// Dispatch decodes a published event and sends it to every session.
func (s *Server) Dispatch(payload []byte) error {
	op, body, err := events.Decode(payload)
	if err != nil {
		return err
	}
	packet, err := toPacket(op, body)
	if err != nil {
		return err
	}
	p, err := createPacket(s.getNextNonce(), packet)
	if err != nil {
		return err
	}

	s.mu.Lock()
	sessions := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.enqueue(p)
	}
	return nil
}

// Close ends every session.
func (s *Server) Close() {
	s.mu.Lock()
	sessions := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.end()
	}
}

// listen forwards events published on Redis until ctx is done.
func (s *Server) listen(ctx context.Context) error {
	pubsub, err := rdb.Subscribe(ctx)
	if err != nil {
		return err
	}
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			if err := s.Dispatch([]byte(msg.Payload)); err != nil {
				logger.L.Warn("failed dispatching event", zap.Error(err))
				if !errors.Is(err, ErrUnknownOp) {
					sentry.CaptureException(err)
				}
			}
		}
	}
}

// Run serves websockets on addr and forwards Redis events until ctx is done.
func (s *Server) Run(ctx context.Context, addr string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 2)
	go func() {
		errs <- s.listen(ctx)
	}()
	go func() {
		logger.L.Info("serving events", zap.String("address", addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errs <- err
			return
		}
		errs <- nil
	}()

	var err error
	select {
	case <-ctx.Done():
	case err = <-errs:
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if shutdownErr := httpServer.Shutdown(shutdownCtx); err == nil {
		err = shutdownErr
	}
	s.Close()
	return err
}
