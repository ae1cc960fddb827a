package crdtp

import (
	"bufio"
	"context"
	"log/slog"
	"net"
	"sync"
)

// NewServer creates a protocol server that listens on the specified network
// and address. Each accepted connection gets its own NetChannel and Session
// wired with the server's registered commands.
//
// Parameters:
//   - network: The network to listen on (e.g., "tcp", "unix")
//   - addr: The address to listen on (e.g., ":9229", "/tmp/socket")
//   - _log: Optional logger (defaults to slog.Default() if nil)
//
// Returns:
//   - *Server: An initialized server ready to handle sessions
//   - error: Any error encountered during listener setup
func NewServer(network, addr string, _log *slog.Logger) (*Server, error) {
	if _log == nil {
		_log = slog.Default()
	}

	l, err := net.Listen(network, addr)
	if err != nil {
		return nil, err
	}

	return NewServerConnection(l, _log.With(slog.String("network", network), slog.String("addr", addr))), nil
}

// NewServerConnection creates a protocol server on the provided net.Listener
// and starts the accept loop.
//
// Parameters:
//   - l: The network listener that will accept incoming connections
//   - _log: Optional logger (defaults to slog.Default() if nil)
func NewServerConnection(l net.Listener, _log *slog.Logger) *Server {
	if _log == nil {
		_log = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	srv := Server{
		commands: make(map[string]Handler),
		listener: l,
		log:      _log,
		ctx:      ctx,
		cancel:   cancel,
	}

	go serve(&srv)
	return &srv
}

// Server owns the listener and the command registrations shared by every
// accepted session.
type Server struct {
	commands map[string]Handler // commands installed into each new session's dispatcher
	mu       sync.RWMutex       // mu locks registrations and Close
	log      *slog.Logger
	listener net.Listener
	ctx      context.Context
	cancel   context.CancelFunc
}

func serve(srv *Server) {
	defer srv.cancel()
	defer srv.log.Info("server stopped")
	for {
		conn, err := srv.listener.Accept()
		if err != nil {
			srv.log.Error("failed to accept connection", slog.String("error", err.Error()))
			return
		}
		srv.log.Info("new connection accepted", slog.Any("remote", conn.RemoteAddr()))

		log := srv.log.With(slog.String("remote", conn.RemoteAddr().String()))
		channel := NewNetChannel(conn, log)
		session := NewSession(channel, log)
		srv.mu.RLock()
		for method, handler := range srv.commands {
			session.Dispatcher().Handle(method, handler)
		}
		srv.mu.RUnlock()

		go pump(srv, conn, channel, session)
	}
}

// pump reads newline-delimited frames off the connection and feeds them to
// the session until the connection breaks or the server shuts down.
func pump(srv *Server, conn net.Conn, channel *NetChannel, session *Session) {
	done := make(chan struct{})
	defer close(done)
	defer func() {
		if err := channel.Close(); err != nil {
			channel.log.Warn("failed to close connection", slog.String("error", err.Error()))
		}
	}()

	go func() {
		select {
		case <-srv.ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		session.DispatchProtocolMessage(line)
	}
	if err := scanner.Err(); err != nil {
		channel.log.Debug("connection read ended", slog.String("error", err.Error()))
	}
}

// HandleCommand registers a typed command function (see NewCommand) under
// method for all future sessions. Methods must be registered before the
// client connects; registrations do not propagate to live sessions.
func (s *Server) HandleCommand(method string, fn any) error {
	h, err := NewCommand(fn)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commands[method] = h
	return nil
}

// Handle registers a raw Handler under method for all future sessions.
func (s *Server) Handle(method string, handler Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commands[method] = handler
}

// Close stops the accept loop and closes the listener.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancel()

	if err := s.listener.Close(); err != nil {
		s.log.Warn("failed to close listener", slog.String("error", err.Error()))
	}

	return nil
}
