package control

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/desyatkoff/hydock/internal/dispatch"
	"github.com/desyatkoff/hydock/internal/dock"
	"github.com/desyatkoff/hydock/internal/engine"
	"github.com/desyatkoff/hydock/internal/metrics"
	"github.com/desyatkoff/hydock/internal/util"
)

// Backend is the running dock as seen by the control socket. *engine.Engine
// implements it.
type Backend interface {
	Entries() []dock.Entry
	Status() engine.Status
	History() []engine.TickRecord
	Metrics() metrics.Snapshot
	Focus(ctx context.Context, class string) dispatch.Outcome
	Close(ctx context.Context, class string) dispatch.Outcome
	Launch() error
	RequestRefresh()
}

// Server hosts the hydock control socket and serves requests.
type Server struct {
	backend    Backend
	logger     *util.Logger
	socketPath string

	mu       sync.Mutex
	listener net.Listener
}

// NewServer creates a control server listening on path, or on
// DefaultSocketPath when path is empty.
func NewServer(backend Backend, logger *util.Logger, path string) (*Server, error) {
	if path == "" {
		var err error
		path, err = DefaultSocketPath()
		if err != nil {
			return nil, err
		}
	}
	return &Server{
		backend:    backend,
		logger:     logger,
		socketPath: path,
	}, nil
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Serve listens on the control socket until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	if err := s.prepareSocket(); err != nil {
		return err
	}
	s.logger.Infof("control server listening on %s", s.socketPath)
	defer s.cleanup()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		if s.listener != nil {
			s.listener.Close()
		}
		s.mu.Unlock()
	}()

	for {
		conn, err := s.accept(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			if ctx.Err() != nil {
				return nil
			}
			s.logger.Errorf("control accept error: %v", err)
			continue
		}
		go s.handle(ctx, conn)
	}
}

func (s *Server) accept(ctx context.Context) (net.Conn, error) {
	s.mu.Lock()
	listener := s.listener
	s.mu.Unlock()
	if listener == nil {
		return nil, context.Canceled
	}
	conn, err := listener.Accept()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	return conn, nil
}

func (s *Server) prepareSocket() error {
	dir := filepath.Dir(s.socketPath)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create control dir: %w", err)
	}
	if err := os.Remove(s.socketPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove stale socket: %w", err)
	}
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("listen on control socket: %w", err)
	}
	if err := os.Chmod(s.socketPath, 0o600); err != nil {
		listener.Close()
		return fmt.Errorf("chmod control socket: %w", err)
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()
	return nil
}

func (s *Server) cleanup() {
	s.mu.Lock()
	listener := s.listener
	s.listener = nil
	s.mu.Unlock()
	if listener != nil {
		listener.Close()
	}
	if err := os.Remove(s.socketPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warnf("remove control socket: %v", err)
	}
}

func (s *Server) handle(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	dec := json.NewDecoder(conn)
	var req Request
	if err := dec.Decode(&req); err != nil {
		s.writeError(conn, fmt.Errorf("decode request: %w", err))
		return
	}
	s.logger.Debugf("control request %s", req.Action)
	switch req.Action {
	case ActionEntries:
		s.writeOK(conn, EntriesResult{Entries: s.backend.Entries()})
	case ActionVisibility:
		s.writeOK(conn, s.backend.Status())
	case ActionFocus, ActionClose:
		s.handleDispatch(ctx, conn, req)
	case ActionLaunch:
		s.handleLaunch(conn)
	case ActionReload:
		s.backend.RequestRefresh()
		s.writeOK(conn, nil)
	case ActionMetrics:
		s.writeOK(conn, s.backend.Metrics())
	case ActionHistory:
		s.writeOK(conn, HistoryResult{Ticks: s.backend.History()})
	default:
		s.writeError(conn, fmt.Errorf("unknown action %q", req.Action))
	}
}

func (s *Server) handleDispatch(ctx context.Context, conn net.Conn, req Request) {
	class, _ := req.Params["class"].(string)
	if strings.TrimSpace(class) == "" {
		s.writeError(conn, errors.New("missing application class"))
		return
	}
	var out dispatch.Outcome
	if req.Action == ActionClose {
		out = s.backend.Close(ctx, class)
	} else {
		out = s.backend.Focus(ctx, class)
	}
	res := dispatchResult(out)
	if out.Err != nil {
		s.writeError(conn, fmt.Errorf("%s %s: %w", req.Action, res.Class, out.Err))
		return
	}
	s.writeOK(conn, res)
}

func (s *Server) handleLaunch(conn net.Conn) {
	if err := s.backend.Launch(); err != nil {
		s.writeError(conn, err)
		return
	}
	s.writeOK(conn, nil)
}

func (s *Server) writeOK(conn net.Conn, data any) {
	resp := Response{Status: StatusOK}
	if data != nil {
		resp.Data = data
	}
	_ = json.NewEncoder(conn).Encode(resp)
}

func (s *Server) writeError(conn net.Conn, err error) {
	resp := Response{Status: StatusError}
	if err != nil {
		resp.Error = err.Error()
	}
	_ = json.NewEncoder(conn).Encode(resp)
}

var _ Backend = (*engine.Engine)(nil)
