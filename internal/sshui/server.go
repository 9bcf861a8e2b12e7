package sshui

import (
	"context"
	"io"
	"net"
	"sync"

	gliderssh "github.com/gliderlabs/ssh"
	"pkt.systems/pslog"

	"github.com/dshills/shellpane/internal/config"
)

// Server exposes consoles over SSH.
type Server struct {
	logger   pslog.Logger
	listener net.Listener

	// mu guards the reloadable settings. Each new session snapshots them,
	// so a reload reaches future sessions while running ones keep theirs.
	mu      sync.Mutex
	cfg     config.Config
	palette config.Palette
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger pslog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithListener serves on an existing listener instead of the configured
// address. Tests use this with an ephemeral port.
func WithListener(ln net.Listener) Option {
	return func(s *Server) { s.listener = ln }
}

// New builds a server from cfg.
func New(cfg config.Config, opts ...Option) (*Server, error) {
	palette, err := cfg.Theme.Palette()
	if err != nil {
		return nil, err
	}
	s := &Server{
		cfg:     cfg,
		palette: palette,
		logger:  pslog.Ctx(context.Background()),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ApplyConfig adopts the reloadable settings from a fresh configuration
// for sessions opened after the call.
func (s *Server) ApplyConfig(cfg config.Config) {
	palette, err := cfg.Theme.Palette()
	if err != nil {
		s.logger.Warn("theme reload rejected", "err", err)
		return
	}
	s.mu.Lock()
	s.cfg.Prompt = cfg.Prompt
	s.cfg.Theme = cfg.Theme
	s.palette = palette
	s.mu.Unlock()
}

func (s *Server) snapshot() (config.Config, config.Palette) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg, s.palette
}

// ListenAndServe starts the SSH server and shuts down on context
// cancellation.
func (s *Server) ListenAndServe(ctx context.Context) error {
	signer, err := EnsureHostKey(s.cfg.SSH.HostKey)
	if err != nil {
		return err
	}

	server := &gliderssh.Server{
		Addr:    s.cfg.SSH.Addr,
		Handler: s.handleSession,
	}
	server.AddHostKey(signer)

	errCh := make(chan error, 1)
	go func() {
		if s.listener != nil {
			errCh <- server.Serve(s.listener)
			return
		}
		errCh <- server.ListenAndServe()
	}()

	s.logger.Info("ssh server listening", "addr", s.cfg.SSH.Addr)

	select {
	case <-ctx.Done():
		_ = server.Close()
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleSession(sess gliderssh.Session) {
	logger := s.logger.With("remote", sess.RemoteAddr().String(), "user", sess.User())

	pty, winCh, ok := sess.Pty()
	if !ok {
		_, _ = io.WriteString(sess, "pty required\n")
		_ = sess.Exit(1)
		return
	}
	logger.Info("session opened", "term", pty.Term)

	cfg, palette := s.snapshot()
	ui, err := newSession(sess, cfg, palette, logger)
	if err != nil {
		logger.Warn("session setup failed", "err", err)
		_ = sess.Exit(1)
		return
	}
	ui.setSize(pty.Window.Width, pty.Window.Height)

	if err := ui.run(sess.Context(), winCh); err != nil {
		logger.Warn("session ended", "err", err)
		_ = sess.Exit(1)
		return
	}
	logger.Info("session closed")
	_ = sess.Exit(0)
}
