package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/marceloreis098/CamHome/internal/config"
	"github.com/marceloreis098/CamHome/internal/discovery"
	"go.uber.org/zap"
)

// DefaultSnapshotTimeout bounds one upstream snapshot fetch
const DefaultSnapshotTimeout = 10 * time.Second

// shutdownTimeout bounds graceful shutdown after a signal
const shutdownTimeout = 10 * time.Second

// Discoverer runs one network scan. *discovery.Scanner implements it.
type Discoverer interface {
	Scan(ctx context.Context, override string) *discovery.Report
}

// CameraLister returns the registered cameras
type CameraLister interface {
	Cameras(ctx context.Context) ([]config.Camera, error)
}

// CameraStore is the registry the camera API edits. *config.Store implements it.
type CameraStore interface {
	CameraLister
	Camera(id string) (config.Camera, error)
	AddCamera(c config.Camera) (config.Camera, error)
	UpdateCamera(id string, c config.Camera) (config.Camera, error)
	RemoveCamera(id string) error
}

// Config holds server configuration
type Config struct {
	ListenAddr      string
	StaticDir       string
	SnapshotTimeout time.Duration
	// Templates fills in snapshot URLs for cameras registered without one
	Templates discovery.SnapshotTemplates
}

// DefaultConfig returns default server configuration
func DefaultConfig() *Config {
	return &Config{
		ListenAddr:      ":3000",
		SnapshotTimeout: DefaultSnapshotTimeout,
		Templates:       discovery.DefaultSnapshotTemplates(),
	}
}

// Server is the CamHome HTTP API
type Server struct {
	config  *Config
	scanner Discoverer
	cameras CameraStore
	logger  *zap.Logger

	handler  http.Handler
	snapshot *http.Client

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
}

// New creates a server. scanner and cameras are required.
func New(config *Config, scanner Discoverer, cameras CameraStore, logger *zap.Logger) (*Server, error) {
	if scanner == nil {
		return nil, fmt.Errorf("scanner is required")
	}
	if cameras == nil {
		return nil, fmt.Errorf("camera store is required")
	}
	if config == nil {
		config = DefaultConfig()
	}
	if config.SnapshotTimeout <= 0 {
		config.SnapshotTimeout = DefaultSnapshotTimeout
	}
	if config.Templates == nil {
		config.Templates = discovery.DefaultSnapshotTemplates()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		config:   config,
		scanner:  scanner,
		cameras:  cameras,
		logger:   logger,
		snapshot: &http.Client{Timeout: config.SnapshotTimeout},
	}
	s.handler = s.withRequestLogging(s.routes())

	return s, nil
}

// routes builds the request multiplexer
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /discover", s.handleDiscover)
	mux.HandleFunc("GET /api/scan", s.handleDiscover)
	mux.HandleFunc("GET /discover/stream", s.handleDiscoverStream)

	mux.HandleFunc("GET /api/cameras", s.handleListCameras)
	mux.HandleFunc("POST /api/cameras", s.handleAddCamera)
	mux.HandleFunc("GET /api/cameras/{id}", s.handleGetCamera)
	mux.HandleFunc("PUT /api/cameras/{id}", s.handleUpdateCamera)
	mux.HandleFunc("DELETE /api/cameras/{id}", s.handleRemoveCamera)
	mux.HandleFunc("GET /api/cameras/{id}/snapshot", s.handleSnapshot)

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /", s.staticHandler())

	return mux
}

// Handler returns the HTTP handler with middleware applied
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Listen binds the listen address. Run calls it when needed.
func (s *Server) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return nil
	}

	listener, err := net.Listen("tcp", s.config.ListenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.ListenAddr, err)
	}
	s.listener = listener
	s.server = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		// Scans run up to the probe timeout and streams stay open longer
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}
	return nil
}

// Addr returns the bound address, or the configured one before Listen
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.config.ListenAddr
}

// Run serves until ctx is done, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}

	s.mu.Lock()
	srv, listener := s.server, s.listener
	s.mu.Unlock()

	s.logger.Info("CamHome server listening",
		zap.String("addr", listener.Addr().String()),
		zap.String("static_dir", s.config.StaticDir),
	)

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
			return
		}
		errChan <- nil
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errChan
}

// Start serves until SIGINT or SIGTERM
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.Run(ctx)
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.server
	s.mu.Unlock()

	if srv == nil {
		return nil
	}

	s.logger.Info("Shutting down server...")
	if err := srv.Shutdown(ctx); err != nil {
		s.logger.Warn("Shutdown timeout, some connections may not have closed cleanly", zap.Error(err))
		return err
	}
	s.logger.Info("Server shutdown complete")
	return nil
}
