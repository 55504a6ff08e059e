package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrCameraNotFound is returned when no camera has the requested ID
var ErrCameraNotFound = errors.New("camera not found")

// Store owns the registry file. Reads return copies; writes are saved
// atomically before the in-memory state changes.
type Store struct {
	path   string
	logger *zap.Logger

	mu       sync.RWMutex
	registry *Registry

	// fileMutex serialises disk writes
	fileMutex sync.Mutex
}

// Open loads the registry at path (a missing file yields defaults).
// An empty path selects GetConfigPath().
func Open(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if path == "" {
		p, err := GetConfigPath()
		if err != nil {
			return nil, fmt.Errorf("failed to get config path: %w", err)
		}
		path = p
	}

	registry, err := LoadRegistry(path)
	if err != nil {
		return nil, err
	}

	return &Store{
		path:     path,
		logger:   logger,
		registry: registry,
	}, nil
}

// NewMemoryStore returns a store for registry that saves to path.
func NewMemoryStore(registry *Registry, path string) *Store {
	if registry == nil {
		registry = NewRegistry()
	}
	registry.applyDefaults()
	return &Store{
		path:     path,
		logger:   zap.NewNop(),
		registry: registry,
	}
}

// SetLogger replaces the store's logger. Call it before Watch.
func (s *Store) SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s.logger = logger
}

// Path returns the registry file location
func (s *Store) Path() string {
	return s.path
}

// Registry returns a deep copy of the current registry
func (s *Store) Registry() *Registry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry.clone()
}

// Server returns a copy of the server settings
func (s *Store) Server() ServerConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return *s.registry.Server
}

// Discovery returns a copy of the discovery settings
func (s *Store) Discovery() DiscoveryConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return *s.registry.clone().Discovery
}

// Cameras returns the registered cameras
func (s *Store) Cameras(ctx context.Context) ([]Camera, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Camera{}, s.registry.Cameras...), nil
}

// Camera returns the camera with id
func (s *Store) Camera(id string) (Camera, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.registry.FindCamera(id)
	if i < 0 {
		return Camera{}, ErrCameraNotFound
	}
	return s.registry.Cameras[i], nil
}

// AddCamera validates c, assigns an ID when missing and saves it
func (s *Store) AddCamera(c Camera) (Camera, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.IP = strings.TrimSpace(c.IP)
	if err := c.Validate(); err != nil {
		return Camera{}, err
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.AddedAt.IsZero() {
		c.AddedAt = time.Now().UTC().Truncate(time.Second)
	}

	err := s.update(func(r *Registry) error {
		if r.FindCamera(c.ID) >= 0 {
			return &ValidationError{Field: "id", Message: fmt.Sprintf("camera %q already exists", c.ID)}
		}
		r.Cameras = append(r.Cameras, c)
		return nil
	})
	if err != nil {
		return Camera{}, err
	}

	s.logger.Info("camera added", zap.String("id", c.ID), zap.String("ip", c.IP))
	return c, nil
}

// UpdateCamera replaces the camera with id. An empty password keeps the
// stored one so clients never need to read passwords back.
func (s *Store) UpdateCamera(id string, c Camera) (Camera, error) {
	c.ID = id
	c.Name = strings.TrimSpace(c.Name)
	c.IP = strings.TrimSpace(c.IP)
	if err := c.Validate(); err != nil {
		return Camera{}, err
	}

	err := s.update(func(r *Registry) error {
		i := r.FindCamera(id)
		if i < 0 {
			return ErrCameraNotFound
		}
		if c.Password == "" {
			c.Password = r.Cameras[i].Password
		}
		c.AddedAt = r.Cameras[i].AddedAt
		r.Cameras[i] = c
		return nil
	})
	if err != nil {
		return Camera{}, err
	}

	s.logger.Info("camera updated", zap.String("id", id))
	return c, nil
}

// RemoveCamera deletes the camera with id
func (s *Store) RemoveCamera(id string) error {
	err := s.update(func(r *Registry) error {
		i := r.FindCamera(id)
		if i < 0 {
			return ErrCameraNotFound
		}
		r.Cameras = append(r.Cameras[:i], r.Cameras[i+1:]...)
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("camera removed", zap.String("id", id))
	return nil
}

// update applies fn to a copy, saves the copy, then swaps it in
func (s *Store) update(fn func(*Registry) error) error {
	s.fileMutex.Lock()
	defer s.fileMutex.Unlock()

	next := s.Registry()
	if err := fn(next); err != nil {
		return err
	}

	if s.path != "" {
		if err := SaveRegistry(next, s.path); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.registry = next
	s.mu.Unlock()
	return nil
}

// ErrConfigMissing is returned by Reload when the file has been moved or
// deleted. The current registry stays in place.
var ErrConfigMissing = errors.New("config file is missing")

// Reload re-reads the registry file, discarding in-memory state.
// A file that is missing or fails to parse leaves the current registry in
// place.
func (s *Store) Reload() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrConfigMissing, s.path)
	}
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	registry, err := ParseRegistry(data)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.registry = registry
	s.mu.Unlock()
	return nil
}

// Watch reloads the registry when the file changes on disk, until ctx is
// done. The directory is watched so atomic renames are seen.
func (s *Store) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch config directory %s: %w", dir, err)
	}

	s.logger.Info("watching config file", zap.String("path", s.path))

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(s.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if err := s.Reload(); err != nil {
				s.logger.Warn("config reload failed, keeping previous config",
					zap.String("path", s.path),
					zap.Error(err),
				)
				continue
			}
			s.logger.Info("config reloaded", zap.String("path", s.path), zap.String("op", event.Op.String()))

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("config watcher error", zap.Error(err))
		}
	}
}
