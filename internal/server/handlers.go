package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/marceloreis098/CamHome/internal/config"
	"github.com/marceloreis098/CamHome/internal/discovery"
	"github.com/marceloreis098/CamHome/internal/logging"
	"github.com/marceloreis098/CamHome/internal/version"
	"go.uber.org/zap"
)

// maxRequestBody bounds camera create/update bodies
const maxRequestBody = 64 * 1024

// healthResponse is the body of GET /healthz
type healthResponse struct {
	Status  string       `json:"status"`
	Version version.Info `json:"version"`
}

// subnetOverride validates the optional ?subnet= query parameter.
// An absent or empty value means auto-detect.
func subnetOverride(req *http.Request) (string, error) {
	raw := req.URL.Query().Get("subnet")
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	return discovery.ParseSubnet(raw)
}

// handleDiscover runs one scan and returns the device list.
// GET /discover?subnet=<optional>
func (s *Server) handleDiscover(w http.ResponseWriter, req *http.Request) {
	override, err := subnetOverride(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	report := s.scanner.Scan(req.Context(), override)

	cameras, err := s.cameras.Cameras(req.Context())
	if err != nil {
		s.logger.Error("failed to load registered cameras", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, fmt.Sprintf("camera registry unavailable: %v", err))
		return
	}

	devices := report.Devices
	if devices == nil {
		devices = []discovery.Device{}
	}
	config.MarkRegistered(devices, cameras)

	writeJSON(w, http.StatusOK, devices)
}

// handleListCameras returns every camera without passwords
func (s *Server) handleListCameras(w http.ResponseWriter, req *http.Request) {
	cameras, err := s.cameras.Cameras(req.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, fmt.Sprintf("camera registry unavailable: %v", err))
		return
	}

	out := make([]config.Camera, 0, len(cameras))
	for _, c := range cameras {
		out = append(out, c.Redacted())
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetCamera(w http.ResponseWriter, req *http.Request) {
	camera, err := s.cameras.Camera(req.PathValue("id"))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, camera.Redacted())
}

func (s *Server) handleAddCamera(w http.ResponseWriter, req *http.Request) {
	var camera config.Camera
	if err := decodeBody(w, req, &camera); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	added, err := s.cameras.AddCamera(camera)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, added.Redacted())
}

func (s *Server) handleUpdateCamera(w http.ResponseWriter, req *http.Request) {
	var camera config.Camera
	if err := decodeBody(w, req, &camera); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := s.cameras.UpdateCamera(req.PathValue("id"), camera)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated.Redacted())
}

func (s *Server) handleRemoveCamera(w http.ResponseWriter, req *http.Request) {
	if err := s.cameras.RemoveCamera(req.PathValue("id")); err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decodeBody reads a bounded JSON body into v
func decodeBody(w http.ResponseWriter, req *http.Request, v any) error {
	body := http.MaxBytesReader(w, req.Body, maxRequestBody)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// writeStoreError maps registry errors to status codes
func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	var verr *config.ValidationError
	switch {
	case errors.Is(err, config.ErrCameraNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("camera registry operation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// snapshotURL returns the upstream URL for camera with placeholders filled
func (s *Server) snapshotURL(camera config.Camera) string {
	template := camera.SnapshotURL
	if template == "" {
		template = s.config.Templates.Lookup(camera.Manufacturer)
	}
	target := discovery.ExpandSnapshotURL(template, camera.IP, camera.Username, camera.Password)
	if camera.HTTPS && strings.HasPrefix(target, "http://") {
		target = "https://" + strings.TrimPrefix(target, "http://")
	}
	return target
}

// handleSnapshot proxies one still image from the camera.
// GET /api/cameras/{id}/snapshot
func (s *Server) handleSnapshot(w http.ResponseWriter, req *http.Request) {
	camera, err := s.cameras.Camera(req.PathValue("id"))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	target := s.snapshotURL(camera)
	upstream, err := http.NewRequestWithContext(req.Context(), http.MethodGet, target, nil)
	if err != nil {
		writeError(w, http.StatusBadGateway, fmt.Sprintf("invalid snapshot URL: %v", err))
		return
	}
	upstream.Header.Set("User-Agent", version.UserAgent())
	if camera.Username != "" {
		upstream.SetBasicAuth(camera.Username, camera.Password)
	}

	s.logger.Debug("fetching camera snapshot",
		zap.String("camera_id", camera.ID),
		zap.String("ip", camera.IP),
		zap.String("username", camera.Username),
		zap.String("password", logging.MaskSecret(camera.Password)),
	)

	resp, err := s.snapshot.Do(upstream)
	if err != nil {
		s.logger.Warn("snapshot fetch failed", zap.String("camera_id", camera.ID), zap.Error(err))
		writeError(w, http.StatusBadGateway, fmt.Sprintf("camera unreachable: %v", err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		writeError(w, http.StatusBadGateway, fmt.Sprintf("camera returned %s", resp.Status))
		return
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, resp.Body); err != nil {
		s.logger.Debug("snapshot copy interrupted", zap.String("camera_id", camera.ID), zap.Error(err))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Version: version.Current()})
}

// staticHandler serves the dashboard with fallback to index.html for
// client-side routes. Without a static directory every unknown path is 404.
func (s *Server) staticHandler() http.Handler {
	dir := s.config.StaticDir
	if dir == "" {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			writeError(w, http.StatusNotFound, "not found")
		})
	}

	files := http.FileServer(http.Dir(dir))
	index := filepath.Join(dir, "index.html")

	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if strings.HasPrefix(req.URL.Path, "/api/") {
			writeError(w, http.StatusNotFound, "not found")
			return
		}

		clean := filepath.Join(dir, filepath.FromSlash(filepath.Clean("/"+req.URL.Path)))
		if info, err := os.Stat(clean); err == nil && !info.IsDir() {
			files.ServeHTTP(w, req)
			return
		}
		if req.URL.Path == "/" {
			files.ServeHTTP(w, req)
			return
		}
		http.ServeFile(w, req, index)
	})
}
