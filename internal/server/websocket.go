package server

import (
	"context"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/marceloreis098/CamHome/internal/config"
	"github.com/marceloreis098/CamHome/internal/discovery"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Maximum message size allowed from peer
	maxMessageSize = 512
)

// Stream event types, in the order a client receives them
const (
	EventStarted = "started"
	EventDevice  = "device"
	EventDone    = "done"
	EventError   = "error"
)

// StreamEvent is one message on /discover/stream
type StreamEvent struct {
	Type     string            `json:"type"`
	Subnet   string            `json:"subnet,omitempty"`
	Device   *discovery.Device `json:"device,omitempty"`
	Count    *int              `json:"count,omitempty"`
	Degraded *bool             `json:"degraded,omitempty"`
	Error    string            `json:"error,omitempty"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// handleDiscoverStream runs a scan and reports it over a WebSocket as
// started, one device event per device, then done. The subnet is validated
// before the upgrade so a bad value gets a plain 400.
// GET /discover/stream?subnet=<optional>
func (s *Server) handleDiscoverStream(w http.ResponseWriter, req *http.Request) {
	override, err := subnetOverride(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	responseHeader := http.Header{}
	if id := w.Header().Get(RequestIDHeader); id != "" {
		responseHeader.Set(RequestIDHeader, id)
	}

	conn, err := upgrader.Upgrade(w, req, responseHeader)
	if err != nil {
		// Upgrade already replied with an HTTP error
		s.logger.Debug("WebSocket upgrade failed", zap.String("remote_addr", req.RemoteAddr), zap.Error(err))
		return
	}
	defer func() { _ = conn.Close() }()

	s.logger.Debug("WebSocket stream opened", zap.String("remote_addr", req.RemoteAddr))

	ctx, cancel := context.WithCancel(req.Context())
	defer cancel()

	// The client never sends data; reading surfaces its close frame
	conn.SetReadLimit(maxMessageSize)
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	stream := &eventWriter{conn: conn, remoteAddr: req.RemoteAddr, logger: s.logger}

	if !stream.send(StreamEvent{Type: EventStarted, Subnet: s.resolveSubnet(override)}) {
		return
	}

	report := s.scanner.Scan(ctx, override)
	if ctx.Err() != nil {
		s.logger.Debug("WebSocket client left before the scan finished", zap.String("remote_addr", req.RemoteAddr))
		return
	}

	cameras, err := s.cameras.Cameras(ctx)
	if err != nil {
		s.logger.Error("failed to load registered cameras", zap.Error(err))
		stream.send(StreamEvent{Type: EventError, Error: "camera registry unavailable: " + err.Error()})
		stream.close(websocket.CloseInternalServerErr, "registry unavailable")
		return
	}
	config.MarkRegistered(report.Devices, cameras)

	for i := range report.Devices {
		if !stream.send(StreamEvent{Type: EventDevice, Device: &report.Devices[i]}) {
			return
		}
	}

	count := len(report.Devices)
	degraded := report.Degraded
	if !stream.send(StreamEvent{Type: EventDone, Subnet: report.Subnet, Count: &count, Degraded: &degraded}) {
		return
	}
	stream.close(websocket.CloseNormalClosure, "")
}

// resolveSubnet reports the subnet a scan will use, when the scanner can tell
func (s *Server) resolveSubnet(override string) string {
	if r, ok := s.scanner.(interface{ ResolveSubnet(string) string }); ok {
		return r.ResolveSubnet(override)
	}
	return override
}

// eventWriter writes JSON events with a deadline per message
type eventWriter struct {
	conn       *websocket.Conn
	remoteAddr string
	logger     *zap.Logger
}

func (e *eventWriter) send(event StreamEvent) bool {
	data, err := json.Marshal(event)
	if err != nil {
		e.logger.Error("failed to encode stream event", zap.String("event", event.Type), zap.Error(err))
		return false
	}

	_ = e.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := e.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		e.logger.Debug("WebSocket write failed",
			zap.String("remote_addr", e.remoteAddr),
			zap.String("event", event.Type),
			zap.Error(err),
		)
		return false
	}
	return true
}

func (e *eventWriter) close(code int, text string) {
	msg := websocket.FormatCloseMessage(code, text)
	_ = e.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}
