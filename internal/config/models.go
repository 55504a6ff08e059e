package config

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/marceloreis098/CamHome/internal/discovery"
)

// CurrentVersion is the registry file format version
const CurrentVersion = 1

// Registry represents the entire configuration file: server settings,
// discovery settings and the registered camera list.
type Registry struct {
	Version   int              `yaml:"version"`
	Server    *ServerConfig    `yaml:"server,omitempty"`
	Discovery *DiscoveryConfig `yaml:"discovery,omitempty"`
	Cameras   []Camera         `yaml:"cameras,omitempty"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Listen          string `yaml:"listen"`                   // Listen address (e.g., ":3000")
	StaticDir       string `yaml:"static_dir,omitempty"`     // Built dashboard UI, served with SPA fallback
	SnapshotTimeout int    `yaml:"snapshot_timeout_seconds"` // Camera snapshot proxy timeout
	LogLevel        string `yaml:"log_level,omitempty"`      // Overridden by --log-level and CAMHOME_LOG_LEVEL
}

// DiscoveryConfig holds network scan settings.
type DiscoveryConfig struct {
	ProbePath      string            `yaml:"probe_path"`            // nmap binary
	ProbeTimeout   int               `yaml:"probe_timeout_seconds"` // Hard limit per probe
	ProbeFormat    string            `yaml:"probe_format"`          // normal, grepable or xml
	Ports          []int             `yaml:"ports,omitempty"`       // TCP ports to probe
	NeighborSource string            `yaml:"neighbor_source"`       // proc or netlink
	ARPPath        string            `yaml:"arp_path,omitempty"`    // Override for /proc/net/arp
	MDNS           bool              `yaml:"mdns"`                  // Fill hostnames over mDNS
	MDNSTimeout    int               `yaml:"mdns_timeout_seconds"`  // mDNS browse window
	Vendors        map[string]string `yaml:"vendors,omitempty"`     // Extra OUI prefix -> manufacturer entries
}

// ScannerOptions converts the file settings for discovery.Build
func (d DiscoveryConfig) ScannerOptions() discovery.Options {
	vendors := make(map[string]string, len(d.Vendors))
	for k, v := range d.Vendors {
		vendors[k] = v
	}
	return discovery.Options{
		ProbePath:      d.ProbePath,
		ProbeTimeout:   time.Duration(d.ProbeTimeout) * time.Second,
		ProbeFormat:    d.ProbeFormat,
		Ports:          append([]int(nil), d.Ports...),
		NeighborSource: d.NeighborSource,
		ARPPath:        d.ARPPath,
		MDNS:           d.MDNS,
		MDNSTimeout:    time.Duration(d.MDNSTimeout) * time.Second,
		Vendors:        vendors,
	}
}

// Camera is a registered camera.
type Camera struct {
	ID           string    `yaml:"id" json:"id"`
	Name         string    `yaml:"name" json:"name"`
	IP           string    `yaml:"ip" json:"ip"`
	Manufacturer string    `yaml:"manufacturer,omitempty" json:"manufacturer,omitempty"`
	Model        string    `yaml:"model,omitempty" json:"model,omitempty"`
	SnapshotURL  string    `yaml:"snapshot_url,omitempty" json:"snapshotUrl,omitempty"`
	StreamURL    string    `yaml:"stream_url,omitempty" json:"streamUrl,omitempty"`
	Username     string    `yaml:"username,omitempty" json:"username,omitempty"`
	Password     string    `yaml:"password,omitempty" json:"password,omitempty"`
	HTTPS        bool      `yaml:"https,omitempty" json:"https,omitempty"`
	AddedAt      time.Time `yaml:"added_at,omitempty" json:"addedAt,omitempty"`
}

// Redacted returns a copy safe to send to clients
func (c Camera) Redacted() Camera {
	c.Password = ""
	return c
}

// ValidationError describes an invalid camera field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Validate checks the fields every camera needs
func (c *Camera) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return &ValidationError{Field: "name", Message: "must not be empty"}
	}
	ip := net.ParseIP(strings.TrimSpace(c.IP))
	if ip == nil || ip.To4() == nil {
		return &ValidationError{Field: "ip", Message: fmt.Sprintf("%q is not an IPv4 address", c.IP)}
	}
	return nil
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	r := &Registry{Version: CurrentVersion}
	r.applyDefaults()
	return r
}

// applyDefaults fills missing sections and zero values
func (r *Registry) applyDefaults() {
	if r.Server == nil {
		r.Server = &ServerConfig{}
	}
	if r.Server.Listen == "" {
		r.Server.Listen = ":3000"
	}
	if r.Server.SnapshotTimeout <= 0 {
		r.Server.SnapshotTimeout = 10
	}

	if r.Discovery == nil {
		r.Discovery = &DiscoveryConfig{}
	}
	if r.Discovery.ProbePath == "" {
		r.Discovery.ProbePath = "nmap"
	}
	if r.Discovery.ProbeTimeout <= 0 {
		r.Discovery.ProbeTimeout = 20
	}
	if r.Discovery.ProbeFormat == "" {
		r.Discovery.ProbeFormat = "normal"
	}
	if r.Discovery.NeighborSource == "" {
		r.Discovery.NeighborSource = "proc"
	}
	if r.Discovery.MDNSTimeout <= 0 {
		r.Discovery.MDNSTimeout = 3
	}

	if r.Cameras == nil {
		r.Cameras = []Camera{}
	}
}

// FindCamera returns the index of the camera with id, or -1
func (r *Registry) FindCamera(id string) int {
	for i := range r.Cameras {
		if r.Cameras[i].ID == id {
			return i
		}
	}
	return -1
}

// CameraByIP returns the first camera registered at ip
func (r *Registry) CameraByIP(ip string) (Camera, bool) {
	for _, c := range r.Cameras {
		if c.IP == ip {
			return c, true
		}
	}
	return Camera{}, false
}

// MarkRegistered sets AlreadyRegistered on devices whose address matches
// a registered camera
func MarkRegistered(devices []discovery.Device, cameras []Camera) {
	registered := make(map[string]bool, len(cameras))
	for _, c := range cameras {
		registered[c.IP] = true
	}
	for i := range devices {
		devices[i].AlreadyRegistered = registered[devices[i].Address]
	}
}

// clone returns a deep copy
func (r *Registry) clone() *Registry {
	out := &Registry{Version: r.Version}
	if r.Server != nil {
		s := *r.Server
		out.Server = &s
	}
	if r.Discovery != nil {
		d := *r.Discovery
		d.Ports = append([]int(nil), r.Discovery.Ports...)
		if r.Discovery.Vendors != nil {
			d.Vendors = make(map[string]string, len(r.Discovery.Vendors))
			for k, v := range r.Discovery.Vendors {
				d.Vendors[k] = v
			}
		}
		out.Discovery = &d
	}
	out.Cameras = append([]Camera{}, r.Cameras...)
	return out
}
