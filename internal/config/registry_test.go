package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/marceloreis098/CamHome/internal/discovery"
)

func TestGetConfigDir(t *testing.T) {
	if runtime.GOOS == "linux" {
		t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-test")
	}

	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	if !strings.Contains(configDir, "camhome") {
		t.Errorf("GetConfigDir() = %v, should contain 'camhome'", configDir)
	}

	if runtime.GOOS == "linux" && configDir != filepath.Join("/tmp/xdg-test", "camhome") {
		t.Errorf("GetConfigDir() = %v, want XDG_CONFIG_HOME/camhome", configDir)
	}
}

func TestGetConfigPath(t *testing.T) {
	configPath, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}

	if filepath.Base(configPath) != "config.yaml" {
		t.Errorf("GetConfigPath() should end with 'config.yaml', got: %v", configPath)
	}
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()

	if reg.Version != 1 {
		t.Errorf("NewRegistry().Version = %v, want 1", reg.Version)
	}
	if reg.Server.Listen != ":3000" {
		t.Errorf("Server.Listen = %v, want :3000", reg.Server.Listen)
	}
	if reg.Server.SnapshotTimeout != 10 {
		t.Errorf("Server.SnapshotTimeout = %v, want 10", reg.Server.SnapshotTimeout)
	}
	if reg.Discovery.ProbePath != "nmap" {
		t.Errorf("Discovery.ProbePath = %v, want nmap", reg.Discovery.ProbePath)
	}
	if reg.Discovery.ProbeTimeout != 20 {
		t.Errorf("Discovery.ProbeTimeout = %v, want 20", reg.Discovery.ProbeTimeout)
	}
	if reg.Discovery.NeighborSource != "proc" {
		t.Errorf("Discovery.NeighborSource = %v, want proc", reg.Discovery.NeighborSource)
	}
	if reg.Cameras == nil {
		t.Error("NewRegistry().Cameras should be initialized")
	}
}

func TestParseRegistry(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr bool
		check   func(t *testing.T, r *Registry)
	}{
		{
			name: "partial file gets defaults",
			data: "version: 1\ndiscovery:\n  probe_timeout_seconds: 45\n  mdns: true\n",
			check: func(t *testing.T, r *Registry) {
				if r.Discovery.ProbeTimeout != 45 {
					t.Errorf("ProbeTimeout = %v, want 45", r.Discovery.ProbeTimeout)
				}
				if !r.Discovery.MDNS {
					t.Error("MDNS should be true")
				}
				if r.Discovery.ProbePath != "nmap" {
					t.Errorf("ProbePath = %v, want default nmap", r.Discovery.ProbePath)
				}
				if r.Server == nil || r.Server.Listen != ":3000" {
					t.Errorf("Server defaults not applied: %+v", r.Server)
				}
			},
		},
		{
			name: "cameras",
			data: "version: 1\ncameras:\n  - id: cam1\n    name: Garage\n    ip: 192.168.1.64\n    snapshot_url: http://[IP]/snap.jpg\n",
			check: func(t *testing.T, r *Registry) {
				if len(r.Cameras) != 1 || r.Cameras[0].SnapshotURL != "http://[IP]/snap.jpg" {
					t.Errorf("Cameras = %+v", r.Cameras)
				}
			},
		},
		{
			name: "empty file",
			data: "",
			check: func(t *testing.T, r *Registry) {
				if r.Version != CurrentVersion {
					t.Errorf("Version = %v, want %v", r.Version, CurrentVersion)
				}
			},
		},
		{
			name:    "future version",
			data:    "version: 2\n",
			wantErr: true,
		},
		{
			name:    "invalid yaml",
			data:    "version: [1\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ParseRegistry([]byte(tt.data))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRegistry() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil && err == nil {
				tt.check(t, r)
			}
		})
	}
}

func TestRegistrySaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	reg := NewRegistry()
	reg.Discovery.MDNS = true
	reg.Discovery.Vendors = map[string]string{"aa:bb:cc": "Acme"}
	reg.Cameras = append(reg.Cameras, Camera{
		ID:          "cam1",
		Name:        "Garage",
		IP:          "192.168.1.64",
		SnapshotURL: "http://[IP]/ISAPI/Streaming/channels/101/picture",
		Username:    "admin",
		Password:    "secret",
		AddedAt:     time.Date(2026, 3, 2, 21, 0, 0, 0, time.UTC),
	})

	if err := SaveRegistry(reg, path); err != nil {
		t.Fatalf("SaveRegistry() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm() != 0600 {
		t.Errorf("config file mode = %v, want 0600", info.Mode().Perm())
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file should be renamed away")
	}

	data, _ := os.ReadFile(path)
	if !strings.HasPrefix(string(data), "# CamHome Configuration File") {
		t.Error("saved file should start with the header comment")
	}

	loaded, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry() error = %v", err)
	}

	if !loaded.Discovery.MDNS {
		t.Error("Discovery.MDNS not preserved")
	}
	if loaded.Discovery.Vendors["aa:bb:cc"] != "Acme" {
		t.Errorf("Discovery.Vendors = %v", loaded.Discovery.Vendors)
	}
	if len(loaded.Cameras) != 1 {
		t.Fatalf("loaded %d cameras, want 1", len(loaded.Cameras))
	}
	got := loaded.Cameras[0]
	if got.Name != "Garage" || got.Password != "secret" || !got.AddedAt.Equal(reg.Cameras[0].AddedAt) {
		t.Errorf("camera not preserved: %+v", got)
	}
}

func TestLoadRegistry_Missing(t *testing.T) {
	reg, err := LoadRegistry(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadRegistry() error = %v", err)
	}
	if reg.Version != CurrentVersion || len(reg.Cameras) != 0 {
		t.Errorf("LoadRegistry() = %+v, want defaults", reg)
	}
}

func TestCamera_Validate(t *testing.T) {
	tests := []struct {
		name      string
		camera    Camera
		wantField string
	}{
		{"valid", Camera{Name: "Garage", IP: "192.168.1.64"}, ""},
		{"missing name", Camera{Name: "  ", IP: "192.168.1.64"}, "name"},
		{"hostname instead of ip", Camera{Name: "Garage", IP: "cam.lan"}, "ip"},
		{"ipv6", Camera{Name: "Garage", IP: "fe80::1"}, "ip"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.camera.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			verr, ok := err.(*ValidationError)
			if !ok {
				t.Fatalf("Validate() error = %v, want *ValidationError", err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("Field = %v, want %v", verr.Field, tt.wantField)
			}
		})
	}
}

func TestCamera_Redacted(t *testing.T) {
	c := Camera{Name: "Garage", Username: "admin", Password: "secret"}
	r := c.Redacted()

	if r.Password != "" {
		t.Error("Redacted() should clear the password")
	}
	if c.Password != "secret" {
		t.Error("Redacted() must not modify the original")
	}
	if r.Username != "admin" {
		t.Error("Redacted() should keep the username")
	}
}

func TestRegistry_CameraByIP(t *testing.T) {
	reg := NewRegistry()
	reg.Cameras = []Camera{{ID: "a", IP: "192.168.1.50"}, {ID: "b", IP: "192.168.1.51"}}

	if c, ok := reg.CameraByIP("192.168.1.51"); !ok || c.ID != "b" {
		t.Errorf("CameraByIP() = %+v, %v", c, ok)
	}
	if _, ok := reg.CameraByIP("192.168.1.99"); ok {
		t.Error("CameraByIP() found a camera that is not registered")
	}
	if reg.FindCamera("b") != 1 || reg.FindCamera("z") != -1 {
		t.Error("FindCamera() returned wrong index")
	}
}

func BenchmarkParseRegistry(b *testing.B) {
	data := []byte("version: 1\ncameras:\n  - id: cam1\n    name: Garage\n    ip: 192.168.1.64\n")
	for i := 0; i < b.N; i++ {
		_, _ = ParseRegistry(data)
	}
}

func TestDiscoveryConfig_ScannerOptions(t *testing.T) {
	reg := NewRegistry()
	reg.Discovery.ProbeTimeout = 45
	reg.Discovery.ProbeFormat = "xml"
	reg.Discovery.Ports = []int{554}
	reg.Discovery.MDNS = true
	reg.Discovery.Vendors = map[string]string{"aa:bb:cc": "Acme"}

	opts := reg.Discovery.ScannerOptions()

	if opts.ProbeTimeout != 45*time.Second {
		t.Errorf("ProbeTimeout = %v, want 45s", opts.ProbeTimeout)
	}
	if opts.MDNSTimeout != 3*time.Second {
		t.Errorf("MDNSTimeout = %v, want 3s", opts.MDNSTimeout)
	}
	if opts.ProbeFormat != "xml" || !opts.MDNS {
		t.Errorf("ScannerOptions() = %+v", opts)
	}
	if len(opts.Ports) != 1 || opts.Ports[0] != 554 {
		t.Errorf("Ports = %v, want [554]", opts.Ports)
	}

	opts.Vendors["aa:bb:cc"] = "changed"
	if reg.Discovery.Vendors["aa:bb:cc"] != "Acme" {
		t.Error("ScannerOptions() should copy the vendor map")
	}
}

func TestMarkRegistered(t *testing.T) {
	devices := []discovery.Device{
		{Address: "192.168.1.10", AlreadyRegistered: true},
		{Address: "192.168.1.64"},
	}
	cameras := []Camera{{ID: "cam-1", IP: "192.168.1.64"}}

	MarkRegistered(devices, cameras)

	if devices[0].AlreadyRegistered {
		t.Error("MarkRegistered() should clear the flag for unregistered addresses")
	}
	if !devices[1].AlreadyRegistered {
		t.Error("MarkRegistered() should flag a registered address")
	}
}
