package discovery

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

type fakeNeighbors struct {
	entries map[string]string
	err     error
}

func (f *fakeNeighbors) Neighbors(ctx context.Context) (map[string]string, error) {
	return f.entries, f.err
}

type fakeHostnames map[string]string

func (f fakeHostnames) Hostnames(ctx context.Context) (map[string]string, error) {
	return f, nil
}

func homeResolver() *SubnetResolver {
	return NewSubnetResolver(staticAddrs(ipnet("192.168.1.20", net.IPv4Mask(255, 255, 255, 0))))
}

func newTestScanner(prober Prober, neighbors map[string]string) *Scanner {
	return NewScanner(ScannerConfig{
		Resolver:  homeResolver(),
		Neighbors: &fakeNeighbors{entries: neighbors},
		Prober:    prober,
	}, zap.NewNop())
}

func failingProber(err error) Prober {
	return ProberFunc(func(ctx context.Context, subnet string) ([]ProbeHost, error) {
		return nil, err
	})
}

func staticProber(hosts ...ProbeHost) Prober {
	return ProberFunc(func(ctx context.Context, subnet string) ([]ProbeHost, error) {
		return hosts, nil
	})
}

func findDevice(t *testing.T, devices []Device, addr string) Device {
	t.Helper()
	for _, d := range devices {
		if d.Address == addr {
			return d
		}
	}
	t.Fatalf("device %s not found in %+v", addr, devices)
	return Device{}
}

func assertUniqueAddresses(t *testing.T, devices []Device) {
	t.Helper()
	seen := make(map[string]bool)
	for _, d := range devices {
		if seen[d.Address] {
			t.Errorf("duplicate address %s in result", d.Address)
		}
		seen[d.Address] = true
		if d.Manufacturer == "" {
			t.Errorf("device %s has empty manufacturer", d.Address)
		}
		if net.ParseIP(d.Address).To4() == nil {
			t.Errorf("device address %q is not IPv4", d.Address)
		}
	}
}

func TestScanner_ProbeUnavailable(t *testing.T) {
	neighbors := map[string]string{
		"192.168.1.64": "28:57:be:aa:bb:cc",
		"192.168.1.1":  "a4:2b:b0:11:22:33",
	}
	probeErr := &ProbeExecutionError{Tool: "nmap", ExitCode: -1, Err: errors.New("executable file not found")}
	scanner := newTestScanner(failingProber(probeErr), neighbors)

	report := scanner.Scan(context.Background(), "")

	if !report.Degraded {
		t.Error("report should be degraded when the probe fails")
	}
	if !errors.Is(report.ProbeErr, probeErr) {
		t.Errorf("ProbeErr = %v, want %v", report.ProbeErr, probeErr)
	}
	if len(report.Devices) != 2 {
		t.Fatalf("got %d devices, want 2", len(report.Devices))
	}
	if report.Devices[0].Address != "192.168.1.1" {
		t.Errorf("devices not sorted: first = %s", report.Devices[0].Address)
	}

	cam := findDevice(t, report.Devices, "192.168.1.64")
	if cam.Manufacturer != "Hikvision" {
		t.Errorf("Manufacturer = %v, want Hikvision", cam.Manufacturer)
	}
	if cam.Model != ModelARPInferred {
		t.Errorf("Model = %v, want %v", cam.Model, ModelARPInferred)
	}
	if cam.Source != SourceARP {
		t.Errorf("Source = %v, want arp", cam.Source)
	}
	if cam.SuggestedSnapshotURL != "http://192.168.1.64/ISAPI/Streaming/channels/101/picture" {
		t.Errorf("SuggestedSnapshotURL = %v", cam.SuggestedSnapshotURL)
	}
}

func TestScanner_ProbeAndCacheUnavailable(t *testing.T) {
	scanner := NewScanner(ScannerConfig{
		Resolver:  homeResolver(),
		Neighbors: &fakeNeighbors{err: errors.New("open /proc/net/arp: permission denied")},
		Prober:    failingProber(&ProbeTimeoutError{Subnet: "192.168.1.0/24", Timeout: "20s"}),
	}, zap.NewNop())

	report := scanner.Scan(context.Background(), "")

	if report.Devices == nil || len(report.Devices) != 0 {
		t.Errorf("Devices = %#v, want empty non-nil slice", report.Devices)
	}
	if !report.Degraded {
		t.Error("report should be degraded")
	}
}

func TestScanner_MergeAndClassify(t *testing.T) {
	neighbors := map[string]string{
		"192.168.1.64": "de:ad:be:ef:00:01", // stale cache entry, probe wins
		"192.168.1.10": "b8:27:eb:00:00:10", // fills a probe host without MAC
		"192.168.1.77": "3c:ef:8c:00:00:77", // quiet device only in the cache
	}
	prober := staticProber(
		ProbeHost{Address: "192.168.1.64", HardwareAddress: "28:57:be:aa:bb:cc", VendorHint: "Hangzhou Hikvision Digital Technology", OpenPorts: []int{80, 554}},
		ProbeHost{Address: "192.168.1.10", HardwareAddress: ZeroHardwareAddress, OpenPorts: []int{22}},
		ProbeHost{Address: "192.168.1.70", HardwareAddress: "12:34:56:78:9a:bc", VendorHint: "Unknown", OpenPorts: []int{37777}},
		ProbeHost{Address: "192.168.1.71", HardwareAddress: "12:34:56:78:9a:bd", OpenPorts: []int{34567, 80}},
		ProbeHost{Address: "192.168.1.72", HardwareAddress: "28:57:be:00:00:72", OpenPorts: []int{37777}},
		ProbeHost{Address: "192.168.1.64", HardwareAddress: "00:11:22:33:44:55"},
	)
	scanner := newTestScanner(prober, neighbors)

	report := scanner.Scan(context.Background(), "")

	if report.Degraded || report.ProbeErr != nil {
		t.Fatalf("unexpected degradation: %v", report.ProbeErr)
	}
	assertUniqueAddresses(t, report.Devices)
	if len(report.Devices) != 6 {
		t.Fatalf("got %d devices, want 6: %+v", len(report.Devices), report.Devices)
	}

	tests := []struct {
		addr         string
		mac          string
		manufacturer string
		model        string
		source       string
	}{
		{"192.168.1.64", "28:57:be:aa:bb:cc", "Hangzhou Hikvision Digital Technology", ModelRTSPCamera, SourceProbe},
		{"192.168.1.10", "b8:27:eb:00:00:10", "Raspberry Pi", ModelNetworkDevice, SourceProbe},
		{"192.168.1.70", "12:34:56:78:9a:bc", "Dahua", ModelNetworkDevice, SourceProbe},
		{"192.168.1.71", "12:34:56:78:9a:bd", "XiongMai", ModelWebService, SourceProbe},
		{"192.168.1.72", "28:57:be:00:00:72", "Hikvision", ModelNetworkDevice, SourceProbe},
		{"192.168.1.77", "3c:ef:8c:00:00:77", "Dahua", ModelARPInferred, SourceARP},
	}

	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			d := findDevice(t, report.Devices, tt.addr)
			if d.HardwareAddress != tt.mac {
				t.Errorf("HardwareAddress = %v, want %v", d.HardwareAddress, tt.mac)
			}
			if d.Manufacturer != tt.manufacturer {
				t.Errorf("Manufacturer = %v, want %v", d.Manufacturer, tt.manufacturer)
			}
			if d.Model != tt.model {
				t.Errorf("Model = %v, want %v", d.Model, tt.model)
			}
			if d.Source != tt.source {
				t.Errorf("Source = %v, want %v", d.Source, tt.source)
			}
			if d.SuggestedSnapshotURL == "" {
				t.Error("SuggestedSnapshotURL is empty")
			}
		})
	}
}

func TestScanner_UnknownMACWithoutCache(t *testing.T) {
	scanner := newTestScanner(staticProber(ProbeHost{Address: "192.168.1.5", HardwareAddress: ZeroHardwareAddress}), nil)

	report := scanner.Scan(context.Background(), "")
	d := findDevice(t, report.Devices, "192.168.1.5")

	if d.HardwareAddress != ZeroHardwareAddress {
		t.Errorf("HardwareAddress = %v, want sentinel", d.HardwareAddress)
	}
	if d.Manufacturer != GenericManufacturer {
		t.Errorf("Manufacturer = %v, want %v", d.Manufacturer, GenericManufacturer)
	}
	if d.SuggestedSnapshotURL != "http://192.168.1.5/snapshot.jpg" {
		t.Errorf("SuggestedSnapshotURL = %v", d.SuggestedSnapshotURL)
	}
}

func TestScanner_SubnetSelection(t *testing.T) {
	var probed atomic.Value
	prober := ProberFunc(func(ctx context.Context, subnet string) ([]ProbeHost, error) {
		probed.Store(subnet)
		return nil, nil
	})
	scanner := newTestScanner(prober, nil)

	tests := []struct {
		name     string
		override string
		want     string
	}{
		{"resolved", "", "192.168.1.0/24"},
		{"override canonicalised", "10.0.0.9/24", "10.0.0.0/24"},
		{"invalid override ignored", "not-a-cidr", "192.168.1.0/24"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := scanner.Scan(context.Background(), tt.override)
			if report.Subnet != tt.want {
				t.Errorf("Report.Subnet = %v, want %v", report.Subnet, tt.want)
			}
			if got := probed.Load(); got != tt.want {
				t.Errorf("probed subnet = %v, want %v", got, tt.want)
			}
			if got := scanner.ResolveSubnet(tt.override); got != tt.want {
				t.Errorf("ResolveSubnet() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScanner_FallbackSubnet(t *testing.T) {
	scanner := NewScanner(ScannerConfig{
		Resolver:  NewSubnetResolver(staticAddrs()),
		Neighbors: &fakeNeighbors{},
		Prober:    staticProber(),
	}, nil)

	report := scanner.Scan(context.Background(), "")
	if report.Subnet != FallbackSubnet || !report.SubnetFallback {
		t.Errorf("Report = %+v, want fallback subnet", report)
	}
}

func TestScanner_HostnameEnrichment(t *testing.T) {
	scanner := NewScanner(ScannerConfig{
		Resolver:  homeResolver(),
		Neighbors: &fakeNeighbors{entries: map[string]string{"192.168.1.30": "ec:71:db:00:00:30"}},
		Prober: staticProber(
			ProbeHost{Address: "192.168.1.64", Hostname: "cam-ptr.lan", HardwareAddress: ZeroHardwareAddress},
		),
		Hostnames: fakeHostnames{
			"192.168.1.64": "cam-mdns.local",
			"192.168.1.30": "doorbell.local",
		},
	}, zap.NewNop())

	report := scanner.Scan(context.Background(), "")

	if got := findDevice(t, report.Devices, "192.168.1.64").Hostname; got != "cam-ptr.lan" {
		t.Errorf("probe hostname overwritten: %v", got)
	}
	if got := findDevice(t, report.Devices, "192.168.1.30").Hostname; got != "doorbell.local" {
		t.Errorf("Hostname = %v, want doorbell.local", got)
	}
}

func TestScanner_SlowProbeBoundedByTimeout(t *testing.T) {
	script := writeFakeProbe(t, "exec sleep 30")
	timeout := 500 * time.Millisecond

	prober, err := NewNmapProber(ProbeConfig{Path: script, Timeout: timeout}, nil)
	if err != nil {
		t.Fatalf("NewNmapProber() error = %v", err)
	}
	scanner := newTestScanner(prober, map[string]string{"192.168.1.64": "28:57:be:aa:bb:cc"})

	start := time.Now()
	report := scanner.Scan(context.Background(), "")
	elapsed := time.Since(start)

	if elapsed > timeout+2*time.Second {
		t.Errorf("Scan() took %s, want under %s", elapsed, timeout+2*time.Second)
	}
	var timeoutErr *ProbeTimeoutError
	if !errors.As(report.ProbeErr, &timeoutErr) {
		t.Errorf("ProbeErr = %v, want *ProbeTimeoutError", report.ProbeErr)
	}
	if len(report.Devices) != 1 {
		t.Errorf("got %d devices, want 1 from the cache", len(report.Devices))
	}
}
