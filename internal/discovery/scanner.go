package discovery

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Report is the outcome of one scan
type Report struct {
	// Subnet is the CIDR that was scanned
	Subnet string
	// SubnetFallback is true when no interface qualified and FallbackSubnet was used
	SubnetFallback bool
	// Devices are sorted by numeric address and unique by address
	Devices []Device
	// ProbeErr is the probe failure that caused degradation, if any
	ProbeErr error
	// Degraded is true when the result came from the neighbour cache only
	Degraded bool
	// Duration is the wall-clock time of the scan
	Duration time.Duration
}

// ScannerConfig wires the scan pipeline. Nil fields take defaults.
type ScannerConfig struct {
	Resolver   *SubnetResolver
	Neighbors  NeighborSource
	Prober     Prober
	Classifier *Classifier
	Templates  SnapshotTemplates
	PortHints  []PortHint

	// Hostnames enriches devices without a name; nil disables enrichment
	Hostnames HostnameSource
}

// Scanner runs the discovery pipeline. It holds no per-scan state and is
// safe for concurrent use.
type Scanner struct {
	resolver   *SubnetResolver
	neighbors  NeighborSource
	prober     Prober
	classifier *Classifier
	templates  SnapshotTemplates
	portHints  []PortHint
	hostnames  HostnameSource
	logger     *zap.Logger
}

// NewScanner creates a scanner from config
func NewScanner(config ScannerConfig, logger *zap.Logger) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Scanner{
		resolver:   config.Resolver,
		neighbors:  config.Neighbors,
		prober:     config.Prober,
		classifier: config.Classifier,
		templates:  config.Templates,
		portHints:  config.PortHints,
		hostnames:  config.Hostnames,
		logger:     logger,
	}

	if s.resolver == nil {
		s.resolver = NewSubnetResolver(nil)
	}
	if s.neighbors == nil {
		s.neighbors = NewProcARPReader()
	}
	if s.prober == nil {
		// Default config always has a valid format
		s.prober, _ = NewNmapProber(DefaultProbeConfig(), logger.Named("probe"))
	}
	if s.classifier == nil {
		s.classifier = NewClassifier(DefaultVendorTable())
	}
	if s.templates == nil {
		s.templates = DefaultSnapshotTemplates()
	}
	if s.portHints == nil {
		s.portHints = DefaultPortHints()
	}

	return s
}

// Scan discovers devices on override, or on the local subnet when override
// is empty. It never fails: probe problems degrade to a neighbour-cache
// result and are reported through Report.ProbeErr.
//
// Steps:
//  1. Resolve the subnet
//  2. Read the neighbour cache
//  3. Probe the subnet once
//  4. Classify and suggest snapshot URLs
//  5. Add neighbour-cache entries the probe did not report
//  6. Optionally fill hostnames over mDNS
//  7. Sort by address
func (s *Scanner) Scan(ctx context.Context, override string) *Report {
	startTime := time.Now()
	report := &Report{}

	report.Subnet, report.SubnetFallback = s.subnetFor(override)
	if report.SubnetFallback {
		s.logger.Warn("no usable IPv4 interface found, scanning fallback subnet",
			zap.String("subnet", report.Subnet),
		)
	}

	neighbors := s.readNeighbors(ctx)

	hosts, err := s.prober.Probe(ctx, report.Subnet)
	if err != nil {
		s.logger.Warn("probe failed, using ARP cache only",
			zap.String("subnet", report.Subnet),
			zap.Error(err),
		)
		report.ProbeErr = err
		report.Degraded = true
		report.Devices = s.fromNeighbors(neighbors, nil)
	} else {
		devices, seen := s.fromProbe(hosts, neighbors)
		report.Devices = append(devices, s.fromNeighbors(neighbors, seen)...)
	}

	s.enrichHostnames(ctx, report.Devices)
	SortDevices(report.Devices)

	report.Duration = time.Since(startTime)
	s.logger.Info("scan complete",
		zap.String("subnet", report.Subnet),
		zap.Int("devices", len(report.Devices)),
		zap.Bool("degraded", report.Degraded),
		zap.Duration("duration", report.Duration),
	)

	return report
}

// ResolveSubnet returns the subnet Scan would use for override
func (s *Scanner) ResolveSubnet(override string) string {
	subnet, _ := s.subnetFor(override)
	return subnet
}

func (s *Scanner) subnetFor(override string) (string, bool) {
	if override != "" {
		subnet, err := ParseSubnet(override)
		if err == nil {
			return subnet, false
		}
		s.logger.Warn("ignoring invalid subnet override", zap.String("subnet", override), zap.Error(err))
	}
	return s.resolver.Resolve()
}

func (s *Scanner) readNeighbors(ctx context.Context) map[string]string {
	neighbors, err := s.neighbors.Neighbors(ctx)
	if err != nil {
		s.logger.Debug("neighbour cache unavailable", zap.Error(err))
		return map[string]string{}
	}
	if neighbors == nil {
		return map[string]string{}
	}
	s.logger.Debug("read neighbour cache", zap.Int("entries", len(neighbors)))
	return neighbors
}

// fromProbe classifies probe hosts. Returns the devices and the set of
// addresses they cover.
func (s *Scanner) fromProbe(hosts []ProbeHost, neighbors map[string]string) ([]Device, map[string]bool) {
	devices := make([]Device, 0, len(hosts))
	seen := make(map[string]bool, len(hosts))

	for _, host := range hosts {
		if host.Address == "" || seen[host.Address] {
			continue
		}
		seen[host.Address] = true

		mac := host.HardwareAddress
		if isZeroHardwareAddress(mac) {
			mac = ZeroHardwareAddress
			if cached, ok := neighbors[host.Address]; ok {
				mac = cached
			}
		}

		manufacturer := host.VendorHint
		if isGenericVendor(manufacturer) {
			manufacturer = s.classifier.Classify(mac)
		}
		if manufacturer == GenericManufacturer {
			if guess, ok := manufacturerFromPorts(host.OpenPorts, s.portHints); ok {
				manufacturer = guess
			}
		}

		devices = append(devices, Device{
			Address:              host.Address,
			HardwareAddress:      mac,
			Manufacturer:         manufacturer,
			Model:                modelFromPorts(host.OpenPorts),
			SuggestedSnapshotURL: s.templates.Suggest(manufacturer, host.Address),
			Hostname:             host.Hostname,
			OpenPorts:            host.OpenPorts,
			Source:               SourceProbe,
		})
	}

	return devices, seen
}

// fromNeighbors builds devices for neighbour entries not in skip
func (s *Scanner) fromNeighbors(neighbors map[string]string, skip map[string]bool) []Device {
	devices := make([]Device, 0, len(neighbors))
	for addr, mac := range neighbors {
		if skip[addr] {
			continue
		}
		manufacturer := s.classifier.Classify(mac)
		devices = append(devices, Device{
			Address:              addr,
			HardwareAddress:      mac,
			Manufacturer:         manufacturer,
			Model:                ModelARPInferred,
			SuggestedSnapshotURL: s.templates.Suggest(manufacturer, addr),
			Source:               SourceARP,
		})
	}
	return devices
}

func (s *Scanner) enrichHostnames(ctx context.Context, devices []Device) {
	if s.hostnames == nil || len(devices) == 0 {
		return
	}

	names, err := s.hostnames.Hostnames(ctx)
	if err != nil {
		s.logger.Debug("hostname enrichment failed", zap.Error(err))
	}

	for i := range devices {
		if devices[i].Hostname != "" {
			continue
		}
		if name, ok := names[devices[i].Address]; ok {
			devices[i].Hostname = name
		}
	}
}
