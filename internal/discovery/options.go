package discovery

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Options describes a scanner built from user settings. Zero values take
// the package defaults.
type Options struct {
	ProbePath    string
	ProbeTimeout time.Duration
	ProbeFormat  string
	Ports        []int

	// NeighborSource is "proc" (default) or "netlink"
	NeighborSource string
	ARPPath        string

	MDNS        bool
	MDNSTimeout time.Duration

	// Vendors extends the built-in OUI table; entries here win
	Vendors map[string]string
}

// NeighborSourceFor builds the configured neighbour cache reader
func (o Options) NeighborSourceFor() (NeighborSource, error) {
	return NewNeighborSource(o.NeighborSource, o.ARPPath)
}

// Build wires a Scanner for o
func Build(o Options, logger *zap.Logger) (*Scanner, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	prober, err := NewNmapProber(ProbeConfig{
		Path:    o.ProbePath,
		Ports:   o.Ports,
		Format:  OutputFormat(o.ProbeFormat),
		Timeout: o.ProbeTimeout,
	}, logger.Named("probe"))
	if err != nil {
		return nil, fmt.Errorf("invalid probe settings: %w", err)
	}

	neighbors, err := o.NeighborSourceFor()
	if err != nil {
		return nil, fmt.Errorf("invalid neighbour source: %w", err)
	}

	vendors := DefaultVendorTable()
	for prefix, name := range o.Vendors {
		vendors[prefix] = name
	}

	config := ScannerConfig{
		Neighbors:  neighbors,
		Prober:     prober,
		Classifier: NewClassifier(vendors),
	}

	if o.MDNS {
		browser := NewMDNSBrowser(logger.Named("mdns"))
		if o.MDNSTimeout > 0 {
			browser.Timeout = o.MDNSTimeout
		}
		config.Hostnames = browser
	}

	return NewScanner(config, logger), nil
}
