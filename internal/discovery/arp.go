package discovery

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// DefaultARPPath is the Linux kernel's IPv4 neighbour table
const DefaultARPPath = "/proc/net/arp"

// NeighborSource returns the OS address-resolution cache as address -> MAC.
// Incomplete entries (all-zero MAC) are never included.
type NeighborSource interface {
	Neighbors(ctx context.Context) (map[string]string, error)
}

// ProcARPReader reads the text table exposed at /proc/net/arp
type ProcARPReader struct {
	// Path is the table location (default: DefaultARPPath)
	Path string
}

// NewProcARPReader creates a reader for DefaultARPPath
func NewProcARPReader() *ProcARPReader {
	return &ProcARPReader{Path: DefaultARPPath}
}

// Neighbors reads and parses the ARP table
func (r *ProcARPReader) Neighbors(ctx context.Context) (map[string]string, error) {
	path := r.Path
	if path == "" {
		path = DefaultARPPath
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ARP table %s: %w", path, err)
	}
	defer f.Close()

	return ParseARPTable(f)
}

// ParseARPTable parses /proc/net/arp formatted text.
//
// Format:
//
//	IP address       HW type     Flags       HW address            Mask     Device
//	192.168.1.1      0x1         0x2         aa:bb:cc:dd:ee:ff     *        eth0
//
// The header row is skipped. Rows with fewer than four fields, an invalid
// IPv4 address, an unparseable MAC or the all-zero MAC are dropped.
func ParseARPTable(r io.Reader) (map[string]string, error) {
	entries := make(map[string]string)

	scanner := bufio.NewScanner(r)
	header := true
	for scanner.Scan() {
		if header {
			header = false
			continue
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) < 4 {
			continue
		}

		ip := parseIPv4(fields[0])
		if ip == "" {
			continue
		}

		mac := normalizeHardwareAddress(fields[3])
		if isZeroHardwareAddress(mac) {
			continue
		}

		entries[ip] = mac
	}

	if err := scanner.Err(); err != nil {
		return entries, fmt.Errorf("failed to read ARP table: %w", err)
	}

	return entries, nil
}

// NewNeighborSource returns the source named by kind: "proc" (default) or "netlink"
func NewNeighborSource(kind, path string) (NeighborSource, error) {
	switch strings.ToLower(kind) {
	case "", "proc":
		if path == "" {
			path = DefaultARPPath
		}
		return &ProcARPReader{Path: path}, nil
	case "netlink":
		return &NetlinkNeighbors{}, nil
	default:
		return nil, fmt.Errorf("unknown neighbour source %q (want proc or netlink)", kind)
	}
}
