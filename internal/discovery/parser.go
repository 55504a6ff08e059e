package discovery

import (
	"bytes"
	"fmt"
	"iter"
	"regexp"
	"strconv"
	"strings"
)

// ProbeHost is one host as reported by the probe, before classification
type ProbeHost struct {
	// Address is the IPv4 address
	Address string
	// Hostname is the reverse-DNS name, if the probe resolved one
	Hostname string
	// HardwareAddress is the normalised MAC or ZeroHardwareAddress
	HardwareAddress string
	// VendorHint is the probe's own vendor lookup (e.g., "Hikvision" or "Unknown")
	VendorHint string
	// OpenPorts lists open TCP ports in the order reported
	OpenPorts []int
}

// Parser turns raw probe output into hosts. Malformed lines are skipped;
// an error is returned only when the output as a whole is unusable.
type Parser interface {
	Parse(output []byte) ([]ProbeHost, error)
}

// OutputFormat selects the probe's output flag and the matching parser
type OutputFormat string

const (
	// FormatNormal is nmap's human-readable output (-oN)
	FormatNormal OutputFormat = "normal"
	// FormatGrepable is nmap's one-line-per-host output (-oG)
	FormatGrepable OutputFormat = "grepable"
	// FormatXML is nmap's XML output (-oX)
	FormatXML OutputFormat = "xml"
)

// Flag returns the nmap output flag for the format
func (f OutputFormat) Flag() string {
	switch f {
	case FormatGrepable:
		return "-oG"
	case FormatXML:
		return "-oX"
	default:
		return "-oN"
	}
}

// ParserFor returns the parser for format
func ParserFor(format OutputFormat) (Parser, error) {
	switch format {
	case "", FormatNormal:
		return NormalParser{}, nil
	case FormatGrepable:
		return GrepableParser{}, nil
	case FormatXML:
		return XMLParser{}, nil
	default:
		return nil, fmt.Errorf("unknown probe output format %q (want normal, grepable or xml)", format)
	}
}

var (
	// hostLinePattern matches "Nmap scan report for name (1.2.3.4)" and "... for 1.2.3.4"
	hostLinePattern = regexp.MustCompile(`^Nmap scan report for (?:(\S+) \(([^)]+)\)|(\S+))\s*$`)

	// macLinePattern matches "MAC Address: AA:BB:CC:DD:EE:FF (Vendor)"
	macLinePattern = regexp.MustCompile(`^MAC Address: ([0-9A-Fa-f:-]+)(?:\s+\((.*)\))?\s*$`)

	// portLinePattern matches "554/tcp  open  rtsp"
	portLinePattern = regexp.MustCompile(`^(\d+)/tcp\s+open(?:\s|$)`)
)

// NormalParser parses nmap's normal (-oN) output.
//
// A MAC line attaches only to the most recent host line. Host lines without
// a MAC line get ZeroHardwareAddress. A malformed host line closes the
// current block so that a following MAC line is not misattributed.
type NormalParser struct{}

// Parse implements Parser
func (NormalParser) Parse(output []byte) ([]ProbeHost, error) {
	var hosts []ProbeHost
	current := -1
	macSeen := false

	for raw := range outputLines(output) {
		line := strings.TrimSpace(raw)

		if strings.HasPrefix(line, "Nmap scan report for ") {
			host, ok := parseHostLine(line)
			if !ok {
				current = -1
				continue
			}
			hosts = append(hosts, host)
			current = len(hosts) - 1
			macSeen = false
			continue
		}

		if current < 0 {
			continue
		}

		if m := macLinePattern.FindStringSubmatch(line); m != nil {
			if macSeen {
				continue
			}
			mac := normalizeHardwareAddress(m[1])
			if mac == "" {
				continue
			}
			hosts[current].HardwareAddress = mac
			hosts[current].VendorHint = strings.TrimSpace(m[2])
			macSeen = true
			continue
		}

		if m := portLinePattern.FindStringSubmatch(line); m != nil {
			if port, err := strconv.Atoi(m[1]); err == nil && port > 0 && port < 65536 {
				hosts[current].OpenPorts = append(hosts[current].OpenPorts, port)
			}
		}
	}

	return hosts, nil
}

// maxLineLength bounds one line of probe output. Longer lines are skipped.
const maxLineLength = 1024 * 1024

// outputLines yields each line of output without its terminator, skipping
// lines longer than maxLineLength
func outputLines(output []byte) iter.Seq[string] {
	return func(yield func(string) bool) {
		for line := range bytes.Lines(output) {
			if len(line) > maxLineLength {
				continue
			}
			if !yield(strings.TrimRight(string(line), "\r\n")) {
				return
			}
		}
	}
}

func parseHostLine(line string) (ProbeHost, bool) {
	m := hostLinePattern.FindStringSubmatch(line)
	if m == nil {
		return ProbeHost{}, false
	}

	name, addr := m[1], m[2]
	if addr == "" {
		addr = m[3]
	}

	ip := parseIPv4(addr)
	if ip == "" {
		return ProbeHost{}, false
	}

	return ProbeHost{
		Address:         ip,
		Hostname:        name,
		HardwareAddress: ZeroHardwareAddress,
	}, true
}
