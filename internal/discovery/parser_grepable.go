package discovery

import (
	"strconv"
	"strings"
)

// GrepableParser parses nmap's grepable (-oG) output.
//
// Format:
//
//	Host: 192.168.1.64 (cam.lan)	Status: Up
//	Host: 192.168.1.64 (cam.lan)	Ports: 80/open/tcp//http///, 554/open/tcp//rtsp///
//
// Lines for the same address are merged. Grepable output never carries MAC
// addresses, so every host starts with ZeroHardwareAddress.
type GrepableParser struct{}

// Parse implements Parser
func (GrepableParser) Parse(output []byte) ([]ProbeHost, error) {
	var hosts []ProbeHost
	index := make(map[string]int)

	for line := range outputLines(output) {
		if !strings.HasPrefix(line, "Host: ") {
			continue
		}

		fields := strings.Split(line, "\t")
		addr, name, ok := parseGrepableHost(fields[0])
		if !ok {
			continue
		}

		if strings.Contains(line, "Status: Down") {
			continue
		}

		i, seen := index[addr]
		if !seen {
			hosts = append(hosts, ProbeHost{
				Address:         addr,
				Hostname:        name,
				HardwareAddress: ZeroHardwareAddress,
			})
			i = len(hosts) - 1
			index[addr] = i
		}

		for _, field := range fields[1:] {
			if ports, ok := strings.CutPrefix(strings.TrimSpace(field), "Ports: "); ok {
				hosts[i].OpenPorts = append(hosts[i].OpenPorts, parseGrepablePorts(ports)...)
			}
		}
	}

	return hosts, nil
}

// parseGrepableHost parses "Host: 1.2.3.4 (name)"
func parseGrepableHost(field string) (addr, name string, ok bool) {
	rest := strings.TrimSpace(strings.TrimPrefix(field, "Host: "))
	parts := strings.SplitN(rest, " ", 2)

	addr = parseIPv4(parts[0])
	if addr == "" {
		return "", "", false
	}

	if len(parts) == 2 {
		name = strings.Trim(strings.TrimSpace(parts[1]), "()")
	}
	return addr, name, true
}

// parseGrepablePorts parses "80/open/tcp//http///, 443/closed/tcp//https///"
func parseGrepablePorts(list string) []int {
	var ports []int
	for _, entry := range strings.Split(list, ",") {
		parts := strings.Split(strings.TrimSpace(entry), "/")
		if len(parts) < 3 || parts[1] != "open" || parts[2] != "tcp" {
			continue
		}
		port, err := strconv.Atoi(parts[0])
		if err != nil || port <= 0 || port > 65535 {
			continue
		}
		ports = append(ports, port)
	}
	return ports
}
