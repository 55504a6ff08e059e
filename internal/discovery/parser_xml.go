package discovery

import (
	"errors"
	"strconv"

	"github.com/clbanning/mxj"
)

// XMLParser parses nmap's XML (-oX) output.
//
// mxj decodes attributes as "-name" keys, and repeated elements as lists, so
// every level that may repeat is read through asList.
type XMLParser struct{}

// Parse implements Parser
func (XMLParser) Parse(output []byte) ([]ProbeHost, error) {
	m, err := mxj.NewMapXml(output)
	if err != nil {
		return nil, &ProbeOutputError{Format: FormatXML, Err: err}
	}

	root, ok := m["nmaprun"].(map[string]interface{})
	if !ok {
		return nil, &ProbeOutputError{Format: FormatXML, Err: errors.New("missing nmaprun element")}
	}

	var hosts []ProbeHost
	seen := make(map[string]bool)
	for _, h := range asList(root["host"]) {
		hostMap, ok := h.(map[string]interface{})
		if !ok {
			continue
		}

		host, ok := parseXMLHost(hostMap)
		if !ok || seen[host.Address] {
			continue
		}
		seen[host.Address] = true
		hosts = append(hosts, host)
	}

	return hosts, nil
}

func parseXMLHost(h map[string]interface{}) (ProbeHost, bool) {
	if status, ok := h["status"].(map[string]interface{}); ok {
		if state, _ := status["-state"].(string); state != "" && state != "up" {
			return ProbeHost{}, false
		}
	}

	host := ProbeHost{HardwareAddress: ZeroHardwareAddress}
	for _, a := range asList(h["address"]) {
		addr, ok := a.(map[string]interface{})
		if !ok {
			continue
		}
		value, _ := addr["-addr"].(string)
		switch addr["-addrtype"] {
		case "ipv4":
			host.Address = parseIPv4(value)
		case "mac":
			if mac := normalizeHardwareAddress(value); mac != "" {
				host.HardwareAddress = mac
				host.VendorHint, _ = addr["-vendor"].(string)
			}
		}
	}
	if host.Address == "" {
		return ProbeHost{}, false
	}

	if names, ok := h["hostnames"].(map[string]interface{}); ok {
		for _, n := range asList(names["hostname"]) {
			if name, ok := n.(map[string]interface{}); ok {
				if v, _ := name["-name"].(string); v != "" {
					host.Hostname = v
					break
				}
			}
		}
	}

	if ports, ok := h["ports"].(map[string]interface{}); ok {
		for _, p := range asList(ports["port"]) {
			port, ok := p.(map[string]interface{})
			if !ok || port["-protocol"] != "tcp" {
				continue
			}
			state, _ := port["state"].(map[string]interface{})
			if state == nil || state["-state"] != "open" {
				continue
			}
			id, _ := port["-portid"].(string)
			if n, err := strconv.Atoi(id); err == nil && n > 0 && n < 65536 {
				host.OpenPorts = append(host.OpenPorts, n)
			}
		}
	}

	return host, true
}

// asList normalises an mxj value that may be a single element or a list
func asList(v interface{}) []interface{} {
	switch t := v.(type) {
	case nil:
		return nil
	case []interface{}:
		return t
	default:
		return []interface{}{t}
	}
}
