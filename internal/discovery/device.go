package discovery

import (
	"fmt"
	"net"
	"slices"
	"strings"
)

const (
	// ZeroHardwareAddress is the sentinel used when a device's MAC is unknown
	ZeroHardwareAddress = "00:00:00:00:00:00"

	// SourceProbe marks devices reported by the active probe
	SourceProbe = "probe"

	// SourceARP marks devices known only from the neighbour cache
	SourceARP = "arp"
)

// Device represents a candidate camera or other host found during a scan.
// Devices are rebuilt on every scan and carry no identity beyond one result.
type Device struct {
	// Address is the dotted-quad IPv4 address (e.g., "192.168.1.64")
	Address string `json:"address"`

	// HardwareAddress is the lowercase colon-separated MAC, or ZeroHardwareAddress
	HardwareAddress string `json:"hardwareAddress"`

	// Manufacturer is never empty; unknown vendors are reported as GenericManufacturer
	Manufacturer string `json:"manufacturer"`

	// Model is a best-guess device class (e.g., "IP Camera (RTSP)")
	Model string `json:"model"`

	// SuggestedSnapshotURL is a snapshot URL template with the address filled in.
	// [USER] and [PASS] placeholders are left for the operator.
	SuggestedSnapshotURL string `json:"suggestedSnapshotUrl,omitempty"`

	// AlreadyRegistered is set by the HTTP layer when a registered camera uses Address
	AlreadyRegistered bool `json:"alreadyRegistered"`

	// Hostname is the reverse-DNS name from the probe or an mDNS name
	Hostname string `json:"hostname,omitempty"`

	// OpenPorts lists TCP ports the probe saw open
	OpenPorts []int `json:"openPorts,omitempty"`

	// Source is SourceProbe or SourceARP
	Source string `json:"source"`
}

// String returns a human-readable string representation of the device
func (d *Device) String() string {
	name := d.Manufacturer
	if d.Hostname != "" {
		name = fmt.Sprintf("%s, %s", d.Manufacturer, d.Hostname)
	}
	return fmt.Sprintf("%s (%s) at %s [%s]", d.Model, name, d.Address, d.HardwareAddress)
}

// HasPort reports whether the probe saw port open on this device
func (d *Device) HasPort(port int) bool {
	return slices.Contains(d.OpenPorts, port)
}

// HasHardwareAddress reports whether the MAC is known
func (d *Device) HasHardwareAddress() bool {
	return d.HardwareAddress != "" && d.HardwareAddress != ZeroHardwareAddress
}

// normalizeHardwareAddress lowercases a MAC and converts dash separators to colons.
// Returns "" when the value is not a six-byte hardware address.
func normalizeHardwareAddress(mac string) string {
	mac = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(mac)), "-", ":")
	hw, err := net.ParseMAC(mac)
	if err != nil || len(hw) != 6 {
		return ""
	}
	return hw.String()
}

func isZeroHardwareAddress(mac string) bool {
	return mac == "" || mac == ZeroHardwareAddress
}

// parseIPv4 returns the canonical dotted-quad form, or "" when s is not IPv4
func parseIPv4(s string) string {
	ip := net.ParseIP(strings.TrimSpace(s))
	if ip == nil {
		return ""
	}
	ip4 := ip.To4()
	if ip4 == nil || strings.Contains(s, ":") {
		return ""
	}
	return ip4.String()
}

// compareAddresses orders dotted-quad strings numerically
func compareAddresses(a, b string) int {
	ipa := net.ParseIP(a).To4()
	ipb := net.ParseIP(b).To4()
	if ipa == nil || ipb == nil {
		return strings.Compare(a, b)
	}
	for i := 0; i < net.IPv4len; i++ {
		if ipa[i] != ipb[i] {
			if ipa[i] < ipb[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// SortDevices orders devices by numeric IPv4 address
func SortDevices(devices []Device) {
	slices.SortStableFunc(devices, func(a, b Device) int {
		return compareAddresses(a.Address, b.Address)
	})
}
