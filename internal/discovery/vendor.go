package discovery

import (
	"strings"
)

// GenericManufacturer is reported when no vendor could be determined
const GenericManufacturer = "Generic"

// VendorTable maps a lowercase OUI prefix ("aa:bb:cc") to a manufacturer name
type VendorTable map[string]string

// defaultVendors lists OUIs of common camera makers and the hosts that
// usually share a home network with them
var defaultVendors = VendorTable{
	// Hikvision
	"28:57:be": "Hikvision",
	"44:19:b6": "Hikvision",
	"c0:56:e3": "Hikvision",
	"bc:ad:28": "Hikvision",
	"4c:bd:8f": "Hikvision",
	"54:c4:15": "Hikvision",

	// Dahua
	"3c:ef:8c": "Dahua",
	"90:02:a9": "Dahua",
	"a0:bd:1d": "Dahua",
	"e0:50:8b": "Dahua",
	"4c:11:bf": "Dahua",
	"14:a7:8b": "Dahua",

	"00:1a:3f": "Intelbras",
	"00:40:8c": "Axis",
	"ac:cc:8e": "Axis",
	"9c:8e:cd": "Amcrest",
	"ec:71:db": "Reolink",

	// Ubiquiti
	"24:a4:3c": "Ubiquiti",
	"78:8a:20": "Ubiquiti",
	"fc:ec:da": "Ubiquiti",

	// Raspberry Pi
	"b8:27:eb": "Raspberry Pi",
	"dc:a6:32": "Raspberry Pi",
	"d8:3a:dd": "Raspberry Pi",
	"e4:5f:01": "Raspberry Pi",

	// Espressif (ESP32-CAM and similar)
	"24:0a:c4": "Espressif",
	"84:f3:eb": "Espressif",
	"30:ae:a4": "Espressif",
	"a4:cf:12": "Espressif",

	"00:11:32": "Synology",
	"00:50:56": "VMware",
	"00:0c:29": "VMware",
	"52:54:00": "QEMU",
	"f0:9e:63": "Apple",
	"bc:d1:d3": "Apple",
}

// DefaultVendorTable returns a copy of the built-in OUI table
func DefaultVendorTable() VendorTable {
	table := make(VendorTable, len(defaultVendors))
	for prefix, name := range defaultVendors {
		table[prefix] = name
	}
	return table
}

// Classifier maps hardware addresses to manufacturer names.
// The table is copied at construction and never mutated afterwards.
type Classifier struct {
	table VendorTable
}

// NewClassifier creates a classifier over table. Keys are normalised so
// callers may pass uppercase or dash-separated prefixes.
func NewClassifier(table VendorTable) *Classifier {
	normalized := make(VendorTable, len(table))
	for prefix, name := range table {
		if key := ouiPrefix(prefix); key != "" && name != "" {
			normalized[key] = name
		}
	}
	return &Classifier{table: normalized}
}

// Classify returns the manufacturer for mac, or GenericManufacturer.
func (c *Classifier) Classify(mac string) string {
	if name, ok := c.table[ouiPrefix(mac)]; ok {
		return name
	}
	return GenericManufacturer
}

// Len returns the number of known prefixes
func (c *Classifier) Len() int {
	return len(c.table)
}

// ouiPrefix returns the first three octets of mac, lowercased and colon
// separated, or "" when mac has fewer than three octets
func ouiPrefix(mac string) string {
	mac = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(mac)), "-", ":")
	parts := strings.Split(mac, ":")
	if len(parts) < 3 {
		return ""
	}
	for _, p := range parts[:3] {
		if len(p) != 2 {
			return ""
		}
	}
	return strings.Join(parts[:3], ":")
}

// isGenericVendor reports whether a vendor hint carries no information
func isGenericVendor(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "unknown", "generic":
		return true
	}
	return false
}
