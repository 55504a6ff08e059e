// Package discovery finds cameras and other hosts on the local network.
//
// A scan resolves the local IPv4 subnet, reads the kernel's neighbour (ARP)
// cache, probes the subnet once with nmap, and reconciles the two sources
// into a list of devices classified by MAC vendor prefix. Each device gets a
// suggested snapshot URL for its manufacturer.
//
// # Scan Process
//
//  1. Subnet: a valid manual override, else the interface in 192.168.0.0/16,
//     else the first non-loopback IPv4 interface, else 192.168.0.0/24
//  2. Neighbour cache: /proc/net/arp (or rtnetlink); unreadable means empty
//  3. Probe: nmap with a hard timeout; failure degrades to the cache only
//  4. Classification: the probe's vendor hint, else the OUI table, else a
//     port heuristic when the vendor is still generic
//  5. Merge: cache entries the probe missed are appended
//  6. Sort by numeric address
//
// # Usage Example
//
//	scanner := discovery.NewScanner(discovery.ScannerConfig{}, logger)
//	report := scanner.Scan(ctx, "")
//	for _, device := range report.Devices {
//	    fmt.Println(device.String())
//	}
//
// # Output Formats
//
// The probe output parser is selected by OutputFormat. Normal (-oN) and XML
// (-oX) output carry MAC addresses and vendor hints. Grepable (-oG) output
// does not, so those hosts take their MAC from the neighbour cache.
//
// # Thread Safety
//
// Scanner, Classifier and SnapshotTemplates are read-only after construction
// and safe for concurrent use. Each Scan starts its own probe process.
package discovery
