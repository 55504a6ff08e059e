package discovery

import (
	"fmt"
	"math/bits"
	"net"
	"strings"
)

// FallbackSubnet is scanned when no interface yields a usable IPv4 network
const FallbackSubnet = "192.168.0.0/24"

// homeNetwork is preferred over other candidates so that container and VPN
// adapters on multi-homed hosts do not win
var homeNetwork = &net.IPNet{
	IP:   net.IPv4(192, 168, 0, 0).To4(),
	Mask: net.CIDRMask(16, 32),
}

// InterfaceAddrsFunc lists the host's interface addresses
type InterfaceAddrsFunc func() ([]net.Addr, error)

// SubnetResolver picks the local IPv4 subnet to scan
type SubnetResolver struct {
	addrs InterfaceAddrsFunc
}

// NewSubnetResolver creates a resolver backed by net.InterfaceAddrs.
// A nil addrs function selects the default.
func NewSubnetResolver(addrs InterfaceAddrsFunc) *SubnetResolver {
	if addrs == nil {
		addrs = net.InterfaceAddrs
	}
	return &SubnetResolver{addrs: addrs}
}

// ResolveLocalSubnet returns the subnet to scan in CIDR form. It never fails.
func (r *SubnetResolver) ResolveLocalSubnet() string {
	subnet, _ := r.Resolve()
	return subnet
}

// Resolve returns the subnet to scan and whether FallbackSubnet was used.
//
// Loopback and non-IPv4 addresses are skipped. A candidate inside
// 192.168.0.0/16 wins; otherwise the first candidate is used.
func (r *SubnetResolver) Resolve() (subnet string, fromFallback bool) {
	addrs, err := r.addrs()
	if err != nil {
		return FallbackSubnet, true
	}

	var first string
	for _, addr := range addrs {
		ipnet, ok := addr.(*net.IPNet)
		if !ok {
			continue
		}

		cidr, ip, ok := networkOf(ipnet)
		if !ok {
			continue
		}

		if homeNetwork.Contains(ip) {
			return cidr, false
		}
		if first == "" {
			first = cidr
		}
	}

	if first != "" {
		return first, false
	}
	return FallbackSubnet, true
}

// networkOf computes base/prefix for an interface address
func networkOf(ipnet *net.IPNet) (string, net.IP, bool) {
	ip := ipnet.IP.To4()
	if ip == nil || ip.IsLoopback() {
		return "", nil, false
	}

	mask := ipnet.Mask
	if len(mask) == net.IPv6len {
		mask = mask[12:]
	}
	if len(mask) != net.IPv4len {
		return "", nil, false
	}

	base := make(net.IP, net.IPv4len)
	prefix := 0
	for i := 0; i < net.IPv4len; i++ {
		base[i] = ip[i] & mask[i]
		prefix += bits.OnesCount8(mask[i])
	}

	return fmt.Sprintf("%s/%d", base, prefix), ip, true
}

// MinSubnetPrefix is the widest override accepted. Wider ranges cannot be
// probed within the scan timeout.
const MinSubnetPrefix = 16

// ParseSubnet validates a manual subnet override and returns its canonical
// network form (e.g., "192.168.1.7/24" becomes "192.168.1.0/24").
func ParseSubnet(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", &InvalidSubnetError{Value: value}
	}

	ip, ipnet, err := net.ParseCIDR(value)
	if err != nil {
		return "", &InvalidSubnetError{Value: value, Err: err}
	}
	if ip.To4() == nil || strings.Contains(value, ":") {
		return "", &InvalidSubnetError{Value: value}
	}
	if ones, _ := ipnet.Mask.Size(); ones < MinSubnetPrefix {
		return "", &InvalidSubnetError{
			Value: value,
			Err:   fmt.Errorf("prefix /%d is wider than /%d", ones, MinSubnetPrefix),
		}
	}

	return ipnet.String(), nil
}
