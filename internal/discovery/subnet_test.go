package discovery

import (
	"errors"
	"net"
	"testing"
)

func ipnet(ip string, mask net.IPMask) *net.IPNet {
	return &net.IPNet{IP: net.ParseIP(ip), Mask: mask}
}

func staticAddrs(addrs ...net.Addr) InterfaceAddrsFunc {
	return func() ([]net.Addr, error) {
		return addrs, nil
	}
}

func TestSubnetResolver_Resolve(t *testing.T) {
	tests := []struct {
		name         string
		addrs        InterfaceAddrsFunc
		wantSubnet   string
		wantFallback bool
	}{
		{
			name:       "base and prefix from a /26 mask",
			addrs:      staticAddrs(ipnet("192.168.1.100", net.IPv4Mask(255, 255, 255, 192))),
			wantSubnet: "192.168.1.64/26",
		},
		{
			name: "home network preferred over container bridge",
			addrs: staticAddrs(
				ipnet("127.0.0.1", net.IPv4Mask(255, 0, 0, 0)),
				ipnet("172.17.0.1", net.IPv4Mask(255, 255, 0, 0)),
				ipnet("192.168.0.23", net.IPv4Mask(255, 255, 255, 0)),
			),
			wantSubnet: "192.168.0.0/24",
		},
		{
			name: "first candidate when no home network",
			addrs: staticAddrs(
				ipnet("10.1.2.3", net.IPv4Mask(255, 255, 255, 0)),
				ipnet("172.17.0.1", net.IPv4Mask(255, 255, 0, 0)),
			),
			wantSubnet: "10.1.2.0/24",
		},
		{
			name: "16-byte mask form",
			addrs: staticAddrs(
				ipnet("10.20.30.40", net.CIDRMask(112, 128)),
			),
			wantSubnet: "10.20.0.0/16",
		},
		{
			name: "ipv6 and loopback only",
			addrs: staticAddrs(
				ipnet("127.0.0.1", net.IPv4Mask(255, 0, 0, 0)),
				ipnet("fe80::1", net.CIDRMask(64, 128)),
			),
			wantSubnet:   FallbackSubnet,
			wantFallback: true,
		},
		{
			name: "non-IPNet addresses are skipped",
			addrs: staticAddrs(
				&net.IPAddr{IP: net.ParseIP("192.168.1.5")},
			),
			wantSubnet:   FallbackSubnet,
			wantFallback: true,
		},
		{
			name: "enumeration error",
			addrs: func() ([]net.Addr, error) {
				return nil, errors.New("permission denied")
			},
			wantSubnet:   FallbackSubnet,
			wantFallback: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewSubnetResolver(tt.addrs)
			subnet, fallback := r.Resolve()
			if subnet != tt.wantSubnet {
				t.Errorf("Resolve() subnet = %v, want %v", subnet, tt.wantSubnet)
			}
			if fallback != tt.wantFallback {
				t.Errorf("Resolve() fallback = %v, want %v", fallback, tt.wantFallback)
			}
			if got := r.ResolveLocalSubnet(); got != tt.wantSubnet {
				t.Errorf("ResolveLocalSubnet() = %v, want %v", got, tt.wantSubnet)
			}
		})
	}
}

func TestParseSubnet(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"canonical", "192.168.1.0/24", "192.168.1.0/24", false},
		{"host bits cleared", "192.168.1.77/24", "192.168.1.0/24", false},
		{"whitespace", " 10.1.0.0/16 ", "10.1.0.0/16", false},
		{"widest accepted", "172.16.5.9/16", "172.16.0.0/16", false},
		{"too wide", "10.0.0.0/8", "", true},
		{"whole internet", "0.0.0.0/0", "", true},
		{"not a cidr", "not-a-cidr", "", true},
		{"missing prefix", "192.168.1.0", "", true},
		{"ipv6", "fd00::/64", "", true},
		{"mapped ipv6", "::ffff:192.168.1.0/120", "", true},
		{"shell metacharacters", "192.168.1.0/24;reboot", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSubnet(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSubnet(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err != nil {
				var subnetErr *InvalidSubnetError
				if !errors.As(err, &subnetErr) {
					t.Errorf("ParseSubnet(%q) error type = %T, want *InvalidSubnetError", tt.in, err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("ParseSubnet(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
