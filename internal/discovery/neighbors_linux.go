//go:build linux

package discovery

import (
	"context"
	"fmt"

	"github.com/vishvananda/netlink"
)

// NetlinkNeighbors reads the kernel neighbour table over rtnetlink
type NetlinkNeighbors struct {
	// LinkIndex restricts results to one interface; 0 lists all
	LinkIndex int
}

// Neighbors lists IPv4 neighbours, skipping incomplete and failed entries
func (n *NetlinkNeighbors) Neighbors(ctx context.Context) (map[string]string, error) {
	neighs, err := netlink.NeighList(n.LinkIndex, netlink.FAMILY_V4)
	if err != nil {
		return nil, fmt.Errorf("failed to list neighbours: %w", err)
	}

	entries := make(map[string]string, len(neighs))
	for _, neigh := range neighs {
		if neigh.State&(netlink.NUD_INCOMPLETE|netlink.NUD_FAILED) != 0 {
			continue
		}
		if neigh.IP == nil || neigh.IP.To4() == nil {
			continue
		}
		mac := normalizeHardwareAddress(neigh.HardwareAddr.String())
		if isZeroHardwareAddress(mac) {
			continue
		}
		entries[neigh.IP.To4().String()] = mac
	}

	return entries, nil
}
