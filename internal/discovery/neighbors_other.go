//go:build !linux

package discovery

import (
	"context"
	"errors"
)

// NetlinkNeighbors reads the kernel neighbour table over rtnetlink (Linux only)
type NetlinkNeighbors struct {
	// LinkIndex restricts results to one interface; 0 lists all
	LinkIndex int
}

// Neighbors always fails outside Linux
func (n *NetlinkNeighbors) Neighbors(ctx context.Context) (map[string]string, error) {
	return nil, errors.New("netlink neighbour table is only available on linux")
}
