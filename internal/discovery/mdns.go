package discovery

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultMDNSTimeout is how long hostname enrichment browses for
	DefaultMDNSTimeout = 3 * time.Second
)

// DefaultMDNSServices are the service types cameras and NVRs advertise
var DefaultMDNSServices = []string{"_rtsp._tcp", "_http._tcp", "_onvif._tcp"}

// HostnameSource maps IPv4 addresses to advertised names
type HostnameSource interface {
	Hostnames(ctx context.Context) (map[string]string, error)
}

// MDNSBrowser collects advertised hostnames over multicast DNS
type MDNSBrowser struct {
	// Services are the service types browsed in parallel
	Services []string

	// Timeout is the maximum time to wait for advertisements
	Timeout time.Duration

	logger *zap.Logger
}

// NewMDNSBrowser creates a browser with default service types and timeout
func NewMDNSBrowser(logger *zap.Logger) *MDNSBrowser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MDNSBrowser{
		Services: append([]string(nil), DefaultMDNSServices...),
		Timeout:  DefaultMDNSTimeout,
		logger:   logger,
	}
}

// Hostnames browses every configured service type until the timeout and
// returns address -> name for IPv4 advertisements
func (b *MDNSBrowser) Hostnames(ctx context.Context) (map[string]string, error) {
	ctx, cancel := context.WithTimeout(ctx, b.Timeout)
	defer cancel()

	var mu sync.Mutex
	names := make(map[string]string)

	g, gctx := errgroup.WithContext(ctx)
	for _, service := range b.Services {
		g.Go(func() error {
			return b.browse(gctx, service, func(entry *zeroconf.ServiceEntry) {
				addr, name, ok := parseServiceEntry(entry)
				if !ok {
					return
				}
				mu.Lock()
				if _, exists := names[addr]; !exists {
					names[addr] = name
				}
				mu.Unlock()
			})
		})
	}

	err := g.Wait()

	mu.Lock()
	defer mu.Unlock()
	result := make(map[string]string, len(names))
	for addr, name := range names {
		result[addr] = name
	}
	return result, err
}

// browse runs one zeroconf browse until ctx is done
func (b *MDNSBrowser) browse(ctx context.Context, service string, handle func(*zeroconf.ServiceEntry)) error {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case entry, ok := <-entries:
				if !ok {
					return
				}
				handle(entry)
			case <-ctx.Done():
				return
			}
		}
	}()

	if err := resolver.Browse(ctx, service, ServiceDomain, entries); err != nil {
		return fmt.Errorf("failed to browse for %s: %w", service, err)
	}

	<-ctx.Done()
	<-done

	b.logger.Debug("mDNS browse finished", zap.String("service", service))
	return nil
}

// parseServiceEntry returns the first IPv4 address and a display name.
// The host name is preferred over the instance name.
func parseServiceEntry(entry *zeroconf.ServiceEntry) (addr, name string, ok bool) {
	if entry == nil {
		return "", "", false
	}

	for _, ip := range entry.AddrIPv4 {
		if ip4 := ip.To4(); ip4 != nil {
			addr = ip4.String()
			break
		}
	}
	if addr == "" {
		return "", "", false
	}

	name = strings.TrimSuffix(entry.HostName, ".")
	if name == "" {
		name = entry.Instance
	}
	if name == "" {
		return "", "", false
	}

	return addr, name, true
}
