// Package privnet keeps the crawler away from hosts that resolve to
// loopback, private or link-local addresses.
package privnet

import (
	"net"

	"github.com/mycok/uCrawl/crawler"
)

// Static and compile-time check to ensure NetDetector implements
// crawler.PrivateNetworkDetector interface.
var _ crawler.PrivateNetworkDetector = (*NetDetector)(nil)

var defaultPrivateCIDRs = []string{
	// Loopback.
	"127.0.0.0/8",
	"::1/128",
	// RFC1918.
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
	// Link-local.
	"169.254.0.0/16",
	"fe80::/10",
	"0.0.0.0/8",
	"255.255.255.255/32",
	"fc00::/7",
}

// NetDetector checks whether a host resolves to a private network address.
type NetDetector struct {
	blocks  []*net.IPNet
	resolve func(network, address string) (*net.IPAddr, error)
}

// NewDetector returns a NetDetector for the loopback, RFC1918 and
// link-local ranges.
func NewDetector() (*NetDetector, error) {
	return NewDetectorFromCIDRs(defaultPrivateCIDRs...)
}

// NewDetectorFromCIDRs returns a NetDetector that treats the given CIDR
// blocks as private.
func NewDetectorFromCIDRs(cidrs ...string) (*NetDetector, error) {
	blocks := make([]*net.IPNet, len(cidrs))

	for i, cidr := range cidrs {
		_, block, err := net.ParseCIDR(cidr)
		if err != nil {
			return nil, err
		}
		blocks[i] = block
	}

	return &NetDetector{blocks: blocks, resolve: net.ResolveIPAddr}, nil
}

// IsNetworkPrivate reports whether address, an IP or a host name, resolves
// into one of the detector's blocks.
func (d *NetDetector) IsNetworkPrivate(address string) (bool, error) {
	ip := net.ParseIP(address)
	if ip == nil {
		ipAddr, err := d.resolve("ip", address)
		if err != nil {
			return false, err
		}
		ip = ipAddr.IP
	}

	for _, block := range d.blocks {
		if block.Contains(ip) {
			return true, nil
		}
	}

	return false, nil
}
