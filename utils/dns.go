package utils

import (
	"fmt"
	"net/netip"
	"sync"

	"net"

	"github.com/dianwoshishi/rtsp-bruter/logger"
)

// dnsCache caches hostname → resolved address to avoid repeated DNS
// lookups when the same host appears in several target lines.
var dnsCache sync.Map // map[string]netip.Addr

// LookupAddr resolves a literal address or hostname to a netip.Addr.
// IPv4 addresses are preferred when a host has both families.
func LookupAddr(host string) (netip.Addr, error) {
	if addr, err := netip.ParseAddr(host); err == nil {
		return addr.Unmap(), nil
	}

	if cached, ok := dnsCache.Load(host); ok {
		return cached.(netip.Addr), nil
	}

	ips, err := net.LookupHost(host)
	if err != nil {
		return netip.Addr{}, err
	}

	var first netip.Addr
	for _, ip := range ips {
		addr, err := netip.ParseAddr(ip)
		if err != nil {
			continue
		}
		addr = addr.Unmap()
		if !first.IsValid() {
			first = addr
		}
		if addr.Is4() {
			first = addr
			break
		}
	}
	if !first.IsValid() {
		return netip.Addr{}, fmt.Errorf("no usable address found for host %s", host)
	}

	logger.Debugf("resolved %s to %s", host, first)
	dnsCache.Store(host, first)
	return first, nil
}
