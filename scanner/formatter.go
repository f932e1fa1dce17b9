package scanner

import (
	"context"
	"errors"
	"net"
	"net/netip"
	"strconv"
	"strings"

	"github.com/dianwoshishi/rtsp-bruter/logger"
	"github.com/dianwoshishi/rtsp-bruter/pattern"
	"github.com/dianwoshishi/rtsp-bruter/utils"
)

// ParseTarget parses a plain (non-pattern) target string.
// Supported formats:
//   - IPv4:          "1.2.3.4"
//   - IPv4:port:     "1.2.3.4:554"
//   - IPv6:          "::1" or "2001:db8::1"
//   - IPv6:port:     "[::1]:554"
//   - hostname:      "cam.example.com"
//   - hostname:port: "cam.example.com:8554"
func ParseTarget(target string, defaultPort int) (netip.AddrPort, error) {
	var addr netip.Addr
	var port int
	var err error

	// host:port first, net.SplitHostPort handles IPv4:port and [IPv6]:port
	host, portStr, splitErr := net.SplitHostPort(target)
	if splitErr == nil {
		port, err = strconv.Atoi(portStr)
		if err != nil {
			return netip.AddrPort{}, err
		}
		if port < 1 || port > 65535 {
			return netip.AddrPort{}, errors.New("invalid port number, format 1-65535")
		}
		addr, err = utils.LookupAddr(host)
		if err != nil {
			return netip.AddrPort{}, err
		}
	} else {
		// no port supplied, bare IPv4, bare IPv6, or hostname
		port = defaultPort
		addr, err = utils.LookupAddr(target)
		if err != nil {
			return netip.AddrPort{}, err
		}
	}

	return netip.AddrPortFrom(addr, uint16(port)), nil
}

// looksLikePattern reports whether a line should go through the
// pattern grammar rather than plain host parsing.
func looksLikePattern(line string) bool {
	return strings.ContainsAny(line, "{}/")
}

// SendTargets expands every source line into the targets channel and
// closes it when done. A source is a target expression, or the path of
// a file holding one expression per line. Pattern expressions expand
// lazily through their cursor; plain host lines resolve via DNS.
// Unparseable lines are logged and skipped.
func SendTargets(ctx context.Context, targets chan<- netip.AddrPort, defaultPort int, sources []string) {
	defer close(targets)

	for _, source := range sources {
		var lines []string
		if utils.IsFileExists(source) {
			lines = utils.LoadLines(source)
		} else {
			lines = []string{source}
		}

		for _, line := range lines {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if !sendLine(ctx, targets, defaultPort, line) {
				return
			}
		}
	}
}

// sendLine expands one line. It returns false when ctx was cancelled.
func sendLine(ctx context.Context, targets chan<- netip.AddrPort, defaultPort int, line string) bool {
	p, err := pattern.Compile(line)
	if err != nil {
		// hostnames never parse as patterns, but a line that used the
		// pattern grammar and got it wrong should not silently fall
		// back to DNS
		if looksLikePattern(line) {
			logger.Debugf("can't parse line %s as a target pattern, ignoring: %v", line, err)
			return true
		}
		target, err := ParseTarget(line, defaultPort)
		if err != nil {
			logger.Debugf("can't parse line %s as host or host:port, ignoring", line)
			return true
		}
		select {
		case targets <- target:
		case <-ctx.Done():
			return false
		}
		return true
	}

	for {
		select {
		case <-ctx.Done():
			return false
		default:
		}
		target, ok := p.Next()
		if !ok {
			return true
		}
		select {
		case targets <- target:
		case <-ctx.Done():
			return false
		}
	}
}
