// Package parser extracts RTSP endpoints from nmap output files
// (GNMAP and XML formats), so a discovery scan can feed the
// bruteforcer directly.
package parser

import "fmt"

// Target is a discovered RTSP service from nmap output.
type Target struct {
	Host string // IP or hostname
	Port int    // port number
}

// String returns "host:port".
func (t Target) String() string {
	return fmt.Sprintf("%s:%d", t.Host, t.Port)
}

// rtspPorts are ports treated as RTSP even when nmap could not
// identify the service.
var rtspPorts = map[int]bool{
	554:  true,
	8554: true,
}

// isRTSP reports whether a scanned port looks like an RTSP endpoint,
// by service name or by well-known port when the name is missing.
func isRTSP(service string, port int) bool {
	if service == "rtsp" {
		return true
	}
	if service == "" || service == "unknown" {
		return rtspPorts[port]
	}
	return false
}
