package parser

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// portEntry matches individual port entries in GNMAP Host lines:
//   554/open/tcp//rtsp///
// Groups: 1=port, 2=state, 3=proto, 4=service
var portEntry = regexp.MustCompile(`(\d+)/([^/]*)/([^/]*)//?([^/]*)`)

// ParseGNMAP parses an nmap greppable output file (-oG) and returns
// every open RTSP endpoint it lists.
func ParseGNMAP(path string) ([]Target, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gnmap: %w", err)
	}
	defer f.Close()

	var targets []Target

	scanner := bufio.NewScanner(f)
	// nmap can produce huge Host lines
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()

		// Only process Host lines with "Ports:" section
		if !strings.HasPrefix(line, "Host:") || !strings.Contains(line, "Ports:") {
			continue
		}

		host := extractGNMAPHost(line)
		if host == "" {
			continue
		}

		// everything after "Ports: " until the next tab-delimited section
		portsIdx := strings.Index(line, "Ports:")
		if portsIdx < 0 {
			continue
		}
		portsSection := line[portsIdx+len("Ports:"):]
		if tabIdx := strings.Index(portsSection, "\t"); tabIdx >= 0 {
			portsSection = portsSection[:tabIdx]
		}

		for _, entry := range strings.Split(portsSection, ",") {
			entry = strings.TrimSpace(entry)
			matches := portEntry.FindStringSubmatch(entry)
			if matches == nil {
				continue
			}

			port, err := strconv.Atoi(matches[1])
			if err != nil || port < 1 || port > 65535 {
				continue
			}

			if matches[2] != "open" {
				continue
			}

			service := strings.ToLower(strings.TrimSpace(matches[4]))
			if !isRTSP(service, port) {
				continue
			}

			targets = append(targets, Target{Host: host, Port: port})
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("gnmap scan: %w", err)
	}

	return targets, nil
}

// extractGNMAPHost extracts the IP address from a GNMAP Host line.
// Format: "Host: 192.168.1.1 (hostname)\tPorts: ..."
func extractGNMAPHost(line string) string {
	rest := strings.TrimPrefix(line, "Host:")
	rest = strings.TrimSpace(rest)

	// first token is the IP
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
