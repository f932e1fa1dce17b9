// Package rtsp implements the credential probe: a two-step RTSP
// DESCRIBE exchange that determines whether an endpoint accepts a
// username/password pair. A probe issues one request when the endpoint
// requires no authentication, exactly two otherwise, and never retries.
package rtsp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"net/netip"
	"strconv"
	"strings"
	"time"
)

// Dialer is the transport the probe needs from its environment.
// *utils.ProxyAwareDialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, network, addr string) (net.Conn, error)
}

// userAgents is rotated per probe so a scan does not present one
// uniform client string.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:89.0) Gecko/20100101 Firefox/89.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.1.1 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36 Edg/91.0.864.59",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.114 Safari/537.36",
}

// errBadResponse marks responses that arrived but could not be parsed,
// so callers can tell a broken peer from a broken network.
var errBadResponse = errors.New("malformed RTSP response")

// Probe performs the authentication exchange for one (target,
// credential) pair. Both requests travel over a single connection
// bounded by timeout. The probe owns the connection exclusively and
// folds every failure into a typed Outcome; it never panics and never
// retries.
func Probe(ctx context.Context, dialer Dialer, timeout time.Duration, target netip.AddrPort, cred Credential) Outcome {
	addr := target.String()

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return networkError(err)
	}
	defer func() { _ = conn.Close() }()
	_ = conn.SetDeadline(time.Now().Add(timeout))

	uri := fmt.Sprintf("rtsp://%s/", addr)
	ua := userAgents[rand.Intn(len(userAgents))] //nolint:gosec
	reader := bufio.NewReader(conn)

	// Step one: unauthenticated DESCRIBE.
	if _, err := fmt.Fprint(conn, buildRequest(uri, ua, 1, "")); err != nil {
		return networkError(err)
	}
	status, headers, err := readResponse(reader)
	if err != nil {
		if errors.Is(err, errBadResponse) {
			return protocolError("%v", err)
		}
		return networkError(err)
	}

	switch status {
	case 200:
		// the endpoint does not require authentication at all
		return Outcome{Kind: CredentialValid}
	case 401:
		// challenged, proceed below
	default:
		return protocolError("unexpected status %d on unauthenticated request", status)
	}

	challenge, err := ParseChallenge(headers["www-authenticate"])
	if err != nil {
		return protocolError("%v", err)
	}
	authorization, err := challenge.Authorization(cred, "DESCRIBE", uri)
	if err != nil {
		return protocolError("%v", err)
	}

	// Step two: the same DESCRIBE carrying the credential.
	if _, err := fmt.Fprint(conn, buildRequest(uri, ua, 2, authorization)); err != nil {
		return networkError(err)
	}
	status, _, err = readResponse(reader)
	if err != nil {
		if errors.Is(err, errBadResponse) {
			return protocolError("%v", err)
		}
		return networkError(err)
	}

	switch status {
	case 200:
		return Outcome{Kind: CredentialValid}
	case 401, 403:
		return Outcome{Kind: CredentialInvalid}
	default:
		return protocolError("unexpected status %d on authenticated request", status)
	}
}

// buildRequest assembles a DESCRIBE request. authorization is omitted
// when empty.
func buildRequest(uri, userAgent string, cseq int, authorization string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "DESCRIBE %s RTSP/1.0\r\n", uri)
	fmt.Fprintf(&b, "CSeq: %d\r\n", cseq)
	fmt.Fprintf(&b, "User-Agent: %s\r\n", userAgent)
	if authorization != "" {
		fmt.Fprintf(&b, "Authorization: %s\r\n", authorization)
	}
	b.WriteString("Accept: application/sdp\r\n\r\n")
	return b.String()
}

// readResponse reads a status line and headers. Header keys are
// lowercased. I/O failures come back as-is; parse failures wrap
// errBadResponse.
func readResponse(reader *bufio.Reader) (int, map[string]string, error) {
	statusLine, err := reader.ReadString('\n')
	if err != nil {
		return 0, nil, err
	}
	fields := strings.Fields(statusLine)
	if len(fields) < 2 || !strings.HasPrefix(fields[0], "RTSP/") {
		return 0, nil, fmt.Errorf("%w: status line %q", errBadResponse, strings.TrimSpace(statusLine))
	}
	status, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, nil, fmt.Errorf("%w: non-numeric status %q", errBadResponse, fields[1])
	}

	headers := make(map[string]string)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			break
		}
		if idx := strings.IndexByte(line, ':'); idx > 0 {
			key := strings.ToLower(strings.TrimSpace(line[:idx]))
			headers[key] = strings.TrimSpace(line[idx+1:])
		}
	}
	return status, headers, nil
}
