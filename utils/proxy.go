package utils

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/dianwoshishi/rtsp-bruter/logger"
	"golang.org/x/net/proxy"
)

// ProxyAwareDialer dials targets directly or through a SOCKS5 proxy,
// with a connect timeout baked in.
type ProxyAwareDialer struct {
	dialer  proxy.Dialer
	timeout time.Duration
}

// NewProxyAwareDialer builds a dialer. proxyHost may be empty for
// direct connections; proxyAuth is USERNAME:PASSWORD.
func NewProxyAwareDialer(proxyHost, proxyAuth string, timeout time.Duration) (*ProxyAwareDialer, error) {
	var dialer proxy.Dialer

	if proxyHost != "" {
		logger.Debugf("trying to set up proxy: %s", proxyHost)

		var auth *proxy.Auth

		if proxyAuth != "" {
			userPass := strings.Split(proxyAuth, ":")
			if len(userPass) != 2 {
				return nil, errors.New("invalid proxy auth string, try USERNAME:PASSWORD")
			}
			auth = &proxy.Auth{
				User:     userPass[0],
				Password: userPass[1],
			}
		}

		d, err := proxy.SOCKS5("tcp", proxyHost, auth, &net.Dialer{Timeout: timeout})
		if err != nil {
			return nil, err
		}
		dialer = d
	} else {
		dialer = &net.Dialer{Timeout: timeout}
	}

	return &ProxyAwareDialer{
		dialer:  dialer,
		timeout: timeout,
	}, nil
}

func (p *ProxyAwareDialer) Dial(network, addr string) (net.Conn, error) {
	return p.dialer.Dial(network, addr)
}

func (p *ProxyAwareDialer) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	if cd, ok := p.dialer.(proxy.ContextDialer); ok {
		return cd.DialContext(ctx, network, addr)
	}
	return p.dialer.Dial(network, addr)
}

// DialTimeout dials with a specific timeout, falling back to the
// configured default when timeout is zero.
func (p *ProxyAwareDialer) DialTimeout(network, addr string, timeout time.Duration) (net.Conn, error) {
	if timeout == 0 {
		timeout = p.timeout
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	return p.DialContext(ctx, network, addr)
}

func (p *ProxyAwareDialer) Timeout() time.Duration {
	return p.timeout
}
