package check

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"

	"golang.org/x/net/proxy"
)

// ErrNoProxy is returned by DialSOCKS5 for an endpoint without a host.
var ErrNoProxy = errors.New("check: no SOCKS5 proxy configured")

// ProxyEndpoint is the SOCKS5 proxy a probe connection is originated through.
type ProxyEndpoint struct {
	Host     string
	Port     int
	User     string // optional
	Password string // optional
}

// Address returns host:port.
func (p ProxyEndpoint) Address() string {
	return net.JoinHostPort(p.Host, strconv.Itoa(p.Port))
}

func (p ProxyEndpoint) auth() *proxy.Auth {
	if p.User == "" && p.Password == "" {
		return nil
	}
	return &proxy.Auth{User: p.User, Password: p.Password}
}

// DialFunc opens a TCP connection to address through the given proxy.
// The context bounds connection establishment only.
type DialFunc func(ctx context.Context, p ProxyEndpoint, address string) (net.Conn, error)

// DialSOCKS5 connects to address through a SOCKS5 proxy (CONNECT only).
func DialSOCKS5(ctx context.Context, p ProxyEndpoint, address string) (net.Conn, error) {
	if p.Host == "" {
		return nil, ErrNoProxy
	}

	d, err := proxy.SOCKS5("tcp", p.Address(), p.auth(), proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("SOCKS5 dialer for %s: %w", p.Address(), err)
	}

	var conn net.Conn
	if cd, ok := d.(proxy.ContextDialer); ok {
		conn, err = cd.DialContext(ctx, "tcp", address)
	} else {
		conn, err = d.Dial("tcp", address)
	}
	if err != nil {
		return nil, fmt.Errorf("connect to %s via %s: %w", address, p.Address(), err)
	}
	return conn, nil
}
