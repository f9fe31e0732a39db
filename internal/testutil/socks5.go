// Package testutil holds test helpers shared between packages.
package testutil

import (
	"encoding/binary"
	"errors"
	"io"
	"net"
	"strconv"
	"sync"
	"testing"
)

// SOCKS5Server is a minimal no-auth SOCKS5 server accepting CONNECT.
// Instead of relaying, it hands the client connection to Handle,
// which plays the part of the target host.
type SOCKS5Server struct {
	Host string
	Port int

	ln      net.Listener
	handle  func(target string, conn net.Conn)
	mu      sync.Mutex
	targets []string
	reject  bool
}

// StartSOCKS5 listens on 127.0.0.1 and stops when the test ends.
func StartSOCKS5(tb testing.TB, handle func(target string, conn net.Conn)) *SOCKS5Server {
	tb.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		tb.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().(*net.TCPAddr)

	s := &SOCKS5Server{Host: "127.0.0.1", Port: addr.Port, ln: ln, handle: handle}
	tb.Cleanup(func() { _ = ln.Close() })

	go s.serve()
	return s
}

// RejectConnects makes the server answer CONNECT with "connection refused".
func (s *SOCKS5Server) RejectConnects() {
	s.mu.Lock()
	s.reject = true
	s.mu.Unlock()
}

// Targets returns the host:port pairs clients asked to connect to.
func (s *SOCKS5Server) Targets() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.targets...)
}

func (s *SOCKS5Server) serve() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		go s.session(conn)
	}
}

func (s *SOCKS5Server) session(conn net.Conn) {
	target, err := handshake(conn)
	if err != nil {
		_ = conn.Close()
		return
	}

	s.mu.Lock()
	s.targets = append(s.targets, target)
	reject := s.reject
	s.mu.Unlock()

	if reject {
		_, _ = conn.Write([]byte{5, 5, 0, 1, 0, 0, 0, 0, 0, 0})
		_ = conn.Close()
		return
	}

	if _, err := conn.Write([]byte{5, 0, 0, 1, 127, 0, 0, 1, 0, 0}); err != nil {
		_ = conn.Close()
		return
	}
	s.handle(target, conn)
}

// handshake performs method negotiation and reads the CONNECT request.
func handshake(conn net.Conn) (string, error) {
	buf := make([]byte, 256)

	if _, err := io.ReadFull(conn, buf[:2]); err != nil {
		return "", err
	}
	if buf[0] != 5 {
		return "", errors.New("not SOCKS5")
	}
	if _, err := io.ReadFull(conn, buf[:buf[1]]); err != nil {
		return "", err
	}
	if _, err := conn.Write([]byte{5, 0}); err != nil {
		return "", err
	}

	if _, err := io.ReadFull(conn, buf[:4]); err != nil {
		return "", err
	}
	if buf[1] != 1 {
		return "", errors.New("only CONNECT is supported")
	}

	var host string
	switch buf[3] {
	case 1:
		if _, err := io.ReadFull(conn, buf[:4]); err != nil {
			return "", err
		}
		host = net.IP(buf[:4]).String()
	case 3:
		if _, err := io.ReadFull(conn, buf[:1]); err != nil {
			return "", err
		}
		n := int(buf[0])
		if _, err := io.ReadFull(conn, buf[:n]); err != nil {
			return "", err
		}
		host = string(buf[:n])
	case 4:
		if _, err := io.ReadFull(conn, buf[:16]); err != nil {
			return "", err
		}
		host = net.IP(buf[:16]).String()
	default:
		return "", errors.New("unknown address type")
	}

	if _, err := io.ReadFull(conn, buf[:2]); err != nil {
		return "", err
	}
	port := binary.BigEndian.Uint16(buf[:2])

	return net.JoinHostPort(host, strconv.Itoa(int(port))), nil
}
