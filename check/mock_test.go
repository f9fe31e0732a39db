package check_test

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/optimode/emailprobe/check"
)

// mockSMTPServer plays the server side of a net.Pipe. Replies are picked
// by command prefix; a command without a reply gets no answer.
type mockSMTPServer struct {
	greeting []string
	replies  map[string][]string
	silent   bool // never send anything, only read

	mu       sync.Mutex
	received []string
	dialed   []string
	done     chan struct{}
}

func newMockSMTPServer(greeting []string, replies map[string][]string) *mockSMTPServer {
	return &mockSMTPServer{
		greeting: greeting,
		replies:  replies,
		done:     make(chan struct{}),
	}
}

func (m *mockSMTPServer) dial(_ context.Context, _ check.ProxyEndpoint, address string) (net.Conn, error) {
	m.mu.Lock()
	m.dialed = append(m.dialed, address)
	m.mu.Unlock()

	client, server := net.Pipe()
	go m.serve(server)
	return client, nil
}

func (m *mockSMTPServer) serve(conn net.Conn) {
	defer close(m.done)
	defer func() { _ = conn.Close() }()

	if !m.silent {
		for _, l := range m.greeting {
			if _, err := fmt.Fprintf(conn, "%s\r\n", l); err != nil {
				return
			}
		}
	}

	r := bufio.NewReader(conn)
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		cmd := strings.TrimRight(line, "\r\n")
		m.mu.Lock()
		m.received = append(m.received, cmd)
		m.mu.Unlock()

		if cmd == "QUIT" {
			_, _ = fmt.Fprintf(conn, "221 Bye\r\n")
			return
		}
		if m.silent {
			continue
		}
		for prefix, lines := range m.replies {
			if strings.HasPrefix(cmd, prefix) {
				for _, l := range lines {
					_, _ = fmt.Fprintf(conn, "%s\r\n", l)
				}
				break
			}
		}
	}
}

// wait blocks until the server side has finished or the limit passes.
func (m *mockSMTPServer) wait(limit time.Duration) bool {
	select {
	case <-m.done:
		return true
	case <-time.After(limit):
		return false
	}
}

func (m *mockSMTPServer) commands() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.received...)
}

func (m *mockSMTPServer) dials() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.dialed...)
}

func okReplies() map[string][]string {
	return map[string][]string{
		"HELO":      {"250 OK"},
		"MAIL FROM": {"250 OK"},
		"RCPT TO":   {"250 OK"},
	}
}
