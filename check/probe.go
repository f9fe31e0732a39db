package check

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/optimode/emailprobe/internal/denylist"
	"github.com/optimode/emailprobe/internal/smtpwire"
	"github.com/optimode/emailprobe/types"
)

// ProbeConfig is the mailbox probe configuration.
type ProbeConfig struct {
	// Timeout covers the whole SMTP session once connected, and separately
	// bounds connection establishment. Default: 10s
	Timeout time.Duration
	// Port is the SMTP port on the exchange. Default: "25"
	Port string
	// DenyList holds MX host tokens that are never probed. nil means the
	// built-in list; an empty non-nil slice disables the check.
	DenyList []string
	// HeloName is sent with HELO. Default: the probed domain.
	HeloName string
	// MailFrom is sent with MAIL FROM. Default: the probed address.
	MailFrom string
	// Dial opens the proxied connection. Default: DialSOCKS5.
	Dial DialFunc
	// Tracer receives protocol events. Default: none.
	Tracer Tracer
}

// Outcome is the result of a single probe.
type Outcome struct {
	Verdict types.Tristate
	Code    int    // code of the last complete reply, 0 if none
	Reply   string // text of the last complete reply
	Reason  string // why the probe ended
}

// MailboxProbe impersonates a delivery attempt up to RCPT TO to learn
// whether a mailbox exists. A MailboxProbe holds no per-probe state and
// may be used concurrently.
type MailboxProbe struct {
	cfg  ProbeConfig
	deny denylist.List
}

// NewMailboxProbe creates a probe, filling unset config values with defaults.
func NewMailboxProbe(cfg ProbeConfig) *MailboxProbe {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Port == "" {
		cfg.Port = "25"
	}
	if cfg.Dial == nil {
		cfg.Dial = DialSOCKS5
	}
	cfg.Tracer = orNop(cfg.Tracer)

	deny := denylist.Default()
	if cfg.DenyList != nil {
		deny = denylist.New(cfg.DenyList...)
	}
	return &MailboxProbe{cfg: cfg, deny: deny}
}

// Probe connects to exchange through px and walks the SMTP dialogue for
// local@domain. It always returns exactly one Outcome; every network
// failure maps to Unknown.
func (p *MailboxProbe) Probe(ctx context.Context, local, domain, exchange string, px ProxyEndpoint) Outcome {
	if exchange == "" {
		return p.skip(exchange, "no exchange host")
	}
	if tok, ok := p.deny.Match(exchange); ok {
		return p.skip(exchange, fmt.Sprintf("exchange matches deny-listed provider %q", tok))
	}

	address := net.JoinHostPort(exchange, p.cfg.Port)
	p.cfg.Tracer.Trace(TraceEvent{Kind: TraceDial, Host: address, Line: px.Address()})

	dialCtx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	nc, err := p.cfg.Dial(dialCtx, px, address)
	cancel()
	if err != nil {
		o := Outcome{Verdict: types.Unknown, Reason: fmt.Sprintf("connect: %v", err)}
		p.cfg.Tracer.Trace(TraceEvent{Kind: TraceVerdict, Host: exchange, Verdict: o.Verdict, Reason: o.Reason, Err: err})
		return o
	}

	deadline := time.Now().Add(p.cfg.Timeout)
	_ = nc.SetWriteDeadline(deadline)

	s := &session{
		conn:    smtpwire.NewConn(nc),
		host:    exchange,
		tracer:  p.cfg.Tracer,
		pending: p.commands(local, domain),
	}
	return s.run(ctx, p.cfg.Timeout)
}

func (p *MailboxProbe) commands(local, domain string) []string {
	rcpt := local + "@" + domain
	helo := p.cfg.HeloName
	if helo == "" {
		helo = domain
	}
	from := p.cfg.MailFrom
	if from == "" {
		from = rcpt
	}
	return []string{
		"HELO " + helo,
		"MAIL FROM: <" + from + ">",
		"RCPT TO: <" + rcpt + ">",
	}
}

func (p *MailboxProbe) skip(host, reason string) Outcome {
	p.cfg.Tracer.Trace(TraceEvent{Kind: TraceSkip, Host: host, Reason: reason})
	return Outcome{Verdict: types.Unknown, Reason: reason}
}

type eventKind int

const (
	evLine eventKind = iota
	evError
	evTimeout
	evCancel
)

type event struct {
	kind eventKind
	line string
	err  error
}

// session is the state of one probe. It is only touched by the goroutine
// running run; the reader goroutine communicates through events.
type session struct {
	conn    *smtpwire.Conn
	host    string
	tracer  Tracer
	pending []string

	greeted  bool
	contCode int      // code of the multiline reply being collected
	contText []string // text of its continuation lines

	resolved bool
	outcome  Outcome
}

// run feeds socket lines, socket errors, the session timer and context
// cancellation into handle until the session resolves.
func (s *session) run(ctx context.Context, timeout time.Duration) Outcome {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	events := make(chan event)
	done := make(chan struct{})
	defer close(done)
	go readLines(s.conn, events, done)

	for !s.resolved {
		select {
		case ev := <-events:
			s.handle(ev)
		case <-timer.C:
			s.handle(event{kind: evTimeout})
		case <-ctx.Done():
			s.handle(event{kind: evCancel, err: ctx.Err()})
		}
	}
	return s.outcome
}

func readLines(c *smtpwire.Conn, events chan<- event, done <-chan struct{}) {
	for {
		line, err := c.ReadLine()
		ev := event{kind: evLine, line: line}
		if err != nil {
			ev = event{kind: evError, err: err}
		}
		select {
		case events <- ev:
		case <-done:
			return
		}
		if err != nil {
			return
		}
	}
}

// handle applies one event. Events after resolution are ignored.
func (s *session) handle(ev event) {
	if s.resolved {
		return
	}
	switch ev.kind {
	case evTimeout:
		s.resolve(types.Unknown, "timeout", true)
	case evCancel:
		s.resolve(types.Unknown, fmt.Sprintf("cancelled: %v", ev.err), true)
	case evError:
		s.resolve(types.Unknown, fmt.Sprintf("socket: %v", ev.err), false)
	case evLine:
		s.handleLine(ev.line)
	}
}

func (s *session) handleLine(line string) {
	s.tracer.Trace(TraceEvent{Kind: TraceRecv, Host: s.host, Line: line})

	r, err := smtpwire.ParseLine(line)
	if err != nil {
		s.resolve(types.Unknown, fmt.Sprintf("protocol: %v", err), true)
		return
	}

	if len(s.contText) > 0 && r.Code != s.contCode {
		s.resolve(types.Unknown, fmt.Sprintf("protocol: reply code changed from %d to %d", s.contCode, r.Code), true)
		return
	}
	if r.Continued {
		s.contCode = r.Code
		s.contText = append(s.contText, r.Text)
		return
	}

	if len(s.contText) > 0 {
		r.Text = strings.Join(append(s.contText, r.Text), " ")
		s.contText = nil
	}
	s.outcome.Code = r.Code
	s.outcome.Reply = r.Text

	if !s.greeted {
		s.greeted = true
		if !r.Positive() {
			s.resolve(types.Unknown, fmt.Sprintf("unexpected greeting %d", r.Code), true)
			return
		}
		s.next()
		return
	}

	verdict, terminal := ClassifyReply(r)
	switch {
	case terminal && verdict == types.False:
		s.resolve(verdict, "mailbox rejected", true)
	case terminal && verdict == types.True:
		s.resolve(verdict, "accepted despite ratware warning", true)
	case terminal:
		s.resolve(verdict, fmt.Sprintf("unexpected reply %d", r.Code), true)
	case len(s.pending) == 0:
		s.resolve(types.True, "recipient accepted", true)
	default:
		s.next()
	}
}

// next sends the next queued command.
func (s *session) next() {
	cmd := s.pending[0]
	s.pending = s.pending[1:]
	s.tracer.Trace(TraceEvent{Kind: TraceSend, Host: s.host, Line: cmd})
	err := s.conn.WriteLine(cmd)
	switch {
	case errors.Is(err, smtpwire.ErrLineBreak):
		s.resolve(types.Unknown, fmt.Sprintf("protocol: %v", err), true)
	case err != nil:
		s.resolve(types.Unknown, fmt.Sprintf("socket: %v", err), false)
	}
}

// resolve records the verdict and releases the connection. QUIT is only
// attempted while the socket is still usable.
func (s *session) resolve(v types.Tristate, reason string, quit bool) {
	s.resolved = true
	s.outcome.Verdict = v
	s.outcome.Reason = reason

	if quit {
		s.conn.Quit()
	}
	_ = s.conn.Close()

	s.tracer.Trace(TraceEvent{Kind: TraceVerdict, Host: s.host, Verdict: v, Reason: reason})
}
