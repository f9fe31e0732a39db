// Package smtpwire reads and writes CRLF-terminated SMTP lines and parses
// reply lines into their code and text.
package smtpwire

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// MaxLineLength is the longest reply line accepted, CRLF included
// (RFC 5321 section 4.5.3.1.5).
const MaxLineLength = 512

var (
	// ErrMalformedReply is returned for reply lines without a 3-digit code.
	ErrMalformedReply = errors.New("smtpwire: malformed reply line")
	// ErrLineTooLong is returned when a reply line exceeds MaxLineLength.
	ErrLineTooLong = errors.New("smtpwire: reply line too long")
	// ErrLineBreak is returned for commands containing CR or LF.
	ErrLineBreak = errors.New("smtpwire: command contains a line break")
)

// Reply is a single parsed SMTP reply line.
type Reply struct {
	Code      int
	Continued bool   // true when the code is followed by '-'
	Text      string // everything after the code and separator
	Line      string // the raw line without CRLF
}

// Class returns the first digit of the code.
func (r Reply) Class() int {
	return r.Code / 100
}

// Positive reports a 2xx reply.
func (r Reply) Positive() bool {
	return r.Class() == 2
}

func (r Reply) String() string {
	return r.Line
}

// ParseLine parses one reply line. The 4th character being '-' marks a
// continuation line; a space or nothing marks the final line.
func ParseLine(line string) (Reply, error) {
	line = strings.TrimRight(line, "\r\n")
	if len(line) < 3 {
		return Reply{}, fmt.Errorf("%w: %q", ErrMalformedReply, line)
	}
	for i := 0; i < 3; i++ {
		if line[i] < '0' || line[i] > '9' {
			return Reply{}, fmt.Errorf("%w: %q", ErrMalformedReply, line)
		}
	}
	code, _ := strconv.Atoi(line[:3])

	r := Reply{Code: code, Line: line}
	if len(line) > 3 {
		switch line[3] {
		case '-':
			r.Continued = true
			r.Text = line[4:]
		case ' ':
			r.Text = line[4:]
		default:
			r.Text = line[3:]
		}
	}
	return r, nil
}

// Conn is a line oriented SMTP client connection.
type Conn struct {
	netConn net.Conn
	reader  *bufio.Reader
	writer  *bufio.Writer
}

// NewConn wraps an established connection.
func NewConn(c net.Conn) *Conn {
	return &Conn{
		netConn: c,
		reader:  bufio.NewReaderSize(c, MaxLineLength),
		writer:  bufio.NewWriter(c),
	}
}

// ReadLine returns the next line without its line terminator. Lines longer
// than MaxLineLength fail with ErrLineTooLong.
func (c *Conn) ReadLine() (string, error) {
	line, err := c.reader.ReadSlice('\n')
	if errors.Is(err, bufio.ErrBufferFull) {
		return "", fmt.Errorf("read SMTP line: %w", ErrLineTooLong)
	}
	if err != nil {
		return "", fmt.Errorf("read SMTP line: %w", err)
	}
	return strings.TrimRight(string(line), "\r\n"), nil
}

// WriteLine sends cmd terminated by CRLF. A cmd that would span more than
// one line is refused with ErrLineBreak and nothing is written.
func (c *Conn) WriteLine(cmd string) error {
	if strings.ContainsAny(cmd, "\r\n") {
		return fmt.Errorf("write %q: %w", cmd, ErrLineBreak)
	}
	if _, err := c.writer.WriteString(cmd + "\r\n"); err != nil {
		return fmt.Errorf("write %q: %w", cmd, err)
	}
	if err := c.writer.Flush(); err != nil {
		return fmt.Errorf("write %q: %w", cmd, err)
	}
	return nil
}

// Quit sends QUIT without waiting for the reply (best-effort, ignores errors).
func (c *Conn) Quit() {
	_ = c.netConn.SetWriteDeadline(time.Now().Add(2 * time.Second))
	_ = c.WriteLine("QUIT")
}

// Close closes the underlying connection.
func (c *Conn) Close() error {
	return c.netConn.Close()
}
