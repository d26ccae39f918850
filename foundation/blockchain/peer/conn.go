package peer

import (
	"bufio"
	"net"
	"strings"
	"sync"
)

// Session provides line based reads and writes over a connection.
type Session struct {
	conn net.Conn
	rd   *bufio.Reader
}

// NewSession wraps the connection for line based access.
func NewSession(conn net.Conn) Session {
	return Session{
		conn: conn,
		rd:   bufio.NewReader(conn),
	}
}

// WriteLine sends the message terminated by a newline.
func (s Session) WriteLine(msg string) error {
	_, err := s.conn.Write([]byte(msg + "\n"))
	return err
}

// ReadLine blocks until a full line is received and returns it
// without the line terminator.
func (s Session) ReadLine() (string, error) {
	line, err := s.rd.ReadString('\n')
	if err != nil {
		return "", err
	}

	return strings.TrimRight(line, "\r\n"), nil
}

// Request sends the message and waits for the reply.
func (s Session) Request(msg string) (string, error) {
	if err := s.WriteLine(msg); err != nil {
		return "", err
	}

	return s.ReadLine()
}

// =============================================================================

// Conn represents an established outbound connection to a peer. Only one
// exchange runs over a connection at any given time.
type Conn struct {
	peer    Peer
	mu      sync.Mutex
	conn    net.Conn
	session Session
}

// NewConn wraps the established connection to the peer.
func NewConn(peer Peer, conn net.Conn) *Conn {
	return &Conn{
		peer:    peer,
		conn:    conn,
		session: NewSession(conn),
	}
}

// Peer returns the peer this connection talks to.
func (c *Conn) Peer() Peer {
	return c.peer
}

// Do runs the exchange while holding the connection.
func (c *Conn) Do(exchange func(s Session) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return exchange(c.session)
}

// Close closes the underlying connection.
func (c *Conn) Close() error {
	return c.conn.Close()
}
