package wire

import (
	"bufio"
	"net"
)

// Conn pairs a net.Conn with the buffered reader Recv needs, so a caller can
// interleave SetDeadline calls with Send/Recv on the same connection.
type Conn struct {
	net.Conn
	r *bufio.Reader
}

// NewConn wraps a net.Conn for framed JSON message exchange.
func NewConn(c net.Conn) *Conn {
	return &Conn{Conn: c, r: bufio.NewReader(c)}
}

// Send writes one framed message.
func (c *Conn) Send(m Message) error {
	return Send(c.Conn, m)
}

// Recv reads and decodes one framed message, honoring any deadline set via
// SetReadDeadline/SetDeadline on the underlying net.Conn.
func (c *Conn) Recv() (Message, error) {
	return Recv(c.r)
}
