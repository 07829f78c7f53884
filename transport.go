package rlogin

import (
	"io"
	"net"
)

// Transport is the byte-stream abstraction a Connection drives. Dial and
// DialProperties build one around a net.Conn; NewConnection accepts any
// implementation, such as net.Pipe or an in-memory buffer pair.
type Transport interface {
	io.Reader
	io.Writer
	io.Closer

	// CloseWrite half-closes the write side, signaling end-of-stream to
	// the peer without tearing down the read side. Implementations that
	// can't half-close fall back to a full Close.
	CloseWrite() error
}

type closeWriter interface {
	CloseWrite() error
}

// netConnTransport adapts a net.Conn to Transport, using the
// CloseWrite method *net.TCPConn already provides when present.
type netConnTransport struct {
	net.Conn
}

func (t netConnTransport) CloseWrite() error {
	if cw, ok := t.Conn.(closeWriter); ok {
		return cw.CloseWrite()
	}
	return t.Conn.Close()
}
