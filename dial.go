package rlogin

import (
	"context"
	"fmt"
	"net"
	"time"
)

// Dial opens an RLOGIN connection using default Properties (see
// DefaultProperties) and blocks until the handshake completes or fails.
func Dial(opts Options) (*Connection, error) {
	return DialProperties(opts, DefaultProperties())
}

// DialProperties is Dial with explicit client Properties, sent to the
// server if it requests a Window Change Control Sequence.
func DialProperties(opts Options, props Properties) (*Connection, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := props.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(opts.Context, time.Duration(opts.ConnectTimeout)*time.Second)
	defer cancel()

	dialer := &net.Dialer{}
	addr := fmt.Sprintf("%s:%d", opts.Host, opts.Port)
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}

	c := newConnection(netConnTransport{Conn: conn}, props)

	if err := writeHandshake(conn, opts); err != nil {
		conn.Close()
		return nil, err
	}

	go c.readLoop()

	select {
	case <-c.established:
		return c, nil
	case <-ctx.Done():
		c.handleDisconnect(ctx.Err())
		return nil, ctx.Err()
	}
}

// writeHandshake sends the four NUL-delimited RLOGIN handshake fields:
// a leading NUL, the client-side user name, the server-side user name,
// and the terminal type optionally suffixed with "/speed".
func writeHandshake(conn net.Conn, opts Options) error {
	termField := opts.TermType
	if opts.TermSpeed != "" {
		termField += "/" + opts.TermSpeed
	}

	handshake := make([]byte, 0, 1+len(opts.ClientUser)+1+len(opts.ServerUser)+1+len(termField)+1)
	handshake = append(handshake, 0)
	handshake = append(handshake, opts.ClientUser...)
	handshake = append(handshake, 0)
	handshake = append(handshake, opts.ServerUser...)
	handshake = append(handshake, 0)
	handshake = append(handshake, termField...)
	handshake = append(handshake, 0)

	_, err := conn.Write(handshake)
	return err
}

// NewConnection wraps an already-established Transport in a Connection
// without performing a handshake, for use with transports Dial doesn't
// know how to build, or in tests.
func NewConnection(transport Transport, props Properties) *Connection {
	c := newConnection(transport, props)
	c.skipHandshake = true
	c.connected = true
	close(c.established)
	go c.readLoop()
	return c
}
