package rlogin

// Write sends p to the remote after running it through the same
// client-escape and cooked-mode flow-control scan applied to inbound
// data (steps 2 and 3; the inbound-only escape re-arm does not apply
// here). It reports ErrNotConnected if the handshake hasn't completed
// or the connection has closed, and ErrInputSuspended if a client
// escape has suspended input.
//
// scanBytes returns early on a matched escape pair, so a single call
// to Write may pass through it more than once. Each segment's emitted
// bytes are flushed to the transport before its handler runs, so a
// disconnect mid-Write never drops data that was scanned earlier in
// the same call.
//
// The returned bool reports whether the caller may keep writing
// without pausing; it is true whenever Write succeeds and the
// connection stays open, and false when a client escape disconnected it
// during the call. It is kept for parity with callers written against a
// backpressure-aware sink.
func (c *Connection) Write(p []byte) (bool, error) {
	c.mu.Lock()
	if !c.connected {
		c.mu.Unlock()
		return false, ErrNotConnected
	}
	if c.inputSuspended {
		c.mu.Unlock()
		return false, ErrInputSuspended
	}

	for len(p) > 0 {
		result := c.scanBytes(p, false)
		p = p[result.consumed:]

		if len(result.emit) > 0 {
			c.mu.Unlock()
			if _, err := c.transport.Write(result.emit); err != nil {
				c.handleDisconnect(err)
				return false, err
			}
			c.mu.Lock()
		}

		if result.handler != nil {
			ctx := &EscapeContext{conn: c}
			result.handler(ctx)
			if ctx.disconnect {
				c.mu.Unlock()
				c.handleDisconnect(nil)
				return false, nil
			}
		}
	}
	c.mu.Unlock()

	return true, nil
}

// End writes a final chunk of data, if any, then half-closes the
// connection's write side. The peer's subsequent EOF on its own read
// still flows through OnData/OnClose as usual.
func (c *Connection) End(p []byte) error {
	if len(p) > 0 {
		if _, err := c.Write(p); err != nil {
			return err
		}
	}
	c.mu.Lock()
	if !c.connected {
		c.mu.Unlock()
		return ErrNotConnected
	}
	c.mu.Unlock()
	return c.transport.CloseWrite()
}

// SendWCCS sends a Window Change Control Sequence describing the
// connection's current Properties. Call it after SetProperty to notify
// the server of a terminal resize, or in response to a WINDOW control
// byte (handled automatically by the read loop).
func (c *Connection) SendWCCS() error {
	return c.writeWCCSLocked()
}

func (c *Connection) writeWCCSLocked() error {
	c.mu.Lock()
	if !c.connected {
		c.mu.Unlock()
		return ErrNotConnected
	}
	frame := buildWCCS(c.properties)
	c.mu.Unlock()

	if _, err := c.transport.Write(frame); err != nil {
		c.handleDisconnect(err)
		return err
	}
	return nil
}
