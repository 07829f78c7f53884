package rlogin

import "io"

// scanResult carries out what a single call to scanBytes discovered so
// the caller can act on it after releasing the connection's mutex.
type scanResult struct {
	emit     []byte
	consumed int
	wantWCCS bool
	handler  EscapeHandler // set when an escape pair matched a table entry
}

// scanBytes is the shared core of inbound and outbound processing:
// client-escape detection (step 2) and cooked-mode flow control (step
// 3). It stops early, reporting a short consumed count, when it hits a
// server control byte or a matched escape pair, so the caller can act
// on that event before resuming the scan. Server control bytes
// (DISCARD/RAW/COOKED/WINDOW) only apply when inbound is true.
//
// The escape watch itself only gates on awaitingEscape when inbound:
// inbound must see the CR+LF pair or a bare CAN to re-arm (step 4)
// before the client escape character is recognized again. Outbound
// has no such precondition, since a Write call carries no notion of
// "start of line" to wait for — the escape character is always live.
//
// Must be called with c.mu held; it never itself touches the
// transport.
func (c *Connection) scanBytes(data []byte, inbound bool) scanResult {
	emit := make([]byte, 0, len(data))

	for i := 0; i < len(data); i++ {
		b := data[i]

		if inbound && !c.sawEscapeChar {
			switch b {
			case ctrlDiscard:
				emit = emit[:0]
				continue
			case ctrlRaw:
				c.setCookedLocked(false)
				continue
			case ctrlCooked:
				c.setCookedLocked(true)
				continue
			case ctrlWindow:
				return scanResult{emit: emit, consumed: i + 1, wantWCCS: true}
			}
		}

		if c.sawEscapeChar {
			c.sawEscapeChar = false
			if handler, ok := c.escapeTable[b]; ok {
				return scanResult{emit: emit, consumed: i + 1, handler: handler}
			}
			emit = append(emit, c.properties.ClientEscape, b)
			if inbound {
				c.awaitingEscape = false
				c.lastWasCR = false
			}
			continue
		}

		if c.cooked {
			switch b {
			case dc1:
				c.outputSuspended = false
				continue
			case dc3:
				c.outputSuspended = true
				continue
			}
		}

		if b == c.properties.ClientEscape && (!inbound || c.awaitingEscape) {
			c.sawEscapeChar = true
			continue
		}

		emit = append(emit, b)

		if inbound {
			if b == can || (b == lf && c.lastWasCR) {
				c.awaitingEscape = true
			} else {
				c.awaitingEscape = false
			}
			c.lastWasCR = b == cr
		}
	}

	if inbound && c.outputSuspended {
		emit = emit[:0]
	}

	return scanResult{emit: emit, consumed: len(data)}
}

func (c *Connection) setCookedLocked(cooked bool) {
	if c.cooked == cooked {
		return
	}
	c.cooked = cooked
	c.pendingModeChange = true
}

// handleChunk processes one read from the transport, firing hooks for
// any data, mode change, WCCS request, or escape-triggered disconnect
// it produces. Runs on the connection's single read-loop goroutine.
//
// scanBytes returns early on a WCCS request or a matched escape pair,
// so a single transport-level chunk may pass through it more than
// once. Their emitted bytes are accumulated here and reported as at
// most one data event for the whole chunk, never one per segment.
func (c *Connection) handleChunk(chunk []byte) {
	var emit []byte

	for len(chunk) > 0 {
		c.mu.Lock()
		result := c.scanBytes(chunk, true)
		modeChanged, newCooked := c.pendingModeChange, c.cooked
		c.pendingModeChange = false
		c.mu.Unlock()

		emit = append(emit, result.emit...)

		if modeChanged {
			c.fireModeChange(newCooked)
		}
		if result.wantWCCS {
			c.writeWCCSLocked()
		}

		if result.handler != nil {
			c.mu.Lock()
			ctx := &EscapeContext{conn: c}
			result.handler(ctx)
			disconnect := ctx.disconnect
			c.mu.Unlock()
			if disconnect {
				c.fireData(emit)
				c.handleDisconnect(nil)
				return
			}
		}

		chunk = chunk[result.consumed:]
	}

	c.fireData(emit)
}

// readLoop drives handleChunk from the transport until it errors or the
// connection closes. It also recognizes the single handshake ack byte
// that precedes ordinary protocol traffic.
func (c *Connection) readLoop() {
	buf := make([]byte, 4096)
	ackSeen := c.skipHandshake

	for {
		n, err := c.transport.Read(buf)
		if n > 0 {
			data := buf[:n]
			if !ackSeen {
				if data[0] != handshakeAck {
					c.handleDisconnect(errHandshakeRejected)
					return
				}
				ackSeen = true
				c.mu.Lock()
				c.connected = true
				c.mu.Unlock()
				close(c.established)
				data = data[1:]
			}
			if len(data) > 0 {
				c.handleChunk(data)
			}
		}
		if err != nil {
			if err == io.EOF {
				c.handleDisconnect(nil)
			} else {
				c.handleDisconnect(err)
			}
			return
		}
	}
}
