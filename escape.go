package rlogin

// EscapeHandler reacts to a client escape sequence recognized on the
// inbound or outbound stream. It runs with the connection's internal
// state already locked; use the supplied EscapeContext rather than
// calling back into the Connection directly.
type EscapeHandler func(ctx *EscapeContext)

// EscapeContext is passed to an EscapeHandler. It exposes the subset of
// connection state that's safe to touch while the read loop's mutex is
// held, and records a disconnect request for the caller to act on once
// the lock is released.
type EscapeContext struct {
	conn       *Connection
	disconnect bool
}

// SuspendInput stops Write from accepting new data until ResumeInput is
// called. Mirrors the effect of the built-in EOM escape.
func (c *EscapeContext) SuspendInput() {
	c.conn.inputSuspended = true
}

// ResumeInput reverses SuspendInput.
func (c *EscapeContext) ResumeInput() {
	c.conn.inputSuspended = false
}

// SuspendOutput stops emitting inbound data until ResumeOutput is
// called. Mirrors the effect of the built-in SUB escape.
func (c *EscapeContext) SuspendOutput() {
	c.conn.outputSuspended = true
}

// ResumeOutput reverses SuspendOutput.
func (c *EscapeContext) ResumeOutput() {
	c.conn.outputSuspended = false
}

// RequestDisconnect marks the connection for closing as soon as the
// handler returns; the rest of the chunk or Write buffer is not
// processed. It does not close the connection itself, since the state
// mutex is still held by the caller.
func (c *EscapeContext) RequestDisconnect() {
	c.disconnect = true
}

func defaultEscapeTable() map[byte]EscapeHandler {
	return map[byte]EscapeHandler{
		escDisconnectDot: escDisconnect,
		escDisconnectEOT: escDisconnect,
		escSuspendBoth:   escToggleSuspendBoth,
		escSuspendInput:  escToggleSuspendInputOnly,
	}
}

func escDisconnect(ctx *EscapeContext) {
	ctx.RequestDisconnect()
}

func escToggleSuspendBoth(ctx *EscapeContext) {
	if ctx.conn.inputSuspended || ctx.conn.outputSuspended {
		ctx.ResumeInput()
		ctx.ResumeOutput()
		return
	}
	ctx.SuspendInput()
	ctx.SuspendOutput()
}

func escToggleSuspendInputOnly(ctx *EscapeContext) {
	if ctx.conn.inputSuspended {
		ctx.ResumeInput()
	} else {
		ctx.SuspendInput()
	}
	ctx.ResumeOutput()
}

// AddClientEscape registers a handler for the escape byte b, following
// the client escape character on the inbound or outbound stream. It
// replaces any existing handler for b, including a built-in one, and
// returns c for chaining.
func (c *Connection) AddClientEscape(b byte, handler EscapeHandler) *Connection {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.escapeTable[b] = handler
	return c
}

// AddClientEscapeString is the string-keyed form of AddClientEscape. s
// must be exactly one byte long. It returns only the error, not the
// Connection.
func (c *Connection) AddClientEscapeString(s string, handler EscapeHandler) error {
	if len(s) != 1 {
		return errInvalidEscapeString
	}
	c.AddClientEscape(s[0], handler)
	return nil
}
