package rlogin

import (
	"sync"
)

// modeFlags holds the in-band state toggled by control bytes and client
// escapes. It's always accessed with Connection.mu held.
type modeFlags struct {
	cooked            bool
	inputSuspended    bool
	outputSuspended   bool
	awaitingEscape    bool // the next byte may start a client escape: start of stream, or the LF of a CR+LF pair, or CAN
	lastWasCR         bool // the previous inbound byte was CR, so a following LF re-arms the escape watch
	sawEscapeChar     bool // the client escape character was just seen; next byte selects the handler
	pendingModeChange bool // cooked flag changed during the scan in progress
}

// Connection is an established RLOGIN session. The zero value isn't
// usable; obtain one from Dial or DialProperties.
//
// A Connection is safe for concurrent use: Write, End, SendWCCS, the
// accessors, and the hook registration methods may all be called from
// any goroutine. Exactly one goroutine (the one started by Dial or
// NewConnection) drives the read loop and fires data and mode-change
// hooks; OnError and OnClose hooks fire on whichever goroutine tears the
// connection down, which may be a caller of Close or Write.
type Connection struct {
	transport Transport

	mu          sync.Mutex
	modeFlags
	properties  Properties
	escapeTable map[byte]EscapeHandler
	connected   bool
	torndown    bool
	closeErr    error

	skipHandshake bool
	established   chan struct{}
	closed        chan struct{}

	dataHooks  eventPublisher[DataHandler]
	closeHooks eventPublisher[CloseHandler]
	errorHooks eventPublisher[ErrorHandler]
	modeHooks  eventPublisher[ModeHandler]
}

func newConnection(transport Transport, props Properties) *Connection {
	return &Connection{
		transport:   transport,
		modeFlags:   modeFlags{cooked: true, awaitingEscape: true},
		properties:  props,
		escapeTable: defaultEscapeTable(),
		established: make(chan struct{}),
		closed:      make(chan struct{}),
	}
}

// IsConnected reports whether the handshake has completed and Close
// hasn't been called yet.
func (c *Connection) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// IsCooked reports whether the connection is currently in cooked mode
// (DC1/DC3 are intercepted as flow control) as opposed to raw.
func (c *Connection) IsCooked() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cooked
}

// Properties returns a copy of the connection's current client
// properties.
func (c *Connection) Properties() Properties {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.properties
}

// SetProperty replaces the connection's properties wholesale. It does
// not itself trigger a Window Change Control Sequence; call SendWCCS to
// notify the server of the change.
func (c *Connection) SetProperty(p Properties) error {
	if err := p.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.properties = p
	return nil
}

// SetClientEscape changes the byte that introduces a client escape
// sequence on the inbound and outbound streams.
func (c *Connection) SetClientEscape(b byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.properties.ClientEscape = b
}

// SetClientEscapeString is the string-keyed form of SetClientEscape. s
// must be exactly one byte long.
func (c *Connection) SetClientEscapeString(s string) error {
	if len(s) != 1 {
		return errInvalidSetting("clientEscape", s)
	}
	c.SetClientEscape(s[0])
	return nil
}

// OnData registers a handler invoked with each chunk of data emitted by
// the connection, framing stripped. It returns a token usable with
// RemoveDataHook.
func (c *Connection) OnData(handler DataHandler) EventHook {
	return c.dataHooks.Add(handler)
}

// RemoveDataHook unregisters a handler added with OnData.
func (c *Connection) RemoveDataHook(id EventHook) {
	c.dataHooks.Remove(id)
}

// OnClose registers a handler invoked exactly once when the connection
// closes, carrying the error that caused the close (nil for a clean,
// caller-initiated Close).
func (c *Connection) OnClose(handler CloseHandler) EventHook {
	return c.closeHooks.Add(handler)
}

// RemoveCloseHook unregisters a handler added with OnClose.
func (c *Connection) RemoveCloseHook(id EventHook) {
	c.closeHooks.Remove(id)
}

// OnError registers a handler invoked whenever a connection-ending
// error occurs, just before the corresponding OnClose notification.
func (c *Connection) OnError(handler ErrorHandler) EventHook {
	return c.errorHooks.Add(handler)
}

// RemoveErrorHook unregisters a handler added with OnError.
func (c *Connection) RemoveErrorHook(id EventHook) {
	c.errorHooks.Remove(id)
}

// OnModeChange registers a handler invoked whenever the connection
// transitions between cooked and raw line discipline.
func (c *Connection) OnModeChange(handler ModeHandler) EventHook {
	return c.modeHooks.Add(handler)
}

// RemoveModeHook unregisters a handler added with OnModeChange.
func (c *Connection) RemoveModeHook(id EventHook) {
	c.modeHooks.Remove(id)
}

// Close tears the connection down, firing OnClose hooks with a nil
// error if it hadn't already closed. Safe to call more than once and
// from any goroutine.
func (c *Connection) Close() error {
	return c.handleDisconnect(nil)
}

// handleDisconnect closes the connection exactly once, recording err as
// the cause reported to OnClose hooks. Subsequent calls are no-ops.
func (c *Connection) handleDisconnect(err error) error {
	c.mu.Lock()
	if c.torndown {
		c.mu.Unlock()
		return nil
	}
	c.torndown = true
	c.connected = false
	c.closeErr = err
	c.mu.Unlock()

	closeErr := c.transport.Close()
	close(c.closed)
	if err != nil {
		c.fireError(err)
	}
	c.closeHooks.fire(func(h CloseHandler) { h(err) })
	if err == nil {
		return closeErr
	}
	return err
}

func (c *Connection) fireError(err error) {
	c.errorHooks.fire(func(h ErrorHandler) { h(err) })
}

func (c *Connection) fireData(data []byte) {
	if len(data) == 0 {
		return
	}
	c.dataHooks.fire(func(h DataHandler) { h(data) })
}

func (c *Connection) fireModeChange(cooked bool) {
	c.modeHooks.fire(func(h ModeHandler) { h(cooked) })
}
