package rlogin

import "context"

// Options configures a call to Dial. Host and the four handshake strings
// travel over the wire; ConnectTimeout and Context only affect the local
// side: the TCP dial and the wait for the handshake ack.
type Options struct {
	// Host is the remote host to dial. Required.
	Host string

	// Port is the remote TCP port. Defaults to 513 when zero.
	Port int

	// ClientUser is the user name on the client side of the handshake.
	// Required.
	ClientUser string

	// ServerUser is the user name to log in as on the remote host.
	// Required.
	ServerUser string

	// TermType is the terminal type string, e.g. "xterm-256color".
	// Required.
	TermType string

	// TermSpeed is the terminal speed string, e.g. "38400". Optional;
	// when empty no speed suffix is appended to the terminal type field.
	TermSpeed string

	// ConnectTimeout bounds how long Dial waits for the TCP connection
	// and the handshake ack. Defaults to 10 seconds when zero.
	ConnectTimeout int

	// Context, if set, is used for the TCP dial and the handshake-ack
	// wait in place of context.Background(). ConnectTimeout still
	// applies on top of it.
	Context context.Context
}

// Validate checks required fields and applies defaults, returning a
// *ValidationError describing the first problem found.
func (o *Options) Validate() error {
	if o.Host == "" {
		return errMissingOption("host")
	}
	if o.ClientUser == "" {
		return errMissingOption("clientUser")
	}
	if o.ServerUser == "" {
		return errMissingOption("serverUser")
	}
	if o.TermType == "" {
		return errMissingOption("termType")
	}
	if o.Port == 0 {
		o.Port = 513
	}
	if o.Port < 0 || o.Port > 65535 {
		return errInvalidSetting("port", o.Port)
	}
	if o.ConnectTimeout == 0 {
		o.ConnectTimeout = 10
	}
	if o.ConnectTimeout < 0 {
		return errInvalidSetting("connectTimeout", o.ConnectTimeout)
	}
	if o.Context == nil {
		o.Context = context.Background()
	}
	return nil
}

// Properties describes the client-side state a connection reports back to
// the server: terminal geometry (for Window Change Control Sequences) and
// the byte that introduces a client escape.
type Properties struct {
	Rows         int
	Columns      int
	PixelsX      int
	PixelsY      int
	ClientEscape byte
}

// DefaultProperties returns the properties assumed when Dial is called
// without an explicit Properties value: an 80x24 terminal of 640x480
// pixels and '~' as the client escape.
func DefaultProperties() Properties {
	return Properties{
		Rows:         24,
		Columns:      80,
		PixelsX:      640,
		PixelsY:      480,
		ClientEscape: defaultClientEscape,
	}
}

// Validate checks that Rows, Columns, PixelsX and PixelsY are strictly
// positive and fit in 16 bits. ClientEscape is not checked.
func (p *Properties) Validate() error {
	if p.Rows <= 0 || p.Rows > 65535 {
		return errInvalidSetting("rows", p.Rows)
	}
	if p.Columns <= 0 || p.Columns > 65535 {
		return errInvalidSetting("columns", p.Columns)
	}
	if p.PixelsX <= 0 || p.PixelsX > 65535 {
		return errInvalidSetting("pixelsX", p.PixelsX)
	}
	if p.PixelsY <= 0 || p.PixelsY > 65535 {
		return errInvalidSetting("pixelsY", p.PixelsY)
	}
	return nil
}
