package rlogin

// In-band control bytes sent by the server, interpreted by the state
// machine and never forwarded to the consumer.
const (
	ctrlDiscard byte = 0x02 // discard data buffered-but-not-emitted from the current chunk
	ctrlRaw     byte = 0x10 // enter raw mode: stop interpreting DC1/DC3
	ctrlCooked  byte = 0x20 // enter cooked mode
	ctrlWindow  byte = 0x80 // request a Window Change Control Sequence
)

// Cooked-mode flow control bytes. These are only intercepted while cooked;
// in raw mode they pass through as ordinary data.
const (
	dc1 byte = 0x11 // XON, resumes output emission
	dc3 byte = 0x13 // XOFF, suspends output emission
)

// Bytes that re-arm the client-escape watch on the inbound stream.
const (
	cr  byte = 0x0D
	lf  byte = 0x0A
	can byte = 0x18
)

// Built-in client-escape table entries, keyed on the byte following the
// escape character.
const (
	escDisconnectDot byte = 0x2E // '.'
	escDisconnectEOT byte = 0x04 // EOT
	escSuspendBoth   byte = 0x1A // SUB
	escSuspendInput  byte = 0x19 // EOM
)

// handshakeAck is the single byte the server sends once it has accepted
// the four-string handshake.
const handshakeAck byte = 0x00

// defaultClientEscape is the client escape byte used when Properties
// aren't given one explicitly, matching BSD rlogin's '~'.
const defaultClientEscape byte = '~'

// wccsMagic is the four-byte prefix identifying a Window Change Control
// Sequence frame.
var wccsMagic = [4]byte{0xFF, 0xFF, 's', 's'}

func putUint16LE(b []byte, v uint16) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
}

// buildWCCS renders the 12-byte Window Change Control Sequence frame for
// the given geometry: magic prefix followed by rows, columns, pixelsX,
// and pixelsY as little-endian u16 fields.
func buildWCCS(p Properties) []byte {
	frame := make([]byte, 12)
	copy(frame[0:4], wccsMagic[:])
	putUint16LE(frame[4:6], uint16(p.Rows))
	putUint16LE(frame[6:8], uint16(p.Columns))
	putUint16LE(frame[8:10], uint16(p.PixelsX))
	putUint16LE(frame[10:12], uint16(p.PixelsY))
	return frame
}
