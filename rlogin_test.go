package rlogin

import (
	"bytes"
	"errors"
	"io"
	"sync"
	"testing"
	"time"
)

// pipeTransport is an in-memory Transport built on a bytes.Buffer and a
// sync.Cond so tests can drive a Connection without a real socket.
type pipeTransport struct {
	mu       sync.Mutex
	toClient bytes.Buffer
	cond     *sync.Cond
	closed   bool

	written [][]byte
}

func newPipeTransport() *pipeTransport {
	t := &pipeTransport{}
	t.cond = sync.NewCond(&t.mu)
	return t
}

func (t *pipeTransport) serverSend(data []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.toClient.Write(data)
	t.cond.Broadcast()
}

func (t *pipeTransport) Read(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for t.toClient.Len() == 0 && !t.closed {
		t.cond.Wait()
	}
	if t.toClient.Len() == 0 && t.closed {
		return 0, io.EOF
	}
	return t.toClient.Read(p)
}

func (t *pipeTransport) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	cp := append([]byte(nil), p...)
	t.written = append(t.written, cp)
	return len(p), nil
}

func (t *pipeTransport) CloseWrite() error {
	return nil
}

func (t *pipeTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	t.cond.Broadcast()
	return nil
}

func (t *pipeTransport) writtenBytes() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []byte
	for _, w := range t.written {
		out = append(out, w...)
	}
	return out
}

func dialPipe(t *testing.T) (*Connection, *pipeTransport) {
	t.Helper()
	pt := newPipeTransport()
	conn := newConnection(pt, DefaultProperties())
	go conn.readLoop()
	pt.serverSend([]byte{handshakeAck})
	select {
	case <-conn.established:
	case <-time.After(time.Second):
		t.Fatal("handshake never completed")
	}
	return conn, pt
}

func collectData(conn *Connection) *syncBuffer {
	buf := &syncBuffer{}
	conn.OnData(buf.append)
	return buf
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *syncBuffer) append(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf.Write(data)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

func TestHandshakeThenData(t *testing.T) {
	conn, pt := dialPipe(t)
	defer conn.Close()

	buf := collectData(conn)
	pt.serverSend([]byte("hello"))

	waitFor(t, func() bool { return buf.String() == "hello" })
}

func TestHandshakeRejected(t *testing.T) {
	pt := newPipeTransport()
	conn := newConnection(pt, DefaultProperties())
	closed := make(chan error, 1)
	conn.OnClose(func(err error) { closed <- err })
	go conn.readLoop()

	pt.serverSend([]byte{0x01})

	select {
	case err := <-closed:
		if !errors.Is(err, errHandshakeRejected) {
			t.Errorf("close err = %v, want errHandshakeRejected", err)
		}
	case <-time.After(time.Second):
		t.Fatal("connection never closed")
	}
}

func TestRawModeFlowControlBytesPassThrough(t *testing.T) {
	conn, pt := dialPipe(t)
	defer conn.Close()

	buf := collectData(conn)
	pt.serverSend([]byte{ctrlRaw})
	pt.serverSend([]byte("BeginStart"))
	pt.serverSend([]byte{dc1})
	pt.serverSend([]byte("Stop"))
	pt.serverSend([]byte{dc3})
	pt.serverSend([]byte("End"))

	want := "BeginStart\x11Stop\x13End"
	waitFor(t, func() bool { return buf.String() == want })
}

func TestCookedModeFlowControlSuppressesChunk(t *testing.T) {
	conn, pt := dialPipe(t)
	defer conn.Close()

	buf := collectData(conn)

	// Entirely separate chunk arriving while output remains suspended is
	// discarded wholesale.
	pt.serverSend([]byte{dc3})
	pt.serverSend([]byte("Dropped"))
	time.Sleep(20 * time.Millisecond)
	if got := buf.String(); got != "" {
		t.Fatalf("buf = %q, want empty while suspended", got)
	}

	pt.serverSend([]byte{dc1})
	pt.serverSend([]byte("Visible"))

	waitFor(t, func() bool { return buf.String() == "Visible" })
}

func TestDiscardControlByteDropsBufferedChunk(t *testing.T) {
	conn, pt := dialPipe(t)
	defer conn.Close()

	buf := collectData(conn)
	pt.serverSend(append(append([]byte("partial"), ctrlDiscard), []byte("kept")...))

	waitFor(t, func() bool { return buf.String() == "kept" })
}

func TestWindowControlByteTriggersWCCS(t *testing.T) {
	conn, pt := dialPipe(t)
	defer conn.Close()

	before := len(pt.writtenBytes())
	pt.serverSend([]byte{ctrlWindow})

	waitFor(t, func() bool { return len(pt.writtenBytes()) > before })

	frame := pt.writtenBytes()[before:]
	want := buildWCCS(DefaultProperties())
	if !bytes.Equal(frame, want) {
		t.Errorf("WCCS frame = % x, want % x", frame, want)
	}
}

func TestClientEscapeDisconnect(t *testing.T) {
	conn, pt := dialPipe(t)

	buf := collectData(conn)
	closed := make(chan struct{})
	conn.OnClose(func(err error) { close(closed) })

	pt.serverSend([]byte("Hello\r\n~."))

	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("connection never closed after ~.")
	}

	if got := buf.String(); got != "Hello\r\n" {
		t.Errorf("buf = %q, want %q", got, "Hello\r\n")
	}
	if conn.IsConnected() {
		t.Error("IsConnected() = true after disconnect escape")
	}
}

func TestClientEscapeUnknownSelectorPassesThrough(t *testing.T) {
	conn, pt := dialPipe(t)
	defer conn.Close()

	buf := collectData(conn)
	pt.serverSend([]byte("~x"))

	waitFor(t, func() bool { return buf.String() == "~x" })
}

func TestModeChangeHookFiresEvenWithoutData(t *testing.T) {
	conn, pt := dialPipe(t)
	defer conn.Close()

	changes := make(chan bool, 4)
	conn.OnModeChange(func(cooked bool) { changes <- cooked })

	pt.serverSend([]byte{ctrlRaw})

	select {
	case cooked := <-changes:
		if cooked {
			t.Error("cooked = true, want false after RAW control byte")
		}
	case <-time.After(time.Second):
		t.Fatal("OnModeChange never fired")
	}
	if conn.IsCooked() {
		t.Error("IsCooked() = true after RAW control byte")
	}
}

func TestWritePassesDataThrough(t *testing.T) {
	conn, pt := dialPipe(t)
	defer conn.Close()

	if _, err := conn.Write([]byte("hi")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := pt.writtenBytes(); string(got) != "hi" {
		t.Errorf("written = %q, want %q", got, "hi")
	}
}

func TestWriteEscapeRecognizedAcrossCalls(t *testing.T) {
	conn, pt := dialPipe(t)

	closed := make(chan struct{})
	conn.OnClose(func(err error) { close(closed) })

	if _, err := conn.Write([]byte("Hello")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := conn.Write([]byte("World~.")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("connection never closed after ~.")
	}

	if got := pt.writtenBytes(); string(got) != "HelloWorld" {
		t.Errorf("written = %q, want %q", got, "HelloWorld")
	}
}

func TestWriteNotConnected(t *testing.T) {
	pt := newPipeTransport()
	conn := newConnection(pt, DefaultProperties())

	if _, err := conn.Write([]byte("x")); !errors.Is(err, ErrNotConnected) {
		t.Errorf("err = %v, want ErrNotConnected", err)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	conn, _ := dialPipe(t)

	var fires int
	conn.OnClose(func(err error) { fires++ })

	if err := conn.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := conn.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if fires != 1 {
		t.Errorf("OnClose fired %d times, want 1", fires)
	}
}

func TestOptionsValidateDefaults(t *testing.T) {
	opts := Options{Host: "h", ClientUser: "c", ServerUser: "s", TermType: "t"}
	if err := opts.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if opts.Port != 513 {
		t.Errorf("Port = %d, want 513", opts.Port)
	}
	if opts.ConnectTimeout != 10 {
		t.Errorf("ConnectTimeout = %d, want 10", opts.ConnectTimeout)
	}
}

func TestOptionsValidateMissingFields(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"missing host", Options{ClientUser: "c", ServerUser: "s", TermType: "t"}},
		{"missing clientUser", Options{Host: "h", ServerUser: "s", TermType: "t"}},
		{"missing serverUser", Options{Host: "h", ClientUser: "c", TermType: "t"}},
		{"missing termType", Options{Host: "h", ClientUser: "c", ServerUser: "s"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.opts.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestPropertiesValidateRange(t *testing.T) {
	p := DefaultProperties()
	p.Rows = -1
	err := p.Validate()
	if err == nil {
		t.Fatal("Validate() = nil, want error for negative rows")
	}
	if want := "Invalid 'rows' setting -1"; err.Error() != want {
		t.Errorf("Validate() error = %q, want %q", err.Error(), want)
	}
}

func TestPropertiesValidateZeroRejected(t *testing.T) {
	p := DefaultProperties()
	p.Rows = 0
	if err := p.Validate(); err == nil {
		t.Error("Validate() = nil, want error for zero rows")
	}
}

func TestAddClientEscapeStringInvalidArgument(t *testing.T) {
	conn, _ := dialPipe(t)
	defer conn.Close()

	err := conn.AddClientEscapeString("too long", escDisconnect)
	if want := "addClientEscape: invalid string argument"; err == nil || err.Error() != want {
		t.Errorf("err = %v, want %q", err, want)
	}
}

func TestSetClientEscapeStringInvalidArgument(t *testing.T) {
	conn, _ := dialPipe(t)
	defer conn.Close()

	err := conn.SetClientEscapeString("too long")
	if want := "Invalid 'clientEscape' setting too long"; err == nil || err.Error() != want {
		t.Errorf("err = %v, want %q", err, want)
	}
}

func TestBuildWCCSDefaultProperties(t *testing.T) {
	frame := buildWCCS(DefaultProperties())
	want := []byte{0xFF, 0xFF, 's', 's', 0x18, 0x00, 0x50, 0x00, 0x80, 0x02, 0xE0, 0x01}
	if !bytes.Equal(frame, want) {
		t.Errorf("frame = % x, want % x", frame, want)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition never became true")
}
