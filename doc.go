// Package rlogin implements an asynchronous client for the RLOGIN remote
// login protocol (RFC 1282). RLOGIN carries a full-duplex byte stream
// between a user-side process and a remote shell over TCP (default server
// port 513), with in-band control bytes that toggle flow control, discard
// pending output, switch between cooked and raw line discipline, and
// request a window-size notification from the client.
//
// Dial or DialProperties opens the connection and performs the initial
// handshake. The returned Connection owns the byte stream: Write and End
// send data to the remote, and the OnData/OnClose/OnError hooks (or the
// Events channel) deliver data received from it. The connection also
// understands a BSD rlogin-style client escape mechanism (~. to
// disconnect by default) and replies to window-size requests with a
// Window Change Control Sequence built from the connection's Properties.
//
// Server-side RLOGIN, the BSD urgent-TCP-mark socket semantics, and
// terminal emulation are outside this package's scope.
package rlogin
