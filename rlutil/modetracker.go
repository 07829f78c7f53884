// Package rlutil provides optional helpers built on top of the hooks
// exposed by rlogin.Connection: a cooked/raw mode tracker and a
// structured debug logger.
package rlutil

import (
	"sync/atomic"

	"github.com/rloginhq/rlogin"
)

// ModeTracker mirrors a Connection's cooked/raw state so callers that
// only poll (rather than reacting to OnModeChange themselves) can read
// the current mode without taking the connection's own lock.
//
// It installs its own OnModeChange hook, so it observes every
// transition even when a chunk carries a mode change but no data (the
// case OnData alone would miss).
type ModeTracker struct {
	conn   *rlogin.Connection
	cooked atomic.Bool
	hook   rlogin.EventHook
}

// NewModeTracker attaches a tracker to conn, seeded with its current
// mode.
func NewModeTracker(conn *rlogin.Connection) *ModeTracker {
	t := &ModeTracker{conn: conn}
	t.cooked.Store(conn.IsCooked())
	t.hook = conn.OnModeChange(t.onModeChange)
	return t
}

func (t *ModeTracker) onModeChange(cooked bool) {
	t.cooked.Store(cooked)
}

// Cooked reports the most recently observed mode.
func (t *ModeTracker) Cooked() bool {
	return t.cooked.Load()
}

// Close stops the tracker from observing further transitions.
func (t *ModeTracker) Close() {
	t.conn.RemoveModeHook(t.hook)
}
