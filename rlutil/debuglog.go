package rlutil

import (
	"context"
	"log/slog"

	"github.com/rloginhq/rlogin"
)

// LevelNone suppresses a DebugLog category entirely.
const LevelNone slog.Level = -8

// DebugLogConfig sets the level each category of connection event is
// logged at. Set a field to LevelNone to drop that category.
type DebugLogConfig struct {
	DataLevel       slog.Level
	ErrorLevel      slog.Level
	CloseLevel      slog.Level
	ModeChangeLevel slog.Level
}

// DebugLog wires a Connection's hooks to a slog.Logger, for inspecting
// traffic and state transitions during development.
type DebugLog struct {
	logger *slog.Logger
	config DebugLogConfig
}

// NewDebugLog attaches a DebugLog to conn and returns it.
func NewDebugLog(conn *rlogin.Connection, logger *slog.Logger, config DebugLogConfig) *DebugLog {
	l := &DebugLog{logger: logger, config: config}

	conn.OnData(l.logData)
	conn.OnError(l.logError)
	conn.OnClose(l.logClose)
	conn.OnModeChange(l.logModeChange)

	return l
}

func (l *DebugLog) logData(data []byte) {
	if l.config.DataLevel == LevelNone {
		return
	}
	l.logger.LogAttrs(context.Background(), l.config.DataLevel, "Received data",
		slog.Int("bytes", len(data)))
}

func (l *DebugLog) logError(err error) {
	if l.config.ErrorLevel == LevelNone {
		return
	}
	l.logger.LogAttrs(context.Background(), l.config.ErrorLevel, "Connection error",
		slog.Any("error", err))
}

func (l *DebugLog) logClose(err error) {
	if l.config.CloseLevel == LevelNone {
		return
	}
	l.logger.LogAttrs(context.Background(), l.config.CloseLevel, "Connection closed",
		slog.Any("error", err))
}

func (l *DebugLog) logModeChange(cooked bool) {
	if l.config.ModeChangeLevel == LevelNone {
		return
	}
	l.logger.LogAttrs(context.Background(), l.config.ModeChangeLevel, "Mode changed",
		slog.Bool("cooked", cooked))
}
