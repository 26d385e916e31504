// Package logger constructs the structured logger used throughout
// Ignite. Every subsystem (engine, storage, index, recovery,
// compaction) takes a *zap.SugaredLogger and logs through its
// Infow/Errorw/Warnw key-value API.
package logger

import "go.uber.org/zap"

// New builds a production zap logger tagged with the given service
// name, falling back to a no-op logger if zap's own initialization
// fails — logging must never be the reason the database can't open.
func New(service string) *zap.SugaredLogger {
	zl, err := zap.NewProduction()
	if err != nil {
		zl = zap.NewNop()
	}
	return zl.Sugar().With("service", service)
}
