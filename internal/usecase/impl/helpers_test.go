package impl

import (
	"io"
	"log/slog"
	"time"

	"quill/internal/domain/service"
)

var fixedNow = time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixedClock() service.Clock {
	return func() time.Time { return fixedNow }
}

func ptr[T any](v T) *T {
	return &v
}
