// Package impl contains the implementation of the application's business logic.
package impl

import (
	"time"

	"quill/internal/domain/service"
)

// timestampPrecision is the finest precision every storage backend preserves.
const timestampPrecision = time.Millisecond

func timestamp(clock service.Clock) time.Time {
	return clock().UTC().Truncate(timestampPrecision)
}
