// Package entrypool implements pooled, fixed-capacity buffers of time-stamped records.
// It avoids repeated allocation of the small arrays used to track bursts of events,
// such as sliding-window counters and recent-activity trackers.
package entrypool

import (
	"github.com/holmberd/go-entrypool/internal/buffer"
	"github.com/pkg/errors"
)

var (
	ErrInvalidArgument    = buffer.ErrInvalidArgument
	ErrBufferCorrupted    = buffer.ErrBufferCorrupted
	ErrNoTimestampOrValue = buffer.ErrNoTimestampOrValue
	ErrCapacityMismatch   = errors.WithMessage(ErrInvalidArgument, "buffer capacity does not match the pool")
	ErrAlreadyPooled      = errors.WithMessage(ErrInvalidArgument, "buffer is already available in the pool")
)

// NotInserted is the index returned when a full buffer rejects an insertion.
const NotInserted = buffer.NotInserted

// Buffer is a fixed-capacity, insertion-ordered buffer of records.
type Buffer[T comparable] = buffer.Buffer[T]

// Record is a timestamp with an optional value.
type Record[T comparable] = buffer.Record[T]

// NewBuffer creates a standalone buffer with the default recycler size.
func NewBuffer[T comparable](capacity int) (*Buffer[T], error) {
	return buffer.New[T](buffer.DefaultConfig(capacity))
}
