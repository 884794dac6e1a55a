package buffer

import (
	stderrors "errors"

	"github.com/holmberd/go-entrypool/internal/clock"
	"github.com/pkg/errors"
)

type Config struct {
	Capacity int // Fixed number of record slots; never changes after construction.

	// RecyclerSize is the number of cleared records kept for reuse by later
	// insertions. Records cleared beyond it are left to the GC. Zero disables recycling.
	RecyclerSize int

	// Clock returns the current time in Unix milliseconds. It is used for
	// records inserted without a timestamp. Nil uses the wall clock.
	Clock func() int64
}

func (c Config) Validate() error {
	var errs []error
	if c.Capacity < 1 {
		errs = append(errs, errors.Wrapf(ErrInvalidArgument, "invalid config: capacity %d must be greater than 0", c.Capacity))
	}
	if c.RecyclerSize < 0 {
		errs = append(errs, errors.Wrapf(ErrInvalidArgument, "invalid config: recycler size %d must not be negative", c.RecyclerSize))
	}
	return stderrors.Join(errs...)
}

func DefaultConfig(capacity int) Config {
	return Config{
		Capacity:     capacity,
		RecyclerSize: DefaultRecyclerSize,
		Clock:        clock.NowMilli,
	}
}
