package entrypool

import (
	stderrors "errors"
	"fmt"
	"log/slog"

	"github.com/holmberd/go-entrypool/internal/buffer"
	"github.com/holmberd/go-entrypool/internal/clock"
	"github.com/pkg/errors"
)

// MaxDoublingStep caps the number of buffers a doubling pool adds in one growth.
const MaxDoublingStep = 1000

type growthKind int

const (
	growDouble growthKind = iota
	growStep
)

// Growth is the policy a pool follows when it grows without an explicit count.
// The zero value is DoubleGrowth.
type Growth struct {
	kind growthKind
	step int
}

// DoubleGrowth grows a pool by its current size, capped at MaxDoublingStep.
func DoubleGrowth() Growth {
	return Growth{kind: growDouble}
}

// StepGrowth grows a pool by exactly n buffers.
func StepGrowth(n int) Growth {
	return Growth{kind: growStep, step: n}
}

// canGrowFromEmpty reports whether a pool of size 0 can grow by this policy.
func (g Growth) canGrowFromEmpty() bool {
	return g.next(0) > 0
}

// next returns the number of buffers to add to a pool of the given size.
func (g Growth) next(size int) int {
	if g.kind == growStep {
		return g.step
	}
	return min(MaxDoublingStep, size)
}

func (g Growth) String() string {
	switch g.kind {
	case growDouble:
		return "double"
	case growStep:
		return fmt.Sprintf("step(%d)", g.step)
	default:
		return fmt.Sprintf("growth(%d)", g.kind)
	}
}

type Config struct {
	InitialSize    int    // Number of buffers allocated up front.
	BufferCapacity int    // Record capacity of every buffer in the pool.
	RecyclerSize   int    // Cleared records each buffer keeps for reuse.
	Growth         Growth // Growth policy on exhaustion.

	Clock  func() int64 // Millisecond clock for records inserted without a timestamp.
	Logger *slog.Logger
}

func (c Config) Validate() error {
	var errs []error
	if c.BufferCapacity < 1 {
		errs = append(errs, errors.Wrapf(ErrInvalidArgument, "invalid config: buffer capacity %d must be greater than 0", c.BufferCapacity))
	} else {
		errs = append(errs, c.bufferConfig().Validate())
	}
	if c.InitialSize < 0 {
		errs = append(errs, errors.Wrapf(ErrInvalidArgument, "invalid config: initial size %d must not be negative", c.InitialSize))
	}
	if c.Growth.kind == growStep && c.Growth.step < 1 {
		errs = append(errs, errors.Wrapf(ErrInvalidArgument, "invalid config: growth step %d must be greater than 0", c.Growth.step))
	}
	return stderrors.Join(errs...)
}

func (c Config) bufferConfig() buffer.Config {
	return buffer.Config{
		Capacity:     c.BufferCapacity,
		RecyclerSize: c.RecyclerSize,
		Clock:        c.Clock,
	}
}

func DefaultConfig(bufferCapacity int) Config {
	return Config{
		BufferCapacity: bufferCapacity,
		RecyclerSize:   buffer.DefaultRecyclerSize,
		Growth:         DoubleGrowth(),
		Clock:          clock.NowMilli,
		Logger:         slog.Default(),
	}
}
