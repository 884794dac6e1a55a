package entrypool

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/holmberd/go-entrypool/internal/buffer"
	"github.com/pkg/errors"
)

// Stats represents pool stats.
type Stats struct {
	Size       uint64 // Slots currently tracked, checked out or available.
	CheckedOut uint64 // Slots currently checked out.
	Grows      uint64
	Gets       uint64
	Puts       uint64
	Trims      uint64
	Discarded  uint64 // Available buffers released by trims.
}

func (s *Stats) Reset() {
	*s = Stats{}
}

type slotState int

const (
	slotAvailable  slotState = iota // Slot holds a buffer ready for Get.
	slotCheckedOut                  // Buffer is owned by a caller; the slot holds nothing.
)

func (s slotState) String() string {
	switch s {
	case slotAvailable:
		return "available"
	case slotCheckedOut:
		return "checkedOut"
	default:
		return fmt.Sprintf("slotState(%d)", s)
	}
}

type slot[T comparable] struct {
	state slotState
	buf   *Buffer[T] // Nil when checked out.
}

// Pool hands out and reclaims buffers of a uniform capacity. It grows on
// exhaustion following its Growth policy and only shrinks through Trim.
//
// A Pool is not safe for concurrent use; callers sharing a pool must
// serialize access to it.
type Pool[T comparable] struct {
	logger     *slog.Logger
	config     buffer.Config // Template for new buffers.
	growth     Growth
	slots      []slot[T]
	checkedOut int
	stats      Stats
}

// NewPool creates a new pool and allocates config.InitialSize buffers.
func NewPool[T comparable](config Config) (*Pool[T], error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pool[T]{
		logger: logger,
		config: config.bufferConfig(),
		growth: config.Growth,
	}
	if config.InitialSize > 0 {
		if err := p.Add(config.InitialSize); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// New creates a new pool of initialSize buffers holding bufferCapacity records each.
// A step of 0 doubles the pool on exhaustion, a positive step grows it by
// exactly that many buffers and a negative step is invalid.
func New[T comparable](initialSize, bufferCapacity, step int) (*Pool[T], error) {
	config := DefaultConfig(bufferCapacity)
	config.InitialSize = initialSize
	if step != 0 {
		config.Growth = StepGrowth(step)
	}
	return NewPool[T](config)
}

// Size returns the number of slots tracked by the pool, checked out or available.
func (p *Pool[T]) Size() int {
	return len(p.slots)
}

func (p *Pool[T]) CheckedOut() int {
	return p.checkedOut
}

func (p *Pool[T]) Available() int {
	return len(p.slots) - p.checkedOut
}

func (p *Pool[T]) BufferCapacity() int {
	return p.config.Capacity
}

// Stats returns a snapshot of the pool stats.
func (p *Pool[T]) Stats() Stats {
	var s Stats
	p.UpdateStats(&s)
	return s
}

// UpdateStats adds the pool stats to s.
func (p *Pool[T]) UpdateStats(s *Stats) {
	s.Size += uint64(len(p.slots))
	s.CheckedOut += uint64(p.checkedOut)
	s.Grows += p.stats.Grows
	s.Gets += p.stats.Gets
	s.Puts += p.stats.Puts
	s.Trims += p.stats.Trims
	s.Discarded += p.stats.Discarded
}

// Add appends n new buffers to the pool. If n is 0 the pool grows by its
// Growth policy instead.
func (p *Pool[T]) Add(n int) error {
	if n < 0 {
		return errors.Wrapf(ErrInvalidArgument, "cannot add %d buffers", n)
	}
	size := len(p.slots)
	if n == 0 {
		n = p.growth.next(size)
	}
	if size+n < 1 {
		return errors.Wrapf(ErrInvalidArgument, "cannot grow pool of size %d using %v growth", size, p.growth)
	}

	p.slots = slices.Grow(p.slots, n)
	for range n {
		b, err := buffer.New[T](p.config)
		if err != nil {
			clear(p.slots[size:])
			p.slots = p.slots[:size]
			return err
		}
		p.slots = append(p.slots, slot[T]{state: slotAvailable, buf: b})
	}
	p.stats.Grows++
	p.logger.Debug("entry buffer pool grown", "added", n, "size", len(p.slots))
	return nil
}

// Get checks out the first available buffer. If none is available the pool
// grows by its Growth policy first. The returned buffer is empty and owned
// by the caller until it is returned with Put.
func (p *Pool[T]) Get() (*Buffer[T], error) {
	if b := p.checkout(); b != nil {
		return b, nil
	}
	if err := p.Add(0); err != nil {
		return nil, err
	}
	b := p.checkout()
	if b == nil {
		panic(fmt.Errorf("invariant violation: no available buffer after growing pool to %d", len(p.slots)))
	}
	return b, nil
}

func (p *Pool[T]) checkout() *Buffer[T] {
	for i := range p.slots {
		s := &p.slots[i]
		if s.state != slotAvailable {
			continue
		}
		b := s.buf
		*s = slot[T]{state: slotCheckedOut}
		p.checkedOut++
		p.stats.Gets++
		return b
	}
	return nil
}

// Put empties b and returns it to the first checked out slot. If every slot
// already holds a buffer, b is appended to the pool instead.
func (p *Pool[T]) Put(b *Buffer[T]) error {
	if b == nil {
		return errors.WithMessage(ErrInvalidArgument, "cannot put a nil buffer")
	}
	if b.Cap() != p.config.Capacity {
		return errors.WithMessagef(ErrCapacityMismatch, "buffer capacity %d, pool buffer capacity %d", b.Cap(), p.config.Capacity)
	}

	free := -1
	for i, s := range p.slots {
		if s.state == slotAvailable && s.buf == b {
			return ErrAlreadyPooled
		}
		if s.state == slotCheckedOut && free < 0 {
			free = i
		}
	}

	b.Empty()
	if free < 0 {
		p.slots = append(p.slots, slot[T]{state: slotAvailable, buf: b})
		p.logger.Warn("no checked out slot for returned buffer, appending to pool", "size", len(p.slots))
	} else {
		p.slots[free] = slot[T]{state: slotAvailable, buf: b}
		p.checkedOut--
	}
	p.stats.Puts++
	return nil
}

// Trim releases available buffers until the pool holds minKept slots, or only
// checked out slots remain. Checked out slots are never released, and the
// buffers that remain keep their relative order.
func (p *Pool[T]) Trim(minKept int) error {
	if minKept < 0 {
		return errors.Wrapf(ErrInvalidArgument, "cannot trim pool to negative size %d", minKept)
	}
	p.stats.Trims++
	if len(p.slots) <= minKept {
		return nil
	}

	// Find the last checked out slot at or after minKept.
	j := len(p.slots) - 1
	for j >= minKept && p.slots[j].state != slotCheckedOut {
		j--
	}
	if j < minKept {
		p.truncate(minKept)
		return nil
	}

	// Swap available buffers to the left of j into j, moving the checked out
	// slot left. Slots after j are always available, and j is always checked out.
	for i := j - 1; i >= 0 && j >= minKept; i-- {
		if p.slots[i].state == slotAvailable {
			p.slots[i], p.slots[j] = p.slots[j], p.slots[i]
			j--
		}
	}
	p.truncate(j + 1)
	return nil
}

// truncate releases every slot from size onwards.
// It assumes all of them are available.
func (p *Pool[T]) truncate(size int) {
	n := len(p.slots) - size
	if n <= 0 {
		return
	}
	clear(p.slots[size:])
	p.slots = p.slots[:size]
	if cap(p.slots) > 2*size {
		// Release the backing array once it is mostly unused.
		p.slots = slices.Clone(p.slots)
	}
	p.stats.Discarded += uint64(n)
	p.logger.Debug("entry buffer pool trimmed", "released", n, "size", size)
}
