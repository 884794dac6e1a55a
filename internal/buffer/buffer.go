// Package buffer implements a fixed-capacity, insertion-ordered buffer of time-stamped records.
package buffer

import (
	"github.com/holmberd/go-entrypool/internal/clock"
	"github.com/holmberd/go-entrypool/internal/freelist"
	"github.com/pkg/errors"
)

const (
	DefaultRecyclerSize = 25 // Default number of cleared records kept for reuse.
	NotInserted         = -1 // Index returned when a full buffer rejects an insertion.
)

var (
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrBufferCorrupted    = errors.New("buffer is corrupted")
	ErrNoTimestampOrValue = errors.WithMessage(ErrInvalidArgument, "timestamp and value cannot both be absent")
)

// Buffer is a fixed-capacity sequence of records kept in insertion order.
//
// Records always occupy slots[0:length] without gaps and slots[length:] are
// always nil. Removals compact the survivors to the left in a single pass,
// and removed records are recycled by later insertions.
//
// A Buffer is not safe for concurrent use.
type Buffer[T comparable] struct {
	slots    []*Record[T]
	length   int
	recycler *freelist.List[*Record[T]] // Cleared records local to this buffer.
	now      func() int64
}

// New creates a new, empty Buffer.
func New[T comparable](config Config) (*Buffer[T], error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	now := config.Clock
	if now == nil {
		now = clock.NowMilli
	}
	return &Buffer[T]{
		slots:    make([]*Record[T], config.Capacity),
		recycler: freelist.New(config.RecyclerSize, (*Record[T]).clear),
		now:      now,
	}, nil
}

// Len returns the number of records in the buffer.
func (b *Buffer[T]) Len() int {
	return b.length
}

// Cap returns the fixed capacity of the buffer.
func (b *Buffer[T]) Cap() int {
	return len(b.slots)
}

func (b *Buffer[T]) IsEmpty() bool {
	return b.length == 0
}

func (b *Buffer[T]) IsFull() bool {
	return b.length == len(b.slots)
}

// Insert appends a record with timestamp ts and no value.
// A zero ts is an absent timestamp, which is rejected since the record would
// carry nothing. It returns the index used, or NotInserted if the buffer is full.
func (b *Buffer[T]) Insert(ts int64) (int, error) {
	if ts == 0 {
		return NotInserted, ErrNoTimestampOrValue
	}
	var zero T
	return b.insert(ts, zero, false), nil
}

// InsertValue appends a record carrying v. A zero ts is replaced by the
// current time. It returns the index used, or NotInserted if the buffer is full.
func (b *Buffer[T]) InsertValue(ts int64, v T) int {
	if ts == 0 {
		ts = b.now()
	}
	return b.insert(ts, v, true)
}

func (b *Buffer[T]) insert(ts int64, v T, hasValue bool) int {
	if b.IsFull() {
		return NotInserted
	}
	r, ok := b.recycler.Get()
	if !ok {
		r = &Record[T]{}
	}
	r.ts, r.value, r.hasValue = ts, v, hasValue

	i := b.length
	b.slots[i] = r
	b.length++
	return i
}

// At returns the record at index i.
// The ok result is false if no record is stored at i.
func (b *Buffer[T]) At(i int) (r Record[T], ok bool) {
	if i < 0 || i >= b.length {
		return r, false
	}
	return *b.slots[i], true
}

// First returns the earliest inserted record still in the buffer.
func (b *Buffer[T]) First() (Record[T], bool) {
	return b.At(0)
}

// Last returns the most recently inserted record.
func (b *Buffer[T]) Last() (Record[T], bool) {
	return b.At(b.length - 1)
}

// Records appends all records to dst in insertion order and returns the extended slice.
func (b *Buffer[T]) Records(dst []Record[T]) []Record[T] {
	for _, r := range b.slots[:b.length] {
		dst = append(dst, *r)
	}
	return dst
}

// Cleanup removes every record with a timestamp strictly before the given
// one and returns the number of records left.
func (b *Buffer[T]) Cleanup(before int64) int {
	return b.compact(func(r *Record[T]) bool {
		return r.ts < before
	})
}

// RemoveTimestamp removes every record with timestamp ts.
// It returns true if the buffer is empty afterwards.
func (b *Buffer[T]) RemoveTimestamp(ts int64) bool {
	b.compact(func(r *Record[T]) bool {
		return r.ts == ts
	})
	return b.IsEmpty()
}

// RemoveValue removes every record carrying value v.
// It returns true if the buffer is empty afterwards.
func (b *Buffer[T]) RemoveValue(v T) bool {
	b.compact(func(r *Record[T]) bool {
		return r.hasValue && r.value == v
	})
	return b.IsEmpty()
}

// RemoveAny removes every record whose timestamp equals ts or whose value
// equals v. A record matching only one of the two is still removed.
// It returns true if the buffer is empty afterwards.
func (b *Buffer[T]) RemoveAny(ts int64, v T) bool {
	b.compact(func(r *Record[T]) bool {
		return r.ts == ts || (r.hasValue && r.value == v)
	})
	return b.IsEmpty()
}

// Empty removes all records.
func (b *Buffer[T]) Empty() {
	for i, r := range b.slots[:b.length] {
		b.slots[i] = nil
		b.recycler.Put(r)
	}
	b.length = 0
}

// compact drops the records matching remove and shifts the survivors left,
// preserving their order. It returns the new length.
func (b *Buffer[T]) compact(remove func(*Record[T]) bool) int {
	j := 0
	for i := 0; i < b.length; i++ {
		r := b.slots[i]
		if remove(r) {
			b.slots[i] = nil
			b.recycler.Put(r)
			continue
		}
		if i != j {
			b.slots[j] = r
			b.slots[i] = nil
		}
		j++
	}
	b.length = j
	return j
}

// Validate re-scans the slots and reports ErrBufferCorrupted if the
// occupied slots are not exactly slots[0:Len()].
func (b *Buffer[T]) Validate() error {
	for i, r := range b.slots {
		if occupied := r != nil; occupied != (i < b.length) {
			return errors.Wrapf(ErrBufferCorrupted, "slot %d occupied=%t with length %d", i, occupied, b.length)
		}
	}
	return nil
}
