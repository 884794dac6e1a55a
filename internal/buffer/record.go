package buffer

// Record is a timestamp with an optional value.
// Records are identity-free: once cleared, any record can stand in for another.
type Record[T comparable] struct {
	ts       int64
	value    T
	hasValue bool
}

// Timestamp returns the record timestamp in Unix milliseconds.
func (r Record[T]) Timestamp() int64 {
	return r.ts
}

// Value returns the record value. The ok result is false if the record
// only carries a timestamp.
func (r Record[T]) Value() (v T, ok bool) {
	return r.value, r.hasValue
}

func (r Record[T]) HasValue() bool {
	return r.hasValue
}

// clear resets the record for reuse.
func (r *Record[T]) clear() {
	var zero T
	r.ts = 0
	r.value = zero
	r.hasValue = false
}
