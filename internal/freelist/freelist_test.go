package freelist

import "testing"

type item struct {
	n     int
	reset bool
}

func TestList(t *testing.T) {
	t.Run("Get on empty list", func(t *testing.T) {
		l := New[*item](2, nil)
		if e, ok := l.Get(); ok || e != nil {
			t.Fatalf("expected no item, got %v (ok=%t)", e, ok)
		}
	})

	t.Run("Put resets and Get returns item", func(t *testing.T) {
		l := New(2, func(it *item) { it.reset = true })
		it := &item{n: 1}
		if !l.Put(it) {
			t.Fatal("expected put to keep the item")
		}
		if !it.reset {
			t.Error("expected item to be reset on put")
		}
		got, ok := l.Get()
		if !ok || got != it {
			t.Fatalf("expected %p, got %p (ok=%t)", it, got, ok)
		}
		if l.Len() != 0 {
			t.Errorf("expected empty list, got %d", l.Len())
		}
	})

	t.Run("Put drops items beyond capacity", func(t *testing.T) {
		calls := 0
		l := New(2, func(*item) { calls++ })
		for i := range 3 {
			kept := l.Put(&item{n: i})
			if want := i < 2; kept != want {
				t.Errorf("put %d: expected kept=%t, got %t", i, want, kept)
			}
		}
		if l.Len() != l.Cap() {
			t.Errorf("expected len %d, got %d", l.Cap(), l.Len())
		}
		if calls != 2 {
			t.Errorf("expected 2 resets, got %d", calls)
		}
	})

	t.Run("Zero size disables the list", func(t *testing.T) {
		l := New[*item](0, nil)
		if l.Put(&item{}) {
			t.Fatal("expected put to drop the item")
		}
		if _, ok := l.Get(); ok {
			t.Fatal("expected no item")
		}
	})
}
