package namespace

import (
	"slices"
	"sync/atomic"
)

// list is a copy-on-write ordered set. Writers hold the lock that owns the
// list and replace the slice wholesale; readers load it without locking and
// see either the old or the new snapshot.
type list[T comparable] struct {
	p atomic.Pointer[[]T]
}

func (l *list[T]) load() []T {
	if p := l.p.Load(); p != nil {
		return *p
	}
	return nil
}

func (l *list[T]) store(v []T) {
	l.p.Store(&v)
}

func (l *list[T]) contains(x T) bool {
	return slices.Contains(l.load(), x)
}

// add appends x unless it is already present.
func (l *list[T]) add(x T) bool {
	cur := l.load()
	if slices.Contains(cur, x) {
		return false
	}
	next := make([]T, len(cur), len(cur)+1)
	copy(next, cur)
	l.store(append(next, x))
	return true
}

func (l *list[T]) remove(x T) bool {
	cur := l.load()
	i := slices.Index(cur, x)
	if i < 0 {
		return false
	}
	l.store(slices.Delete(slices.Clone(cur), i, i+1))
	return true
}

func (l *list[T]) copy() []T {
	return slices.Clone(l.load())
}
