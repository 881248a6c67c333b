package pipeline

// Iterator is the capability S1 (and, for the persistent model, the
// fragment-loading phase of S2) pulls items through: a finite, possibly
// erroring sequence.
type Iterator[T any] interface {
	// Next advances the iterator and reports whether an item is
	// available. It returns false both when the sequence is exhausted
	// and when Error() would report a non-nil error.
	Next() bool
	// Item returns the current item. Only valid after a call to Next
	// that returned true.
	Item() T
	// Error reports any error that terminated the iteration early, or
	// nil if the sequence was simply exhausted.
	Error() error
}

// SliceIterator adapts a plain slice into an Iterator[T], useful for tests
// and for small, fully in-memory work queues.
type SliceIterator[T any] struct {
	items []T
	pos   int
}

// NewSliceIterator returns an Iterator over items, in order.
func NewSliceIterator[T any](items []T) *SliceIterator[T] {
	return &SliceIterator[T]{items: items, pos: -1}
}

func (it *SliceIterator[T]) Next() bool {
	it.pos++
	return it.pos < len(it.items)
}

func (it *SliceIterator[T]) Item() T {
	return it.items[it.pos]
}

func (it *SliceIterator[T]) Error() error { return nil }

var (
	_ Iterator[int] = (*SliceIterator[int])(nil)
)
