package resource

// Lazy is a derived value computed at most once.
//
// Lazy is not synchronized. Wrappers call Get and Take with the native gate
// held, which serializes them.
type Lazy[T any] struct {
	value T
	set   bool
}

// Get returns the cached value, computing it on first use. A failed compute
// is not cached.
func (l *Lazy[T]) Get(compute func() (T, error)) (T, error) {
	if l.set {
		return l.value, nil
	}
	v, err := compute()
	if err != nil {
		var zero T
		return zero, err
	}
	l.value = v
	l.set = true
	return v, nil
}

// Peek returns the value without computing it.
func (l *Lazy[T]) Peek() (T, bool) {
	return l.value, l.set
}

// Take returns the value and resets the Lazy to uninitialized.
// Disposal uses it to collect realized children.
func (l *Lazy[T]) Take() (T, bool) {
	v, ok := l.value, l.set
	var zero T
	l.value = zero
	l.set = false
	return v, ok
}
