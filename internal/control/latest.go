package control

// Latest is a single-slot channel with overwrite semantics: a Set replaces
// any value the reader has not taken yet. Only the newest goal matters, so a
// reader that falls behind skips straight to it.
type Latest[T any] struct {
	ch chan T
}

func NewLatest[T any]() *Latest[T] {
	return &Latest[T]{ch: make(chan T, 1)}
}

// Set stores v, discarding an unread older value. It never blocks.
func (l *Latest[T]) Set(v T) {
	for {
		select {
		case l.ch <- v:
			return
		default:
		}
		select {
		case <-l.ch:
		default:
		}
	}
}

// C is the receive side for select loops.
func (l *Latest[T]) C() <-chan T {
	return l.ch
}
