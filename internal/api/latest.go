package api

import "sync"

// Ticket identifies one issued request for a Latest slot.
type Ticket uint64

// Latest holds the most recent result for one query slot, such as a search
// box. Results of requests superseded by a newer Begin are dropped on Commit.
type Latest[T any] struct {
	mu     sync.Mutex
	issued uint64
	value  T
	ok     bool
}

// Begin marks the start of a new request and supersedes all earlier ones.
func (l *Latest[T]) Begin() Ticket {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.issued++
	return Ticket(l.issued)
}

// Commit stores v if t is still the newest ticket.
func (l *Latest[T]) Commit(t Ticket, v T) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if uint64(t) != l.issued {
		return false
	}
	l.value = v
	l.ok = true
	return true
}

// Current reports whether t is still the newest ticket.
func (l *Latest[T]) Current(t Ticket) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return uint64(t) == l.issued
}

func (l *Latest[T]) Value() (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.value, l.ok
}
