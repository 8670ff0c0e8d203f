// Package session holds who is signed in and whether that is still being
// worked out. Everything reads the Store; only the auth controller holds the
// Writer.
package session

import (
	"sync"

	"github.com/kengakuru/kibanda/pkg/domain"
)

// State is the position of the session state machine.
type State int

const (
	// Unresolved means the persisted session has not been restored yet.
	Unresolved State = iota
	// Anonymous means nobody is signed in.
	Anonymous
	// Authenticated means an identity is set.
	Authenticated
)

func (s State) String() string {
	switch s {
	case Unresolved:
		return "unresolved"
	case Anonymous:
		return "anonymous"
	case Authenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Snapshot is a consistent view of the store.
type Snapshot struct {
	Identity *domain.User
	Loading  bool
}

// State derives the state machine position from the snapshot.
func (s Snapshot) State() State {
	switch {
	case s.Loading:
		return Unresolved
	case s.Identity != nil:
		return Authenticated
	default:
		return Anonymous
	}
}

// Store is the read side of the session.
type Store struct {
	mu       sync.RWMutex
	identity *domain.User
	loading  bool
	gen      uint64

	subs   map[int]chan Snapshot
	nextID int
}

// Writer mutates a Store.
type Writer struct {
	s *Store
}

// Ticket records the store generation at the start of a mutation. A Clear
// after Begin invalidates the ticket.
type Ticket struct {
	gen uint64
}

// New returns an Unresolved store and its writer.
func New() (*Store, *Writer) {
	s := &Store{loading: true, subs: make(map[int]chan Snapshot)}
	return s, &Writer{s: s}
}

// Snapshot returns the current identity and loading flag.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{Identity: copyUser(s.identity), Loading: s.loading}
}

// State returns the current state.
func (s *Store) State() State {
	return s.Snapshot().State()
}

// Identity returns a copy of the signed-in user, or nil.
func (s *Store) Identity() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyUser(s.identity)
}

// Loading reports whether the store is still Unresolved.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Subscribe returns a channel that receives the current snapshot and then
// every change. Slow readers only see the latest snapshot. The returned
// function unsubscribes and closes the channel.
func (s *Store) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	ch <- s.snapshotLocked()
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			close(ch)
			s.mu.Unlock()
		})
	}
}

// publishLocked hands the current snapshot to every subscriber, replacing
// any snapshot a subscriber has not read yet.
func (s *Store) publishLocked() {
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- s.snapshotLocked()
	}
}

// Store returns the store w writes to.
func (w *Writer) Store() *Store {
	return w.s
}

// Begin starts a mutation.
func (w *Writer) Begin() Ticket {
	w.s.mu.RLock()
	defer w.s.mu.RUnlock()
	return Ticket{gen: w.s.gen}
}

// Authenticate sets the identity. It is refused, returning false, when the
// store was cleared after t was issued.
func (w *Writer) Authenticate(t Ticket, u domain.User) bool {
	s := w.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.gen != s.gen {
		return false
	}
	s.identity = copyUser(&u)
	s.loading = false
	s.publishLocked()
	return true
}

// Clear moves the store to Anonymous and invalidates outstanding tickets.
func (w *Writer) Clear() {
	s := w.s
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.identity = nil
	s.loading = false
	s.publishLocked()
}

func copyUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	cp := *u
	return &cp
}
