package review

import (
	"container/list"
	"sync"
	"time"
)

const (
	DefaultSessionTTL  = 30 * time.Minute
	DefaultMaxSessions = 10000
)

// Store keeps one Session per user id. Sessions idle for longer than the TTL
// are forgotten, and once the store is full the least recently used session
// makes room for a new one. A session that reaches Saved is released.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*list.Element
	order    *list.List // front is most recently used
	ttl      time.Duration
	max      int
	now      func() time.Time
}

type entry struct {
	mu       sync.Mutex
	userID   string
	session  *Session
	lastSeen time.Time
}

func NewStore() *Store {
	return NewStoreWithLimits(DefaultSessionTTL, DefaultMaxSessions)
}

// NewStoreWithLimits builds a store with the given idle TTL and size cap.
// A non-positive value disables that limit.
func NewStoreWithLimits(ttl time.Duration, maxSessions int) *Store {
	return &Store{
		sessions: make(map[string]*list.Element),
		order:    list.New(),
		ttl:      ttl,
		max:      maxSessions,
		now:      time.Now,
	}
}

// With runs fn with exclusive access to the user's session, creating an
// empty one on first use.
func (st *Store) With(userID string, fn func(*Session) error) error {
	e := st.entry(userID, true)
	e.mu.Lock()
	err := fn(e.session)
	saved := e.session.State() == StateSaved
	e.mu.Unlock()
	if saved {
		st.release(e)
	}
	return err
}

// Peek runs fn on the user's session if there is one and reports whether it
// did. It never creates a session.
func (st *Store) Peek(userID string, fn func(*Session)) bool {
	e := st.entry(userID, false)
	if e == nil {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.session)
	return true
}

// Drop forgets the user's session.
func (st *Store) Drop(userID string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if el, ok := st.sessions[userID]; ok {
		st.remove(el)
	}
}

// Len reports how many sessions are held.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Transfer moves the session of from to to, replacing any session to had.
// It reports whether from had a non-empty session.
func (st *Store) Transfer(from, to string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	now := st.now()
	st.expire(now)
	el, ok := st.sessions[from]
	if !ok {
		return false
	}
	st.remove(el)
	e := el.Value.(*entry)
	e.mu.Lock()
	moved := e.session.State() != StateEmpty
	if moved {
		e.userID = to
		e.lastSeen = now
	}
	e.mu.Unlock()
	if !moved {
		return false
	}
	if old, ok := st.sessions[to]; ok {
		st.remove(old)
	}
	st.sessions[to] = st.order.PushFront(e)
	return true
}

func (st *Store) entry(userID string, create bool) *entry {
	st.mu.Lock()
	defer st.mu.Unlock()
	now := st.now()
	st.expire(now)
	if el, ok := st.sessions[userID]; ok {
		e := el.Value.(*entry)
		e.lastSeen = now
		st.order.MoveToFront(el)
		return e
	}
	if !create {
		return nil
	}
	for st.max > 0 && st.order.Len() >= st.max {
		st.remove(st.order.Back())
	}
	e := &entry{userID: userID, session: NewSession(), lastSeen: now}
	st.sessions[userID] = st.order.PushFront(e)
	return e
}

// release drops e if it is still the user's current session and still Saved.
// Lock order is st.mu then e.mu, as in Transfer.
func (st *Store) release(e *entry) {
	st.mu.Lock()
	defer st.mu.Unlock()
	el, ok := st.sessions[e.userID]
	if !ok || el.Value.(*entry) != e {
		return
	}
	e.mu.Lock()
	saved := e.session.State() == StateSaved
	e.mu.Unlock()
	if saved {
		st.remove(el)
	}
}

// expire drops sessions idle for at least the TTL. The list is ordered by
// last use, so it stops at the first fresh one.
func (st *Store) expire(now time.Time) {
	if st.ttl <= 0 {
		return
	}
	for el := st.order.Back(); el != nil; el = st.order.Back() {
		if now.Sub(el.Value.(*entry).lastSeen) < st.ttl {
			return
		}
		st.remove(el)
	}
}

func (st *Store) remove(el *list.Element) {
	st.order.Remove(el)
	delete(st.sessions, el.Value.(*entry).userID)
}
