package feed

import (
	"sync"
)

// EventType classifies store notifications.
type EventType string

const (
	EventReplaced EventType = "replaced" // whole collection swapped by a fetch
	EventUpdated  EventType = "updated"  // one post mutated in place
	EventRemoved  EventType = "removed"
	EventAdded    EventType = "added"
)

// Event describes one store mutation. Key is zero for EventReplaced.
type Event struct {
	Type EventType
	Key  PostKey
}

// Store is the normalized, single source of truth for the posts of a feed
// view, keyed by PostKey and preserving gateway order.
//
// Every surface that renders posts (feed list, open detail view) reads from
// the same store and subscribes to its events, so counter arithmetic applied
// once is seen everywhere. There are no per-surface copies to mirror.
type Store struct {
	mu    sync.RWMutex
	order []PostKey
	posts map[PostKey]Post

	subMu  sync.Mutex
	subs   map[int]func(Event)
	nextID int
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		posts: make(map[PostKey]Post),
		subs:  make(map[int]func(Event)),
	}
}

// Replace swaps the whole collection, typically after a feed fetch. Source
// order is preserved; the client never re-sorts.
func (s *Store) Replace(posts []Post) {
	s.mu.Lock()
	s.order = s.order[:0]
	s.posts = make(map[PostKey]Post, len(posts))
	for _, p := range posts {
		key := p.Key()
		if _, dup := s.posts[key]; dup {
			continue
		}
		s.order = append(s.order, key)
		s.posts[key] = p
	}
	s.mu.Unlock()
	s.notify(Event{Type: EventReplaced})
}

// Get returns the post for key, if present.
func (s *Store) Get(key PostKey) (Post, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.posts[key]
	return p, ok
}

// List returns the posts in collection order.
func (s *Store) List() []Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Post, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, s.posts[key])
	}
	return out
}

// Len returns the number of posts held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Update runs fn against the post for key under the write lock and notifies
// subscribers. Returns false when the key is absent (post unmounted while a
// request was in flight; the update is dropped).
func (s *Store) Update(key PostKey, fn func(Post)) bool {
	s.mu.Lock()
	p, ok := s.posts[key]
	if ok {
		fn(p)
	}
	s.mu.Unlock()
	if ok {
		s.notify(Event{Type: EventUpdated, Key: key})
	}
	return ok
}

// Add appends a post, used when a restore returns a post to the active set
// ahead of the next fetch.
func (s *Store) Add(p Post) {
	key := p.Key()
	s.mu.Lock()
	if _, dup := s.posts[key]; dup {
		s.mu.Unlock()
		return
	}
	s.order = append(s.order, key)
	s.posts[key] = p
	s.mu.Unlock()
	s.notify(Event{Type: EventAdded, Key: key})
}

// Remove drops a post from the collection.
func (s *Store) Remove(key PostKey) bool {
	s.mu.Lock()
	if _, ok := s.posts[key]; !ok {
		s.mu.Unlock()
		return false
	}
	delete(s.posts, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	s.notify(Event{Type: EventRemoved, Key: key})
	return true
}

// Subscribe registers fn for store events and returns a cancel func.
// Callbacks run synchronously on the mutating goroutine, after the store
// lock is released.
func (s *Store) Subscribe(fn func(Event)) func() {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()
	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) notify(ev Event) {
	s.subMu.Lock()
	fns := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}
