package cache

import (
	"container/list"
	"strings"
	"time"
)

type entry struct {
	key      string
	value    any
	storedAt time.Time
}

// Store is a bounded LRU mapping with a per-store TTL.
// It is not safe for concurrent use; Engine serializes access.
type Store struct {
	ttl     time.Duration
	maxSize int
	order   *list.List // front = least recently used
	items   map[string]*list.Element
	hits    int64
	misses  int64
	now     func() time.Time
}

// NewStore creates a store holding at most maxSize entries for ttl each.
func NewStore(ttl time.Duration, maxSize int) *Store {
	return &Store{
		ttl:     ttl,
		maxSize: maxSize,
		order:   list.New(),
		items:   make(map[string]*list.Element),
		now:     time.Now,
	}
}

// Get returns the value under key if it is still fresh and marks it most recently used.
// An expired entry is removed. Every call counts as a hit or a miss.
func (s *Store) Get(key string) (any, bool) {
	elem, ok := s.items[key]
	if !ok {
		s.misses++
		return nil, false
	}
	e := elem.Value.(*entry) //nolint:forcetypeassert // list only holds *entry
	if !s.fresh(e) {
		s.remove(elem)
		s.misses++
		return nil, false
	}
	s.order.MoveToBack(elem)
	s.hits++
	return e.value, true
}

// fresh applies the strict boundary: an entry aged exactly ttl is stale.
func (s *Store) fresh(e *entry) bool {
	return s.now().Sub(e.storedAt) < s.ttl
}

// Put stores value under key, replacing any previous entry, and evicts
// least recently used entries beyond the size bound.
func (s *Store) Put(key string, value any) {
	if elem, ok := s.items[key]; ok {
		s.remove(elem)
	}
	s.items[key] = s.order.PushBack(&entry{key: key, value: value, storedAt: s.now()})
	s.evict()
}

func (s *Store) evict() {
	for s.order.Len() > s.maxSize {
		s.remove(s.order.Front())
	}
}

func (s *Store) remove(elem *list.Element) {
	e := s.order.Remove(elem).(*entry) //nolint:forcetypeassert // list only holds *entry
	delete(s.items, e.key)
}

// DeleteByPrefix removes every entry of operation op and returns how many were removed.
func (s *Store) DeleteByPrefix(op string) int {
	prefix := Prefix(op)
	removed := 0
	for elem := s.order.Front(); elem != nil; {
		next := elem.Next()
		if strings.HasPrefix(elem.Value.(*entry).key, prefix) { //nolint:forcetypeassert // list only holds *entry
			s.remove(elem)
			removed++
		}
		elem = next
	}
	return removed
}

// Purge removes every entry and keeps the counters. It returns the number removed.
func (s *Store) Purge() int {
	n := s.order.Len()
	s.order.Init()
	clear(s.items)
	return n
}

// Clear removes every entry and resets the hit and miss counters.
func (s *Store) Clear() int {
	n := s.Purge()
	s.hits, s.misses = 0, 0
	return n
}

// SetTTL changes the lifetime applied at the next Get. Stored timestamps are kept.
func (s *Store) SetTTL(ttl time.Duration) {
	s.ttl = ttl
}

// Resize changes the size bound, evicting immediately when it shrinks.
func (s *Store) Resize(maxSize int) {
	s.maxSize = maxSize
	s.evict()
}

// Len returns the number of stored entries, expired ones included.
func (s *Store) Len() int {
	return s.order.Len()
}

// Contains reports whether key is stored, without touching recency or counters.
func (s *Store) Contains(key string) bool {
	_, ok := s.items[key]
	return ok
}

// Counters returns the hit and miss counts.
func (s *Store) Counters() (hits, misses int64) {
	return s.hits, s.misses
}
