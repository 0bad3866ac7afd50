package cache

import (
	"container/list"
	"sync"
	"time"
)

// lru holds at most capacity string values, each dropped retention after
// its last write. Reads refresh recency but not expiry.
type lru struct {
	mu        sync.Mutex
	capacity  int
	retention time.Duration
	now       func() time.Time
	order     *list.List // front is most recent
	byKey     map[string]*list.Element
}

type lruEntry struct {
	key     string
	value   string
	expires time.Time
}

func newLRU(capacity int, retention time.Duration) *lru {
	if capacity < 1 {
		capacity = 1
	}
	return &lru{
		capacity:  capacity,
		retention: retention,
		now:       time.Now,
		order:     list.New(),
		byKey:     make(map[string]*list.Element),
	}
}

func (l *lru) get(key string) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	el, ok := l.byKey[key]
	if !ok {
		return "", false
	}
	e := el.Value.(*lruEntry)
	if l.now().After(e.expires) {
		l.drop(el)
		return "", false
	}
	l.order.MoveToFront(el)
	return e.value, true
}

func (l *lru) put(key, value string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	expires := l.now().Add(l.retention)
	if el, ok := l.byKey[key]; ok {
		e := el.Value.(*lruEntry)
		e.value, e.expires = value, expires
		l.order.MoveToFront(el)
		return
	}

	l.byKey[key] = l.order.PushFront(&lruEntry{key: key, value: value, expires: expires})
	for l.order.Len() > l.capacity {
		l.drop(l.order.Back())
	}
}

func (l *lru) remove(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if el, ok := l.byKey[key]; ok {
		l.drop(el)
	}
}

// sweep drops every expired entry and returns how many went.
func (l *lru) sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	n := 0
	for el := l.order.Back(); el != nil; {
		prev := el.Prev()
		if now.After(el.Value.(*lruEntry).expires) {
			l.drop(el)
			n++
		}
		el = prev
	}
	return n
}

func (l *lru) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.order.Len()
}

// drop must be called with mu held.
func (l *lru) drop(el *list.Element) {
	delete(l.byKey, el.Value.(*lruEntry).key)
	l.order.Remove(el)
}
