package workflow

import (
	"sync"
)

// lockTable hands out one mutex per key. Cart guards lock the product id
// from guard-read through commit, so two concurrent mutations of the same
// product cannot both pass the stock check. Entries are never reclaimed;
// the table is bounded by the number of distinct products touched.
type lockTable struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (t *lockTable) Lock(key string) (unlock func()) {
	t.mu.Lock()
	if t.locks == nil {
		t.locks = make(map[string]*sync.Mutex)
	}
	l, ok := t.locks[key]
	if !ok {
		l = &sync.Mutex{}
		t.locks[key] = l
	}
	t.mu.Unlock()

	l.Lock()
	return l.Unlock
}
