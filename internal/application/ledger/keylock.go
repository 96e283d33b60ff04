package ledger

import "sync"

type positionKey struct {
	userID uint
	ticker string
}

// keyLocks hands out one mutex per (user, ticker). Entries are reference counted and dropped
// when the last holder releases, so the map only grows with in-flight keys.
type keyLocks struct {
	mu    sync.Mutex
	locks map[positionKey]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

// lock blocks until the key is free and returns its release func.
func (k *keyLocks) lock(key positionKey) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[positionKey]*keyLock)
	}
	l, ok := k.locks[key]
	if !ok {
		l = &keyLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

func (k *keyLocks) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
