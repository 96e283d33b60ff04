package ledger

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKeyLocks_SerializesSameKey(t *testing.T) {
	var locks keyLocks
	key := positionKey{userID: 1, ticker: "AAPL"}

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.lock(key)
			v := counter
			time.Sleep(time.Microsecond)
			counter = v + 1
			unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, counter)
	assert.Equal(t, 0, locks.size())
}

func TestKeyLocks_DifferentKeysDoNotBlock(t *testing.T) {
	var locks keyLocks
	unlockA := locks.lock(positionKey{userID: 1, ticker: "AAPL"})
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlock := locks.lock(positionKey{userID: 1, ticker: "TSLA"})
		unlock()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on a different key blocked")
	}
	assert.Equal(t, 1, locks.size())
}
