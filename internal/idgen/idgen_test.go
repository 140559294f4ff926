package idgen

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextUsesClockMillis(t *testing.T) {
	at := time.UnixMilli(1_700_000_000_123)
	g := NewWithClock(func() time.Time { return at })

	assert.Equal(t, int64(1_700_000_000_123), g.Next())
	assert.Equal(t, int64(1_700_000_000_124), g.Next())
}

func TestNextNeverGoesBackwards(t *testing.T) {
	at := time.UnixMilli(5_000)
	g := NewWithClock(func() time.Time { return at })

	first := g.Next()
	at = time.UnixMilli(1_000)
	assert.Greater(t, g.Next(), first)
}

func TestObserveSkipsKnownIDs(t *testing.T) {
	g := NewWithClock(func() time.Time { return time.UnixMilli(10) })
	g.Observe(50)
	assert.Equal(t, int64(51), g.Next())

	g.Observe(20)
	assert.Equal(t, int64(52), g.Next())
}

func TestNextConcurrentUnique(t *testing.T) {
	g := New()
	const workers, perWorker = 8, 500

	var mu sync.Mutex
	seen := make(map[int64]struct{}, workers*perWorker)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]int64, 0, perWorker)
			for j := 0; j < perWorker; j++ {
				local = append(local, g.Next())
			}
			mu.Lock()
			defer mu.Unlock()
			for _, id := range local {
				seen[id] = struct{}{}
			}
		}()
	}
	wg.Wait()

	require.Len(t, seen, workers*perWorker)
}
