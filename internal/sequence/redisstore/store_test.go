package redisstore_test

import (
	"context"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/voicebill/internal/sequence"
	"github.com/MrJamesThe3rd/voicebill/internal/sequence/redisstore"
)

func newStore(t *testing.T) *redisstore.Store {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	return redisstore.New(rdb)
}

func TestStore_IncrementStartsAtOne(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	value, prefix, err := store.Increment(ctx, "acct-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), value)
	assert.Empty(t, prefix)

	current, _, err := store.Current(ctx, "acct-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), current)
}

func TestStore_CurrentUnknownAccount(t *testing.T) {
	value, prefix, err := newStore(t).Current(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Zero(t, value)
	assert.Empty(t, prefix)
}

func TestStore_PrefixIsReturned(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetPrefix(ctx, "acct-1", "RE-"))

	value, prefix, err := store.Increment(ctx, "acct-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), value)
	assert.Equal(t, "RE-", prefix)
}

func TestStore_ConcurrentAllocationsAreUnique(t *testing.T) {
	const workers = 50

	alloc := sequence.NewAllocator(newStore(t))
	ctx := context.Background()

	var (
		mu   sync.Mutex
		seen = make(map[string]map[int64]bool)
		wg   sync.WaitGroup
	)

	for _, account := range []string{"acct-1", "acct-2"} {
		seen[account] = make(map[int64]bool)

		for range workers {
			wg.Add(1)

			go func() {
				defer wg.Done()

				n, err := alloc.Next(ctx, account)
				assert.NoError(t, err)

				mu.Lock()
				defer mu.Unlock()

				assert.False(t, seen[account][n.Value], "duplicate %d for %s", n.Value, account)
				seen[account][n.Value] = true
			}()
		}
	}

	wg.Wait()

	for account, values := range seen {
		assert.Len(t, values, workers, account)

		for v := int64(1); v <= workers; v++ {
			assert.True(t, values[v], "missing %d for %s", v, account)
		}
	}
}
