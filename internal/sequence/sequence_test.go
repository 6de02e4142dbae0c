package sequence_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/sync/errgroup"

	"github.com/MrJamesThe3rd/voicebill/internal/scalar"
	"github.com/MrJamesThe3rd/voicebill/internal/sequence"
)

// memStore serializes increments the way the database row lock does.
type memStore struct {
	mu       sync.Mutex
	values   map[string]int64
	prefixes map[string]string
}

func newMemStore() *memStore {
	return &memStore{values: map[string]int64{}, prefixes: map[string]string{}}
}

func (s *memStore) Increment(_ context.Context, accountID string) (int64, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[accountID]++

	return s.values[accountID], s.prefixes[accountID], nil
}

func (s *memStore) Current(_ context.Context, accountID string) (int64, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.values[accountID], s.prefixes[accountID], nil
}

func (s *memStore) SetPrefix(_ context.Context, accountID, prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prefixes[accountID] = prefix

	return nil
}

func TestNumber_Display(t *testing.T) {
	tests := []struct {
		number sequence.Number
		want   string
	}{
		{sequence.Number{Value: 4}, "0004"},
		{sequence.Number{Value: 4, Prefix: "RE-"}, "RE-0004"},
		{sequence.Number{Value: 123, Prefix: "2025/"}, "2025/0123"},
		{sequence.Number{Value: 12345}, "12345"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.number.Display())
		})
	}
}

func TestAllocator_Next_Concurrent(t *testing.T) {
	store := newMemStore()
	store.values["acct-1"] = 3

	alloc := sequence.NewAllocator(store)

	var (
		g       errgroup.Group
		results [2]sequence.Number
	)

	for i := range results {
		g.Go(func() error {
			n, err := alloc.Next(context.Background(), "acct-1")
			results[i] = n

			return err
		})
	}

	require.NoError(t, g.Wait())

	got := []int64{results[0].Value, results[1].Value}
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })

	assert.Equal(t, []int64{4, 5}, got)
}

func TestAllocator_Next_AccountsAreIsolated(t *testing.T) {
	const perAccount = 100

	alloc := sequence.NewAllocator(newMemStore())

	var g errgroup.Group

	for _, account := range []string{"acct-a", "acct-b"} {
		for range perAccount {
			g.Go(func() error {
				_, err := alloc.Next(context.Background(), account)
				return err
			})
		}
	}

	require.NoError(t, g.Wait())

	for _, account := range []string{"acct-a", "acct-b"} {
		n, err := alloc.Current(context.Background(), account)
		require.NoError(t, err)
		assert.Equal(t, int64(perAccount), n.Value)
	}
}

func TestAllocator_Next_StoreFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dbErr := errors.New("connection reset")

	store := sequence.NewMockStore(ctrl)
	store.EXPECT().Increment(gomock.Any(), "acct-1").Return(int64(0), "", dbErr)

	_, err := sequence.NewAllocator(store).Next(context.Background(), "acct-1")

	var aerr *sequence.AllocationError
	require.True(t, errors.As(err, &aerr))
	assert.Equal(t, "acct-1", aerr.AccountID)
	assert.ErrorIs(t, err, dbErr)
}

func TestAllocator_Next_CancelledContextAllocatesNothing(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := sequence.NewMockStore(ctrl)

	_, err := sequence.NewAllocator(store).Next(ctx, "acct-1")

	var aerr *sequence.AllocationError
	require.True(t, errors.As(err, &aerr))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAllocator_SetPrefix(t *testing.T) {
	tests := []struct {
		name    string
		prefix  string
		wantErr bool
	}{
		{"Empty", "", false},
		{"Dash", "RE-", false},
		{"YearSlash", "2025/", false},
		{"TooLong", "RECHNUNG-2025-", true},
		{"Space", "RE ", true},
		{"Umlaut", "Ä-", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			alloc := sequence.NewAllocator(store)

			err := alloc.SetPrefix(context.Background(), "acct-1", tt.prefix)
			if tt.wantErr {
				var verr *scalar.ValidationError
				assert.True(t, errors.As(err, &verr))

				return
			}

			require.NoError(t, err)

			n, err := alloc.Next(context.Background(), "acct-1")
			require.NoError(t, err)
			assert.Equal(t, tt.prefix+"0001", n.Display())
		})
	}
}
