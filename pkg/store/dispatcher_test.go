package store

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/example/shopcore/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	system := actor.NewActorSystem()
	s := New(system, zap.NewNop(), 20)
	t.Cleanup(s.Stop)
	return s
}

func TestDispatchSerializesConcurrentWriters(t *testing.T) {
	s := newTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.DispatchSync(&CartAdded{ProductID: "p1", Quantity: 1, At: time.Now()})
		}()
	}
	wg.Wait()

	snap := s.Snapshot()
	line, ok := snap.Cart.Line("p1")
	require.True(t, ok)
	assert.Equal(t, 100, line.Quantity)
}

func TestDispatchSyncReturnsCommittedState(t *testing.T) {
	s := newTestStore(t)

	state := s.DispatchSync(&CartAdded{ProductID: "p1", Quantity: 2, At: time.Now()})
	line, ok := state.Cart.Line("p1")
	require.True(t, ok)
	assert.Equal(t, 2, line.Quantity)

	// The published snapshot matches.
	snap := s.Snapshot()
	assert.Equal(t, state.Cart, snap.Cart)
}

func TestDispatchCompoundCommitIsAtomic(t *testing.T) {
	s := newTestStore(t)
	s.DispatchSync(&CartAdded{ProductID: "p1", Quantity: 3, At: time.Now()})

	state := s.DispatchSync(
		&OrderPlaced{Order: models.Order{ID: "o1"}},
		&CartCleared{},
	)
	assert.Empty(t, state.Cart.Lines)
	assert.Equal(t, []string{"o1"}, state.Orders.IDs)
}

func TestGuardedDispatchSkipsStaleGeneration(t *testing.T) {
	s := newTestStore(t)
	var latest atomic.Uint64

	gen := latest.Add(1)
	_, applied := s.DispatchGuarded(&latest, gen, &ProductsRequested{})
	require.True(t, applied)
	assert.True(t, s.Snapshot().Products.Loading)

	// A newer generation supersedes the old one.
	latest.Add(1)
	_, applied = s.DispatchGuarded(&latest, gen, &ProductPageLoaded{
		Products: []models.Product{{ID: "stale"}},
		Total:    1,
	})
	assert.False(t, applied)
	assert.NotContains(t, s.Snapshot().Products.ByID, "stale")
	// The skipped commit left loading untouched.
	assert.True(t, s.Snapshot().Products.Loading)
}

func TestSnapshotIsImmutableAcrossCommits(t *testing.T) {
	s := newTestStore(t)
	s.DispatchSync(&CartAdded{ProductID: "p1", Quantity: 1, At: time.Now()})

	before := s.Snapshot()
	s.DispatchSync(&CartAdded{ProductID: "p2", Quantity: 5, At: time.Now()})

	// The earlier snapshot still sees only its own commit.
	assert.Len(t, before.Cart.Lines, 1)
	assert.Len(t, s.Snapshot().Cart.Lines, 2)
}
