package store

import (
	"sync/atomic"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"
)

const commitTimeout = 5 * time.Second

// Store is the entity store. All writes funnel through a single dispatcher
// actor, so transitions are applied one at a time and no transition ever
// observes a partially-applied prior one. Each commit publishes a fresh
// immutable snapshot for readers.
type Store struct {
	root     *actor.RootContext
	pid      *actor.PID
	snapshot atomic.Pointer[State]
	logger   *zap.Logger
}

// commit carries one or more transition events to the dispatcher. Events in
// a single commit are applied back-to-back with nothing in between, so a
// workflow can make two transitions atomic (order placed + cart cleared).
// When latest is set the dispatcher applies the events only if gen is still
// the newest generation for the owning workflow class.
type commit struct {
	events []any
	gen    uint64
	latest *atomic.Uint64
}

// committed acknowledges a synchronous commit.
type committed struct {
	applied bool
	state   State
}

type dispatcherActor struct {
	store *Store
	state State
}

func (a *dispatcherActor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		a.store.logger.Info("Store dispatcher started")

	case *actor.Stopped:
		a.store.logger.Info("Store dispatcher stopped")

	case *commit:
		applied := msg.latest == nil || msg.latest.Load() == msg.gen
		if applied {
			for _, ev := range msg.events {
				a.state = Apply(a.state, ev)
			}
			snap := a.state
			a.store.snapshot.Store(&snap)
		}
		if ctx.Sender() != nil {
			ctx.Respond(&committed{applied: applied, state: a.state})
		}
	}
}

// New spawns a store with its own dispatcher inside the given actor system.
// Multiple independent stores can share one system.
func New(system *actor.ActorSystem, logger *zap.Logger, pageSize int) *Store {
	s := &Store{
		root:   system.Root,
		logger: logger,
	}
	initial := NewState(pageSize)
	s.snapshot.Store(&initial)

	props := actor.PropsFromProducer(func() actor.Actor {
		return &dispatcherActor{store: s, state: initial}
	})
	s.pid = system.Root.Spawn(props)
	return s
}

// Snapshot returns the latest committed state. The returned value is
// immutable; callers must not modify it.
func (s *Store) Snapshot() *State {
	return s.snapshot.Load()
}

// Dispatch enqueues events without waiting for them to be applied.
func (s *Store) Dispatch(events ...any) {
	s.root.Send(s.pid, &commit{events: events})
}

// DispatchSync applies events and returns the resulting state once they
// have been committed.
func (s *Store) DispatchSync(events ...any) State {
	future := s.root.RequestFuture(s.pid, &commit{events: events}, commitTimeout)
	result, err := future.Result()
	if err != nil {
		s.logger.Error("Store commit timed out", zap.Error(err))
		return *s.Snapshot()
	}
	return result.(*committed).state
}

// DispatchGuarded applies events only if gen is still the current value of
// latest at the moment of application. It reports whether the events were
// applied, along with the state after the commit either way.
func (s *Store) DispatchGuarded(latest *atomic.Uint64, gen uint64, events ...any) (State, bool) {
	future := s.root.RequestFuture(s.pid, &commit{events: events, gen: gen, latest: latest}, commitTimeout)
	result, err := future.Result()
	if err != nil {
		s.logger.Error("Store commit timed out", zap.Error(err))
		return *s.Snapshot(), false
	}
	ack := result.(*committed)
	return ack.state, ack.applied
}

// Stop shuts the dispatcher down. Pending commits in the mailbox are
// discarded.
func (s *Store) Stop() {
	s.root.Stop(s.pid)
}
