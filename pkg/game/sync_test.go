package game

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"speedmatch-client/pkg/api"
	"speedmatch-client/pkg/deck"
)

type fetcherFunc func(ctx context.Context, gameID, playerID string) (*api.GameState, error)

func (f fetcherFunc) GameState(ctx context.Context, gameID, playerID string) (*api.GameState, error) {
	return f(ctx, gameID, playerID)
}

type fakeTicker struct {
	ch chan time.Time
}

func newFakeTicker() *fakeTicker {
	return &fakeTicker{ch: make(chan time.Time, 1)}
}

func (t *fakeTicker) C() <-chan time.Time {
	return t.ch
}

func (t *fakeTicker) Stop() {}

// Tick fires the ticker without blocking if nobody is listening
func (t *fakeTicker) Tick() {
	select {
	case t.ch <- time.Now():
	default:
	}
}

func playingState(deckRemaining int) *api.GameState {
	return &api.GameState{
		GameID:          "g1",
		CurrentPlayerID: "p1",
		FieldPiles:      deck.CardsFromString("5s,9h"),
		DeckRemaining:   deckRemaining,
		Status:          api.StatusPlaying,
	}
}

func newTestSyncer(fetch fetcherFunc) (*Syncer, *fakeTicker) {
	s := NewSyncer(fetch, "g1", "p1", time.Minute)
	ft := newFakeTicker()
	s.newTicker = func(time.Duration) ticker { return ft }
	return s, ft
}

func TestSyncer_pollsUntilStopped(t *testing.T) {
	var requests int32
	s, ft := newTestSyncer(func(ctx context.Context, gameID, playerID string) (*api.GameState, error) {
		atomic.AddInt32(&requests, 1)
		assert.Equal(t, "g1", gameID)
		assert.Equal(t, "p1", playerID)
		return playingState(10), nil
	})

	s.Start()

	// immediate fetch on start
	u := <-s.Updates()
	assert.NoError(t, u.Err)
	assert.Equal(t, 10, u.State.DeckRemaining)

	ft.Tick()
	u = <-s.Updates()
	assert.NotNil(t, u.State)
	assert.Equal(t, int32(2), atomic.LoadInt32(&requests))

	s.Stop()

	// no requests after stop, no matter how often the timer fires
	ft.Tick()
	ft.Tick()
	assert.Equal(t, int32(2), atomic.LoadInt32(&requests))

	// stop is idempotent
	s.Stop()

	_, open := <-s.Updates()
	assert.False(t, open)
}

func TestSyncer_stopWithoutStart(t *testing.T) {
	s, _ := newTestSyncer(func(ctx context.Context, gameID, playerID string) (*api.GameState, error) {
		t.Fatal("unexpected request")
		return nil, nil
	})

	s.Stop()
	s.Stop()
}

func TestSyncer_terminalStatusStopsPolling(t *testing.T) {
	var requests int32
	s, ft := newTestSyncer(func(ctx context.Context, gameID, playerID string) (*api.GameState, error) {
		n := atomic.AddInt32(&requests, 1)
		state := playingState(5)
		if n > 1 {
			state.Status = api.StatusFinished
		}
		return state, nil
	})

	s.Start()

	u := <-s.Updates()
	assert.Equal(t, api.StatusPlaying, u.State.Status)

	ft.Tick()
	u = <-s.Updates()
	assert.Equal(t, api.StatusFinished, u.State.Status)

	// the loop ended on its own; the channel closes without Stop
	_, open := <-s.Updates()
	assert.False(t, open)

	ft.Tick()
	assert.Equal(t, int32(2), atomic.LoadInt32(&requests))

	s.Stop()
}

func TestSyncer_transientErrorKeepsPolling(t *testing.T) {
	var requests int32
	s, ft := newTestSyncer(func(ctx context.Context, gameID, playerID string) (*api.GameState, error) {
		if atomic.AddInt32(&requests, 1) == 2 {
			return nil, &api.Error{Code: api.CodeNetworkError, Message: "connection refused"}
		}
		return playingState(5), nil
	})

	s.Start()

	u := <-s.Updates()
	assert.NoError(t, u.Err)

	ft.Tick()
	u = <-s.Updates()
	assert.Error(t, u.Err)
	assert.False(t, u.Fatal)
	assert.Nil(t, u.State)

	// the loop survives the failure and fetches again
	ft.Tick()
	u = <-s.Updates()
	assert.NoError(t, u.Err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&requests))

	s.Stop()
}

func TestSyncer_fatalErrorStopsPolling(t *testing.T) {
	var requests int32
	s, ft := newTestSyncer(func(ctx context.Context, gameID, playerID string) (*api.GameState, error) {
		atomic.AddInt32(&requests, 1)
		return nil, &api.Error{Code: api.CodeGameNotFound, Message: "no such game"}
	})

	s.Start()

	u := <-s.Updates()
	assert.Error(t, u.Err)
	assert.True(t, u.Fatal)

	_, open := <-s.Updates()
	assert.False(t, open)

	ft.Tick()
	assert.Equal(t, int32(1), atomic.LoadInt32(&requests))

	s.Stop()
}

func TestSyncer_stopCancelsInFlightFetch(t *testing.T) {
	fetching := make(chan struct{})
	s, _ := newTestSyncer(func(ctx context.Context, gameID, playerID string) (*api.GameState, error) {
		close(fetching)
		<-ctx.Done()
		return nil, ctx.Err()
	})

	s.Start()
	<-fetching

	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop did not cancel the in-flight fetch")
	}
}

func TestSyncer_applyAfterTerminalStop(t *testing.T) {
	s, _ := newTestSyncer(func(ctx context.Context, gameID, playerID string) (*api.GameState, error) {
		state := playingState(5)
		state.Status = api.StatusFinished
		return state, nil
	})

	s.Start()

	// the loop ends on the terminal snapshot and closes the channel
	for range s.Updates() {
	}

	// a confirmed action snapshot still in flight when the game finished is
	// dropped, not delivered
	assert.False(t, s.Apply(playingState(4)))
	assert.Equal(t, api.StatusFinished, s.State().Status)
}

func TestSyncer_staleResponseNeverOverwritesNewer(t *testing.T) {
	s, _ := newTestSyncer(func(ctx context.Context, gameID, playerID string) (*api.GameState, error) {
		return nil, nil
	})

	older := playingState(10)
	newer := playingState(9)

	// both requests are in flight; the newer one resolves first
	seqOlder := s.nextSequence()
	seqNewer := s.nextSequence()

	assert.True(t, s.apply(seqNewer, newer))
	assert.False(t, s.apply(seqOlder, older))
	assert.Equal(t, 9, s.State().DeckRemaining)
}

func TestSyncer_Apply(t *testing.T) {
	s, _ := newTestSyncer(func(ctx context.Context, gameID, playerID string) (*api.GameState, error) {
		return nil, nil
	})

	confirmed := playingState(7)
	assert.True(t, s.Apply(confirmed))
	assert.Equal(t, confirmed, s.State())

	// the snapshot also goes out on the update channel
	u := <-s.Updates()
	assert.Equal(t, confirmed, u.State)

	// an in-flight poll that was dispatched earlier loses to it
	stale := s.nextSequence() - 1
	assert.False(t, s.apply(stale, playingState(99)))
	assert.Equal(t, 7, s.State().DeckRemaining)
}
