package game

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"speedmatch-client/pkg/api"
)

// DefaultPollInterval is how often the syncer re-fetches game state while the
// game is PLAYING
const DefaultPollInterval = time.Second * 5

// StateFetcher is the part of the API client the syncer needs
type StateFetcher interface {
	GameState(ctx context.Context, gameID, playerID string) (*api.GameState, error)
}

// Update is one delivery on the syncer's channel: either a freshly applied
// snapshot or an error. Fatal errors end the polling loop permanently
type Update struct {
	State *api.GameState
	Err   error
	Fatal bool
}

// Syncer keeps a locally consistent view of a server-authoritative game by
// polling. Snapshots replace each other wholesale; a sequence number guards
// against a stale response overwriting a newer one
type Syncer struct {
	client   StateFetcher
	gameID   string
	playerID string
	interval time.Duration
	timeout  time.Duration

	mu          sync.Mutex
	state       *api.GameState
	lastApplied uint64
	nextSeq     uint64
	started     bool

	ctx    context.Context
	cancel context.CancelFunc

	updates   chan Update
	stop      chan struct{}
	stopOnce  sync.Once
	startOnce sync.Once
	done      chan struct{}

	// closed marks the updates channel as unusable once run has exited
	closeMu sync.RWMutex
	closed  bool

	// newTicker is swapped out in tests
	newTicker func(time.Duration) ticker
}

type ticker interface {
	C() <-chan time.Time
	Stop()
}

type realTicker struct {
	*time.Ticker
}

func (t realTicker) C() <-chan time.Time {
	return t.Ticker.C
}

// NewSyncer returns an unstarted Syncer for the given game and player. An
// interval <= 0 uses DefaultPollInterval
func NewSyncer(client StateFetcher, gameID, playerID string, interval time.Duration) *Syncer {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Syncer{
		client:   client,
		gameID:   gameID,
		playerID: playerID,
		interval: interval,
		timeout:  api.DefaultTimeout,
		ctx:      ctx,
		cancel:   cancel,
		updates:  make(chan Update, 16),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
		newTicker: func(d time.Duration) ticker {
			return realTicker{time.NewTicker(d)}
		},
	}
}

// Updates returns the channel snapshots and errors are delivered on. The
// channel is closed once polling has stopped for good
func (s *Syncer) Updates() <-chan Update {
	return s.updates
}

// State returns the most recently applied snapshot, or nil before the first
// successful fetch
func (s *Syncer) State() *api.GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start begins polling: one fetch immediately, then one per interval while
// the game is PLAYING. Polling ends on Stop, on a terminal status, or on a
// fatal error
func (s *Syncer) Start() {
	s.startOnce.Do(func() {
		s.mu.Lock()
		s.started = true
		s.mu.Unlock()
		go s.run()
	})
}

// Stop ends polling and cancels any fetch still in flight. No request is
// issued after Stop returns and calling it again is safe
func (s *Syncer) Stop() {
	s.signalStop()

	s.mu.Lock()
	started := s.started
	s.mu.Unlock()

	if started {
		<-s.done
	}
}

// signalStop is shared between Stop and the run loop's own exit paths
func (s *Syncer) signalStop() {
	s.stopOnce.Do(func() {
		s.cancel()
		close(s.stop)
	})
}

func (s *Syncer) run() {
	defer func() {
		s.signalStop()

		s.closeMu.Lock()
		s.closed = true
		s.closeMu.Unlock()

		close(s.updates)
		close(s.done)
	}()

	if !s.pollOnce() {
		return
	}

	t := s.newTicker(s.interval)
	defer t.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-t.C():
			if !s.pollOnce() {
				return
			}
		}
	}
}

// pollOnce issues a single fetch. It returns false once polling should end
func (s *Syncer) pollOnce() bool {
	select {
	case <-s.stop:
		return false
	default:
	}

	seq := s.nextSequence()

	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	state, err := s.client.GameState(ctx, s.gameID, s.playerID)
	if err != nil {
		apiErr := api.AsError(err)
		if apiErr.Fatal() {
			logrus.WithError(apiErr).WithField("gameId", s.gameID).Error("fatal fetch error; stopping poll")
			s.deliver(Update{Err: apiErr, Fatal: true})
			return false
		}

		logrus.WithError(apiErr).WithField("gameId", s.gameID).Warn("transient fetch error")
		s.deliver(Update{Err: apiErr})
		return true
	}

	if !s.apply(seq, state) {
		// a newer snapshot was applied while this request was in flight
		return true
	}

	s.deliver(Update{State: state})

	return !state.Terminal()
}

// Apply installs a snapshot obtained outside the poll loop, such as the one a
// successful play/draw/skip returns. It participates in the same sequence
// ordering as polled snapshots. Once polling has ended for good the snapshot
// is dropped and Apply returns false
func (s *Syncer) Apply(state *api.GameState) bool {
	s.closeMu.RLock()
	if s.closed {
		s.closeMu.RUnlock()
		return false
	}
	s.closeMu.RUnlock()

	if s.apply(s.nextSequence(), state) {
		s.deliver(Update{State: state})
		return true
	}

	return false
}

func (s *Syncer) nextSequence() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSeq++
	return s.nextSeq
}

// apply installs the snapshot unless a response with a higher sequence number
// already did
func (s *Syncer) apply(seq uint64, state *api.GameState) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq <= s.lastApplied {
		return false
	}

	s.lastApplied = seq
	s.state = state
	return true
}

// deliver holds the read lock across the send so run cannot close the
// updates channel underneath it
func (s *Syncer) deliver(u Update) {
	s.closeMu.RLock()
	defer s.closeMu.RUnlock()

	if s.closed {
		return
	}

	select {
	case s.updates <- u:
	case <-s.stop:
	}
}
