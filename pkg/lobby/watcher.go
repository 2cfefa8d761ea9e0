package lobby

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"speedmatch-client/pkg/api"
)

// DefaultWatchInterval is how often the waiting room is re-fetched
const DefaultWatchInterval = time.Second * 3

// RoomUpdate is one delivery from a Watcher: a fresh room state or an error
type RoomUpdate struct {
	Room  *api.Room
	Err   error
	Fatal bool
}

// Watcher polls a waiting room so the view can show members joining and
// checking ready. Watching ends when the room leaves the WAITING state (the
// game started or the room closed), on a fatal error, or on Stop
type Watcher struct {
	client   RoomClient
	roomID   string
	interval time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	started bool

	updates   chan RoomUpdate
	stop      chan struct{}
	stopOnce  sync.Once
	startOnce sync.Once
	done      chan struct{}

	// swapped out in tests to poll faster
	newTicker func(time.Duration) *time.Ticker
}

// Watch returns a started Watcher for the room
func (l *Lobby) Watch(roomID string, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = DefaultWatchInterval
	}

	ctx, cancel := context.WithCancel(context.Background())

	w := &Watcher{
		client:    l.client,
		roomID:    roomID,
		interval:  interval,
		ctx:       ctx,
		cancel:    cancel,
		updates:   make(chan RoomUpdate, 16),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
		newTicker: time.NewTicker,
	}

	w.Start()
	return w
}

// Updates returns the channel room states are delivered on. It closes once
// watching has ended
func (w *Watcher) Updates() <-chan RoomUpdate {
	return w.updates
}

// Start begins watching. Watch already calls it
func (w *Watcher) Start() {
	w.startOnce.Do(func() {
		w.mu.Lock()
		w.started = true
		w.mu.Unlock()
		go w.run()
	})
}

// Stop ends watching and cancels any fetch still in flight; safe to call more
// than once
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		w.cancel()
		close(w.stop)
	})

	w.mu.Lock()
	started := w.started
	w.mu.Unlock()

	if started {
		<-w.done
	}
}

func (w *Watcher) run() {
	defer close(w.done)
	defer close(w.updates)

	if !w.pollOnce() {
		return
	}

	t := w.newTicker(w.interval)
	defer t.Stop()

	for {
		select {
		case <-w.stop:
			return
		case <-t.C:
			if !w.pollOnce() {
				return
			}
		}
	}
}

func (w *Watcher) pollOnce() bool {
	select {
	case <-w.stop:
		return false
	default:
	}

	ctx, cancel := context.WithTimeout(w.ctx, api.DefaultTimeout)
	defer cancel()

	room, err := w.client.Room(ctx, w.roomID)
	if err != nil {
		apiErr := api.AsError(err)
		if apiErr.Fatal() {
			logrus.WithError(apiErr).WithField("roomId", w.roomID).Error("fatal room fetch error; stopping watch")
			w.deliver(RoomUpdate{Err: apiErr, Fatal: true})
			return false
		}

		logrus.WithError(apiErr).WithField("roomId", w.roomID).Warn("transient room fetch error")
		w.deliver(RoomUpdate{Err: apiErr})
		return true
	}

	w.deliver(RoomUpdate{Room: room})

	return room.Status == api.RoomWaiting
}

func (w *Watcher) deliver(u RoomUpdate) {
	select {
	case w.updates <- u:
	case <-w.stop:
	}
}
