package game

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"speedmatch-client/pkg/api"
	"speedmatch-client/pkg/deck"
)

// client-side precondition failures. These are resolved locally and never
// produce a network call
var (
	ErrNoGameState     = errors.New("no game state has been fetched yet")
	ErrNotYourTurn     = errors.New("it is not your turn")
	ErrCardNotInHand   = errors.New("that card is not in your hand")
	ErrCardNotPlayable = errors.New("that card cannot be played right now")
	ErrPileNotLegal    = errors.New("that card cannot go on that pile")
	ErrDeckEmpty       = errors.New("the deck is empty")
	ErrNoSelection     = errors.New("no card is selected")
	ErrActionPending   = errors.New("an action is already awaiting confirmation")
)

// ActionClient is the part of the API client the dispatcher needs
type ActionClient interface {
	PlayCard(ctx context.Context, gameID, playerID string, card deck.Card, targetField int) (*api.GameState, error)
	DrawCard(ctx context.Context, gameID, playerID string) (*api.GameState, error)
	SkipTurn(ctx context.Context, gameID, playerID string) (*api.GameState, error)
}

// Dispatcher turns user gestures into remote action calls. It checks the
// preconditions it can check locally, but the server remains the authority:
// a dispatch that passes the local checks can still fail remotely. On success
// the returned snapshot is applied immediately instead of waiting for the
// next poll; on failure the selection is left alone so the user can retry or
// cancel
type Dispatcher struct {
	client   ActionClient
	syncer   *Syncer
	gameID   string
	playerID string

	mu  sync.Mutex
	sel Selection
}

// NewDispatcher returns a Dispatcher sharing the syncer's view of the game
func NewDispatcher(client ActionClient, syncer *Syncer, gameID, playerID string) *Dispatcher {
	return &Dispatcher{
		client:   client,
		syncer:   syncer,
		gameID:   gameID,
		playerID: playerID,
	}
}

// Selection returns the current selection state
func (d *Dispatcher) Selection() Selection {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sel
}

// Select begins playing a hand card. If the card is legal on exactly one
// field pile the play is dispatched immediately; if it is legal on both, the
// dispatcher waits for ChoosePile. The returned indices are the piles the
// card may go on
func (d *Dispatcher) Select(ctx context.Context, card deck.Card) ([]int, error) {
	state := d.syncer.State()
	if state == nil {
		return nil, ErrNoGameState
	}

	if state.CurrentPlayerID != d.playerID {
		return nil, ErrNotYourTurn
	}

	if !state.Hand.HasCard(card) {
		return nil, ErrCardNotInHand
	}

	if !inPlayableSet(card, state) {
		return nil, ErrCardNotPlayable
	}

	piles := PlayablePiles(card, state.FieldPiles)
	if len(piles) == 0 {
		return nil, ErrCardNotPlayable
	}

	d.mu.Lock()
	if d.sel.Phase == SelectionAwaitingConfirmation {
		d.mu.Unlock()
		return nil, ErrActionPending
	}
	d.sel = Selection{Phase: SelectionSelecting, Card: card}
	d.mu.Unlock()

	if len(piles) == 1 {
		// unambiguous; no pile prompt needed
		return piles, d.play(ctx, card, piles[0])
	}

	return piles, nil
}

// ChoosePile resolves an ambiguous selection by naming the target pile
func (d *Dispatcher) ChoosePile(ctx context.Context, targetField int) error {
	d.mu.Lock()
	if d.sel.Phase == SelectionAwaitingConfirmation {
		d.mu.Unlock()
		return ErrActionPending
	}
	if d.sel.Phase != SelectionSelecting {
		d.mu.Unlock()
		return ErrNoSelection
	}
	card := d.sel.Card
	d.mu.Unlock()

	state := d.syncer.State()
	if state == nil {
		return ErrNoGameState
	}

	if targetField < 0 || targetField >= len(state.FieldPiles) || !IsPlayable(card, state.FieldPiles[targetField]) {
		return ErrPileNotLegal
	}

	return d.play(ctx, card, targetField)
}

// Cancel clears the selection. Canceling with nothing selected is a no-op
func (d *Dispatcher) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.sel.Phase == SelectionSelecting {
		d.sel = Selection{}
	}
}

// Draw draws a card from the deck
func (d *Dispatcher) Draw(ctx context.Context) error {
	state := d.syncer.State()
	if state == nil {
		return ErrNoGameState
	}

	if state.CurrentPlayerID != d.playerID {
		return ErrNotYourTurn
	}

	if state.DeckRemaining <= 0 {
		return ErrDeckEmpty
	}

	confirmed, err := d.client.DrawCard(ctx, d.gameID, d.playerID)
	if err != nil {
		logrus.WithError(err).WithField("gameId", d.gameID).Warn("draw failed")
		return err
	}

	d.clearSelection()
	d.syncer.Apply(confirmed)
	return nil
}

// Skip passes the turn without playing
func (d *Dispatcher) Skip(ctx context.Context) error {
	state := d.syncer.State()
	if state == nil {
		return ErrNoGameState
	}

	if state.CurrentPlayerID != d.playerID {
		return ErrNotYourTurn
	}

	confirmed, err := d.client.SkipTurn(ctx, d.gameID, d.playerID)
	if err != nil {
		logrus.WithError(err).WithField("gameId", d.gameID).Warn("skip failed")
		return err
	}

	d.clearSelection()
	d.syncer.Apply(confirmed)
	return nil
}

// Reconcile checks a freshly applied snapshot against the selection and
// clears it when the selected card has left the hand or the playable set.
// A play already awaiting confirmation is settled by its own response, not
// by a poll tick
func (d *Dispatcher) Reconcile(state *api.GameState) {
	if state == nil {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.sel.Phase != SelectionSelecting {
		return
	}

	if !state.Hand.HasCard(d.sel.Card) || !inPlayableSet(d.sel.Card, state) {
		d.sel = Selection{}
	}
}

func (d *Dispatcher) play(ctx context.Context, card deck.Card, targetField int) error {
	d.mu.Lock()
	d.sel = Selection{Phase: SelectionAwaitingConfirmation, Card: card, TargetField: targetField}
	d.mu.Unlock()

	confirmed, err := d.client.PlayCard(ctx, d.gameID, d.playerID, card, targetField)

	d.mu.Lock()
	if err != nil {
		// back to selected so the user can retry or cancel
		d.sel = Selection{Phase: SelectionSelecting, Card: card}
		d.mu.Unlock()
		logrus.WithError(err).WithFields(logrus.Fields{
			"gameId": d.gameID,
			"card":   card.String(),
		}).Warn("play failed")
		return err
	}

	d.sel = Selection{}
	d.mu.Unlock()

	d.syncer.Apply(confirmed)
	return nil
}

func (d *Dispatcher) clearSelection() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sel = Selection{}
}
