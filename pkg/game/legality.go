package game

import (
	"speedmatch-client/pkg/api"
	"speedmatch-client/pkg/deck"
)

// IsPlayable reports whether card may be placed on a pile whose top card is
// top: same suit, equal rank, or rank within one with ace and king adjacent.
// This mirrors the server rule for UX only; the server stays authoritative.
// Malformed cards are never playable
func IsPlayable(card, top deck.Card) bool {
	if !card.Valid() || !top.Valid() {
		return false
	}

	if card.Suit == top.Suit || card.Rank == top.Rank {
		return true
	}

	diff := card.Rank - top.Rank
	if diff < 0 {
		diff = -diff
	}

	// diff of 12 only happens for the ace-king pair
	return diff == 1 || diff == 12
}

// PlayablePiles returns the indices of the field piles card may be played on
func PlayablePiles(card deck.Card, piles []deck.Card) []int {
	indices := make([]int, 0, len(piles))
	for i, top := range piles {
		if IsPlayable(card, top) {
			indices = append(indices, i)
		}
	}

	return indices
}

// Playable reports whether card can be played at all right now: it must be in
// the server-supplied playable set and legal on at least one field pile
func Playable(card deck.Card, state *api.GameState) bool {
	if state == nil || !inPlayableSet(card, state) {
		return false
	}

	return len(PlayablePiles(card, state.FieldPiles)) > 0
}

func inPlayableSet(card deck.Card, state *api.GameState) bool {
	for _, c := range state.PlayableCards {
		if c.Equal(card) {
			return true
		}
	}

	return false
}
