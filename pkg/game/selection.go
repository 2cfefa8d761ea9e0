package game

import "speedmatch-client/pkg/deck"

// SelectionPhase is the local selection state machine: Idle, Selecting once a
// hand card has been clicked, AwaitingConfirmation while a play is on the
// wire. Transitions happen only on user input or dispatcher responses
type SelectionPhase int

// selection phases
const (
	SelectionIdle SelectionPhase = iota
	SelectionSelecting
	SelectionAwaitingConfirmation
)

func (p SelectionPhase) String() string {
	switch p {
	case SelectionIdle:
		return "idle"
	case SelectionSelecting:
		return "selecting"
	case SelectionAwaitingConfirmation:
		return "awaiting-confirmation"
	}

	return "unknown"
}

// Selection is the local-only transient selection state. It is never sent to
// the server except as parameters of a play action
type Selection struct {
	Phase       SelectionPhase
	Card        deck.Card
	TargetField int
}
