package deck

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Suit represents a card suit in the wire format used by the SpeedMatch API
type Suit string

// suit constants
const (
	Spades   Suit = "SPADES"
	Hearts   Suit = "HEARTS"
	Diamonds Suit = "DIAMONDS"
	Clubs    Suit = "CLUBS"
)

// rank constants. SpeedMatch plays ace low on the wire (1=A ... 13=K)
const (
	Ace   = 1
	Jack  = 11
	Queen = 12
	King  = 13
)

// Card is an individual playing card. Cards are compared by value; two cards
// with the same suit and rank are the same card
type Card struct {
	Suit Suit `json:"suit"`
	Rank int  `json:"rank"`
}

func (c Card) String() string {
	var rank string
	switch c.Rank {
	case Ace:
		rank = "A"
	case Jack:
		rank = "J"
	case Queen:
		rank = "Q"
	case King:
		rank = "K"
	default:
		rank = strconv.Itoa(c.Rank)
	}

	var suit string
	switch c.Suit {
	case Clubs:
		suit = "♣"
	case Diamonds:
		suit = "♢"
	case Hearts:
		suit = "♡"
	case Spades:
		suit = "♠"
	default:
		suit = "?"
	}

	return fmt.Sprintf("%s%s", rank, suit)
}

// Equal returns true if the cards are equal (matches suit and rank)
func (c Card) Equal(card Card) bool {
	return c.Suit == card.Suit && c.Rank == card.Rank
}

// Valid returns true if the card has a known suit and a rank in [1,13].
// Malformed cards can show up when the server sends data the client does
// not understand; they are never treated as playable
func (c Card) Valid() bool {
	switch c.Suit {
	case Spades, Hearts, Diamonds, Clubs:
	default:
		return false
	}

	return c.Rank >= Ace && c.Rank <= King
}

var cardRx = regexp.MustCompile(`(?i)^(a|j|q|k|[0-9]|1[0-3])([cdhs])\z`)

// ParseCard parses a card in shorthand: <rank><suit> with rank 1-13 or one
// of a/j/q/k and suit in [cdhs]. Parsing is case-insensitive
func ParseCard(s string) (Card, error) {
	match := cardRx.FindStringSubmatch(s)
	if match == nil {
		return Card{}, fmt.Errorf("could not parse card: %s", s)
	}

	var rank int
	switch strings.ToLower(match[1]) {
	case "a":
		rank = Ace
	case "j":
		rank = Jack
	case "q":
		rank = Queen
	case "k":
		rank = King
	default:
		var err error
		if rank, err = strconv.Atoi(match[1]); err != nil {
			return Card{}, fmt.Errorf("could not parse card `%s`: %v", s, err)
		}
	}

	var suit Suit
	switch strings.ToLower(match[2]) {
	case "c":
		suit = Clubs
	case "d":
		suit = Diamonds
	case "h":
		suit = Hearts
	case "s":
		suit = Spades
	}

	card := Card{Suit: suit, Rank: rank}
	if !card.Valid() {
		return Card{}, fmt.Errorf("could not parse card: %s", s)
	}

	return card, nil
}

// CardFromString returns a Card from the string, panicking on bad input.
// Intended for tests and fixtures; user input goes through ParseCard
func CardFromString(s string) Card {
	card, err := ParseCard(s)
	if err != nil {
		panic(err.Error())
	}

	return card
}

// CardsFromString will returns a slice of cards
func CardsFromString(s string) []Card {
	if s == "" {
		return []Card{}
	}

	cardStrings := strings.Split(s, ",")
	cards := make([]Card, len(cardStrings))
	for i, card := range cardStrings {
		cards[i] = CardFromString(card)
	}

	return cards
}

// CardToString converts a card (Ace of Clubs) to a string (1c)
func CardToString(card Card) string {
	var suit string
	switch card.Suit {
	case Clubs:
		suit = "c"
	case Hearts:
		suit = "h"
	case Diamonds:
		suit = "d"
	case Spades:
		suit = "s"
	}

	return fmt.Sprintf("%d%s", card.Rank, suit)
}

// CardsToString will convert a slice of cards to a string in the format of 2c,3h,4s,...
func CardsToString(cards []Card) string {
	c := make([]string, len(cards))
	for i, card := range cards {
		c[i] = CardToString(card)
	}

	return strings.Join(c, ",")
}
