package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"speedmatch-client/pkg/deck"
)

// game statuses
const (
	StatusPlaying  = "PLAYING"
	StatusFinished = "FINISHED"
	StatusAborted  = "ABORTED"
)

// GamePlayer is one seat in a game. The server redacts every hand except the
// local player's down to a count
type GamePlayer struct {
	PlayerID    string `json:"playerId"`
	Name        string `json:"name"`
	HandCount   int    `json:"handCount"`
	CardsPlayed int    `json:"cardsPlayed"`
}

// GameState is the authoritative snapshot of a game from the local player's
// point of view. Each fetch replaces the previous state wholesale
type GameState struct {
	GameID          string       `json:"gameId"`
	RoomID          string       `json:"roomId"`
	Players         []GamePlayer `json:"players"`
	FieldPiles      []deck.Card  `json:"fieldPiles"`
	CurrentPlayerID string       `json:"currentPlayerId"`
	DeckRemaining   int          `json:"deckRemaining"`
	Status          string       `json:"status"`
	Hand            deck.Hand    `json:"hand"`
	PlayableCards   []deck.Card  `json:"playableCards"`
	LastUpdatedAt   time.Time    `json:"lastUpdatedAt"`
}

// Terminal returns true once no further plays or polling should occur
func (g *GameState) Terminal() bool {
	return g.Status == StatusFinished || g.Status == StatusAborted
}

// GameCreated is the response to creating a game from a room
type GameCreated struct {
	GameID string `json:"gameId"`
	RoomID string `json:"roomId"`
	Status string `json:"status"`
}

// actionResponse is the payload of a play/draw/skip call
type actionResponse struct {
	Message   string     `json:"message"`
	GameState *GameState `json:"gameState"`
}

// RankEntry is one row in the final standings
type RankEntry struct {
	PlayerID       string `json:"playerId"`
	Rank           int    `json:"rank"`
	RemainingCards int    `json:"remainingCards"`
	CardsPlayed    int    `json:"cardsPlayed"`
}

// GameResult is the terminal state of a finished game. The ranking is sorted
// ascending by rank (1 = best); tie encoding is passed through as the server
// sent it
type GameResult struct {
	GameID          string      `json:"gameId"`
	Ranking         []RankEntry `json:"ranking"`
	PlayTimeSeconds int         `json:"playTimeSeconds"`
	TotalTurns      int         `json:"totalTurns"`
}

// CreateGame starts a game for the room's current members. Only the room host
// may call it
func (c *Client) CreateGame(ctx context.Context, roomID string, playerIDs []string) (*GameCreated, error) {
	payload := struct {
		RoomID    string   `json:"roomId"`
		PlayerIDs []string `json:"playerIds"`
	}{roomID, playerIDs}

	var created GameCreated
	if err := c.do(ctx, http.MethodPost, "/games", payload, &created); err != nil {
		return nil, err
	}

	return &created, nil
}

// GameState fetches the current snapshot for the given player's view
func (c *Client) GameState(ctx context.Context, gameID, playerID string) (*GameState, error) {
	path := fmt.Sprintf("/games/%s/state?playerId=%s", url.PathEscape(gameID), url.QueryEscape(playerID))

	var state GameState
	if err := c.do(ctx, http.MethodGet, path, nil, &state); err != nil {
		return nil, err
	}

	return &state, nil
}

// PlayCard plays a hand card onto the given field pile. On success the server
// returns the post-action snapshot
func (c *Client) PlayCard(ctx context.Context, gameID, playerID string, card deck.Card, targetField int) (*GameState, error) {
	payload := struct {
		PlayerID    string    `json:"playerId"`
		Card        deck.Card `json:"card"`
		TargetField int       `json:"targetField"`
	}{playerID, card, targetField}

	return c.gameAction(ctx, gameID, "play", payload)
}

// DrawCard draws a card from the deck into the player's hand
func (c *Client) DrawCard(ctx context.Context, gameID, playerID string) (*GameState, error) {
	return c.gameAction(ctx, gameID, "draw", playerPayload{playerID})
}

// SkipTurn passes the turn without playing
func (c *Client) SkipTurn(ctx context.Context, gameID, playerID string) (*GameState, error) {
	return c.gameAction(ctx, gameID, "skip", playerPayload{playerID})
}

type playerPayload struct {
	PlayerID string `json:"playerId"`
}

func (c *Client) gameAction(ctx context.Context, gameID, action string, payload interface{}) (*GameState, error) {
	path := fmt.Sprintf("/games/%s/actions/%s", url.PathEscape(gameID), action)

	var resp actionResponse
	if err := c.do(ctx, http.MethodPost, path, payload, &resp); err != nil {
		return nil, err
	}

	if resp.GameState == nil {
		return nil, &Error{
			Code:    CodeBadResponse,
			Message: "action response missing gameState",
		}
	}

	return resp.GameState, nil
}

// GameResult fetches the final standings of a finished game
func (c *Client) GameResult(ctx context.Context, gameID string) (*GameResult, error) {
	path := fmt.Sprintf("/games/%s/result", url.PathEscape(gameID))

	var result GameResult
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}

	return &result, nil
}
