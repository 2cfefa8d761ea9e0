package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/badoux/checkmail"
)

// Player is a registered SpeedMatch player
type Player struct {
	PlayerID    string `json:"playerId"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email,omitempty"`
}

// RegisterPlayer creates a new player. The display name and email are
// validated locally first so form errors never reach the network layer
func (c *Client) RegisterPlayer(ctx context.Context, displayName, email string) (*Player, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, &ValidationError{Field: "displayName", Reason: "must not be empty"}
	}

	if len(displayName) > 40 {
		return nil, &ValidationError{Field: "displayName", Reason: "must be 40 characters or fewer"}
	}

	if email != "" {
		if err := checkmail.ValidateFormat(email); err != nil {
			return nil, &ValidationError{Field: "email", Reason: "not a valid email address"}
		}
	}

	payload := struct {
		DisplayName string `json:"displayName"`
		Email       string `json:"email,omitempty"`
	}{displayName, email}

	var player Player
	if err := c.do(ctx, http.MethodPost, "/players", payload, &player); err != nil {
		return nil, err
	}

	return &player, nil
}

// Player fetches a player by ID
func (c *Client) Player(ctx context.Context, playerID string) (*Player, error) {
	path := fmt.Sprintf("/players/%s", url.PathEscape(playerID))

	var player Player
	if err := c.do(ctx, http.MethodGet, path, nil, &player); err != nil {
		return nil, err
	}

	return &player, nil
}
