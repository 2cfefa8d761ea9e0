package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// room statuses
const (
	RoomWaiting = "WAITING"
	RoomInGame  = "IN_GAME"
	RoomClosed  = "CLOSED"
)

// RoomMember is one player in a room's waiting area
type RoomMember struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Ready    bool   `json:"ready"`
}

// Room is a lobby room. GameID is set once the host has started a game
type Room struct {
	RoomID  string       `json:"roomId"`
	Name    string       `json:"name"`
	HostID  string       `json:"hostId"`
	Status  string       `json:"status"`
	Members []RoomMember `json:"members"`
	GameID  string       `json:"gameId,omitempty"`
}

// AllReady returns true if every member has checked ready
func (r *Room) AllReady() bool {
	if len(r.Members) == 0 {
		return false
	}

	for _, m := range r.Members {
		if !m.Ready {
			return false
		}
	}

	return true
}

// Member returns the member with the given player ID, if present
func (r *Room) Member(playerID string) (RoomMember, bool) {
	for _, m := range r.Members {
		if m.PlayerID == playerID {
			return m, true
		}
	}

	return RoomMember{}, false
}

// ChatMessage is one line of room chat
type ChatMessage struct {
	MessageID string    `json:"messageId"`
	RoomID    string    `json:"roomId"`
	PlayerID  string    `json:"playerId"`
	Name      string    `json:"name"`
	Text      string    `json:"text"`
	SentAt    time.Time `json:"sentAt"`
}

// CreateRoom creates a new room with the caller as host
func (c *Client) CreateRoom(ctx context.Context, name, hostID string) (*Room, error) {
	payload := struct {
		Name   string `json:"name"`
		HostID string `json:"hostId"`
	}{name, hostID}

	var room Room
	if err := c.do(ctx, http.MethodPost, "/rooms", payload, &room); err != nil {
		return nil, err
	}

	return &room, nil
}

// Rooms lists the rooms currently waiting for players
func (c *Client) Rooms(ctx context.Context) ([]*Room, error) {
	var rooms []*Room
	if err := c.do(ctx, http.MethodGet, "/rooms", nil, &rooms); err != nil {
		return nil, err
	}

	return rooms, nil
}

// Room fetches a single room
func (c *Client) Room(ctx context.Context, roomID string) (*Room, error) {
	var room Room
	if err := c.do(ctx, http.MethodGet, c.roomPath(roomID, ""), nil, &room); err != nil {
		return nil, err
	}

	return &room, nil
}

// JoinRoom adds the player to the room's waiting area
func (c *Client) JoinRoom(ctx context.Context, roomID, playerID string) (*Room, error) {
	var room Room
	if err := c.do(ctx, http.MethodPost, c.roomPath(roomID, "join"), playerPayload{playerID}, &room); err != nil {
		return nil, err
	}

	return &room, nil
}

// LeaveRoom removes the player from the room
func (c *Client) LeaveRoom(ctx context.Context, roomID, playerID string) error {
	return c.do(ctx, http.MethodPost, c.roomPath(roomID, "leave"), playerPayload{playerID}, nil)
}

// SetReady sets the player's ready flag in the waiting room
func (c *Client) SetReady(ctx context.Context, roomID, playerID string, ready bool) (*Room, error) {
	payload := struct {
		PlayerID string `json:"playerId"`
		Ready    bool   `json:"ready"`
	}{playerID, ready}

	var room Room
	if err := c.do(ctx, http.MethodPost, c.roomPath(roomID, "ready"), payload, &room); err != nil {
		return nil, err
	}

	return &room, nil
}

// RoomMessages fetches the room's chat history
func (c *Client) RoomMessages(ctx context.Context, roomID string) ([]ChatMessage, error) {
	var messages []ChatMessage
	if err := c.do(ctx, http.MethodGet, c.roomPath(roomID, "messages"), nil, &messages); err != nil {
		return nil, err
	}

	return messages, nil
}

// PostRoomMessage sends a chat message over REST. Live chat normally goes
// over the room websocket; this is the fallback path
func (c *Client) PostRoomMessage(ctx context.Context, roomID, playerID, text string) (*ChatMessage, error) {
	payload := struct {
		PlayerID string `json:"playerId"`
		Text     string `json:"text"`
	}{playerID, text}

	var msg ChatMessage
	if err := c.do(ctx, http.MethodPost, c.roomPath(roomID, "messages"), payload, &msg); err != nil {
		return nil, err
	}

	return &msg, nil
}

func (c *Client) roomPath(roomID, suffix string) string {
	path := fmt.Sprintf("/rooms/%s", url.PathEscape(roomID))
	if suffix != "" {
		path += "/" + suffix
	}

	return path
}
