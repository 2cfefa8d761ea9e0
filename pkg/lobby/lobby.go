package lobby

import (
	"context"
	"errors"

	"speedmatch-client/pkg/api"
)

// ErrNotHost is returned when a non-host tries to start the game
var ErrNotHost = errors.New("only the room host can start the game")

// ErrNotAllReady is returned when the game is started before every member
// has checked ready
var ErrNotAllReady = errors.New("not everyone is ready yet")

// RoomClient is the part of the API client the lobby needs
type RoomClient interface {
	CreateRoom(ctx context.Context, name, hostID string) (*api.Room, error)
	Rooms(ctx context.Context) ([]*api.Room, error)
	Room(ctx context.Context, roomID string) (*api.Room, error)
	JoinRoom(ctx context.Context, roomID, playerID string) (*api.Room, error)
	LeaveRoom(ctx context.Context, roomID, playerID string) error
	SetReady(ctx context.Context, roomID, playerID string, ready bool) (*api.Room, error)
	CreateGame(ctx context.Context, roomID string, playerIDs []string) (*api.GameCreated, error)
}

// Lobby drives the room lifecycle for one player: browse, join, ready up,
// and (for the host) start the game once the whole room is ready
type Lobby struct {
	client   RoomClient
	playerID string
}

// New returns a Lobby for the given player
func New(client RoomClient, playerID string) *Lobby {
	return &Lobby{
		client:   client,
		playerID: playerID,
	}
}

// CreateRoom creates a room with this player as host
func (l *Lobby) CreateRoom(ctx context.Context, name string) (*api.Room, error) {
	return l.client.CreateRoom(ctx, name, l.playerID)
}

// Rooms lists joinable rooms
func (l *Lobby) Rooms(ctx context.Context) ([]*api.Room, error) {
	return l.client.Rooms(ctx)
}

// Join adds this player to the room
func (l *Lobby) Join(ctx context.Context, roomID string) (*api.Room, error) {
	return l.client.JoinRoom(ctx, roomID, l.playerID)
}

// Leave removes this player from the room
func (l *Lobby) Leave(ctx context.Context, roomID string) error {
	return l.client.LeaveRoom(ctx, roomID, l.playerID)
}

// SetReady flips this player's ready flag
func (l *Lobby) SetReady(ctx context.Context, roomID string, ready bool) (*api.Room, error) {
	return l.client.SetReady(ctx, roomID, l.playerID, ready)
}

// StartGame creates a game from the room. Only the host may start, and only
// when every member is ready; both conditions are checked locally first but
// the server makes the final call
func (l *Lobby) StartGame(ctx context.Context, room *api.Room) (*api.GameCreated, error) {
	if room.HostID != l.playerID {
		return nil, ErrNotHost
	}

	if !room.AllReady() {
		return nil, ErrNotAllReady
	}

	playerIDs := make([]string, len(room.Members))
	for i, m := range room.Members {
		playerIDs[i] = m.PlayerID
	}

	return l.client.CreateGame(ctx, room.RoomID, playerIDs)
}
