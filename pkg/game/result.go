package game

import (
	"context"
	"sync"

	"speedmatch-client/pkg/api"
)

// ResultClient is the part of the API client the result fetcher needs
type ResultClient interface {
	GameResult(ctx context.Context, gameID string) (*api.GameResult, error)
}

// ResultFetcher fetches the final standings of a finished game once and
// caches them. Results are immutable, so repeated Fetch calls return the
// cached value without another network call
type ResultFetcher struct {
	client ResultClient
	gameID string

	mu     sync.Mutex
	cached *api.GameResult
}

// NewResultFetcher returns a ResultFetcher for the given game
func NewResultFetcher(client ResultClient, gameID string) *ResultFetcher {
	return &ResultFetcher{
		client: client,
		gameID: gameID,
	}
}

// Fetch returns the game result, hitting the network only on the first call
// or after a previous failure
func (f *ResultFetcher) Fetch(ctx context.Context) (*api.GameResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.cached != nil {
		return f.cached, nil
	}

	return f.fetch(ctx)
}

// Refresh bypasses the cache and fetches a fresh result
func (f *ResultFetcher) Refresh(ctx context.Context) (*api.GameResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.fetch(ctx)
}

// fetch must be called with the mutex held
func (f *ResultFetcher) fetch(ctx context.Context) (*api.GameResult, error) {
	result, err := f.client.GameResult(ctx, f.gameID)
	if err != nil {
		return nil, err
	}

	f.cached = result
	return result, nil
}
