package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Identity is the locally persisted player identity. It is written once at
// registration and read at startup; nothing in the game view writes it
type Identity struct {
	PlayerID    string `json:"playerId"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email,omitempty"`
}

// Store mediates all access to persistent client state. Components receive a
// Store at construction instead of reaching for files or globals themselves
type Store interface {
	// Identity returns the saved identity. found is false on first run
	Identity() (identity Identity, found bool, err error)

	// SaveIdentity persists the identity for future runs
	SaveIdentity(identity Identity) error
}

type fileStore struct {
	path string
}

// NewFileStore returns a Store backed by a JSON file at path. If path is
// empty, a file under the user config directory is used
func NewFileStore(path string) (Store, error) {
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine config dir: %w", err)
		}

		path = filepath.Join(dir, "speedmatch", "identity.json")
	}

	return &fileStore{path: path}, nil
}

func (s *fileStore) Identity() (Identity, bool, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Identity{}, false, nil
		}

		return Identity{}, false, err
	}

	var identity Identity
	if err := json.Unmarshal(data, &identity); err != nil {
		return Identity{}, false, fmt.Errorf("could not parse identity file: %w", err)
	}

	if identity.PlayerID == "" {
		return Identity{}, false, nil
	}

	return identity, true, nil
}

func (s *fileStore) SaveIdentity(identity Identity) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(identity, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0o600)
}
