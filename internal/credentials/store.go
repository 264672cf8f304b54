// Package credentials persists the account credentials between runs. The
// follower core only calls the Store interface; how a concrete store protects
// the data at rest is its own concern.
package credentials

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// ErrNotFound is returned when no credentials have been stored.
var ErrNotFound = errors.New("no stored credentials")

// Stored is the persisted credential record.
type Stored struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

// Store is the credential collaborator surface.
type Store interface {
	Save(Stored) error
	Load() (Stored, error)
	Delete() error
}

// FileStore keeps credentials in a mode-0600 JSON file under the app config
// directory.
type FileStore struct {
	path string
}

// NewFileStore creates a store at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Save(creds Stored) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0750); err != nil {
		return err
	}
	data, err := json.Marshal(creds)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0600)
}

func (s *FileStore) Load() (Stored, error) {
	data, err := os.ReadFile(s.path) //nolint:gosec // Path is controlled by the app, not user input
	if err != nil {
		if os.IsNotExist(err) {
			return Stored{}, ErrNotFound
		}
		return Stored{}, err
	}

	var creds Stored
	if err := json.Unmarshal(data, &creds); err != nil {
		// A corrupted record is treated as absent; the user logs in again.
		return Stored{}, ErrNotFound
	}
	return creds, nil
}

func (s *FileStore) Delete() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
