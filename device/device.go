// Package device holds the local device identity: an opaque id generated on
// first use and the display name the user chose. The identity never expires
// and is only ever stored on the device itself.
package device

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Identity identifies one device and its self-declared display name.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Store persists the identity as a JSON file.
type Store struct {
	path string
}

// NewStore returns a store backed by the file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load returns the device identity, generating and persisting a fresh id on
// first use. The username starts empty until the user sets one.
func (s *Store) Load() (Identity, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		id := Identity{ID: uuid.NewString()}
		if err := s.save(id); err != nil {
			return Identity{}, err
		}
		return id, nil
	}
	if err != nil {
		return Identity{}, fmt.Errorf("read identity: %w", err)
	}

	var id Identity
	if err := json.Unmarshal(b, &id); err != nil {
		return Identity{}, fmt.Errorf("unmarshal identity: %w", err)
	}
	if id.ID == "" {
		id.ID = uuid.NewString()
		if err := s.save(id); err != nil {
			return Identity{}, err
		}
	}
	return id, nil
}

// SetUsername updates the display name, keeping the device id.
func (s *Store) SetUsername(username string) (Identity, error) {
	id, err := s.Load()
	if err != nil {
		return Identity{}, err
	}
	id.Username = username
	if err := s.save(id); err != nil {
		return Identity{}, err
	}
	return id, nil
}

func (s *Store) save(id Identity) error {
	b, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("marshal identity: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create identity dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, b, 0o600); err != nil {
		return fmt.Errorf("write identity: %w", err)
	}
	return nil
}
