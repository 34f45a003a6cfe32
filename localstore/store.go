// Package localstore is the client-side record store: the file-backed
// equivalent of the web app's localStorage. Tree records and the current
// user are kept under the same fixed string keys the browser used, so a
// store file is a faithful dump of the original client state.
package localstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	treesKey = "greentrace_trees"
	userKey  = "greentrace_user"
)

// ErrNotOwner is returned when a delete is attempted by someone other than
// the record's uploader.
var ErrNotOwner = errors.New("you can only delete trees you uploaded")

// TreeRecord is a locally persisted tree. Ownership is tracked by the
// uploader's display name (UploadedBy), not a stable id — a name collision
// grants delete rights. Kept as-is from the original client.
type TreeRecord struct {
	ID          string    `json:"id"`
	TreeName    string    `json:"treeName"`
	PlanterName string    `json:"planterName"`
	Location    string    `json:"location"`
	Description string    `json:"description,omitempty"`
	Lat         float64   `json:"lat"`
	Lon         float64   `json:"lon"`
	Image       string    `json:"image,omitempty"`
	Verified    bool      `json:"verified"`
	Confidence  float64   `json:"confidence"`
	PlantedAt   time.Time `json:"plantedAt"`
	UploadedBy  string    `json:"uploadedBy"`
}

// CurrentUser is the locally persisted logged-in user.
type CurrentUser struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Store persists records as a single JSON object of fixed keys. Safe for use
// from multiple goroutines; the original ran in a single cooperative context
// but nothing here depends on that.
type Store struct {
	path string
	mu   sync.Mutex
}

// New creates a store backed by the given file. The file is created on the
// first write.
func New(path string) *Store {
	return &Store{path: path}
}

// Trees returns all persisted tree records, in insertion order.
func (s *Store) Trees() ([]TreeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.read()
	if err != nil {
		return nil, err
	}

	var trees []TreeRecord
	if raw, ok := data[treesKey]; ok {
		if err := json.Unmarshal(raw, &trees); err != nil {
			return nil, fmt.Errorf("parsing stored trees: %w", err)
		}
	}
	return trees, nil
}

// Add appends a verified record and persists the list. The caller is
// expected to have run verification already; Add assigns the record id and
// planting time.
func (s *Store) Add(record TreeRecord) (TreeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.read()
	if err != nil {
		return TreeRecord{}, err
	}

	var trees []TreeRecord
	if raw, ok := data[treesKey]; ok {
		if err := json.Unmarshal(raw, &trees); err != nil {
			return TreeRecord{}, fmt.Errorf("parsing stored trees: %w", err)
		}
	}

	record.ID = uuid.NewString()
	record.PlantedAt = time.Now()
	trees = append(trees, record)

	if err := s.writeKey(data, treesKey, trees); err != nil {
		return TreeRecord{}, err
	}
	return record, nil
}

// Delete removes the record with the given id. Only the uploader may delete:
// the check compares display names, matching the original client behavior.
// Deleting a missing id is a no-op.
func (s *Store) Delete(id, currentUser string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.read()
	if err != nil {
		return err
	}

	var trees []TreeRecord
	if raw, ok := data[treesKey]; ok {
		if err := json.Unmarshal(raw, &trees); err != nil {
			return fmt.Errorf("parsing stored trees: %w", err)
		}
	}

	kept := trees[:0]
	for _, tree := range trees {
		if tree.ID == id {
			if tree.UploadedBy != currentUser {
				return ErrNotOwner
			}
			continue
		}
		kept = append(kept, tree)
	}

	return s.writeKey(data, treesKey, kept)
}

// User returns the persisted current user, or ok=false if nobody is logged in.
func (s *Store) User() (CurrentUser, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.read()
	if err != nil {
		return CurrentUser{}, false, err
	}

	raw, ok := data[userKey]
	if !ok {
		return CurrentUser{}, false, nil
	}

	var user CurrentUser
	if err := json.Unmarshal(raw, &user); err != nil {
		return CurrentUser{}, false, fmt.Errorf("parsing stored user: %w", err)
	}
	return user, true, nil
}

// SetUser persists the current user.
func (s *Store) SetUser(user CurrentUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.read()
	if err != nil {
		return err
	}
	return s.writeKey(data, userKey, user)
}

// ClearUser removes the persisted user (logout).
func (s *Store) ClearUser() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.read()
	if err != nil {
		return err
	}
	delete(data, userKey)
	return s.write(data)
}

func (s *Store) read() (map[string]json.RawMessage, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading local store: %w", err)
	}

	data := map[string]json.RawMessage{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("parsing local store: %w", err)
		}
	}
	return data, nil
}

func (s *Store) writeKey(data map[string]json.RawMessage, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	data[key] = raw
	return s.write(data)
}

func (s *Store) write(data map[string]json.RawMessage) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return fmt.Errorf("writing local store: %w", err)
	}
	return nil
}
