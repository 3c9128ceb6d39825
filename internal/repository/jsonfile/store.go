// Package jsonfile persists submissions as a single JSON array on
// disk, the format the legacy deployment used for messages.json.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"

	"contact-service/internal/model"
)

// Store appends to and lists from one JSON file. Every append is a
// full read-modify-write under the store lock; without it, concurrent
// writers would overwrite each other's records.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore creates a store backed by the file at path. The file is
// created on first append.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Append assigns the submission an id and writes it to the end of the
// array.
func (s *Store) Append(_ context.Context, sub *model.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	subs, err := s.readLocked()
	if err != nil {
		return err
	}

	sub.ID = uuid.NewString()
	subs = append(subs, *sub)

	data, err := json.MarshalIndent(subs, "", "  ")
	if err != nil {
		return fmt.Errorf("encode messages: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write messages file: %w", err)
	}
	return nil
}

// List returns all stored submissions, most recent first. The file
// holds them in insertion order, so the result is reversed on read.
func (s *Store) List(_ context.Context) ([]model.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	subs, err := s.readLocked()
	if err != nil {
		return nil, err
	}

	out := make([]model.Submission, len(subs))
	for i, sub := range subs {
		out[len(subs)-1-i] = sub
	}
	return out, nil
}

func (s *Store) readLocked() ([]model.Submission, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read messages file: %w", err)
	}

	var subs []model.Submission
	if err := json.Unmarshal(data, &subs); err != nil {
		return nil, fmt.Errorf("decode messages file: %w", err)
	}
	return subs, nil
}
