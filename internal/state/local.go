package state

import (
	"context"
	"fmt"

	"github.com/araroot/kotomine/internal/model"
	"github.com/google/uuid"
)

const (
	keyIdentity    = "anonymousUserId"
	keyCurrentShow = "currentShow"
	keySavedWords  = "savedWords"
	keyMiningQueue = "miningQueue"
)

// EnsureIdentity returns the persisted anonymous identity, generating and
// storing one on first run.
func (s *Store) EnsureIdentity(ctx context.Context) (string, error) {
	var id string
	found, err := s.Get(ctx, keyIdentity, &id)
	if err != nil {
		return "", err
	}
	if found && id != "" {
		return id, nil
	}

	id = "user_" + uuid.NewString()
	if err := s.Set(ctx, keyIdentity, id); err != nil {
		return "", fmt.Errorf("persist identity: %w", err)
	}
	return id, nil
}

// CurrentShow returns the show context set by the user, or nil.
func (s *Store) CurrentShow(ctx context.Context) (*model.ShowRef, error) {
	var show model.ShowRef
	found, err := s.Get(ctx, keyCurrentShow, &show)
	if err != nil || !found {
		return nil, err
	}
	return &show, nil
}

// SetCurrentShow stores the show context.
func (s *Store) SetCurrentShow(ctx context.Context, show model.ShowRef) error {
	return s.Set(ctx, keyCurrentShow, show)
}

// SavedWords returns the local saved-word backup map.
func (s *Store) SavedWords(ctx context.Context) (map[string]model.SavedWord, error) {
	words := make(map[string]model.SavedWord)
	if _, err := s.Get(ctx, keySavedWords, &words); err != nil {
		return nil, err
	}
	return words, nil
}

// PutSavedWord adds or replaces one entry in the backup map.
func (s *Store) PutSavedWord(ctx context.Context, wordID string, word model.SavedWord) error {
	words, err := s.SavedWords(ctx)
	if err != nil {
		return err
	}
	words[wordID] = word
	return s.Set(ctx, keySavedWords, words)
}

// LoadCandidates returns the persisted mining queue.
func (s *Store) LoadCandidates(ctx context.Context) ([]model.SentenceCandidate, error) {
	var candidates []model.SentenceCandidate
	if _, err := s.Get(ctx, keyMiningQueue, &candidates); err != nil {
		return nil, err
	}
	return candidates, nil
}

// SaveCandidates replaces the persisted mining queue.
func (s *Store) SaveCandidates(ctx context.Context, candidates []model.SentenceCandidate) error {
	return s.Set(ctx, keyMiningQueue, candidates)
}
