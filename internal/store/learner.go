package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/araroot/kotomine/internal/model"
	gocache "github.com/patrickmn/go-cache"
)

const deletedWordsKey = "deletedWords"

// Learner wraps the raw Client with the paths and caching the vocabulary
// workflow uses.
type Learner struct {
	client *Client
	cache  *gocache.Cache
	ttl    time.Duration
}

// NewLearner returns a Learner caching deleted-word lookups for ttl.
func NewLearner(client *Client, deletedTTL time.Duration) *Learner {
	if deletedTTL <= 0 {
		deletedTTL = 5 * time.Minute
	}
	return &Learner{
		client: client,
		cache:  gocache.New(deletedTTL, 2*deletedTTL),
		ttl:    deletedTTL,
	}
}

// UpsertWord replaces the word record for one user. Last write wins.
func (l *Learner) UpsertWord(ctx context.Context, userID, wordID string, word model.SavedWord) error {
	return l.client.Write(ctx, fmt.Sprintf("users/%s/words/%s", userID, wordID), word)
}

// UpsertStats replaces the user's stats record.
func (l *Learner) UpsertStats(ctx context.Context, userID string, stats model.Stats) error {
	return l.client.Write(ctx, fmt.Sprintf("users/%s/stats", userID), stats)
}

// PatchCandidates merges a batch of mined candidates, keyed by identity
// hash, into the user's candidate collection.
func (l *Learner) PatchCandidates(ctx context.Context, userID string, batch map[string]model.SentenceCandidate) error {
	return l.client.Patch(ctx, fmt.Sprintf("users/%s/candidates", userID), batch)
}

// DeletedWords returns the words the user marked as not useful. Results
// are cached; any failure degrades to an empty list.
func (l *Learner) DeletedWords(ctx context.Context, userID string) []string {
	cacheKey := deletedWordsKey + ":" + userID
	if cached, ok := l.cache.Get(cacheKey); ok {
		return cached.([]string)
	}

	raw, err := l.client.Read(ctx, fmt.Sprintf("users/%s/deletedWords", userID))
	if err != nil || raw == nil {
		return nil
	}

	var entries map[string]struct {
		Word string `json:"word"`
	}
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil
	}

	words := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Word != "" {
			words = append(words, e.Word)
		}
	}
	l.cache.Set(cacheKey, words, l.ttl)
	return words
}
