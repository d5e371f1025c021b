// Package words saves extracted vocabulary: local backup first, then
// best-effort fan-out to the remote store and a stats refresh.
package words

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/araroot/kotomine/internal/model"
	"golang.org/x/sync/errgroup"
)

// RemoteStore is the slice of the remote store the word workflow needs.
type RemoteStore interface {
	UpsertWord(ctx context.Context, userID, wordID string, word model.SavedWord) error
	UpsertStats(ctx context.Context, userID string, stats model.Stats) error
}

// LocalState is the persistence boundary for the saved-word backup and the
// show context.
type LocalState interface {
	CurrentShow(ctx context.Context) (*model.ShowRef, error)
	PutSavedWord(ctx context.Context, wordID string, word model.SavedWord) error
	SavedWords(ctx context.Context) (map[string]model.SavedWord, error)
}

// SaveInput is one word to save, as delivered by the extraction path.
type SaveInput struct {
	Word               string
	Reading            string
	Meaning            string
	Context            string
	ContextTranslation string
	Platform           model.Platform
}

// Service persists saved words. The local backup write is authoritative;
// remote syncs are last-write-wins full-record PUTs fanned out to the
// owner and every shared identity, and their failures are swallowed.
type Service struct {
	remote    RemoteStore
	local     LocalState
	ownerID   string
	sharedIDs []string
	verbose   bool
	now       func() time.Time
}

// NewService returns a Service syncing to ownerID plus sharedIDs.
func NewService(remote RemoteStore, local LocalState, ownerID string, sharedIDs []string, verbose bool) *Service {
	return &Service{
		remote:    remote,
		local:     local,
		ownerID:   ownerID,
		sharedIDs: sharedIDs,
		verbose:   verbose,
		now:       time.Now,
	}
}

// WithClock overrides the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

var wordIDStrip = regexp.MustCompile(`[^a-zA-Z0-9\x{3040}-\x{309F}\x{30A0}-\x{30FF}\x{4E00}-\x{9FFF}]`)

// WordID derives the stable record id for a word: everything outside
// letters, digits and kana/kanji becomes an underscore.
func WordID(word string) string {
	return strings.ToLower(wordIDStrip.ReplaceAllString(word, "_"))
}

// Save builds the spaced-repetition record, writes the local backup, then
// syncs remotely. The returned error covers only the local write; a word
// that is safely backed up never fails because the store was unreachable.
func (s *Service) Save(ctx context.Context, in SaveInput) (string, error) {
	if strings.TrimSpace(in.Word) == "" {
		return "", fmt.Errorf("word is required")
	}

	wordID := WordID(in.Word)
	now := s.now().UnixMilli()

	word := model.SavedWord{
		Word:               in.Word,
		Reading:            in.Reading,
		Meaning:            in.Meaning,
		Context:            in.Context,
		ContextTranslation: in.ContextTranslation,
		Platform:           in.Platform,
		SavedAt:            now,
		NextReview:         now,
		Difficulty:         "new",
		TimesEncountered:   1,
	}
	if word.Platform == "" {
		word.Platform = model.PlatformUnknown
	}
	if show, err := s.local.CurrentShow(ctx); err == nil && show != nil {
		word.Show = show.Name
		word.Season = show.Season
		word.Episode = show.Episode
	}

	if err := s.local.PutSavedWord(ctx, wordID, word); err != nil {
		return "", fmt.Errorf("backup word locally: %w", err)
	}

	s.syncRemote(ctx, wordID, word)
	return wordID, nil
}

func (s *Service) syncRemote(ctx context.Context, wordID string, word model.SavedWord) {
	if s.remote == nil || s.ownerID == "" {
		return
	}

	targets := append([]string{s.ownerID}, s.sharedIDs...)
	g, gctx := errgroup.WithContext(ctx)
	for _, userID := range targets {
		userID := userID
		g.Go(func() error {
			if err := s.remote.UpsertWord(gctx, userID, wordID, word); err != nil && s.verbose {
				fmt.Fprintf(os.Stderr, "words: sync %s to %s: %v\n", wordID, userID, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := s.UpdateStats(ctx); err != nil && s.verbose {
		fmt.Fprintf(os.Stderr, "words: update stats: %v\n", err)
	}
}

// UpdateStats recomputes the dashboard stats from the local backup and
// upserts them for the owner.
func (s *Service) UpdateStats(ctx context.Context) error {
	saved, err := s.local.SavedWords(ctx)
	if err != nil {
		return err
	}

	now := s.now()
	nowMillis := now.UnixMilli()
	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).UnixMilli()

	stats := model.Stats{LastUpdated: nowMillis}
	for _, w := range saved {
		stats.TotalWords++
		if w.Mastered {
			stats.Mastered++
		} else if w.NextReview <= nowMillis {
			stats.DueForReview++
		}
		if w.LastReviewed >= startOfToday && w.LastReviewed > 0 {
			stats.ReviewedToday++
		}
	}

	return s.remote.UpsertStats(ctx, s.ownerID, stats)
}
