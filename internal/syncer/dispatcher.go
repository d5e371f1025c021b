// Package syncer pushes freshly updated queue entries to the remote store,
// best-effort, without ever slowing the mining path.
package syncer

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/araroot/kotomine/internal/model"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// CandidateWriter is the slice of the remote store the dispatcher needs.
type CandidateWriter interface {
	PatchCandidates(ctx context.Context, userID string, batch map[string]model.SentenceCandidate) error
}

// Dispatcher tracks a lastSyncedAt watermark and sends each newly seen
// queue entry to every configured identity (the owner plus any shared
// collaborators). Failures are swallowed: the worst outcome is a missed
// cycle, which heals on the next pass because the watermark only advances
// for entries that were actually selected.
type Dispatcher struct {
	writer   CandidateWriter
	userIDs  []string
	batchMax int
	limiter  *rate.Limiter
	verbose  bool

	mu           sync.Mutex
	lastSyncedAt int64
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithRate overrides the dispatch rate limit.
func WithRate(limit rate.Limit) Option {
	return func(d *Dispatcher) { d.limiter = rate.NewLimiter(limit, 1) }
}

// New returns a Dispatcher fanning out to userIDs with batches capped at
// batchMax entries.
func New(writer CandidateWriter, userIDs []string, batchMax int, verbose bool, opts ...Option) *Dispatcher {
	if batchMax <= 0 {
		batchMax = 40
	}
	d := &Dispatcher{
		writer:   writer,
		userIDs:  userIDs,
		batchMax: batchMax,
		limiter:  rate.NewLimiter(rate.Limit(1), 1),
		verbose:  verbose,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch sends queue entries seen since the last dispatch. candidates
// must be ordered by lastSeenAt descending, as the queue snapshot is.
func (d *Dispatcher) Dispatch(ctx context.Context, candidates []model.SentenceCandidate) {
	if len(d.userIDs) == 0 || !d.limiter.Allow() {
		return
	}

	d.mu.Lock()
	watermark := d.lastSyncedAt
	d.mu.Unlock()

	batch := make(map[string]model.SentenceCandidate)
	newest := watermark
	for _, c := range candidates {
		if c.LastSeenAt <= watermark {
			break
		}
		batch[c.ID] = c
		if c.LastSeenAt > newest {
			newest = c.LastSeenAt
		}
		if len(batch) >= d.batchMax {
			break
		}
	}
	if len(batch) == 0 {
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, userID := range d.userIDs {
		userID := userID
		g.Go(func() error {
			if err := d.writer.PatchCandidates(gctx, userID, batch); err != nil && d.verbose {
				fmt.Fprintf(os.Stderr, "syncer: patch candidates for %s: %v\n", userID, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	d.mu.Lock()
	if newest > d.lastSyncedAt {
		d.lastSyncedAt = newest
	}
	d.mu.Unlock()
}
