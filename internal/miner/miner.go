// Package miner runs the throttled mining passes that turn buffered
// subtitle events into deduplicated sentence candidates.
package miner

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/araroot/kotomine/internal/buffer"
	"github.com/araroot/kotomine/internal/jptext"
	"github.com/araroot/kotomine/internal/merge"
	"github.com/araroot/kotomine/internal/model"
	"github.com/araroot/kotomine/internal/queue"
)

// CandidateStore is the persistence boundary the queue is reloaded from and
// written back to around each mining pass.
type CandidateStore interface {
	LoadCandidates(ctx context.Context) ([]model.SentenceCandidate, error)
	SaveCandidates(ctx context.Context, candidates []model.SentenceCandidate) error
}

// Dispatcher receives the queue after a pass merged new candidates into it.
// Implementations are best-effort and must never return an error into the
// mining path.
type Dispatcher interface {
	Dispatch(ctx context.Context, candidates []model.SentenceCandidate)
}

// Miner schedules and executes mining passes. The throttle is a single
// process-wide timestamp shared by all sources, so a busy source can starve
// mining for a quiet one within the same window. Intentional; see the
// scheduler tests.
type Miner struct {
	mu        sync.Mutex
	lastRunAt time.Time

	interval   time.Duration
	scanWindow int
	minEvents  int

	buf        *buffer.Buffer
	merger     *merge.Merger
	queue      *queue.Queue
	store      CandidateStore
	dispatcher Dispatcher

	verbose bool
	now     func() time.Time
}

// Option configures a Miner.
type Option func(*Miner)

// WithStore attaches the local persistence boundary.
func WithStore(s CandidateStore) Option {
	return func(m *Miner) { m.store = s }
}

// WithDispatcher attaches the sync dispatcher.
func WithDispatcher(d Dispatcher) Option {
	return func(m *Miner) { m.dispatcher = d }
}

// WithVerbose enables diagnostics on stderr.
func WithVerbose(v bool) Option {
	return func(m *Miner) { m.verbose = v }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Miner) { m.now = now }
}

// New returns a Miner over the given buffer and queue.
func New(cfg model.MiningConfig, buf *buffer.Buffer, q *queue.Queue, opts ...Option) *Miner {
	m := &Miner{
		interval:   cfg.Interval,
		scanWindow: cfg.ScanWindow,
		minEvents:  cfg.MinEvents,
		buf:        buf,
		merger:     merge.New(cfg.MergeGap, cfg.ShortSentence, cfg.NeedLeftContext, cfg.MergedCap),
		queue:      q,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// MaybeMine runs a mining pass for the source unless one ran anywhere in
// the process within the throttle interval. A skipped pass is silent and is
// not queued for later.
func (m *Miner) MaybeMine(ctx context.Context, source model.SourceID) bool {
	m.mu.Lock()
	now := m.now()
	if !m.lastRunAt.IsZero() && now.Sub(m.lastRunAt) < m.interval {
		m.mu.Unlock()
		return false
	}
	m.lastRunAt = now
	m.mu.Unlock()

	m.Mine(ctx, source)
	return true
}

// Mine scans the source's recent events, merges fragments, classifies the
// results and folds the survivors into the candidate queue. The queue is
// reloaded from local state before the merge and written back after, then
// handed to the dispatcher.
func (m *Miner) Mine(ctx context.Context, source model.SourceID) []model.SentenceCandidate {
	events := m.buf.Snapshot(source)
	if len(events) < m.minEvents {
		return nil
	}

	if m.store != nil {
		if persisted, err := m.store.LoadCandidates(ctx); err == nil {
			m.queue.Restore(persisted)
		} else if m.verbose {
			fmt.Fprintf(os.Stderr, "miner: load candidates: %v\n", err)
		}
	}

	batch := m.scan(events)
	m.queue.Merge(batch)
	snapshot := m.queue.Snapshot()

	if m.store != nil {
		if err := m.store.SaveCandidates(ctx, snapshot); err != nil && m.verbose {
			fmt.Fprintf(os.Stderr, "miner: save candidates: %v\n", err)
		}
	}
	if m.dispatcher != nil {
		m.dispatcher.Dispatch(ctx, snapshot)
	}

	if m.verbose {
		fmt.Fprintf(os.Stderr, "miner: source %s: %d events scanned, %d candidates, queue %d\n",
			source, len(events), len(batch), m.queue.Len())
	}
	return batch
}

// scan walks the recent window, excluding the very first and very last
// positions so both neighbors always exist.
func (m *Miner) scan(events []model.SubtitleEvent) []model.SentenceCandidate {
	start := len(events) - m.scanWindow
	if start < 1 {
		start = 1
	}

	var batch []model.SentenceCandidate
	for i := start; i <= len(events)-2; i++ {
		res := m.merger.Merge(&events[i-1], &events[i], &events[i+1])
		if res.Text == "" {
			continue
		}
		// Classification runs on the merged text, not the raw line.
		if jptext.IsLowValueFragment(res.Text) || !jptext.HasSubstance(res.Text) {
			continue
		}
		batch = append(batch, m.candidate(events, i, res))
	}
	return batch
}

func (m *Miner) candidate(events []model.SubtitleEvent, i int, res merge.Result) model.SentenceCandidate {
	// Consumed neighbors shift which lines are the surrounding context.
	before := ""
	if j := i - 1 + res.BeforeOffset; j >= 0 {
		before = events[j].Text
	}
	after := ""
	if j := i + 1 + res.AfterOffset; j < len(events) {
		after = events[j].Text
	}

	seen := events[i].ObservedAt.UnixMilli()
	return model.SentenceCandidate{
		ID:          jptext.IdentityHash(res.Text),
		Text:        res.Text,
		Before:      before,
		After:       after,
		Show:        events[i].Show,
		Platform:    events[i].Platform,
		FirstSeenAt: seen,
		LastSeenAt:  seen,
		Occurrences: 1,
		Status:      model.StatusNew,
	}
}
