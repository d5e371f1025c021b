// Package queue maintains the bounded, age-ranked set of unique sentence
// candidates produced by mining passes.
package queue

import (
	"sort"
	"sync"

	"github.com/araroot/kotomine/internal/model"
)

// Queue deduplicates sentence candidates by identity hash and keeps at most
// cap entries, dropping the least recently seen on overflow.
type Queue struct {
	mu      sync.Mutex
	cap     int
	entries map[string]*model.SentenceCandidate
}

// New returns a Queue holding at most cap candidates.
func New(cap int) *Queue {
	if cap <= 0 {
		cap = 600
	}
	return &Queue{
		cap:     cap,
		entries: make(map[string]*model.SentenceCandidate),
	}
}

// Merge folds a batch of freshly mined candidates into the queue. A
// candidate already present has its lastSeenAt advanced and occurrence
// count incremented; a new one is inserted as-is. After the batch the queue
// is truncated to capacity, least-recently-seen first.
func (q *Queue) Merge(batch []model.SentenceCandidate) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, c := range batch {
		if existing, ok := q.entries[c.ID]; ok {
			if c.LastSeenAt > existing.LastSeenAt {
				existing.LastSeenAt = c.LastSeenAt
			}
			existing.Occurrences++
			continue
		}
		inserted := c
		if inserted.Occurrences < 1 {
			inserted.Occurrences = 1
		}
		if inserted.Status == "" {
			inserted.Status = model.StatusNew
		}
		q.entries[inserted.ID] = &inserted
	}

	q.truncateLocked()
}

// Restore folds previously persisted candidates back in without counting
// them as re-observations: an entry already in memory keeps the larger
// occurrence count and the newer lastSeenAt.
func (q *Queue) Restore(persisted []model.SentenceCandidate) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, c := range persisted {
		existing, ok := q.entries[c.ID]
		if !ok {
			restored := c
			q.entries[restored.ID] = &restored
			continue
		}
		if c.LastSeenAt > existing.LastSeenAt {
			existing.LastSeenAt = c.LastSeenAt
		}
		if c.Occurrences > existing.Occurrences {
			existing.Occurrences = c.Occurrences
		}
	}

	q.truncateLocked()
}

// Snapshot returns all candidates ordered by lastSeenAt descending.
func (q *Queue) Snapshot() []model.SentenceCandidate {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.sortedLocked()
}

// Get looks up a candidate by identity hash.
func (q *Queue) Get(id string) (model.SentenceCandidate, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if c, ok := q.entries[id]; ok {
		return *c, true
	}
	return model.SentenceCandidate{}, false
}

// Len reports the number of queued candidates.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

func (q *Queue) truncateLocked() {
	if len(q.entries) <= q.cap {
		return
	}
	ordered := q.sortedLocked()
	for _, c := range ordered[q.cap:] {
		delete(q.entries, c.ID)
	}
}

func (q *Queue) sortedLocked() []model.SentenceCandidate {
	out := make([]model.SentenceCandidate, 0, len(q.entries))
	for _, c := range q.entries {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastSeenAt != out[j].LastSeenAt {
			return out[i].LastSeenAt > out[j].LastSeenAt
		}
		return out[i].ID < out[j].ID
	})
	return out
}
