// Package merge combines fragmentary subtitle lines into coherent sentence
// candidates using a timing window and length heuristics.
package merge

import (
	"time"

	"github.com/araroot/kotomine/internal/jptext"
	"github.com/araroot/kotomine/internal/model"
)

// Merger decides whether a line should absorb its temporal neighbors.
// Greedy and single-pass: at most one neighbor on each side, trailing
// before leading, never iterating further outward.
type Merger struct {
	gap             time.Duration // max timestamp distance to a neighbor
	shortSentence   int           // below this an unterminated line is open
	needLeftContext int           // below this a leading neighbor is pulled in
	mergedCap       int           // substantive-length cap on the result
}

// Result is the merged text plus which neighbors were consumed, so the
// caller can pick the correct surrounding-context lines.
type Result struct {
	Text         string
	BeforeOffset int // -1 if the leading neighbor was consumed
	AfterOffset  int // +1 if the trailing neighbor was consumed
}

// New returns a Merger with the given thresholds.
func New(gap time.Duration, shortSentence, needLeftContext, mergedCap int) *Merger {
	return &Merger{
		gap:             gap,
		shortSentence:   shortSentence,
		needLeftContext: needLeftContext,
		mergedCap:       mergedCap,
	}
}

// Merge extends cur with its neighbors when cur looks incomplete. Either
// neighbor may be nil.
func (m *Merger) Merge(before, cur, after *model.SubtitleEvent) Result {
	if cur == nil || cur.Text == "" {
		return Result{}
	}

	res := Result{Text: cur.Text}

	endsOpen := jptext.EndsWithConnective(cur.Text) ||
		(!jptext.EndsWithTerminal(cur.Text) && jptext.SubstantiveLength(cur.Text) < m.shortSentence)

	if after != nil && endsOpen && within(cur.ObservedAt, after.ObservedAt, m.gap) {
		merged := res.Text + after.Text
		if jptext.SubstantiveLength(merged) <= m.mergedCap {
			res.Text = merged
			res.AfterOffset = 1
		}
	}

	if jptext.SubstantiveLength(res.Text) < m.needLeftContext &&
		before != nil && jptext.EndsWithConnective(before.Text) &&
		within(before.ObservedAt, cur.ObservedAt, m.gap) {
		merged := before.Text + res.Text
		if jptext.SubstantiveLength(merged) <= m.mergedCap {
			res.Text = merged
			res.BeforeOffset = -1
		}
	}

	return res
}

func within(a, b time.Time, gap time.Duration) bool {
	d := b.Sub(a)
	if d < 0 {
		d = -d
	}
	return d <= gap
}
