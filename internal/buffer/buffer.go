// Package buffer keeps the per-source append-only log of observed subtitle
// lines that mining passes scan.
package buffer

import (
	"sync"

	"github.com/araroot/kotomine/internal/model"
)

// Buffer holds recent subtitle events per source, capped per source with
// oldest-first eviction.
type Buffer struct {
	mu     sync.Mutex
	cap    int
	events map[model.SourceID][]model.SubtitleEvent
}

// New returns a Buffer keeping at most perSourceCap events per source.
func New(perSourceCap int) *Buffer {
	if perSourceCap <= 0 {
		perSourceCap = 400
	}
	return &Buffer{
		cap:    perSourceCap,
		events: make(map[model.SourceID][]model.SubtitleEvent),
	}
}

// Append records an event in observation order for its source, evicting the
// oldest entries once the per-source cap is exceeded.
func (b *Buffer) Append(ev model.SubtitleEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	log := append(b.events[ev.Source], ev)
	if overflow := len(log) - b.cap; overflow > 0 {
		log = append([]model.SubtitleEvent(nil), log[overflow:]...)
	}
	b.events[ev.Source] = log
}

// Snapshot returns a copy of the source's event log, oldest first.
func (b *Buffer) Snapshot(source model.SourceID) []model.SubtitleEvent {
	b.mu.Lock()
	defer b.mu.Unlock()

	log := b.events[source]
	out := make([]model.SubtitleEvent, len(log))
	copy(out, log)
	return out
}

// Len reports how many events are currently buffered for the source.
func (b *Buffer) Len(source model.SourceID) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.events[source])
}

// Drop discards the source's log, for use when its context is torn down.
func (b *Buffer) Drop(source model.SourceID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.events, source)
}
