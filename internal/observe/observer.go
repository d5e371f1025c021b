// Package observe adapts the raw line stream an external DOM observer
// delivers into clean subtitle events the pipeline can record.
package observe

import (
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/abadojack/whatlanggo"
	"github.com/araroot/kotomine/internal/jptext"
	"github.com/araroot/kotomine/internal/model"
)

// Speaker names and sound cues arrive in brackets; both widths occur.
var bracketed = regexp.MustCompile(`（[^）]*）|\([^)]*\)`)

// Observer cleans incoming lines and suppresses identical consecutive
// emissions per source. Duplicate lines that re-appear later are genuine
// re-emissions and pass through.
type Observer struct {
	mu       sync.Mutex
	lastLine map[model.SourceID]string
}

// New returns an Observer.
func New() *Observer {
	return &Observer{lastLine: make(map[model.SourceID]string)}
}

// CleanLine strips bracketed speaker names and rejects lines without any
// kanji, or lines reliably detected as a language other than Japanese
// (kanji alone also matches Chinese captions).
func CleanLine(raw string) (string, bool) {
	cleaned := strings.TrimSpace(bracketed.ReplaceAllString(raw, ""))
	if cleaned == "" || !jptext.HasKanji(cleaned) {
		return "", false
	}

	info := whatlanggo.Detect(cleaned)
	if info.IsReliable() && info.Lang != whatlanggo.Jpn {
		return "", false
	}
	return cleaned, true
}

// Observe turns one raw emission into a SubtitleEvent. The second return
// is false when the line is empty, a consecutive duplicate, or rejected by
// CleanLine.
func (o *Observer) Observe(raw string, source model.SourceID, platform model.Platform, at time.Time, show *model.ShowRef) (model.SubtitleEvent, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return model.SubtitleEvent{}, false
	}

	o.mu.Lock()
	if o.lastLine[source] == trimmed {
		o.mu.Unlock()
		return model.SubtitleEvent{}, false
	}
	o.lastLine[source] = trimmed
	o.mu.Unlock()

	cleaned, ok := CleanLine(trimmed)
	if !ok {
		return model.SubtitleEvent{}, false
	}

	return model.SubtitleEvent{
		Text:       cleaned,
		Source:     source,
		Platform:   platform,
		ObservedAt: at,
		Show:       show,
	}, true
}

// Forget clears the duplicate-suppression state for a source.
func (o *Observer) Forget(source model.SourceID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.lastLine, source)
}
