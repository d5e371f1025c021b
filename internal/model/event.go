package model

import (
	"strings"
	"time"
)

// SourceID identifies one observation context (conceptually, one open tab).
type SourceID string

// Platform identifies the streaming service a subtitle was observed on.
type Platform string

const (
	PlatformNetflix Platform = "netflix"
	PlatformPrime   Platform = "prime"
	PlatformUnknown Platform = "unknown"
)

// DetectPlatform maps a hostname to a known streaming platform.
func DetectPlatform(hostname string) Platform {
	switch {
	case strings.Contains(hostname, "netflix.com"):
		return PlatformNetflix
	case strings.Contains(hostname, "amazon.com"), strings.Contains(hostname, "primevideo.com"):
		return PlatformPrime
	default:
		return PlatformUnknown
	}
}

// ShowRef is the show context set by the user; read-only to the core.
type ShowRef struct {
	Name    string `json:"name"`
	Season  int    `json:"season"`
	Episode int    `json:"episode"`
}

// SubtitleEvent is one observed subtitle line. Immutable once created:
// it is appended to the event buffer and never mutated, only evicted.
type SubtitleEvent struct {
	Text       string
	Source     SourceID
	Platform   Platform
	ObservedAt time.Time
	Show       *ShowRef
}
