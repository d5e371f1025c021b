package model

// CandidateStatus tracks a sentence candidate through the review workflow.
type CandidateStatus string

const (
	StatusNew      CandidateStatus = "new"
	StatusReviewed CandidateStatus = "reviewed"
	StatusArchived CandidateStatus = "archived"
)

// SentenceCandidate is a deduplicated, potentially merged sentence mined from
// observed subtitle lines. Identity is ID, a stable hash of the normalized
// text, so sentences that differ only in whitespace or punctuation collapse
// into one entry. Timestamps are epoch milliseconds so the record round-trips
// through the remote store unchanged.
type SentenceCandidate struct {
	ID          string          `json:"id"`
	Text        string          `json:"text"`
	Before      string          `json:"before,omitempty"`
	After       string          `json:"after,omitempty"`
	Show        *ShowRef        `json:"show,omitempty"`
	Platform    Platform        `json:"platform"`
	FirstSeenAt int64           `json:"firstSeenAt"`
	LastSeenAt  int64           `json:"lastSeenAt"`
	Occurrences int             `json:"occurrences"`
	Status      CandidateStatus `json:"status"`
}
