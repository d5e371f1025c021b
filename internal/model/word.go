package model

// WordInsight is one vocabulary item returned by the extraction service.
type WordInsight struct {
	Word    string `json:"word"`
	Reading string `json:"reading"`
	Meaning string `json:"meaning"`
}

// ExtractionResult is the full payload of one extraction response.
type ExtractionResult struct {
	Translation string        `json:"translation"`
	Words       []WordInsight `json:"words"`
}

// SavedWord is the spaced-repetition record kept for a saved vocabulary item.
// Field names and epoch-millisecond timestamps match the remote store schema;
// an upsert rewrites the whole record (last write wins), so review fields
// written by another device may be clobbered. That is accepted behavior.
type SavedWord struct {
	Word               string   `json:"word"`
	Reading            string   `json:"reading"`
	Meaning            string   `json:"meaning"`
	Context            string   `json:"context,omitempty"`
	ContextTranslation string   `json:"contextTranslation,omitempty"`
	Platform           Platform `json:"platform"`
	Show               string   `json:"show,omitempty"`
	Season             int      `json:"season,omitempty"`
	Episode            int      `json:"episode,omitempty"`
	SavedAt            int64    `json:"savedAt"`
	LastReviewed       int64    `json:"lastReviewed,omitempty"`
	NextReview         int64    `json:"nextReview"`
	ReviewCount        int      `json:"reviewCount"`
	Difficulty         string   `json:"difficulty"`
	TimesEncountered   int      `json:"timesEncountered"`
	Mastered           bool     `json:"mastered"`
}

// Stats summarizes the saved-word collection for the review dashboard.
type Stats struct {
	TotalWords    int   `json:"totalWords"`
	Mastered      int   `json:"mastered"`
	DueForReview  int   `json:"dueForReview"`
	ReviewedToday int   `json:"reviewedToday"`
	LastUpdated   int64 `json:"lastUpdated"`
}
