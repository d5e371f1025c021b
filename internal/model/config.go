package model

import "time"

// Config holds the full runtime configuration.
type Config struct {
	Mining     MiningConfig     `mapstructure:"mining" yaml:"mining"`
	Extraction ExtractionConfig `mapstructure:"extraction" yaml:"extraction"`
	Store      StoreConfig      `mapstructure:"store" yaml:"store"`
	State      StateConfig      `mapstructure:"state" yaml:"state"`
	Output     OutputConfig     `mapstructure:"output" yaml:"output"`
}

// MiningConfig controls the buffer, scheduler, merger and queue parameters.
type MiningConfig struct {
	Interval        time.Duration `mapstructure:"interval" yaml:"interval"`                   // global throttle between mining passes
	BufferCap       int           `mapstructure:"buffer_cap" yaml:"buffer_cap"`               // subtitle events kept per source
	ScanWindow      int           `mapstructure:"scan_window" yaml:"scan_window"`             // recent events examined per pass
	MinEvents       int           `mapstructure:"min_events" yaml:"min_events"`               // below this a pass is a no-op
	QueueCap        int           `mapstructure:"queue_cap" yaml:"queue_cap"`                 // candidate queue capacity
	MergeGap        time.Duration `mapstructure:"merge_gap" yaml:"merge_gap"`                 // max neighbor timestamp distance to merge
	ShortSentence   int           `mapstructure:"short_sentence" yaml:"short_sentence"`       // below this a line is considered open-ended
	NeedLeftContext int           `mapstructure:"need_left_context" yaml:"need_left_context"` // below this a leading neighbor is pulled in
	MergedCap       int           `mapstructure:"merged_cap" yaml:"merged_cap"`               // substantive-length cap on merged text
}

// ExtractionConfig controls the vocabulary extraction service.
type ExtractionConfig struct {
	Provider    string        `mapstructure:"provider" yaml:"provider"`
	Model       string        `mapstructure:"model" yaml:"model"`
	APIKey      string        `mapstructure:"api_key" yaml:"-"`
	BaseURL     string        `mapstructure:"base_url" yaml:"base_url"`
	MaxTokens   int           `mapstructure:"max_tokens" yaml:"max_tokens"`
	Temperature float32       `mapstructure:"temperature" yaml:"temperature"`
	SampleSize  int           `mapstructure:"sample_size" yaml:"sample_size"` // words surfaced per response
	MinInterval time.Duration `mapstructure:"min_interval" yaml:"min_interval"`
	Timeout     time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// StoreConfig points at the remote key-value store and the identities the
// dispatcher fans out to.
type StoreConfig struct {
	BaseURL       string        `mapstructure:"base_url" yaml:"base_url"`
	SharedUserIDs []string      `mapstructure:"shared_user_ids" yaml:"shared_user_ids"`
	SyncBatchMax  int           `mapstructure:"sync_batch_max" yaml:"sync_batch_max"`
	Timeout       time.Duration `mapstructure:"timeout" yaml:"timeout"`
	DeletedTTL    time.Duration `mapstructure:"deleted_ttl" yaml:"deleted_ttl"`
}

// StateConfig locates the persistent local state database.
type StateConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// OutputConfig controls diagnostics.
type OutputConfig struct {
	Verbose bool `mapstructure:"verbose" yaml:"verbose"`
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() *Config {
	return &Config{
		Mining: MiningConfig{
			Interval:        30 * time.Second,
			BufferCap:       400,
			ScanWindow:      60,
			MinEvents:       3,
			QueueCap:        600,
			MergeGap:        4 * time.Second,
			ShortSentence:   14,
			NeedLeftContext: 12,
			MergedCap:       90,
		},
		Extraction: ExtractionConfig{
			Provider:    "openai",
			Model:       "gpt-4o-mini",
			MaxTokens:   2000,
			Temperature: 0.7,
			SampleSize:  20,
			MinInterval: 100 * time.Millisecond,
			Timeout:     30 * time.Second,
		},
		Store: StoreConfig{
			SyncBatchMax: 40,
			Timeout:      15 * time.Second,
			DeletedTTL:   5 * time.Minute,
		},
		Output: OutputConfig{},
	}
}
