package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/araroot/kotomine/internal/extract"
	"github.com/araroot/kotomine/internal/model"
	"github.com/araroot/kotomine/internal/pipeline"
	"github.com/araroot/kotomine/internal/state"
	"github.com/araroot/kotomine/internal/store"
	"github.com/araroot/kotomine/internal/syncer"
	"github.com/araroot/kotomine/internal/words"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	storeURL   string
	sharedIDs  []string
	statePath  string
	llmModel   string
	noExtract  bool
	showName   string
	showSeason int
	showEp     int
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Consume a subtitle observation stream and mine vocabulary",
	Long: `Watch reads newline-delimited JSON subtitle observations from stdin,
one object per line:

  {"text":"（田中）もう行かないと。","source":"tab-1","host":"www.netflix.com","ts":1767301200000}

Each observation is recorded, mined for sentence candidates on a rolling
schedule, and sent for vocabulary extraction. Candidates, words and stats
sync to the remote store in the background.

Example:
  observer --tab 1 | kotomine watch --store-url https://example.firebaseio.com
  kotomine watch --show "ゆるキャン" --season 2 --episode 5 < session.jsonl`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVar(&storeURL, "store-url", "", "remote store base URL (empty disables sync)")
	watchCmd.Flags().StringSliceVar(&sharedIDs, "shared", nil, "shared user IDs that mirror saved words")
	watchCmd.Flags().StringVar(&statePath, "state", "", "state database path (default: $HOME/.kotomine/state.db)")
	watchCmd.Flags().StringVar(&llmModel, "model", "", "extraction model name")
	watchCmd.Flags().BoolVar(&noExtract, "no-extract", false, "disable vocabulary extraction (mining only)")
	watchCmd.Flags().StringVar(&showName, "show", "", "current show name")
	watchCmd.Flags().IntVar(&showSeason, "season", 1, "current season")
	watchCmd.Flags().IntVar(&showEp, "episode", 1, "current episode")
}

// observation is one line of the stdin feed.
type observation struct {
	Text     string `json:"text"`
	Source   string `json:"source"`
	Host     string `json:"host,omitempty"`
	Platform string `json:"platform,omitempty"`
	TS       int64  `json:"ts,omitempty"` // epoch milliseconds; 0 means now
}

func (o observation) platform() model.Platform {
	if o.Platform != "" {
		return model.Platform(o.Platform)
	}
	return model.DetectPlatform(o.Host)
}

func (o observation) observedAt() time.Time {
	if o.TS > 0 {
		return time.UnixMilli(o.TS)
	}
	return time.Now()
}

func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if storeURL != "" {
		cfg.Store.BaseURL = storeURL
	}
	if len(sharedIDs) > 0 {
		cfg.Store.SharedUserIDs = sharedIDs
	}
	if llmModel != "" {
		cfg.Extraction.Model = llmModel
	}
	cfg.Output.Verbose = verbose

	if cfg.Extraction.APIKey == "" {
		cfg.Extraction.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	return cfg, nil
}

func defaultStatePath(cfg *model.Config) (string, error) {
	if statePath != "" {
		return statePath, nil
	}
	if cfg.State.Path != "" {
		return cfg.State.Path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("find home directory: %w", err)
	}
	return filepath.Join(home, ".kotomine", "state.db"), nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path, err := defaultStatePath(cfg)
	if err != nil {
		return err
	}
	local, err := state.Open(path)
	if err != nil {
		return fmt.Errorf("open state: %w", err)
	}
	defer local.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	ownerID, err := local.EnsureIdentity(ctx)
	if err != nil {
		return fmt.Errorf("ensure identity: %w", err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "Identity: %s\n", ownerID)
	}

	if showName != "" {
		if err := local.SetCurrentShow(ctx, model.ShowRef{Name: showName, Season: showSeason, Episode: showEp}); err != nil {
			return fmt.Errorf("set show: %w", err)
		}
	}

	deps := pipeline.Deps{OwnerID: ownerID, Store: local}

	var learner *store.Learner
	if cfg.Store.BaseURL != "" {
		learner = store.NewLearner(store.NewClient(cfg.Store.BaseURL, cfg.Store.Timeout), cfg.Store.DeletedTTL)
		targets := append([]string{ownerID}, cfg.Store.SharedUserIDs...)
		deps.Dispatcher = syncer.New(learner, targets, cfg.Store.SyncBatchMax, verbose)
		deps.Saver = words.NewService(learner, local, ownerID, cfg.Store.SharedUserIDs, verbose)
		deps.Deleted = learner
	}

	if !noExtract {
		provider, err := extract.NewProvider(cfg.Extraction)
		if err != nil {
			return err
		}
		deps.Extractor = extract.NewExtractor(provider, cfg.Extraction.SampleSize, verbose)
		deps.Display = &streamDisplay{out: os.Stdout}
	}

	p := pipeline.New(cfg, deps)
	if show, err := local.CurrentShow(ctx); err == nil {
		p.SetShow(show)
	}

	// Background maintenance: keep the deleted-words cache warm and the
	// remote stats fresh while a session runs.
	if learner != nil {
		maintenance := cron.New()
		_, _ = maintenance.AddFunc("@every 5m", func() {
			learner.DeletedWords(context.Background(), ownerID)
		})
		if svc, ok := deps.Saver.(*words.Service); ok {
			_, _ = maintenance.AddFunc("@every 10m", func() {
				_ = svc.UpdateStats(context.Background())
			})
		}
		maintenance.Start()
		defer maintenance.Stop()
	}

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lines := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var obs observation
		if err := json.Unmarshal([]byte(line), &obs); err != nil {
			if verbose {
				fmt.Fprintf(os.Stderr, "watch: skip malformed observation: %v\n", err)
			}
			continue
		}
		if obs.Source == "" {
			obs.Source = "default"
		}

		p.HandleLine(ctx, obs.Text, model.SourceID(obs.Source), obs.platform(), obs.observedAt())
		lines++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read observations: %w", err)
	}

	p.Drain()

	if verbose {
		fmt.Fprintf(os.Stderr, "Processed %d observations, %d candidates queued\n", lines, p.Queue().Len())
	}
	return nil
}

// streamDisplay prints extraction results to stdout as JSON lines, tagged
// with the request id and the subtitle so a consumer can discard payloads
// it no longer cares about.
type streamDisplay struct {
	out *os.File
}

func (d *streamDisplay) ShowWords(source model.SourceID, requestID int64, subtitle, translation string, insights []model.WordInsight) {
	payload := struct {
		Source      model.SourceID      `json:"source"`
		RequestID   int64               `json:"requestId"`
		Subtitle    string              `json:"subtitle"`
		Translation string              `json:"translation,omitempty"`
		Words       []model.WordInsight `json:"words"`
	}{source, requestID, subtitle, translation, insights}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return
	}
	fmt.Fprintln(d.out, string(encoded))
}
