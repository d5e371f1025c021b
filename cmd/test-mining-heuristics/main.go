// Test program to demonstrate sentence mining on canned subtitle lines
// This shows fragment merging and low-value filtering working
package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/araroot/kotomine/internal/buffer"
	"github.com/araroot/kotomine/internal/jptext"
	"github.com/araroot/kotomine/internal/miner"
	"github.com/araroot/kotomine/internal/model"
	"github.com/araroot/kotomine/internal/queue"
)

func main() {
	fmt.Println("=== Sentence Mining Heuristics Test ===")
	fmt.Println()

	// Canned dialogue with fragments, interjections and complete lines
	base := time.Now().Add(-time.Minute)
	lines := []struct {
		text   string
		offset time.Duration
	}{
		{"え？", 0},
		{"さっき言おうと思ったんだけど、", 500 * time.Millisecond},
		{"結局忘れちゃったんだよね", 900 * time.Millisecond},
		{"大事な話だったのに", 5 * time.Second},
		{"まあ仕方ないか", 6 * time.Second},
		{"明日もう一度聞いてみるよ", 7 * time.Second},
	}

	fmt.Println("Input lines:")
	fmt.Println(strings.Repeat("-", 60))
	for _, l := range lines {
		tags := []string{}
		if jptext.IsLowValueFragment(l.text) {
			tags = append(tags, "low-value")
		}
		if jptext.EndsWithConnective(l.text) {
			tags = append(tags, "ends-open")
		}
		if jptext.LooksSyntacticallyComplete(l.text) {
			tags = append(tags, "complete")
		}
		fmt.Printf("  %-30s %s\n", l.text, strings.Join(tags, ", "))
	}
	fmt.Println()

	cfg := model.DefaultConfig().Mining
	cfg.Interval = 0 // mine immediately

	buf := buffer.New(cfg.BufferCap)
	q := queue.New(cfg.QueueCap)
	m := miner.New(cfg, buf, q)

	source := model.SourceID("demo")
	for _, l := range lines {
		buf.Append(model.SubtitleEvent{
			Text:       l.text,
			Source:     source,
			Platform:   model.PlatformNetflix,
			ObservedAt: base.Add(l.offset),
		})
	}

	m.MaybeMine(context.Background(), source)

	fmt.Println("Mined candidates:")
	fmt.Println(strings.Repeat("-", 60))
	for _, c := range q.Snapshot() {
		fmt.Printf("  [%s] %s\n", c.ID, c.Text)
		if c.Before != "" {
			fmt.Printf("      before: %s\n", c.Before)
		}
		if c.After != "" {
			fmt.Printf("      after:  %s\n", c.After)
		}
	}

	fmt.Println()
	fmt.Println("=== Test Complete ===")
	fmt.Println()
	fmt.Println("Note: fragments ending in a connective merge with the next line,")
	fmt.Println("interjections are dropped, and the first and last lines of a pass")
	fmt.Println("are held back until more context arrives.")
}
