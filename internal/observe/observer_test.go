package observe

import (
	"testing"
	"time"

	"github.com/araroot/kotomine/internal/model"
)

func TestCleanLine_StripsBracketedNames(t *testing.T) {
	got, ok := CleanLine("（田中）もう行かないと。")
	if !ok {
		t.Fatal("line with kanji should pass")
	}
	if got != "もう行かないと。" {
		t.Errorf("got %q", got)
	}
}

func TestCleanLine_RejectsKanaOnly(t *testing.T) {
	if _, ok := CleanLine("やばいよね"); ok {
		t.Error("lines without kanji are rejected")
	}
}

func TestCleanLine_RejectsEmptyAfterCleaning(t *testing.T) {
	if _, ok := CleanLine("（ナレーション）"); ok {
		t.Error("a line that is only a bracketed cue should be rejected")
	}
}

func TestObserve_SuppressesConsecutiveDuplicates(t *testing.T) {
	o := New()
	at := time.Now()

	_, ok := o.Observe("思ったより大変だった", "tab-1", model.PlatformNetflix, at, nil)
	if !ok {
		t.Fatal("first emission should pass")
	}
	if _, ok := o.Observe("思ったより大変だった", "tab-1", model.PlatformNetflix, at.Add(time.Second), nil); ok {
		t.Error("identical consecutive emission should be suppressed")
	}

	// A different line, then the first again: genuine re-emission.
	if _, ok := o.Observe("別の行になった", "tab-1", model.PlatformNetflix, at.Add(2*time.Second), nil); !ok {
		t.Fatal("new line should pass")
	}
	if _, ok := o.Observe("思ったより大変だった", "tab-1", model.PlatformNetflix, at.Add(3*time.Second), nil); !ok {
		t.Error("re-emission after an intervening line should pass")
	}
}

func TestObserve_DuplicatesAreTrackedPerSource(t *testing.T) {
	o := New()
	at := time.Now()

	o.Observe("思ったより大変だった", "tab-1", model.PlatformNetflix, at, nil)
	if _, ok := o.Observe("思ったより大変だった", "tab-2", model.PlatformPrime, at, nil); !ok {
		t.Error("the same line on another source is not a duplicate")
	}
}

func TestObserve_AttachesContext(t *testing.T) {
	o := New()
	show := &model.ShowRef{Name: "ゆるキャン", Season: 2, Episode: 5}
	at := time.Now()

	ev, ok := o.Observe("思ったより大変だった", "tab-1", model.PlatformPrime, at, show)
	if !ok {
		t.Fatal("line should pass")
	}
	if ev.Platform != model.PlatformPrime || ev.Show != show || !ev.ObservedAt.Equal(at) {
		t.Errorf("event context wrong: %+v", ev)
	}
}
