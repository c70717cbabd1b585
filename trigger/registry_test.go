package trigger

import (
	"regexp"
	"testing"
)

func TestRegistry_ScanMatchesAndExpandsCaptures(t *testing.T) {
	r := NewRegistry()
	r.Register(Pattern{
		ID:      "error",
		Regexp:  regexp.MustCompile(`ERROR: (\w+)`),
		Enabled: true,
		Actions: []Action{{Kind: ActionNotify, Param: "got error $1"}},
	})

	results := r.Scan(4, "2026-01-01 ERROR: disk_full occurred")
	if len(results) != 1 {
		t.Fatalf("expected 1 match, got %d", len(results))
	}

	match := results[0].Match
	if match.PatternID != "error" {
		t.Errorf("PatternID = %q, want %q", match.PatternID, "error")
	}
	if match.Row != 4 {
		t.Errorf("Row = %d, want 4", match.Row)
	}
	if match.Text != "ERROR: disk_full" {
		t.Errorf("Text = %q, want %q", match.Text, "ERROR: disk_full")
	}
	if len(match.Captures) != 1 || match.Captures[0] != "disk_full" {
		t.Fatalf("Captures = %v, want [disk_full]", match.Captures)
	}

	if len(results[0].Actions) != 1 {
		t.Fatalf("expected 1 resolved action, got %d", len(results[0].Actions))
	}
	if results[0].Actions[0].Value != "got error disk_full" {
		t.Errorf("Value = %q, want %q", results[0].Actions[0].Value, "got error disk_full")
	}
}

func TestRegistry_DisabledPatternSkipped(t *testing.T) {
	r := NewRegistry()
	r.Register(Pattern{ID: "p1", Regexp: regexp.MustCompile(`x`), Enabled: false})

	if results := r.Scan(0, "xxx"); len(results) != 0 {
		t.Fatalf("expected no matches for disabled pattern, got %d", len(results))
	}
}

func TestRegistry_StopPropagationTruncatesActions(t *testing.T) {
	r := NewRegistry()
	r.Register(Pattern{
		ID:      "p1",
		Regexp:  regexp.MustCompile(`hit`),
		Enabled: true,
		Actions: []Action{
			{Kind: ActionHighlight, Param: "red"},
			{Kind: ActionStopPropagation},
			{Kind: ActionNotify, Param: "never reached"},
		},
	})

	results := r.Scan(0, "hit")
	if len(results) != 1 {
		t.Fatalf("expected 1 match, got %d", len(results))
	}
	if len(results[0].Actions) != 2 {
		t.Fatalf("expected actions truncated at StopPropagation (2 entries), got %d", len(results[0].Actions))
	}
}

func TestRegistry_RegisterReplacesByID(t *testing.T) {
	r := NewRegistry()
	r.Register(Pattern{ID: "p1", Regexp: regexp.MustCompile(`a`), Enabled: true})
	r.Register(Pattern{ID: "p1", Regexp: regexp.MustCompile(`b`), Enabled: true})

	patterns := r.Patterns()
	if len(patterns) != 1 {
		t.Fatalf("expected 1 pattern after replace, got %d", len(patterns))
	}
	if patterns[0].Regexp.String() != "b" {
		t.Errorf("expected replaced pattern to use new regexp, got %q", patterns[0].Regexp.String())
	}
}

func TestRegistry_RemoveAndSetEnabled(t *testing.T) {
	r := NewRegistry()
	r.Register(Pattern{ID: "p1", Regexp: regexp.MustCompile(`a`), Enabled: true})

	r.SetEnabled("p1", false)
	if results := r.Scan(0, "aaa"); len(results) != 0 {
		t.Fatalf("expected no matches once disabled, got %d", len(results))
	}

	r.Remove("p1")
	if patterns := r.Patterns(); len(patterns) != 0 {
		t.Fatalf("expected 0 patterns after remove, got %d", len(patterns))
	}
}

func TestRegistry_MultibyteColumnsAreRuneCounts(t *testing.T) {
	r := NewRegistry()
	r.Register(Pattern{ID: "p1", Regexp: regexp.MustCompile(`bar`), Enabled: true})

	results := r.Scan(0, "中bar")
	if len(results) != 1 {
		t.Fatalf("expected 1 match, got %d", len(results))
	}
	if results[0].Match.Col != 1 {
		t.Errorf("Col = %d, want 1 (rune offset past the wide char)", results[0].Match.Col)
	}
}
