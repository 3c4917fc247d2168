package voice

import (
	"testing"

	"github.com/noamsh/makolet/internal/category"
	"github.com/noamsh/makolet/internal/model"
)

func parseAll(t *testing.T, text string) []Item {
	t.Helper()
	return ParseTranscript(text, category.Detect)
}

func TestParseTranscriptCommaSeparated(t *testing.T) {
	items := parseAll(t, "חלב 2, ביצים 10")

	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d: %+v", len(items), items)
	}
	if items[0].Name != "חלב" || items[0].Quantity != 2 {
		t.Errorf("items[0] = %+v, want חלב qty 2", items[0])
	}
	// Suffix stripping reduces ביצים to its stem.
	if items[1].Name != "ביצ" || items[1].Quantity != 10 {
		t.Errorf("items[1] = %+v, want ביצ qty 10", items[1])
	}
	if items[0].Category != model.CategoryDairy {
		t.Errorf("items[0].Category = %q, want Dairy", items[0].Category)
	}
}

func TestParseTranscriptLeadingNumbers(t *testing.T) {
	items := parseAll(t, "4 חסות, 2 שזיפים")

	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d: %+v", len(items), items)
	}
	// Names come back singularized by the normalizer.
	if items[0].Name != "חסה" || items[0].Quantity != 4 {
		t.Errorf("items[0] = %+v, want חסה qty 4", items[0])
	}
	if items[1].Name != "שזיפ" || items[1].Quantity != 2 {
		t.Errorf("items[1] = %+v, want שזיפ qty 2", items[1])
	}
}

func TestParseTranscriptNoCommasTokenScan(t *testing.T) {
	items := parseAll(t, "חלב 2 ביצים 10")

	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d: %+v", len(items), items)
	}
	if items[0].Name != "חלב" || items[0].Quantity != 2 {
		t.Errorf("items[0] = %+v, want חלב qty 2", items[0])
	}
	if items[1].Name != "ביצ" || items[1].Quantity != 10 {
		t.Errorf("items[1] = %+v, want ביצ qty 10", items[1])
	}
}

func TestParseTranscriptHebrewNumberWords(t *testing.T) {
	items := parseAll(t, "חלב שתיים")
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d: %+v", len(items), items)
	}
	if items[0].Name != "חלב" || items[0].Quantity != 2 {
		t.Errorf("got %+v, want חלב qty 2", items[0])
	}

	items = parseAll(t, "שלוש עגבניות")
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d: %+v", len(items), items)
	}
	if items[0].Name != "עגבניה" || items[0].Quantity != 3 {
		t.Errorf("got %+v, want עגבניה qty 3", items[0])
	}
}

func TestParseTranscriptLoneWordDefaultsToOne(t *testing.T) {
	items := parseAll(t, "אבוקדו")
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].Quantity != 1 {
		t.Errorf("quantity = %v, want 1", items[0].Quantity)
	}
	if items[0].Category != model.CategoryProduce {
		t.Errorf("category = %q, want Produce", items[0].Category)
	}
}

func TestParseTranscriptMergesDuplicates(t *testing.T) {
	items := parseAll(t, "חלב 2, ביצים 10, חלב 1")

	if len(items) != 2 {
		t.Fatalf("expected 2 items after merge, got %d: %+v", len(items), items)
	}
	if items[0].Name != "חלב" || items[0].Quantity != 3 {
		t.Errorf("merged item = %+v, want חלב qty 3", items[0])
	}
}

func TestParseTranscriptDuplicatedSpeech(t *testing.T) {
	// Mobile artifact: the recognizer repeats words.
	items := parseAll(t, "חסה חסה חסה 2")

	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d: %+v", len(items), items)
	}
	if items[0].Name != "חסה" || items[0].Quantity != 2 {
		t.Errorf("got %+v, want חסה qty 2", items[0])
	}
}

func TestParseTranscriptExclusions(t *testing.T) {
	items := parseAll(t, "שקית 2, חלב 1")

	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d: %+v", len(items), items)
	}
	if items[0].Name != "חלב" {
		t.Errorf("got %q, want חלב", items[0].Name)
	}
}

func TestParseTranscriptStripsCurrency(t *testing.T) {
	items := parseAll(t, "חלב₪ 2")
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d: %+v", len(items), items)
	}
	if items[0].Name != "חלב" {
		t.Errorf("name = %q, want חלב", items[0].Name)
	}
}

func TestParseTranscriptNothingRecognized(t *testing.T) {
	for _, input := range []string{"", "   ", "x"} {
		items := parseAll(t, input)
		if len(items) != 0 {
			t.Errorf("ParseTranscript(%q) = %+v, want empty", input, items)
		}
	}
}

func TestDetectCommand(t *testing.T) {
	tests := []struct {
		input      string
		wantTarget Target
		wantRest   string
	}{
		{"יש לנו חלב 2", TargetInventory, "חלב 2"},
		{"קניתי ביצים 10", TargetInventory, "ביצים 10"},
		{"נגמר החלב", TargetShopping, "חלב"},
		{"חסר לנו לחם", TargetShopping, "לחם"},
		{"חלב 2", TargetNone, "חלב 2"},
	}
	for _, tt := range tests {
		target, rest := DetectCommand(tt.input)
		if target != tt.wantTarget || rest != tt.wantRest {
			t.Errorf("DetectCommand(%q) = (%v, %q), want (%v, %q)",
				tt.input, target, rest, tt.wantTarget, tt.wantRest)
		}
	}
}
