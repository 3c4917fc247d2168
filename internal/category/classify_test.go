package category

import (
	"strings"
	"testing"

	"github.com/noamsh/makolet/internal/model"
)

type learnedMap map[string]model.Category

func (m learnedMap) Lookup(name string) (model.Category, bool) {
	cat, ok := m[name]
	return cat, ok
}

func TestDetect(t *testing.T) {
	tests := []struct {
		input string
		want  model.Category
	}{
		{"חלב", model.CategoryDairy},
		{"milk", model.CategoryDairy},
		{"עגבניה", model.CategoryProduce},
		{"עוף", model.CategoryMeat},
		{"לחם", model.CategoryBakery},
		{"קפה", model.CategoryBeverages},
		{"במבה", model.CategorySnacks},
		{"גלידה", model.CategoryFrozen},
		{"נייר טואלט", model.CategoryHousehold},
		{"משחת שיניים", model.CategoryPersonal},
		{"אורז", model.CategoryPantry},
		{"שמן זית", model.CategoryOils},
		{"רוטב עגבניות", model.CategorySauces},
		{"חומוס", model.CategoryCanned},
		{"widget", model.CategoryOther},
		{"", model.CategoryOther},
	}
	for _, tt := range tests {
		got := Detect(tt.input)
		if got != tt.want {
			t.Errorf("Detect(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestDetectCaseAndWhitespace(t *testing.T) {
	if got := Detect("  MILK  "); got != model.CategoryDairy {
		t.Errorf("Detect(%q) = %q, want Dairy", "  MILK  ", got)
	}
}

// Canned keywords outrank every later list, including Pantry.
func TestDetectPriorityOrder(t *testing.T) {
	tests := []struct {
		input string
		want  model.Category
	}{
		// "שימורים" (Canned) + "אורז" (Pantry) — Canned wins
		{"אורז שימורים", model.CategoryCanned},
		// "שמן" (Oils) + "תבלין" (Pantry) — Oils wins
		{"שמן תבלין", model.CategoryOils},
		// "רוטב" (Sauces) + "פסטה" (Pantry) — Sauces wins
		{"רוטב פסטה", model.CategorySauces},
		// "sauce" (Sauces) beats "pasta" (Pantry)
		{"pasta sauce", model.CategorySauces},
		// "חלב" (Dairy) beats "קפה" (Beverages): Dairy is earlier
		{"קפה עם חלב", model.CategoryDairy},
	}
	for _, tt := range tests {
		got := Detect(tt.input)
		if got != tt.want {
			t.Errorf("Detect(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestRuleOrderIsFixed(t *testing.T) {
	wantOrder := []model.Category{
		model.CategoryCanned, model.CategoryOils, model.CategorySauces,
		model.CategoryDairy, model.CategoryProduce, model.CategoryMeat,
		model.CategoryBakery, model.CategoryBeverages, model.CategorySnacks,
		model.CategoryFrozen, model.CategoryHousehold, model.CategoryPersonal,
		model.CategoryPantry,
	}
	if len(keywordRules) != len(wantOrder) {
		t.Fatalf("expected %d keyword rules, got %d", len(wantOrder), len(keywordRules))
	}
	for i, rule := range keywordRules {
		if rule.category != wantOrder[i] {
			t.Errorf("keywordRules[%d] = %q, want %q", i, rule.category, wantOrder[i])
		}
	}
}

func TestClassifierLearnedOverride(t *testing.T) {
	learned := learnedMap{
		strings.ToLower("חלב"): model.CategoryFrozen, // nonsense on purpose
	}
	c := NewClassifier(learned)

	// Learned entry wins over the Dairy keyword match.
	if got := c.Classify("חלב"); got != model.CategoryFrozen {
		t.Errorf("Classify(learned) = %q, want Frozen", got)
	}
	// Unlearned names fall through to the keyword rules.
	if got := c.Classify("גבינה"); got != model.CategoryDairy {
		t.Errorf("Classify(unlearned) = %q, want Dairy", got)
	}
}

func TestClassifierNilLearned(t *testing.T) {
	c := NewClassifier(nil)
	if got := c.Classify("לחם"); got != model.CategoryBakery {
		t.Errorf("Classify = %q, want Bakery", got)
	}
}
