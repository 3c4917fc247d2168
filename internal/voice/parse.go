// Package voice turns finalized Hebrew speech transcripts into
// structured item+quantity records. Capture (microphone, speech
// recognition) lives on the client; the server only ever sees whole
// transcripts.
package voice

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/noamsh/makolet/internal/model"
)

// Item is one recognized product mention, not yet confirmed by the user.
type Item struct {
	Name      string         `json:"name"`
	Quantity  float64        `json:"quantity"`
	Category  model.Category `json:"category"`
	Confirmed bool           `json:"confirmed"`
}

// DetectFunc assigns a category to a recognized item name.
type DetectFunc func(name string) model.Category

var (
	trailingNumber = regexp.MustCompile(`^(.+?)\s+(\d+(?:\.\d+)?)\s*$`)
	leadingNumber  = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s+(.+)$`)
	currencyMarks  = strings.NewReplacer("₪", "", "$", "", "€", "", "£", "")
)

// excludedNames are packaging-noise words the recognizer picks up that
// are never real grocery items.
var excludedNames = []string{"שקית", "גופיה"}

// ParseTranscript normalizes a transcript and extracts an ordered item
// list. Mentions of the same name within one transcript merge into a
// single item with summed quantity. An empty result means nothing was
// recognized; it is an expected outcome, not an error.
func ParseTranscript(text string, detect DetectFunc) []Item {
	segments := splitSegments(Normalize(text))

	var items []Item
	for _, segment := range segments {
		segment = strings.TrimSpace(segment)
		if utf8.RuneCountInString(segment) < 2 {
			continue
		}

		name, qty := extractItem(segment)
		if utf8.RuneCountInString(name) <= 1 {
			continue
		}

		name = strings.TrimSpace(currencyMarks.Replace(name))
		if name == "" || isExcluded(name) {
			continue
		}
		if qty == 0 {
			qty = 1
		}

		if existing := findItem(items, name); existing != nil {
			existing.Quantity += qty
			continue
		}

		items = append(items, Item{
			Name:     name,
			Quantity: qty,
			Category: detect(name),
		})
	}
	return items
}

// splitSegments breaks a normalized transcript into item+quantity chunks.
// Comma-separated input wins; otherwise a token scan pairs numbers with
// adjacent Hebrew words.
func splitSegments(text string) []string {
	trimmed := strings.TrimSpace(text)

	var segments []string
	for _, part := range strings.FieldsFunc(text, func(r rune) bool { return r == ',' || r == '،' }) {
		part = strings.TrimSpace(part)
		if part != "" {
			segments = append(segments, part)
		}
	}

	if len(segments) == 1 && segments[0] == trimmed {
		segments = scanSegments(trimmed)
	}
	if len(segments) == 0 {
		segments = []string{trimmed}
	}
	return segments
}

// scanSegments walks the tokens left to right, always preferring a
// 2-token number+item match over treating a token alone. A lone Hebrew
// word becomes its own segment (implicit quantity 1). Tokens that are
// neither Hebrew nor numeric are skipped.
func scanSegments(text string) []string {
	words := strings.Fields(text)
	var segments []string

	for i := 0; i < len(words); {
		word := words[i]

		// "4 חסה" — number then item
		if isNumeric(word) && i+1 < len(words) && isHebrewWord(words[i+1]) {
			segments = append(segments, words[i+1]+" "+word)
			i += 2
			continue
		}

		// "שתיים עגבניה" — spoken number then item
		if _, ok := hebrewNumberValues[word]; ok && i+1 < len(words) && isHebrewWord(words[i+1]) {
			segments = append(segments, words[i+1]+" "+word)
			i += 2
			continue
		}

		if isHebrewWord(word) {
			if i+1 < len(words) {
				next := words[i+1]
				// "חסה 4" or "חסה ארבע" — item then number
				if isNumeric(next) {
					segments = append(segments, word+" "+next)
					i += 2
					continue
				}
				if _, ok := hebrewNumberValues[next]; ok {
					segments = append(segments, word+" "+next)
					i += 2
					continue
				}
			}
			segments = append(segments, word)
			i++
			continue
		}

		i++
	}
	return segments
}

// extractItem pulls the name and quantity out of one segment, trying
// trailing numeral, leading numeral, spoken number words (either side),
// then falling back to the whole segment with quantity 1.
func extractItem(segment string) (string, float64) {
	if m := trailingNumber.FindStringSubmatch(segment); m != nil {
		qty, _ := strconv.ParseFloat(m[2], 64)
		return strings.TrimSpace(m[1]), qty
	}
	if m := leadingNumber.FindStringSubmatch(segment); m != nil {
		qty, _ := strconv.ParseFloat(m[1], 64)
		return strings.TrimSpace(m[2]), qty
	}

	for _, n := range hebrewNumbers {
		if rest, ok := strings.CutSuffix(segment, " "+n.word); ok {
			if name := strings.TrimSpace(rest); name != "" {
				return name, n.value
			}
		}
		if rest, ok := strings.CutPrefix(segment, n.word+" "); ok {
			if name := strings.TrimSpace(rest); name != "" {
				return name, n.value
			}
		}
	}

	return segment, 1
}

func findItem(items []Item, name string) *Item {
	for i := range items {
		if strings.EqualFold(strings.TrimSpace(items[i].Name), name) {
			return &items[i]
		}
	}
	return nil
}

func isExcluded(name string) bool {
	for _, excluded := range excludedNames {
		if strings.Contains(name, excluded) {
			return true
		}
	}
	return false
}
