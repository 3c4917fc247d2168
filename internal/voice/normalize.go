package voice

import "strings"

// pluralRules rewrite a trailing suffix to singularize a Hebrew noun.
// Tried in order, first match wins.
var pluralRules = []struct {
	suffix      string
	replacement string
}{
	{"ים", ""},  // תפוחים -> תפוח; no final-letter fix-up, שזיפים -> שזיפ
	{"ות", "ה"}, // חסות -> חסה, עגבניות -> עגבניה
	{"יות", "יה"},
	{"אות", "אה"},
}

// singularize converts a plural Hebrew noun to singular, or returns the
// word unchanged when no rule matches.
func singularize(word string) string {
	for _, rule := range pluralRules {
		if strings.HasSuffix(word, rule.suffix) {
			return strings.TrimSuffix(word, rule.suffix) + rule.replacement
		}
	}
	return word
}

// Normalize cleans a raw speech transcript. Mobile speech recognition
// repeats words ("חסה חסה חסה 2"), so immediate duplicates of a Hebrew
// word collapse to one, and plural nouns are singularized. Numbers and
// spoken number words pass through untouched. A trailing comma stays
// attached to its token so the segment split still sees it. Running
// Normalize on already-clean text is a no-op.
func Normalize(text string) string {
	words := strings.Fields(text)
	cleaned := make([]string, 0, len(words))

	for i := 0; i < len(words); {
		word := words[i]
		base := strings.TrimRight(word, ",،")
		mark := word[len(base):]

		if isNumeric(base) {
			cleaned = append(cleaned, word)
			i++
			continue
		}
		if _, ok := normalizePassthrough[base]; ok {
			cleaned = append(cleaned, word)
			i++
			continue
		}

		if isHebrewWord(base) {
			// Skip consecutive duplicates of the same word.
			next := i + 1
			for next < len(words) && words[next] == word {
				next++
			}
			cleaned = append(cleaned, singularize(base)+mark)
			i = next
			continue
		}

		cleaned = append(cleaned, word)
		i++
	}

	return strings.Join(cleaned, " ")
}
