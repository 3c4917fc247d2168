package voice

// hebrewNumber is one spoken-number vocabulary entry.
type hebrewNumber struct {
	word  string
	value float64
}

// hebrewNumbers is the spoken-number vocabulary in match order. Masculine
// and feminine forms both appear; the tens are the word forms speakers
// actually use for quantities.
var hebrewNumbers = []hebrewNumber{
	{"אחד", 1}, {"אחת", 1},
	{"שני", 2}, {"שתי", 2}, {"שניים", 2}, {"שתיים", 2},
	{"שלוש", 3}, {"שלושה", 3},
	{"ארבע", 4}, {"ארבעה", 4},
	{"חמש", 5}, {"חמישה", 5},
	{"שש", 6}, {"שישה", 6},
	{"שבע", 7}, {"שבעה", 7},
	{"שמונה", 8},
	{"תשע", 9}, {"תשעה", 9},
	{"עשר", 10}, {"עשרה", 10},
	{"עשרים", 20}, {"שלושים", 30}, {"ארבעים", 40}, {"חמישים", 50},
}

var hebrewNumberValues = map[string]float64{}

// normalizePassthrough lists the number words the normalizer copies
// through untouched. The tens words are deliberately absent: they end in
// plural-looking suffixes and predate the normalizer, so they still go
// through the singularization path.
var normalizePassthrough = map[string]struct{}{}

func init() {
	for _, n := range hebrewNumbers {
		hebrewNumberValues[n.word] = n.value
		if n.value <= 10 {
			normalizePassthrough[n.word] = struct{}{}
		}
	}
}

// isNumeric reports whether tok is digits with an optional decimal part.
func isNumeric(tok string) bool {
	if tok == "" {
		return false
	}
	seenDot := false
	seenDigit := false
	for i, r := range tok {
		switch {
		case r >= '0' && r <= '9':
			seenDigit = true
		case r == '.' && !seenDot && i > 0 && i < len(tok)-1:
			seenDot = true
		default:
			return false
		}
	}
	return seenDigit
}

// isHebrewWord reports whether tok is composed entirely of Hebrew letters.
func isHebrewWord(tok string) bool {
	if tok == "" {
		return false
	}
	for _, r := range tok {
		if r < 'א' || r > 'ת' {
			return false
		}
	}
	return true
}
