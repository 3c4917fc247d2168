package voice

import "strings"

// Target says which collection a spoken command addresses.
type Target int

const (
	// TargetNone means the transcript carried no recognized command verb.
	TargetNone Target = iota
	// TargetInventory: "יש לנו" / "יש לי" / "קניתי" — stock arrived.
	TargetInventory
	// TargetShopping: "נגמר" / "חסר" — something ran out.
	TargetShopping
)

var (
	inventoryStrip = strings.NewReplacer("יש לנו", "", "יש לי", "", "קניתי", "")
	shoppingStrip  = strings.NewReplacer("נגמר ה", "", "נגמר", "", "חסר לנו", "", "חסר", "")
)

// DetectCommand inspects a transcript for a leading command verb and
// returns the target collection plus the transcript with the verb
// removed. Inventory verbs are checked first, matching how people
// actually phrase restocks.
func DetectCommand(text string) (Target, string) {
	switch {
	case strings.Contains(text, "יש לנו") || strings.Contains(text, "יש לי") || strings.Contains(text, "קניתי"):
		return TargetInventory, strings.TrimSpace(inventoryStrip.Replace(text))
	case strings.Contains(text, "נגמר") || strings.Contains(text, "חסר"):
		return TargetShopping, strings.TrimSpace(shoppingStrip.Replace(text))
	}
	return TargetNone, text
}
