// Package category maps item names to grocery categories. User-confirmed
// overrides always win; otherwise an ordered keyword table decides.
package category

import (
	"strings"

	"github.com/noamsh/makolet/internal/model"
)

// LearnedLookup returns the user-confirmed category for a lowercased item
// name, if one has been recorded.
type LearnedLookup interface {
	Lookup(name string) (model.Category, bool)
}

// Classifier resolves categories with learned overrides first, then the
// keyword rules in Detect.
type Classifier struct {
	learned LearnedLookup
}

// NewClassifier creates a Classifier. learned may be nil, in which case
// only the keyword rules apply.
func NewClassifier(learned LearnedLookup) *Classifier {
	return &Classifier{learned: learned}
}

// Classify returns the category for the given item name.
func (c *Classifier) Classify(itemName string) model.Category {
	name := strings.ToLower(strings.TrimSpace(itemName))
	if name == "" {
		return model.CategoryOther
	}
	if c.learned != nil {
		if cat, ok := c.learned.Lookup(name); ok {
			return cat
		}
	}
	return detectLower(name)
}

// Detect returns the keyword-rule category for an item name, ignoring
// learned overrides.
func Detect(itemName string) model.Category {
	return detectLower(strings.ToLower(strings.TrimSpace(itemName)))
}

func detectLower(name string) model.Category {
	if name == "" {
		return model.CategoryOther
	}
	for _, rule := range keywordRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(name, keyword) {
				return rule.category
			}
		}
	}
	return model.CategoryOther
}

type keywordRule struct {
	category model.Category
	keywords []string
}

// keywordRules is evaluated top to bottom, first match wins. Several
// lists overlap (Sauces and Pantry both claim cream-adjacent words;
// Oils must beat both), so the order is load-bearing: reordering it
// changes classification results for real inputs.
var keywordRules = []keywordRule{
	{model.CategoryCanned, []string{
		"שימורים", "שימור", "canned", "can ",
		"חומוס", "hummus", "חמוץ", "חמוצים", "pickles", "מלפפון חמוץ", "גרגירים",
	}},
	{model.CategoryOils, []string{
		"oil", "olive oil", "canola", "vegetable oil", "coconut oil", "avocado oil",
		"shemen", "שמן", "שמן זית", "שמן קנולה", "שמן צמחי", "שמן קוקוס", "שמן אבוקדו",
	}},
	{model.CategorySauces, []string{
		"sauce", "mayo", "mayonnaise", "ketchup", "mustard", "soy sauce", "teriyaki",
		"hot sauce", "salsa", "pesto", "tahini", "spread", "jam", "jelly", "honey", "nutella",
		"טריאקי", "רוטב", "ממרח", "מיונז", "מיוקל", "סויה", "טחינה",
		"חומץ", "חרדל", "ריבה", "דבש", "נוטלה",
	}},
	{model.CategoryDairy, []string{
		"milk", "cheese", "butter", "yogurt", "cream", "sour cream", "cottage cheese", "egg", "eggs",
		"חלב", "גבינה", "חמאה", "יוגורט", "שמנת", "ביצה", "ביצים", "קוטג",
	}},
	{model.CategoryProduce, []string{
		"apple", "banana", "orange", "tomato", "lettuce", "carrot", "potato", "onion",
		"garlic", "pepper", "cucumber", "avocado", "lemon", "spinach", "broccoli", "fruit", "vegetable",
		"eggplant", "zucchini", "cabbage", "celery", "corn", "mushroom", "radish", "beet",
		"תפוח", "בננה", "תפוז", "עגבניה", "עגבניות", "חסה", "גזר", "בצל", "שום", "מלפפון", "אבוקדו",
		"חציל", "קישוא", "כרוב", "סלרי", "תירס", "פטריות", "צנון", "סלק", "פלפל",
		"ירק", "פרי", "ירקות", "פירות",
	}},
	{model.CategoryMeat, []string{
		"chicken", "beef", "pork", "fish", "salmon", "tuna", "turkey", "steak", "meat",
		"עוף", "בקר", "דג", "סלמון", "טונה", "הודו", "בשר",
	}},
	{model.CategoryBakery, []string{
		"bread", "bagel", "roll", "baguette", "croissant", "challah", "pita", "toast",
		"לחם", "בייגל", "חלה", "פיתה", "טוסט", "לחמניה",
	}},
	{model.CategoryBeverages, []string{
		"water", "juice", "soda", "coffee", "tea", "beer", "wine", "cola", "drink",
		"מים", "מיץ", "גזוז", "קפה", "תה", "בירה", "יין", "משקה",
	}},
	{model.CategorySnacks, []string{
		"chips", "cookies", "candy", "chocolate", "popcorn", "nuts", "crackers", "snack",
		"seeds", "sunflower", "peanuts", "almonds", "cashews", "trail mix", "granola",
		"ביסלי", "עוגיות", "סוכריות", "שוקולד", "אגוזים", "במבה", "חטיף",
		"גרעינים", "גרעיני", "חמניה", "בוטנים", "שקדים", "קשיו", "גרנולה",
	}},
	{model.CategoryFrozen, []string{
		"ice cream", "frozen", "קפוא", "גלידה", "קפואים",
	}},
	{model.CategoryHousehold, []string{
		"soap", "shampoo", "detergent", "cleaner", "paper towel", "toilet paper", "dish soap",
		"מנקה", "ניקוי", "נייר טואלט", "סבון", "שמפו", "חומר ניקוי", "אבקת כביסה",
	}},
	{model.CategoryPersonal, []string{
		"toothpaste", "toothbrush", "deodorant", "lotion", "razor", "shaving cream",
		"משחת שיניים", "דאודורנט", "מברשת", "גילוח",
	}},
	{model.CategoryPantry, []string{
		"rice", "pasta", "flour", "sugar", "salt", "spice", "seasoning", "coconut cream", "cream of",
		"אורז", "פסטה", "קמח", "סוכר", "מלח", "תבלין", "קרם", "קוקוס",
	}},
}
