package model

// Category is one of a closed set of grocery category tags. The tags are
// stable strings: persisted rows, snapshots, and API payloads all carry
// them verbatim, so renaming one is a data migration.
type Category string

const (
	CategoryProduce   Category = "Produce"
	CategoryDairy     Category = "Dairy"
	CategoryMeat      Category = "Meat"
	CategoryPantry    Category = "Pantry"
	CategoryCanned    Category = "Canned"
	CategorySauces    Category = "Sauces"
	CategoryOils      Category = "Oils"
	CategoryFrozen    Category = "Frozen"
	CategoryBakery    Category = "Bakery"
	CategoryBeverages Category = "Beverages"
	CategorySnacks    Category = "Snacks"
	CategoryHousehold Category = "Household"
	CategoryPersonal  Category = "Personal"
	CategoryOther     Category = "Other"
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CategoryProduce,
	CategoryDairy,
	CategoryMeat,
	CategoryPantry,
	CategoryCanned,
	CategorySauces,
	CategoryOils,
	CategoryFrozen,
	CategoryBakery,
	CategoryBeverages,
	CategorySnacks,
	CategoryHousehold,
	CategoryPersonal,
	CategoryOther,
}

var hebrewNames = map[Category]string{
	CategoryProduce:   "ירקות ופירות",
	CategoryDairy:     "חלב וביצים",
	CategoryMeat:      "בשר ודגים",
	CategoryPantry:    "מזווה",
	CategoryCanned:    "שימורים",
	CategorySauces:    "רטבים וממרחים",
	CategoryOils:      "שמנים",
	CategoryFrozen:    "קפואים",
	CategoryBakery:    "לחמים ומאפים",
	CategoryBeverages: "משקאות",
	CategorySnacks:    "חטיפים",
	CategoryHousehold: "ניקיון ובית",
	CategoryPersonal:  "טיפוח אישי",
	CategoryOther:     "אחר",
}

// Valid reports whether c is a member of the closed category set.
func (c Category) Valid() bool {
	_, ok := hebrewNames[c]
	return ok
}

// HebrewName returns the localized display name for the category.
func (c Category) HebrewName() string {
	if name, ok := hebrewNames[c]; ok {
		return name
	}
	return hebrewNames[CategoryOther]
}
