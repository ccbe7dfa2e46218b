package domain

// MaxTagNameLength bounds a single tag name.
const MaxTagNameLength = 50

// Tag is a lazily created label. It exists only while at least one recipe uses it.
// Name is stored case-folded and is the tag's identity.
type Tag struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	RecipeCount int    `json:"recipe_count"`
}
