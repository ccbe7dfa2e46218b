// Package search maintains a Bleve full-text index of recipes used for
// ranked suggestions. The tag-filtered listing search stays in SQL; this
// index only answers "what did the user probably mean".
package search

import (
	"strconv"

	"github.com/larderapp/larder-server/internal/domain"
)

// RecipeDocument is the indexed form of a recipe.
type RecipeDocument struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Content   string   `json:"content"`
	Username  string   `json:"username"`
	Tags      []string `json:"tags,omitempty"`
	CreatedAt int64    `json:"created_at"` // Unix millis
	UpdatedAt int64    `json:"updated_at"` // Unix millis
}

// RecipeToDocument converts a recipe to its index document.
func RecipeToDocument(r *domain.Recipe) *RecipeDocument {
	return &RecipeDocument{
		ID:        DocumentID(r.ID),
		Name:      r.Name,
		Content:   r.Content,
		Username:  r.Username,
		Tags:      r.Tags,
		CreatedAt: r.CreatedAt.UnixMilli(),
		UpdatedAt: r.ModifiedAt.UnixMilli(),
	}
}

// DocumentID is the index key for a recipe id.
func DocumentID(recipeID int64) string {
	return strconv.FormatInt(recipeID, 10)
}

// ToMap converts the document to a map keyed by the mapped field names.
func (d *RecipeDocument) ToMap() map[string]any {
	m := map[string]any{
		"id":         d.ID,
		"name":       d.Name,
		"content":    d.Content,
		"username":   d.Username,
		"created_at": d.CreatedAt,
		"updated_at": d.UpdatedAt,
	}
	if len(d.Tags) > 0 {
		m["tags"] = d.Tags
	}
	return m
}
