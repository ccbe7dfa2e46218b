// Package domain defines the core Larder entities and pagination arithmetic.
package domain

import "time"

// Recipe content limits.
const (
	MaxRecipeNameLength    = 100
	MaxRecipeContentLength = 5000
	MaxTagsPerRecipe       = 20
)

// Recipe is a named, owned piece of content with an optional image.
type Recipe struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Content       string    `json:"content"`
	Image         []byte    `json:"-"`
	ImageType     string    `json:"image_type,omitempty"` // png, jpeg, gif, webp
	ImageBlurHash string    `json:"image_blurhash,omitempty"`
	UserID        int64     `json:"user_id"`
	Username      string    `json:"username"`
	CreatedAt     time.Time `json:"created_at"`
	ModifiedAt    time.Time `json:"modified_at"`
	Tags          []string  `json:"tags"`
}

// HasImage reports whether the recipe carries image data.
func (r *Recipe) HasImage() bool {
	return r.ImageType != ""
}

// OwnedBy reports whether userID owns the recipe.
func (r *Recipe) OwnedBy(userID int64) bool {
	return r.UserID == userID
}

// RecipeSummary is a listing row: a recipe without its body plus its rating aggregate.
type RecipeSummary struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	UserID        int64     `json:"user_id"`
	Username      string    `json:"username"`
	HasImage      bool      `json:"has_image"`
	CreatedAt     time.Time `json:"created_at"`
	ModifiedAt    time.Time `json:"modified_at"`
	AverageRating *float64  `json:"average_rating"` // nil when there are no reviews
	ReviewCount   int       `json:"review_count"`
}

// RatingSummary aggregates the reviews of one recipe.
type RatingSummary struct {
	Average *float64 `json:"average"` // nil when Count is zero
	Count   int      `json:"count"`
}

// ImageContentTypes maps stored image format tags to HTTP content types.
var ImageContentTypes = map[string]string{
	"png":  "image/png",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"webp": "image/webp",
}

// ImageContentType returns the content type for a stored format tag.
func ImageContentType(format string) string {
	if ct, ok := ImageContentTypes[format]; ok {
		return ct
	}
	return "application/octet-stream"
}
