package domain

import "time"

// Review limits.
const (
	MinRating        = 1
	MaxRating        = 5
	MaxCommentLength = 1000
)

// Review is a single user's rating of a recipe. One per (user, recipe) pair.
type Review struct {
	ID         int64     `json:"id"`
	RecipeID   int64     `json:"recipe_id"`
	RecipeName string    `json:"recipe_name,omitempty"`
	UserID     int64     `json:"user_id"`
	Username   string    `json:"username"`
	Rating     int       `json:"rating"`
	Comment    *string   `json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
}

// SameContent reports whether rating and comment are identical to the review's stored values.
// A nil comment only equals a nil comment.
func (r *Review) SameContent(rating int, comment *string) bool {
	if r.Rating != rating {
		return false
	}
	if r.Comment == nil || comment == nil {
		return r.Comment == nil && comment == nil
	}
	return *r.Comment == *comment
}

// WrittenBy reports whether userID wrote the review.
func (r *Review) WrittenBy(userID int64) bool {
	return r.UserID == userID
}
