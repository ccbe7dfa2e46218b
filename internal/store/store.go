// Package store defines the persistence interface for the Larder server.
//
// Lookups by key return (nil, nil) when the row does not exist. Callers decide
// whether an absent record is an error.
package store

import (
	"context"

	"github.com/larderapp/larder-server/internal/domain"
)

// Store defines all persistence operations.
type Store interface {
	Close() error
	Ping(ctx context.Context) error

	// WithTx runs fn against a transaction-scoped Store. The transaction is
	// committed when fn returns nil and rolled back otherwise. Nested calls
	// reuse the outer transaction.
	WithTx(ctx context.Context, fn func(tx Store) error) error

	Users
	Recipes
	Reviews
	Tags
	Search
}

// Users persists registered accounts.
type Users interface {
	// CreateUser assigns user.ID. Returns ErrAlreadyExists when the username is taken.
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	ListUsersPaginated(ctx context.Context, page, pageSize int) ([]*domain.User, error)
	CountUsers(ctx context.Context) (int, error)
}

// Recipes persists recipes. DeleteRecipe removes only the recipe row; callers
// clean up reviews and tag associations first.
type Recipes interface {
	// CreateRecipe assigns recipe.ID and both timestamps.
	CreateRecipe(ctx context.Context, recipe *domain.Recipe) error
	// GetRecipeByID loads a recipe with its tag names but without image bytes.
	GetRecipeByID(ctx context.Context, id int64) (*domain.Recipe, error)
	// GetRecipeImage returns nil data when the recipe or its image is absent.
	GetRecipeImage(ctx context.Context, id int64) (data []byte, format string, err error)
	ListRecipesPaginated(ctx context.Context, page, pageSize int) ([]*domain.RecipeSummary, error)
	ListRecipesByUser(ctx context.Context, userID int64) ([]*domain.RecipeSummary, error)
	// ListAllRecipes loads every recipe with tags, for search reindexing.
	ListAllRecipes(ctx context.Context) ([]*domain.Recipe, error)
	CountRecipes(ctx context.Context) (int, error)
	// UpdateRecipe writes name and content and refreshes ModifiedAt.
	UpdateRecipe(ctx context.Context, recipe *domain.Recipe) error
	UpdateRecipeImage(ctx context.Context, id int64, data []byte, format, blurHash string) error
	DeleteRecipe(ctx context.Context, id int64) error
}

// Reviews persists recipe reviews.
type Reviews interface {
	// CreateReview assigns review.ID and timestamps. Returns ErrAlreadyExists
	// when the user already reviewed the recipe.
	CreateReview(ctx context.Context, review *domain.Review) error
	GetReviewByID(ctx context.Context, id int64) (*domain.Review, error)
	GetUserReviewForRecipe(ctx context.Context, userID, recipeID int64) (*domain.Review, error)
	// ListReviewsForRecipePaginated orders newest first.
	ListReviewsForRecipePaginated(ctx context.Context, recipeID int64, page, pageSize int) ([]*domain.Review, error)
	CountReviewsForRecipe(ctx context.Context, recipeID int64) (int, error)
	ListReviewsByUser(ctx context.Context, userID int64) ([]*domain.Review, error)
	GetRatingSummary(ctx context.Context, recipeID int64) (domain.RatingSummary, error)
	// UpdateReview writes rating and comment and refreshes ModifiedAt.
	UpdateReview(ctx context.Context, review *domain.Review) error
	DeleteReview(ctx context.Context, id int64) error
	DeleteReviewsForRecipe(ctx context.Context, recipeID int64) (int, error)
}

// Tags persists tags and recipe associations. Tag names are stored exactly as
// given; normalising them is the caller's job.
type Tags interface {
	// EnsureTag finds or creates a tag by name. created reports whether it is new.
	EnsureTag(ctx context.Context, name string) (tag *domain.Tag, created bool, err error)
	GetTagByName(ctx context.Context, name string) (*domain.Tag, error)
	// ListTags returns every tag with its recipe count, ordered by name.
	ListTags(ctx context.Context) ([]*domain.Tag, error)
	ListTagsPaginated(ctx context.Context, page, pageSize int) ([]*domain.Tag, error)
	CountTags(ctx context.Context) (int, error)
	// EnsureRecipeTag is idempotent. created is false when the association existed.
	EnsureRecipeTag(ctx context.Context, recipeID, tagID int64) (created bool, err error)
	RemoveRecipeTag(ctx context.Context, recipeID, tagID int64) error
	GetTagsForRecipe(ctx context.Context, recipeID int64) ([]*domain.Tag, error)
	// RemoveAllRecipeTags drops every association of the recipe and returns the affected tag IDs.
	RemoveAllRecipeTags(ctx context.Context, recipeID int64) ([]int64, error)
	// DeleteOrphanTags deletes those of tagIDs no longer used by any recipe.
	DeleteOrphanTags(ctx context.Context, tagIDs []int64) (int, error)
}

// SearchFilter selects recipes by text and tags.
// An empty Text matches every recipe. An empty Tags set applies no tag filter.
type SearchFilter struct {
	Text string
	Tags []string
}

// IsEmpty reports whether the filter selects everything.
func (f SearchFilter) IsEmpty() bool {
	return f.Text == "" && len(f.Tags) == 0
}

// Search runs the tag-filtered recipe query. Both methods share one predicate.
type Search interface {
	// SearchRecipes returns distinct matches ordered by name then id.
	SearchRecipes(ctx context.Context, filter SearchFilter, page, pageSize int) ([]*domain.RecipeSummary, error)
	CountSearchRecipes(ctx context.Context, filter SearchFilter) (int, error)
}
