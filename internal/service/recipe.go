package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/larderapp/larder-server/internal/auth"
	"github.com/larderapp/larder-server/internal/config"
	"github.com/larderapp/larder-server/internal/domain"
	domainerrors "github.com/larderapp/larder-server/internal/errors"
	"github.com/larderapp/larder-server/internal/media/images"
	"github.com/larderapp/larder-server/internal/metrics"
	"github.com/larderapp/larder-server/internal/store"
	"github.com/larderapp/larder-server/internal/util"
)

// RecipeIndexer is told about recipe writes so derived indexes stay current.
type RecipeIndexer interface {
	IndexRecipe(ctx context.Context, r *domain.Recipe)
	RemoveRecipe(ctx context.Context, recipeID int64)
}

// RecipeInput is the add and edit form.
type RecipeInput struct {
	Name    string   `json:"name" validate:"notblank,max=100"`
	Content string   `json:"content" validate:"max=5000"`
	Tags    []string `json:"tags" validate:"max=20,dive,max=50"`

	// Image replaces the stored image when non-empty.
	Image []byte `json:"-"`
	// RemoveImage clears the stored image. Ignored when Image is set.
	RemoveImage bool `json:"-"`
}

// Truncated returns the input cut to the field limits so a rejected form
// can be shown again for editing.
func (in RecipeInput) Truncated() RecipeInput {
	out := RecipeInput{
		Name:    util.Truncate(in.Name, domain.MaxRecipeNameLength),
		Content: util.Truncate(in.Content, domain.MaxRecipeContentLength),
	}
	for i, t := range in.Tags {
		if i == domain.MaxTagsPerRecipe {
			break
		}
		out.Tags = append(out.Tags, util.Truncate(t, domain.MaxTagNameLength))
	}
	return out
}

// FormErrorDetails accompanies a rejected recipe form.
type FormErrorDetails struct {
	Fields map[string]string `json:"fields"`
	Form   RecipeInput       `json:"form"`
}

// RecipeDetail is everything the recipe page shows.
type RecipeDetail struct {
	Recipe  *domain.Recipe              `json:"recipe"`
	Tags    []*domain.Tag               `json:"tags"`
	Rating  domain.RatingSummary        `json:"rating"`
	Reviews domain.Page[*domain.Review] `json:"reviews"`

	CanEdit      bool           `json:"can_edit"`      // viewer owns the recipe
	CanReview    bool           `json:"can_review"`    // viewer may add a review
	ViewerReview *domain.Review `json:"viewer_review"` // viewer's own review, if any
}

// RecipeService manages recipes, their tags and images.
type RecipeService struct {
	store   store.Store
	indexer RecipeIndexer
	limits  config.LimitsConfig
	logger  *slog.Logger
}

// NewRecipeService creates a recipe service. indexer may be nil.
func NewRecipeService(store store.Store, indexer RecipeIndexer, limits config.LimitsConfig, logger *slog.Logger) *RecipeService {
	return &RecipeService{
		store:   store,
		indexer: indexer,
		limits:  limits,
		logger:  logOrDiscard(logger),
	}
}

// List returns one page of all recipes ordered by name.
func (s *RecipeService) List(ctx context.Context, page int) (domain.Page[*domain.RecipeSummary], error) {
	p, err := paginate(ctx, page, s.limits.PageSize, s.store.CountRecipes, s.store.ListRecipesPaginated)
	if err != nil {
		return p, fmt.Errorf("list recipes: %w", err)
	}
	return p, nil
}

// Get loads a recipe with its tags, rating and one page of reviews.
// viewerID is 0 for anonymous viewers.
func (s *RecipeService) Get(ctx context.Context, recipeID int64, reviewPage int, viewerID int64) (*RecipeDetail, error) {
	recipe, err := s.mustGet(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	tags, err := s.store.GetTagsForRecipe(ctx, recipeID)
	if err != nil {
		return nil, fmt.Errorf("get tags: %w", err)
	}
	rating, err := s.store.GetRatingSummary(ctx, recipeID)
	if err != nil {
		return nil, fmt.Errorf("get rating: %w", err)
	}

	reviews, err := paginate(ctx, reviewPage, s.limits.ReviewPageSize,
		func(ctx context.Context) (int, error) {
			return s.store.CountReviewsForRecipe(ctx, recipeID)
		},
		func(ctx context.Context, page, size int) ([]*domain.Review, error) {
			return s.store.ListReviewsForRecipePaginated(ctx, recipeID, page, size)
		},
	)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	detail := &RecipeDetail{Recipe: recipe, Tags: tags, Rating: rating, Reviews: reviews}
	if viewerID != 0 {
		detail.CanEdit = recipe.OwnedBy(viewerID)
		mine, err := s.store.GetUserReviewForRecipe(ctx, viewerID, recipeID)
		if err != nil {
			return nil, fmt.Errorf("get viewer review: %w", err)
		}
		detail.ViewerReview = mine
		detail.CanReview = !detail.CanEdit && mine == nil
	}
	return detail, nil
}

// GetForEdit returns a recipe its owner is about to edit or remove.
func (s *RecipeService) GetForEdit(ctx context.Context, userID, recipeID int64) (*domain.Recipe, error) {
	recipe, err := s.mustGet(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireOwnership(recipe, userID); err != nil {
		return nil, err
	}
	return recipe, nil
}

// Create stores a new recipe owned by userID together with its tags.
func (s *RecipeService) Create(ctx context.Context, userID int64, in RecipeInput) (*domain.Recipe, error) {
	if userID == 0 {
		return nil, domainerrors.ErrUnauthenticated
	}

	tags, img, err := s.prepare(&in)
	if err != nil {
		return nil, err
	}

	recipe := &domain.Recipe{Name: in.Name, Content: in.Content, UserID: userID}
	if img != nil {
		recipe.Image = in.Image
		recipe.ImageType = img.Format
		recipe.ImageBlurHash = img.BlurHash
	}

	err = s.store.WithTx(ctx, func(tx store.Store) error {
		if err := tx.CreateRecipe(ctx, recipe); err != nil {
			return fmt.Errorf("create recipe: %w", err)
		}
		return attachTags(ctx, tx, recipe.ID, tags)
	})
	if err != nil {
		return nil, err
	}

	created, err := s.reload(ctx, recipe.ID)
	if err != nil {
		return nil, err
	}

	metrics.RecordRecipe("create")
	if img != nil {
		metrics.ImageUploads.WithLabelValues(img.Format).Inc()
	}
	requestLog(ctx, s.logger).Info("recipe created", "recipe_id", created.ID, "user_id", userID, "tags", len(tags))
	return created, nil
}

// Update rewrites a recipe owned by userID. The tag set is replaced and
// tags left without recipes are deleted, all in one transaction.
func (s *RecipeService) Update(ctx context.Context, userID, recipeID int64, in RecipeInput) (*domain.Recipe, error) {
	recipe, err := s.GetForEdit(ctx, userID, recipeID)
	if err != nil {
		return nil, err
	}

	tags, img, err := s.prepare(&in)
	if err != nil {
		return nil, err
	}

	recipe.Name = in.Name
	recipe.Content = in.Content

	var orphans int
	err = s.store.WithTx(ctx, func(tx store.Store) error {
		if err := tx.UpdateRecipe(ctx, recipe); err != nil {
			return fmt.Errorf("update recipe: %w", err)
		}

		switch {
		case img != nil:
			if err := tx.UpdateRecipeImage(ctx, recipe.ID, in.Image, img.Format, img.BlurHash); err != nil {
				return fmt.Errorf("update image: %w", err)
			}
		case in.RemoveImage:
			if err := tx.UpdateRecipeImage(ctx, recipe.ID, nil, "", ""); err != nil {
				return fmt.Errorf("remove image: %w", err)
			}
		}

		previous, err := tx.RemoveAllRecipeTags(ctx, recipe.ID)
		if err != nil {
			return fmt.Errorf("clear tags: %w", err)
		}
		if err := attachTags(ctx, tx, recipe.ID, tags); err != nil {
			return err
		}
		orphans, err = tx.DeleteOrphanTags(ctx, previous)
		if err != nil {
			return fmt.Errorf("delete orphan tags: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.reload(ctx, recipe.ID)
	if err != nil {
		return nil, err
	}

	metrics.RecordRecipe("update")
	metrics.OrphanTagsDeleted.Add(float64(orphans))
	if img != nil {
		metrics.ImageUploads.WithLabelValues(img.Format).Inc()
	}
	requestLog(ctx, s.logger).Info("recipe updated", "recipe_id", recipe.ID, "user_id", userID, "orphan_tags", orphans)
	return updated, nil
}

// Delete removes a recipe owned by userID with its reviews and tag links.
// Tags that only this recipe used go too. Nothing changes if any step fails.
func (s *RecipeService) Delete(ctx context.Context, userID, recipeID int64) error {
	if _, err := s.GetForEdit(ctx, userID, recipeID); err != nil {
		return err
	}

	var reviews, orphans int
	err := s.store.WithTx(ctx, func(tx store.Store) error {
		var err error
		if reviews, err = tx.DeleteReviewsForRecipe(ctx, recipeID); err != nil {
			return fmt.Errorf("delete reviews: %w", err)
		}
		tagIDs, err := tx.RemoveAllRecipeTags(ctx, recipeID)
		if err != nil {
			return fmt.Errorf("clear tags: %w", err)
		}
		if err := tx.DeleteRecipe(ctx, recipeID); err != nil {
			return fmt.Errorf("delete recipe: %w", err)
		}
		if orphans, err = tx.DeleteOrphanTags(ctx, tagIDs); err != nil {
			return fmt.Errorf("delete orphan tags: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s.indexer != nil {
		s.indexer.RemoveRecipe(ctx, recipeID)
	}
	metrics.RecordRecipe("delete")
	metrics.OrphanTagsDeleted.Add(float64(orphans))
	requestLog(ctx, s.logger).Info("recipe deleted",
		"recipe_id", recipeID,
		"user_id", userID,
		"reviews", reviews,
		"orphan_tags", orphans,
	)
	return nil
}

// Image returns the raw image bytes and their content type.
func (s *RecipeService) Image(ctx context.Context, recipeID int64) ([]byte, string, error) {
	data, format, err := s.store.GetRecipeImage(ctx, recipeID)
	if err != nil {
		return nil, "", fmt.Errorf("get image: %w", err)
	}
	if data == nil {
		return nil, "", domainerrors.NotFound("image not found")
	}
	return data, domain.ImageContentType(format), nil
}

func (s *RecipeService) mustGet(ctx context.Context, recipeID int64) (*domain.Recipe, error) {
	recipe, err := s.store.GetRecipeByID(ctx, recipeID)
	if err != nil {
		return nil, fmt.Errorf("get recipe: %w", err)
	}
	if recipe == nil {
		return nil, domainerrors.NotFoundf("recipe %d not found", recipeID)
	}
	return recipe, nil
}

// reload reads a recipe back after a write and refreshes the index.
func (s *RecipeService) reload(ctx context.Context, recipeID int64) (*domain.Recipe, error) {
	recipe, err := s.mustGet(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if s.indexer != nil {
		s.indexer.IndexRecipe(ctx, recipe)
	}
	return recipe, nil
}

// prepare trims and validates the form, normalises its tags and inspects
// any uploaded image. The returned image info is nil when none was sent.
func (s *RecipeService) prepare(in *RecipeInput) ([]string, *images.Info, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Tags = util.NormalizeTagNames(in.Tags)

	if err := validate.Validate(*in); err != nil {
		return nil, nil, domainerrors.ValidationWithDetails("recipe is invalid", FormErrorDetails{
			Fields: fieldErrors(err),
			Form:   in.Truncated(),
		})
	}

	if len(in.Image) == 0 {
		return in.Tags, nil, nil
	}
	img, err := images.Inspect(in.Image, s.limits.MaxImageSize, s.limits.AllowedImageTypes)
	if err != nil {
		return nil, nil, domainerrors.ValidationWithDetails("recipe is invalid", FormErrorDetails{
			Fields: map[string]string{"image": err.Error()},
			Form:   in.Truncated(),
		})
	}
	return in.Tags, img, nil
}

// attachTags links recipeID to each named tag, creating tags on first use.
func attachTags(ctx context.Context, tx store.Store, recipeID int64, names []string) error {
	for _, name := range names {
		tag, _, err := tx.EnsureTag(ctx, name)
		if err != nil {
			return fmt.Errorf("ensure tag %q: %w", name, err)
		}
		if _, err := tx.EnsureRecipeTag(ctx, recipeID, tag.ID); err != nil {
			return fmt.Errorf("tag recipe: %w", err)
		}
	}
	return nil
}
