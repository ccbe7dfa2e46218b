package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/larderapp/larder-server/internal/auth"
	"github.com/larderapp/larder-server/internal/domain"
	domainerrors "github.com/larderapp/larder-server/internal/errors"
	"github.com/larderapp/larder-server/internal/metrics"
	"github.com/larderapp/larder-server/internal/store"
)

// ReviewInput is the review form. A blank comment is stored as no comment.
type ReviewInput struct {
	Rating  int     `json:"rating" validate:"min=1,max=5"`
	Comment *string `json:"comment,omitempty" validate:"omitempty,max=1000"`
}

func (in *ReviewInput) normalize() {
	if in.Comment == nil {
		return
	}
	c := strings.TrimSpace(*in.Comment)
	if c == "" {
		in.Comment = nil
		return
	}
	in.Comment = &c
}

// ReviewService enforces one review per user and recipe and that authors
// never review their own recipes.
type ReviewService struct {
	store  store.Store
	logger *slog.Logger
}

// NewReviewService creates a review service.
func NewReviewService(store store.Store, logger *slog.Logger) *ReviewService {
	return &ReviewService{store: store, logger: logOrDiscard(logger)}
}

// Add records userID's review of recipeID. It fails with SELF_REVIEW on the
// author's own recipe and DUPLICATE_REVIEW when a review already exists.
func (s *ReviewService) Add(ctx context.Context, userID, recipeID int64, in ReviewInput) (*domain.Review, error) {
	if userID == 0 {
		return nil, domainerrors.ErrUnauthenticated
	}
	in.normalize()
	if err := validate.Validate(in); err != nil {
		return nil, err
	}

	recipe, err := s.store.GetRecipeByID(ctx, recipeID)
	if err != nil {
		return nil, fmt.Errorf("get recipe: %w", err)
	}
	if recipe == nil {
		return nil, domainerrors.NotFoundf("recipe %d not found", recipeID)
	}
	if recipe.OwnedBy(userID) {
		return nil, domainerrors.ErrSelfReview
	}

	existing, err := s.store.GetUserReviewForRecipe(ctx, userID, recipeID)
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}
	if existing != nil {
		return nil, domainerrors.ErrDuplicateReview
	}

	review := &domain.Review{RecipeID: recipeID, UserID: userID, Rating: in.Rating, Comment: in.Comment}
	if err := s.store.CreateReview(ctx, review); err != nil {
		// A concurrent submission can still lose the race to the unique index.
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.ErrDuplicateReview
		}
		return nil, fmt.Errorf("create review: %w", err)
	}

	metrics.RecordReview("add")
	requestLog(ctx, s.logger).Info("review added", "review_id", review.ID, "recipe_id", recipeID, "user_id", userID)
	return s.reload(ctx, review.ID)
}

// Edit changes a review written by userID. Resubmitting the stored rating
// and comment performs no write; changed reports whether one happened.
func (s *ReviewService) Edit(ctx context.Context, userID, reviewID int64, in ReviewInput) (review *domain.Review, changed bool, err error) {
	review, err = s.getOwned(ctx, userID, reviewID)
	if err != nil {
		return nil, false, err
	}

	in.normalize()
	if err := validate.Validate(in); err != nil {
		return nil, false, err
	}

	if review.SameContent(in.Rating, in.Comment) {
		metrics.RecordReview("edit_noop")
		return review, false, nil
	}

	review.Rating = in.Rating
	review.Comment = in.Comment
	if err := s.store.UpdateReview(ctx, review); err != nil {
		return nil, false, fmt.Errorf("update review: %w", err)
	}

	metrics.RecordReview("edit")
	requestLog(ctx, s.logger).Info("review edited", "review_id", reviewID, "user_id", userID)
	updated, err := s.reload(ctx, reviewID)
	if err != nil {
		return nil, false, err
	}
	return updated, true, nil
}

// Delete removes a review written by userID and returns it.
func (s *ReviewService) Delete(ctx context.Context, userID, reviewID int64) (*domain.Review, error) {
	review, err := s.getOwned(ctx, userID, reviewID)
	if err != nil {
		return nil, err
	}
	if err := s.store.DeleteReview(ctx, reviewID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFoundf("review %d not found", reviewID)
		}
		return nil, fmt.Errorf("delete review: %w", err)
	}

	metrics.RecordReview("delete")
	requestLog(ctx, s.logger).Info("review deleted", "review_id", reviewID, "recipe_id", review.RecipeID, "user_id", userID)
	return review, nil
}

func (s *ReviewService) getOwned(ctx context.Context, userID, reviewID int64) (*domain.Review, error) {
	if userID == 0 {
		return nil, domainerrors.ErrUnauthenticated
	}
	review, err := s.reload(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireReviewer(review, userID); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *ReviewService) reload(ctx context.Context, reviewID int64) (*domain.Review, error) {
	review, err := s.store.GetReviewByID(ctx, reviewID)
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}
	if review == nil {
		return nil, domainerrors.NotFoundf("review %d not found", reviewID)
	}
	return review, nil
}
