package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/larderapp/larder-server/internal/domain"
	domainerrors "github.com/larderapp/larder-server/internal/errors"
	"github.com/larderapp/larder-server/internal/store"
)

// Profile is a user's public page.
type Profile struct {
	User    *domain.User            `json:"user"`
	Recipes []*domain.RecipeSummary `json:"recipes"`
	Reviews []*domain.Review        `json:"reviews"`
}

// UserService serves public user profiles.
type UserService struct {
	store  store.Store
	logger *slog.Logger
}

// NewUserService creates a user service.
func NewUserService(store store.Store, logger *slog.Logger) *UserService {
	return &UserService{store: store, logger: logOrDiscard(logger)}
}

// Profile returns the user with the recipes and reviews they wrote.
func (s *UserService) Profile(ctx context.Context, userID int64) (*Profile, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, domainerrors.NotFoundf("user %d not found", userID)
	}

	recipes, err := s.store.ListRecipesByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	reviews, err := s.store.ListReviewsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	return &Profile{User: user, Recipes: recipes, Reviews: reviews}, nil
}

// List returns one page of users ordered by username.
func (s *UserService) List(ctx context.Context, page, pageSize int) (domain.Page[*domain.User], error) {
	return paginate(ctx, page, pageSize, s.store.CountUsers, s.store.ListUsersPaginated)
}
