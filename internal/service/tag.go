package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/larderapp/larder-server/internal/domain"
	domainerrors "github.com/larderapp/larder-server/internal/errors"
	"github.com/larderapp/larder-server/internal/store"
	"github.com/larderapp/larder-server/internal/util"
)

// TagRecipes is one page of the recipes carrying a tag.
type TagRecipes struct {
	Tag     *domain.Tag                        `json:"tag"`
	Recipes domain.Page[*domain.RecipeSummary] `json:"recipes"`
}

// TagService serves tag browsing. Tags are created and deleted only as a
// side effect of recipe writes.
type TagService struct {
	store    store.Store
	pageSize int
	logger   *slog.Logger
}

// NewTagService creates a tag service.
func NewTagService(store store.Store, pageSize int, logger *slog.Logger) *TagService {
	return &TagService{store: store, pageSize: pageSize, logger: logOrDiscard(logger)}
}

// ListTags returns every tag with its recipe count, ordered by name.
func (s *TagService) ListTags(ctx context.Context) ([]*domain.Tag, error) {
	return s.store.ListTags(ctx)
}

// Recipes returns one page of recipes tagged name. The name is normalised
// first, so "Dessert" and "dessert" are the same tag.
func (s *TagService) Recipes(ctx context.Context, name string, page int) (*TagRecipes, error) {
	canonical := util.NormalizeTagName(name)
	if canonical == "" {
		return nil, domainerrors.Validation("tag name is required")
	}

	tag, err := s.store.GetTagByName(ctx, canonical)
	if err != nil {
		return nil, fmt.Errorf("get tag: %w", err)
	}
	if tag == nil {
		return nil, domainerrors.NotFoundf("tag %q not found", canonical)
	}

	filter := store.SearchFilter{Tags: []string{tag.Name}}
	recipes, err := paginate(ctx, page, s.pageSize,
		func(ctx context.Context) (int, error) {
			return s.store.CountSearchRecipes(ctx, filter)
		},
		func(ctx context.Context, page, size int) ([]*domain.RecipeSummary, error) {
			return s.store.SearchRecipes(ctx, filter, page, size)
		},
	)
	if err != nil {
		return nil, fmt.Errorf("list tag recipes: %w", err)
	}

	return &TagRecipes{Tag: tag, Recipes: recipes}, nil
}
