package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/larderapp/larder-server/internal/domain"
	"github.com/larderapp/larder-server/internal/metrics"
	"github.com/larderapp/larder-server/internal/search"
	"github.com/larderapp/larder-server/internal/store"
	"github.com/larderapp/larder-server/internal/util"
)

// SearchQuery is the filter form: free text and any number of tags.
type SearchQuery struct {
	Text string   `json:"query"`
	Tags []string `json:"tags"`
}

// SearchResult is one page of filtered recipes with the filter as applied.
type SearchResult struct {
	Query SearchQuery                        `json:"query"`
	Page  domain.Page[*domain.RecipeSummary] `json:"page"`
}

// SearchService runs the tag-filtered recipe search against the store and
// keeps the full-text suggestion index in step with recipe writes.
type SearchService struct {
	store    store.Store
	index    *search.RecipeIndex // nil disables suggestions
	pageSize int
	logger   *slog.Logger
}

// NewSearchService creates a search service. index may be nil.
func NewSearchService(store store.Store, index *search.RecipeIndex, pageSize int, logger *slog.Logger) *SearchService {
	return &SearchService{
		store:    store,
		index:    index,
		pageSize: pageSize,
		logger:   logOrDiscard(logger),
	}
}

// Search returns the requested page of recipes whose name or content
// contains the text and that carry at least one of the tags. An empty text
// and tag set lists every recipe. Tags are normalised, so "Dessert" finds
// "dessert".
func (s *SearchService) Search(ctx context.Context, q SearchQuery, page int) (*SearchResult, error) {
	start := time.Now()
	defer func() { metrics.RecordSearch("filter", time.Since(start)) }()

	applied := SearchQuery{
		Text: strings.TrimSpace(q.Text),
		Tags: util.NormalizeTagNames(q.Tags),
	}
	filter := store.SearchFilter{Text: applied.Text, Tags: applied.Tags}

	p, err := paginate(ctx, page, s.pageSize,
		func(ctx context.Context) (int, error) {
			return s.store.CountSearchRecipes(ctx, filter)
		},
		func(ctx context.Context, page, size int) ([]*domain.RecipeSummary, error) {
			return s.store.SearchRecipes(ctx, filter, page, size)
		},
	)
	if err != nil {
		return nil, fmt.Errorf("search recipes: %w", err)
	}

	return &SearchResult{Query: applied, Page: p}, nil
}

// Suggest ranks recipes by relevance to free text.
func (s *SearchService) Suggest(ctx context.Context, text string, tags []string, limit int) (*search.SuggestResult, error) {
	if s.index == nil {
		return &search.SuggestResult{Query: text, Hits: []search.SuggestHit{}}, nil
	}

	start := time.Now()
	defer func() { metrics.RecordSearch("suggest", time.Since(start)) }()

	res, err := s.index.Suggest(ctx, search.SuggestParams{
		Query:         text,
		Tags:          util.NormalizeTagNames(tags),
		Limit:         limit,
		IncludeFacets: true,
	})
	if err != nil {
		return nil, fmt.Errorf("suggest: %w", err)
	}
	return res, nil
}

// IndexRecipe adds or refreshes a recipe in the suggestion index. Failures
// are logged; the store stays authoritative.
func (s *SearchService) IndexRecipe(ctx context.Context, r *domain.Recipe) {
	if s.index == nil {
		return
	}
	if err := s.index.IndexRecipe(r); err != nil {
		requestLog(ctx, s.logger).WithError(err).Warn("failed to index recipe", "recipe_id", r.ID)
	}
}

// RemoveRecipe drops a recipe from the suggestion index.
func (s *SearchService) RemoveRecipe(ctx context.Context, recipeID int64) {
	if s.index == nil {
		return
	}
	if err := s.index.DeleteRecipe(recipeID); err != nil {
		requestLog(ctx, s.logger).WithError(err).Warn("failed to remove recipe from index", "recipe_id", recipeID)
	}
}

// DocumentCount returns the number of indexed recipes.
func (s *SearchService) DocumentCount() (uint64, error) {
	if s.index == nil {
		return 0, nil
	}
	return s.index.DocumentCount()
}

// ReindexAll rebuilds the suggestion index from the store.
func (s *SearchService) ReindexAll(ctx context.Context) error {
	if s.index == nil {
		return nil
	}

	start := time.Now()
	recipes, err := s.store.ListAllRecipes(ctx)
	if err != nil {
		return fmt.Errorf("list recipes: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.index.Rebuild(); err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}
	if err := s.index.IndexRecipes(recipes); err != nil {
		return fmt.Errorf("index recipes: %w", err)
	}

	requestLog(ctx, s.logger).Info("search index rebuilt", "recipes", len(recipes), "duration", time.Since(start))
	return nil
}

// EnsureIndexed reindexes when the index is empty but the store is not,
// which happens on first start and after a mapping change.
func (s *SearchService) EnsureIndexed(ctx context.Context) error {
	if s.index == nil {
		return nil
	}
	indexed, err := s.index.DocumentCount()
	if err != nil {
		return fmt.Errorf("count indexed: %w", err)
	}
	stored, err := s.store.CountRecipes(ctx)
	if err != nil {
		return fmt.Errorf("count recipes: %w", err)
	}
	if indexed == 0 && stored > 0 {
		return s.ReindexAll(ctx)
	}
	return nil
}
