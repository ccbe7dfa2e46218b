package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/larderapp/larder-server/internal/search"
	"github.com/larderapp/larder-server/internal/service"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchRecipes",
		Method:      http.MethodGet,
		Path:        "/search",
		Summary:     "Search recipes",
		Description: "Filters recipes by text in name or content and by any of the given tags. No filter lists every recipe.",
		Tags:        []string{"Search"},
	}, s.handleSearch)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchRecipesPage",
		Method:      http.MethodGet,
		Path:        "/search/{page}",
		Summary:     "Search recipes page",
		Description: "Returns one page of search results. Out of range pages are clamped.",
		Tags:        []string{"Search"},
	}, s.handleSearchPage)

	huma.Register(s.api, huma.Operation{
		OperationID: "suggestRecipes",
		Method:      http.MethodGet,
		Path:        "/suggest",
		Summary:     "Suggest recipes",
		Description: "Ranks recipes by relevance to free text, with typo tolerance and tag facets",
		Tags:        []string{"Search"},
	}, s.handleSuggest)
}

// === DTOs ===

// SearchInput carries the filter form.
type SearchInput struct {
	Query string   `query:"query" doc:"Text to find in recipe names and content"`
	Tags  []string `query:"tags,explode" doc:"Tags, any of which must match. Repeat the parameter for several."`
}

// SearchPageInput carries the filter form and a page.
type SearchPageInput struct {
	Page  int      `path:"page" doc:"1-based page number"`
	Query string   `query:"query" doc:"Text to find in recipe names and content"`
	Tags  []string `query:"tags,explode" doc:"Tags, any of which must match"`
}

// SearchOutput wraps search results for Huma.
type SearchOutput struct {
	Body *service.SearchResult
}

// SuggestInput carries a suggestion query.
type SuggestInput struct {
	Query string   `query:"q" doc:"Free text"`
	Tags  []string `query:"tags,explode" doc:"Restrict to any of these tags"`
	Limit int      `query:"limit" default:"10" minimum:"1" maximum:"50" doc:"Maximum hits"`
}

// SuggestOutput wraps suggestions for Huma.
type SuggestOutput struct {
	Body *search.SuggestResult
}

// === Handlers ===

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	return s.search(ctx, input.Query, input.Tags, 1)
}

func (s *Server) handleSearchPage(ctx context.Context, input *SearchPageInput) (*SearchOutput, error) {
	return s.search(ctx, input.Query, input.Tags, input.Page)
}

func (s *Server) search(ctx context.Context, text string, tags []string, page int) (*SearchOutput, error) {
	res, err := s.services.Search.Search(ctx, service.SearchQuery{Text: text, Tags: tags}, page)
	if err != nil {
		return nil, err
	}
	return &SearchOutput{Body: res}, nil
}

func (s *Server) handleSuggest(ctx context.Context, input *SuggestInput) (*SuggestOutput, error) {
	res, err := s.services.Search.Suggest(ctx, input.Query, input.Tags, input.Limit)
	if err != nil {
		return nil, err
	}
	return &SuggestOutput{Body: res}, nil
}
