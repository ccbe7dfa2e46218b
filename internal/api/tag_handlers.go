package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/larderapp/larder-server/internal/domain"
	"github.com/larderapp/larder-server/internal/service"
)

func (s *Server) registerTagRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listTags",
		Method:      http.MethodGet,
		Path:        "/tags",
		Summary:     "List tags",
		Description: "Returns every tag with the number of recipes carrying it",
		Tags:        []string{"Tags"},
	}, s.handleListTags)

	huma.Register(s.api, huma.Operation{
		OperationID: "getTagRecipes",
		Method:      http.MethodGet,
		Path:        "/tag/{name}",
		Summary:     "Recipes for a tag",
		Description: "Returns the first page of recipes carrying the tag",
		Tags:        []string{"Tags"},
	}, s.handleGetTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "getTagRecipesPage",
		Method:      http.MethodGet,
		Path:        "/tag/{name}/{page}",
		Summary:     "Recipes for a tag, page",
		Description: "Returns one page of recipes carrying the tag",
		Tags:        []string{"Tags"},
	}, s.handleGetTagPage)
}

// === DTOs ===

// TagListResponse lists tags.
type TagListResponse struct {
	Tags []*domain.Tag `json:"tags" doc:"Tags ordered by name"`
}

// TagListOutput wraps the tag list for Huma.
type TagListOutput struct {
	Body TagListResponse
}

// TagInput names a tag.
type TagInput struct {
	Name string `path:"name" doc:"Tag name, matched case-insensitively"`
}

// TagPageInput names a tag and a page.
type TagPageInput struct {
	Name string `path:"name" doc:"Tag name, matched case-insensitively"`
	Page int    `path:"page" doc:"1-based page number"`
}

// TagRecipesOutput wraps a tag's recipes for Huma.
type TagRecipesOutput struct {
	Body *service.TagRecipes
}

// === Handlers ===

func (s *Server) handleListTags(ctx context.Context, _ *struct{}) (*TagListOutput, error) {
	tags, err := s.services.Tags.ListTags(ctx)
	if err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []*domain.Tag{}
	}
	return &TagListOutput{Body: TagListResponse{Tags: tags}}, nil
}

func (s *Server) handleGetTag(ctx context.Context, input *TagInput) (*TagRecipesOutput, error) {
	return s.tagRecipes(ctx, input.Name, 1)
}

func (s *Server) handleGetTagPage(ctx context.Context, input *TagPageInput) (*TagRecipesOutput, error) {
	return s.tagRecipes(ctx, input.Name, input.Page)
}

func (s *Server) tagRecipes(ctx context.Context, name string, page int) (*TagRecipesOutput, error) {
	res, err := s.services.Tags.Recipes(ctx, name, page)
	if err != nil {
		return nil, err
	}
	return &TagRecipesOutput{Body: res}, nil
}
