package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/larderapp/larder-server/internal/domain"
	"github.com/larderapp/larder-server/internal/service"
	"github.com/larderapp/larder-server/internal/util"
)

func (s *Server) registerRecipeRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listRecipes",
		Method:      http.MethodGet,
		Path:        "/",
		Summary:     "List recipes",
		Description: "Returns the first page of recipes ordered by name",
		Tags:        []string{"Recipes"},
	}, s.handleListRecipes)

	huma.Register(s.api, huma.Operation{
		OperationID: "listRecipesPage",
		Method:      http.MethodGet,
		Path:        "/{page}",
		Summary:     "List recipes page",
		Description: "Returns one page of recipes. Out of range pages are clamped.",
		Tags:        []string{"Recipes"},
	}, s.handleListRecipesPage)

	huma.Register(s.api, huma.Operation{
		OperationID: "getRecipe",
		Method:      http.MethodGet,
		Path:        "/recipe/{id}",
		Summary:     "Get recipe",
		Description: "Returns a recipe with its tags, rating and first page of reviews",
		Tags:        []string{"Recipes"},
	}, s.handleGetRecipe)

	huma.Register(s.api, huma.Operation{
		OperationID: "getRecipeReviewsPage",
		Method:      http.MethodGet,
		Path:        "/recipe/{id}/{page}",
		Summary:     "Get recipe with a review page",
		Description: "Returns a recipe with the requested page of reviews",
		Tags:        []string{"Recipes"},
	}, s.handleGetRecipePage)

	huma.Register(s.api, huma.Operation{
		OperationID: "getAddRecipeForm",
		Method:      http.MethodGet,
		Path:        "/add_recipe",
		Summary:     "New recipe form",
		Description: "Returns an anti-forgery token and the recipe limits. Requires login.",
		Tags:        []string{"Recipes"},
	}, s.handleGetAddRecipe)

	huma.Register(s.api, huma.Operation{
		OperationID:   "addRecipe",
		Method:        http.MethodPost,
		Path:          "/add_recipe",
		Summary:       "Create recipe",
		Description:   "Creates a recipe owned by the logged in user",
		Tags:          []string{"Recipes"},
		DefaultStatus: http.StatusCreated,
		MaxBodyBytes:  s.maxRecipeBodyBytes(),
	}, s.handleAddRecipe)

	huma.Register(s.api, huma.Operation{
		OperationID: "getEditRecipeForm",
		Method:      http.MethodGet,
		Path:        "/edit/{id}",
		Summary:     "Edit recipe form",
		Description: "Returns the recipe and an anti-forgery token. Owner only.",
		Tags:        []string{"Recipes"},
	}, s.handleGetEditRecipe)

	huma.Register(s.api, huma.Operation{
		OperationID:  "editRecipe",
		Method:       http.MethodPost,
		Path:         "/edit/{id}",
		Summary:      "Update recipe",
		Description:  "Replaces name, content and tags. Tags left without recipes are deleted.",
		Tags:         []string{"Recipes"},
		MaxBodyBytes: s.maxRecipeBodyBytes(),
	}, s.handleEditRecipe)

	huma.Register(s.api, huma.Operation{
		OperationID: "getRemoveRecipeForm",
		Method:      http.MethodGet,
		Path:        "/remove/{id}",
		Summary:     "Confirm recipe removal",
		Description: "Returns the recipe and an anti-forgery token. Owner only.",
		Tags:        []string{"Recipes"},
	}, s.handleGetRemoveRecipe)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeRecipe",
		Method:      http.MethodPost,
		Path:        "/remove/{id}",
		Summary:     "Delete recipe",
		Description: "Deletes the recipe, its reviews and tag links, and any tag left unused",
		Tags:        []string{"Recipes"},
	}, s.handleRemoveRecipe)
}

// === DTOs ===

// RecipePageOutput wraps one page of recipe summaries.
type RecipePageOutput struct {
	Body domain.Page[*domain.RecipeSummary]
}

// PageInput selects a 1-based page.
type PageInput struct {
	Page int `path:"page" doc:"1-based page number"`
}

// RecipeIDInput identifies a recipe.
type RecipeIDInput struct {
	ID int64 `path:"id" doc:"Recipe ID"`
}

// RecipePageInput identifies a recipe and a page of its reviews.
type RecipePageInput struct {
	ID   int64 `path:"id" doc:"Recipe ID"`
	Page int   `path:"page" doc:"1-based review page"`
}

// RecipeDetailResponse is the recipe page.
type RecipeDetailResponse struct {
	Recipe       *domain.Recipe              `json:"recipe" doc:"The recipe with its tag names"`
	Tags         []*domain.Tag               `json:"tags" doc:"Tags with their recipe counts"`
	Rating       domain.RatingSummary        `json:"rating" doc:"Mean rating and review count"`
	Reviews      domain.Page[*domain.Review] `json:"reviews" doc:"One page of reviews, newest first"`
	CanEdit      bool                        `json:"can_edit" doc:"Viewer owns the recipe"`
	CanReview    bool                        `json:"can_review" doc:"Viewer may add a review"`
	ViewerReview *domain.Review              `json:"viewer_review,omitempty" doc:"Viewer's own review"`
	CSRFToken    string                      `json:"csrf_token,omitempty" doc:"Anti-forgery token, for logged in viewers"`
}

// RecipeDetailOutput wraps the recipe page for Huma.
type RecipeDetailOutput struct {
	Body RecipeDetailResponse
}

// RecipeLimits tells a form what the server accepts.
type RecipeLimits struct {
	MaxNameLength     int      `json:"max_name_length"`
	MaxContentLength  int      `json:"max_content_length"`
	MaxTags           int      `json:"max_tags"`
	MaxTagLength      int      `json:"max_tag_length"`
	MaxImageBytes     int64    `json:"max_image_bytes"`
	AllowedImageTypes []string `json:"allowed_image_types"`
}

// RecipeFormResponse carries what an add or edit form needs.
type RecipeFormResponse struct {
	CSRFToken string         `json:"csrf_token" doc:"Anti-forgery token"`
	Recipe    *domain.Recipe `json:"recipe,omitempty" doc:"Recipe being edited"`
	Limits    RecipeLimits   `json:"limits" doc:"Field limits"`
}

// RecipeFormOutput wraps the recipe form for Huma.
type RecipeFormOutput struct {
	Body RecipeFormResponse
}

// RecipeRequest is the recipe form body.
type RecipeRequest struct {
	Name        string   `json:"name" doc:"Recipe name, up to 100 characters"`
	Content     string   `json:"content,omitempty" doc:"Method and ingredients, up to 5000 characters"`
	Tags        []string `json:"tags,omitempty" doc:"Tag names"`
	TagList     string   `json:"tag_list,omitempty" doc:"Comma separated tag names, merged with tags"`
	Image       []byte   `json:"image,omitempty" doc:"Base64 encoded image"`
	RemoveImage bool     `json:"remove_image,omitempty" doc:"Remove the stored image (edit only)"`
}

func (r RecipeRequest) toInput() service.RecipeInput {
	tags := append([]string{}, r.Tags...)
	if r.TagList != "" {
		tags = append(tags, util.SplitTagList(r.TagList)...)
	}
	return service.RecipeInput{
		Name:        r.Name,
		Content:     r.Content,
		Tags:        tags,
		Image:       r.Image,
		RemoveImage: r.RemoveImage,
	}
}

// AddRecipeInput wraps the create form with the anti-forgery header.
type AddRecipeInput struct {
	CSRFToken string `header:"X-CSRF-Token" doc:"Anti-forgery token"`
	Body      RecipeRequest
}

// EditRecipeInput wraps the edit form with the anti-forgery header.
type EditRecipeInput struct {
	ID        int64  `path:"id" doc:"Recipe ID"`
	CSRFToken string `header:"X-CSRF-Token" doc:"Anti-forgery token"`
	Body      RecipeRequest
}

// RemoveRecipeInput carries the anti-forgery header for a delete.
type RemoveRecipeInput struct {
	ID        int64  `path:"id" doc:"Recipe ID"`
	CSRFToken string `header:"X-CSRF-Token" doc:"Anti-forgery token"`
}

// RecipeOutput wraps a single recipe for Huma.
type RecipeOutput struct {
	Body *domain.Recipe
}

// DeletedResponse confirms a removal.
type DeletedResponse struct {
	ID      int64  `json:"id" doc:"ID of the removed record"`
	Message string `json:"message" doc:"Status message"`
}

// DeletedOutput wraps a removal confirmation for Huma.
type DeletedOutput struct {
	Body DeletedResponse
}

// === Handlers ===

func (s *Server) handleListRecipes(ctx context.Context, _ *struct{}) (*RecipePageOutput, error) {
	return s.listRecipes(ctx, 1)
}

func (s *Server) handleListRecipesPage(ctx context.Context, input *PageInput) (*RecipePageOutput, error) {
	return s.listRecipes(ctx, input.Page)
}

func (s *Server) listRecipes(ctx context.Context, page int) (*RecipePageOutput, error) {
	p, err := s.services.Recipes.List(ctx, page)
	if err != nil {
		return nil, err
	}
	return &RecipePageOutput{Body: p}, nil
}

func (s *Server) handleGetRecipe(ctx context.Context, input *RecipeIDInput) (*RecipeDetailOutput, error) {
	return s.recipeDetail(ctx, input.ID, 1)
}

func (s *Server) handleGetRecipePage(ctx context.Context, input *RecipePageInput) (*RecipeDetailOutput, error) {
	return s.recipeDetail(ctx, input.ID, input.Page)
}

func (s *Server) recipeDetail(ctx context.Context, recipeID int64, reviewPage int) (*RecipeDetailOutput, error) {
	viewer := viewerID(ctx)
	detail, err := s.services.Recipes.Get(ctx, recipeID, reviewPage, viewer)
	if err != nil {
		return nil, err
	}

	body := RecipeDetailResponse{
		Recipe:       detail.Recipe,
		Tags:         detail.Tags,
		Rating:       detail.Rating,
		Reviews:      detail.Reviews,
		CanEdit:      detail.CanEdit,
		CanReview:    detail.CanReview,
		ViewerReview: detail.ViewerReview,
	}
	if viewer != 0 {
		if body.CSRFToken, err = csrfToken(ctx); err != nil {
			return nil, err
		}
	}
	return &RecipeDetailOutput{Body: body}, nil
}

func (s *Server) handleGetAddRecipe(ctx context.Context, _ *struct{}) (*RecipeFormOutput, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	return s.recipeForm(ctx, nil)
}

func (s *Server) handleAddRecipe(ctx context.Context, input *AddRecipeInput) (*RecipeOutput, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := verifyCSRF(ctx, input.CSRFToken); err != nil {
		return nil, err
	}

	recipe, err := s.services.Recipes.Create(ctx, userID, input.Body.toInput())
	if err != nil {
		return nil, err
	}
	return &RecipeOutput{Body: recipe}, nil
}

func (s *Server) handleGetEditRecipe(ctx context.Context, input *RecipeIDInput) (*RecipeFormOutput, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	recipe, err := s.services.Recipes.GetForEdit(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}
	return s.recipeForm(ctx, recipe)
}

func (s *Server) handleEditRecipe(ctx context.Context, input *EditRecipeInput) (*RecipeOutput, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := verifyCSRF(ctx, input.CSRFToken); err != nil {
		return nil, err
	}

	recipe, err := s.services.Recipes.Update(ctx, userID, input.ID, input.Body.toInput())
	if err != nil {
		return nil, err
	}
	return &RecipeOutput{Body: recipe}, nil
}

func (s *Server) handleGetRemoveRecipe(ctx context.Context, input *RecipeIDInput) (*RecipeFormOutput, error) {
	return s.handleGetEditRecipe(ctx, input)
}

func (s *Server) handleRemoveRecipe(ctx context.Context, input *RemoveRecipeInput) (*DeletedOutput, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := verifyCSRF(ctx, input.CSRFToken); err != nil {
		return nil, err
	}

	if err := s.services.Recipes.Delete(ctx, userID, input.ID); err != nil {
		return nil, err
	}
	return &DeletedOutput{Body: DeletedResponse{ID: input.ID, Message: "recipe removed"}}, nil
}

func (s *Server) recipeForm(ctx context.Context, recipe *domain.Recipe) (*RecipeFormOutput, error) {
	token, err := csrfToken(ctx)
	if err != nil {
		return nil, err
	}
	limits := s.config.Limits
	return &RecipeFormOutput{Body: RecipeFormResponse{
		CSRFToken: token,
		Recipe:    recipe,
		Limits: RecipeLimits{
			MaxNameLength:     domain.MaxRecipeNameLength,
			MaxContentLength:  domain.MaxRecipeContentLength,
			MaxTags:           domain.MaxTagsPerRecipe,
			MaxTagLength:      domain.MaxTagNameLength,
			MaxImageBytes:     limits.MaxImageSize,
			AllowedImageTypes: limits.AllowedImageTypes,
		},
	}}, nil
}

// maxRecipeBodyBytes fits a base64 image at the configured limit plus the
// text fields.
func (s *Server) maxRecipeBodyBytes() int64 {
	return s.config.Limits.MaxImageSize*4/3 + 64*1024
}
