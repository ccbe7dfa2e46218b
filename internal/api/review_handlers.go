package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/larderapp/larder-server/internal/domain"
	"github.com/larderapp/larder-server/internal/service"
)

func (s *Server) registerReviewRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "addReview",
		Method:        http.MethodPost,
		Path:          "/add_review/{id}",
		Summary:       "Review a recipe",
		Description:   "Adds the logged in user's review. One review per user and recipe, never on your own recipe.",
		Tags:          []string{"Reviews"},
		DefaultStatus: http.StatusCreated,
	}, s.handleAddReview)

	huma.Register(s.api, huma.Operation{
		OperationID: "editReview",
		Method:      http.MethodPost,
		Path:        "/edit_review/{id}",
		Summary:     "Edit review",
		Description: "Changes a review written by the logged in user. Identical content is not rewritten.",
		Tags:        []string{"Reviews"},
	}, s.handleEditReview)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteReview",
		Method:      http.MethodPost,
		Path:        "/delete_review/{id}",
		Summary:     "Delete review",
		Description: "Deletes a review written by the logged in user",
		Tags:        []string{"Reviews"},
	}, s.handleDeleteReview)
}

// === DTOs ===

// ReviewRequest is the review form body.
type ReviewRequest struct {
	Rating  int     `json:"rating" doc:"Rating from 1 to 5"`
	Comment *string `json:"comment,omitempty" doc:"Optional comment, up to 1000 characters"`
}

func (r ReviewRequest) toInput() service.ReviewInput {
	return service.ReviewInput{Rating: r.Rating, Comment: r.Comment}
}

// AddReviewInput targets a recipe.
type AddReviewInput struct {
	RecipeID  int64  `path:"id" doc:"Recipe ID"`
	CSRFToken string `header:"X-CSRF-Token" doc:"Anti-forgery token"`
	Body      ReviewRequest
}

// EditReviewInput targets a review.
type EditReviewInput struct {
	ReviewID  int64  `path:"id" doc:"Review ID"`
	CSRFToken string `header:"X-CSRF-Token" doc:"Anti-forgery token"`
	Body      ReviewRequest
}

// DeleteReviewInput targets a review.
type DeleteReviewInput struct {
	ReviewID  int64  `path:"id" doc:"Review ID"`
	CSRFToken string `header:"X-CSRF-Token" doc:"Anti-forgery token"`
}

// ReviewOutput wraps a single review for Huma.
type ReviewOutput struct {
	Body *domain.Review
}

// EditReviewResponse reports the stored review and whether it was rewritten.
type EditReviewResponse struct {
	Review  *domain.Review `json:"review" doc:"The review as stored"`
	Changed bool           `json:"changed" doc:"False when the submission matched the stored review"`
}

// EditReviewOutput wraps the edit result for Huma.
type EditReviewOutput struct {
	Body EditReviewResponse
}

// DeleteReviewResponse confirms a review removal.
type DeleteReviewResponse struct {
	ID       int64 `json:"id" doc:"Removed review ID"`
	RecipeID int64 `json:"recipe_id" doc:"Recipe the review belonged to"`
}

// DeleteReviewOutput wraps the removal for Huma.
type DeleteReviewOutput struct {
	Body DeleteReviewResponse
}

// === Handlers ===

func (s *Server) handleAddReview(ctx context.Context, input *AddReviewInput) (*ReviewOutput, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := verifyCSRF(ctx, input.CSRFToken); err != nil {
		return nil, err
	}

	review, err := s.services.Reviews.Add(ctx, userID, input.RecipeID, input.Body.toInput())
	if err != nil {
		return nil, err
	}
	return &ReviewOutput{Body: review}, nil
}

func (s *Server) handleEditReview(ctx context.Context, input *EditReviewInput) (*EditReviewOutput, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := verifyCSRF(ctx, input.CSRFToken); err != nil {
		return nil, err
	}

	review, changed, err := s.services.Reviews.Edit(ctx, userID, input.ReviewID, input.Body.toInput())
	if err != nil {
		return nil, err
	}
	return &EditReviewOutput{Body: EditReviewResponse{Review: review, Changed: changed}}, nil
}

func (s *Server) handleDeleteReview(ctx context.Context, input *DeleteReviewInput) (*DeleteReviewOutput, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := verifyCSRF(ctx, input.CSRFToken); err != nil {
		return nil, err
	}

	review, err := s.services.Reviews.Delete(ctx, userID, input.ReviewID)
	if err != nil {
		return nil, err
	}
	return &DeleteReviewOutput{Body: DeleteReviewResponse{ID: review.ID, RecipeID: review.RecipeID}}, nil
}
