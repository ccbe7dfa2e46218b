package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/larderapp/larder-server/internal/domain"
)

func (s *Server) registerUserRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getUser",
		Method:      http.MethodGet,
		Path:        "/user/{id}",
		Summary:     "User profile",
		Description: "Returns a user with the recipes and reviews they wrote",
		Tags:        []string{"Users"},
	}, s.handleGetUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "listUsers",
		Method:      http.MethodGet,
		Path:        "/users",
		Summary:     "List users",
		Description: "Returns one page of users ordered by username",
		Tags:        []string{"Users"},
	}, s.handleListUsers)
}

// === DTOs ===

// UserIDInput identifies a user.
type UserIDInput struct {
	ID int64 `path:"id" doc:"User ID"`
}

// ProfileResponse is a public user page.
type ProfileResponse struct {
	User    UserResponse            `json:"user" doc:"The user"`
	Recipes []*domain.RecipeSummary `json:"recipes" doc:"Recipes they wrote, by name"`
	Reviews []*domain.Review        `json:"reviews" doc:"Reviews they wrote, newest first"`
}

// ProfileOutput wraps a profile for Huma.
type ProfileOutput struct {
	Body ProfileResponse
}

// ListUsersInput selects a page of users.
type ListUsersInput struct {
	Page int `query:"page" default:"1" doc:"1-based page number"`
}

// UserPageResponse is one page of users.
type UserPageResponse struct {
	Users     []UserResponse `json:"users"`
	Page      int            `json:"page"`
	PageSize  int            `json:"page_size"`
	PageCount int            `json:"page_count"`
	Total     int            `json:"total"`
}

// UserPageOutput wraps a user page for Huma.
type UserPageOutput struct {
	Body UserPageResponse
}

// === Handlers ===

func (s *Server) handleGetUser(ctx context.Context, input *UserIDInput) (*ProfileOutput, error) {
	profile, err := s.services.Users.Profile(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	body := ProfileResponse{
		User:    toUserResponse(profile.User),
		Recipes: profile.Recipes,
		Reviews: profile.Reviews,
	}
	if body.Recipes == nil {
		body.Recipes = []*domain.RecipeSummary{}
	}
	if body.Reviews == nil {
		body.Reviews = []*domain.Review{}
	}
	return &ProfileOutput{Body: body}, nil
}

func (s *Server) handleListUsers(ctx context.Context, input *ListUsersInput) (*UserPageOutput, error) {
	p, err := s.services.Users.List(ctx, input.Page, s.config.Limits.PageSize)
	if err != nil {
		return nil, err
	}

	users := make([]UserResponse, len(p.Items))
	for i, u := range p.Items {
		users[i] = toUserResponse(u)
	}
	return &UserPageOutput{Body: UserPageResponse{
		Users:     users,
		Page:      p.Page,
		PageSize:  p.PageSize,
		PageCount: p.PageCount,
		Total:     p.Total,
	}}, nil
}
