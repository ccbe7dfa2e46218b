package api

import "github.com/larderapp/larder-server/internal/service"

// Services bundles the business services the handlers call.
type Services struct {
	Auth    *service.AuthService
	Recipes *service.RecipeService
	Reviews *service.ReviewService
	Tags    *service.TagService
	Search  *service.SearchService
	Users   *service.UserService
}
