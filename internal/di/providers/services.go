package providers

import (
	"github.com/samber/do/v2"

	"github.com/larderapp/larder-server/internal/config"
	"github.com/larderapp/larder-server/internal/logger"
	"github.com/larderapp/larder-server/internal/service"
)

// ProvideAuthService provides the registration and login service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, log.Logger), nil
}

// ProvideRecipeService provides the recipe service, indexing through search.
func ProvideRecipeService(i do.Injector) (*service.RecipeService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	searchService := do.MustInvoke[*service.SearchService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewRecipeService(storeHandle.Store, searchService, cfg.Limits, log.Logger), nil
}

// ProvideReviewService provides the review service.
func ProvideReviewService(i do.Injector) (*service.ReviewService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewReviewService(storeHandle.Store, log.Logger), nil
}

// ProvideTagService provides the tag browsing service.
func ProvideTagService(i do.Injector) (*service.TagService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewTagService(storeHandle.Store, cfg.Limits.PageSize, log.Logger), nil
}

// ProvideUserService provides the user profile service.
func ProvideUserService(i do.Injector) (*service.UserService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewUserService(storeHandle.Store, log.Logger), nil
}
