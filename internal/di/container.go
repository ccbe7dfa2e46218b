// Package di provides dependency injection configuration for the Larder server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/larderapp/larder-server/internal/api"
	"github.com/larderapp/larder-server/internal/auth"
	"github.com/larderapp/larder-server/internal/config"
	"github.com/larderapp/larder-server/internal/di/providers"
	"github.com/larderapp/larder-server/internal/logger"
	"github.com/larderapp/larder-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSlogLogger)
	do.Provide(injector, providers.ProvideSessionKey)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Search layer
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideSearchService)

	// Auth layer
	do.Provide(injector, providers.ProvideSessionCodec)

	// Business services
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideRecipeService)
	do.Provide(injector, providers.ProvideReviewService)
	do.Provide(injector, providers.ProvideTagService)
	do.Provide(injector, providers.ProvideUserService)

	// Server
	do.Provide(injector, providers.ProvideAPIServer)
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)

	// Providers that touch the disk can fail on a bad data directory.
	if _, err := do.Invoke[providers.SessionKey](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.SearchIndexHandle](injector); err != nil {
		return err
	}

	_ = do.MustInvoke[*service.SearchService](injector)
	_ = do.MustInvoke[*auth.SessionCodec](injector)

	// Business services
	_ = do.MustInvoke[*service.AuthService](injector)
	_ = do.MustInvoke[*service.RecipeService](injector)
	_ = do.MustInvoke[*service.ReviewService](injector)
	_ = do.MustInvoke[*service.TagService](injector)
	_ = do.MustInvoke[*service.UserService](injector)

	// Server
	_ = do.MustInvoke[*api.Server](injector)
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	// Trigger search reindex if needed
	providers.TriggerSearchReindexIfNeeded(injector)

	return nil
}
