package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/larderapp/larder-server/internal/api"
	"github.com/larderapp/larder-server/internal/auth"
	"github.com/larderapp/larder-server/internal/config"
	"github.com/larderapp/larder-server/internal/logger"
	"github.com/larderapp/larder-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	handler *api.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := h.Server.Shutdown(ctx)
	h.handler.Close()
	return err
}

// ProvideAPIServer provides the routed API handler.
func ProvideAPIServer(i do.Injector) (*api.Server, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sessions := do.MustInvoke[*auth.SessionCodec](i)
	log := do.MustInvoke[*logger.Logger](i)

	services := &api.Services{
		Auth:    do.MustInvoke[*service.AuthService](i),
		Recipes: do.MustInvoke[*service.RecipeService](i),
		Reviews: do.MustInvoke[*service.ReviewService](i),
		Tags:    do.MustInvoke[*service.TagService](i),
		Search:  do.MustInvoke[*service.SearchService](i),
		Users:   do.MustInvoke[*service.UserService](i),
	}

	return api.NewServer(storeHandle.Store, services, sessions, cfg, log.Logger), nil
}

// ProvideHTTPServer provides the HTTP server and starts it listening.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	handler := do.MustInvoke[*api.Server](i)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr, "name", cfg.Server.Name)

	return &HTTPServerHandle{Server: srv, handler: handler}, nil
}
