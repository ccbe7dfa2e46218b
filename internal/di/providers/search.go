package providers

import (
	"context"
	"sync"

	"github.com/samber/do/v2"

	"github.com/larderapp/larder-server/internal/config"
	"github.com/larderapp/larder-server/internal/logger"
	"github.com/larderapp/larder-server/internal/search"
	"github.com/larderapp/larder-server/internal/service"
)

// SearchIndexHandle wraps the search index with shutdown capability.
// Background work started with Go is cancelled and awaited before the
// index closes.
type SearchIndexHandle struct {
	*search.RecipeIndex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func newSearchIndexHandle(index *search.RecipeIndex) *SearchIndexHandle {
	ctx, cancel := context.WithCancel(context.Background())
	return &SearchIndexHandle{RecipeIndex: index, ctx: ctx, cancel: cancel}
}

// Go runs fn in a goroutine tied to the handle's lifetime.
func (h *SearchIndexHandle) Go(fn func(ctx context.Context)) {
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		fn(h.ctx)
	}()
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	h.cancel()
	h.wg.Wait()
	return h.Close()
}

// ProvideSearchIndex provides the Bleve search index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	index, err := search.NewSearchIndex(search.Options{
		DataPath: cfg.Metadata.SearchIndexPath(),
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, err
	}

	docCount, _ := index.DocumentCount()
	log.Info("Search index initialized", "documents", docCount)

	return newSearchIndexHandle(index), nil
}

// ProvideSearchService provides the search service.
func ProvideSearchService(i do.Injector) (*service.SearchService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSearchService(storeHandle.Store, indexHandle.RecipeIndex, cfg.Limits.PageSize, log.Logger), nil
}

// TriggerSearchReindexIfNeeded rebuilds the index in the background when it
// is empty but recipes exist. Call it after every service is wired.
func TriggerSearchReindexIfNeeded(i do.Injector) {
	searchService := do.MustInvoke[*service.SearchService](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	indexHandle.Go(func(ctx context.Context) {
		if err := searchService.EnsureIndexed(ctx); err != nil {
			if ctx.Err() != nil {
				log.Info("Initial search reindex cancelled")
				return
			}
			log.Error("Initial search reindex failed", "error", err)
			return
		}
		count, _ := searchService.DocumentCount()
		log.Info("Search index ready", "documents", count)
	})
}
