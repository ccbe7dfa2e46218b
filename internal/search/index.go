package search

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"github.com/larderapp/larder-server/internal/domain"
)

// RecipeIndex wraps a Bleve index of recipes.
//
// All methods are safe for concurrent use. Rebuild takes the write lock.
type RecipeIndex struct {
	index  bleve.Index
	path   string // empty for in-memory indexes
	logger *slog.Logger
	mu     sync.RWMutex
}

// Options configures the search index.
type Options struct {
	DataPath string       // Directory for index storage
	Logger   *slog.Logger // Discards when nil
}

// mappingVersion is bumped whenever buildIndexMapping changes so existing
// indexes are rebuilt on startup.
const mappingVersion = "1"

// indexBatchSize bounds memory while bulk indexing.
const indexBatchSize = 500

// NewSearchIndex opens the index under opts.DataPath, creating it when absent.
// An index that cannot be opened or was built with another mapping version is
// removed and recreated empty, so callers reindex when DocumentCount is zero.
func NewSearchIndex(opts Options) (*RecipeIndex, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	indexPath := filepath.Join(opts.DataPath, "recipes.bleve")
	versionPath := filepath.Join(opts.DataPath, "recipes.version")

	var index bleve.Index
	needsRebuild := false

	if _, err := os.Stat(indexPath); err == nil {
		//#nosec G304 -- path derived from configured data directory
		existing, readErr := os.ReadFile(versionPath)
		switch {
		case readErr != nil:
			logger.Info("search index has no version file, rebuilding", "version", mappingVersion)
			needsRebuild = true
		case string(existing) != mappingVersion:
			logger.Info("search index mapping changed, rebuilding",
				"old_version", string(existing),
				"new_version", mappingVersion,
			)
			needsRebuild = true
		default:
			index, err = bleve.Open(indexPath)
			if err != nil {
				logger.Warn("failed to open search index, recreating", "path", indexPath, "error", err)
				needsRebuild = true
			}
		}
	}

	if needsRebuild {
		if err := os.RemoveAll(indexPath); err != nil {
			return nil, fmt.Errorf("remove old index: %w", err)
		}
	}

	if index == nil {
		if err := os.MkdirAll(opts.DataPath, 0o750); err != nil {
			return nil, fmt.Errorf("create index directory: %w", err)
		}
		var err error
		index, err = bleve.New(indexPath, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create index: %w", err)
		}
		if err := os.WriteFile(versionPath, []byte(mappingVersion), 0o600); err != nil {
			logger.Warn("failed to write search version file", "error", err)
		}
		logger.Info("created search index", "path", indexPath, "mapping_version", mappingVersion)
	} else {
		logger.Info("opened search index", "path", indexPath)
	}

	return &RecipeIndex{index: index, path: indexPath, logger: logger}, nil
}

// NewMemoryIndex creates an index that lives only in memory.
func NewMemoryIndex(logger *slog.Logger) (*RecipeIndex, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create memory index: %w", err)
	}
	return &RecipeIndex{index: index, logger: logger}, nil
}

// Close releases the index.
func (s *RecipeIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// IndexRecipe adds or replaces one recipe.
func (s *RecipeIndex) IndexRecipe(r *domain.Recipe) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc := RecipeToDocument(r)
	return s.index.Index(doc.ID, doc.ToMap())
}

// IndexRecipes adds or replaces many recipes in batches.
func (s *RecipeIndex) IndexRecipes(recipes []*domain.Recipe) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for start := 0; start < len(recipes); start += indexBatchSize {
		end := min(start+indexBatchSize, len(recipes))

		batch := s.index.NewBatch()
		for _, r := range recipes[start:end] {
			doc := RecipeToDocument(r)
			if err := batch.Index(doc.ID, doc.ToMap()); err != nil {
				return fmt.Errorf("batch index %s: %w", doc.ID, err)
			}
		}
		if err := s.index.Batch(batch); err != nil {
			return fmt.Errorf("commit batch %d-%d: %w", start, end, err)
		}
	}
	return nil
}

// DeleteRecipe removes a recipe. Deleting an unknown id is not an error.
func (s *RecipeIndex) DeleteRecipe(recipeID int64) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Delete(DocumentID(recipeID))
}

// DocumentCount returns the number of indexed recipes.
func (s *RecipeIndex) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// Rebuild drops every document and starts from an empty index. All other
// operations block until it returns.
func (s *RecipeIndex) Rebuild() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.index.Close(); err != nil {
		return fmt.Errorf("close index: %w", err)
	}

	var (
		index bleve.Index
		err   error
	)
	if s.path == "" {
		index, err = bleve.NewMemOnly(buildIndexMapping())
	} else {
		if err = os.RemoveAll(s.path); err != nil {
			return fmt.Errorf("remove index: %w", err)
		}
		index, err = bleve.New(s.path, buildIndexMapping())
	}
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}

	s.index = index
	s.logger.Info("rebuilt search index", "path", s.path)
	return nil
}
