package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/mailib/mailib-server/internal/config"
	"github.com/mailib/mailib-server/internal/logger"
	"github.com/mailib/mailib-server/internal/search"
	"github.com/mailib/mailib-server/internal/service"
)

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.SearchIndex
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the Bleve search index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	index, err := search.NewSearchIndex(search.Options{
		DataPath: cfg.Storage.SearchPath,
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, err
	}

	docCount, _ := index.DocumentCount()
	log.Info("Search index initialized", "documents", docCount, "needs_reindex", index.NeedsReindex())

	return &SearchIndexHandle{SearchIndex: index}, nil
}

// TriggerSearchReindexIfNeeded rebuilds the index in the background when it
// was recreated on open, or is empty while the catalog is not.
func TriggerSearchReindexIfNeeded(i do.Injector) {
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	reconcile := do.MustInvoke[*service.ReconcileService](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx := context.Background()
	if !indexHandle.NeedsReindex() {
		docCount, _ := indexHandle.DocumentCount()
		if docCount > 0 {
			return
		}
		books, err := storeHandle.ListBooks(ctx)
		if err != nil || len(books) == 0 {
			return
		}
	}

	log.Info("Search index out of date, triggering reindex")

	go func() {
		n, err := reconcile.Reindex(ctx)
		if err != nil {
			log.Error("Search reindex failed", "error", err)
			return
		}
		log.Info("Search reindex completed", "books", n)
	}()
}
