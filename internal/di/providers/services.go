package providers

import (
	"github.com/samber/do/v2"

	"github.com/mailib/mailib-server/internal/logger"
	"github.com/mailib/mailib-server/internal/service"
)

// ProvideCatalogService provides the entity upsert service.
func ProvideCatalogService(i do.Injector) (*service.CatalogService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCatalogService(storeHandle.Store, log.Logger), nil
}

// ProvideBookService provides the book resolver and library mutations.
func ProvideBookService(i do.Injector) (*service.BookService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	catalog := do.MustInvoke[*service.CatalogService](i)
	metadata := do.MustInvoke[*service.MetadataService](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewBookService(storeHandle.Store, catalog, metadata, indexHandle.SearchIndex, log.Logger), nil
}

// ProvideSearchService provides the search aggregator.
func ProvideSearchService(i do.Injector) (*service.SearchService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	metadata := do.MustInvoke[*service.MetadataService](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSearchService(metadata, indexHandle.SearchIndex, storeHandle.Store, log.Logger), nil
}

// ProvideLibraryService provides family library aggregation.
func ProvideLibraryService(i do.Injector) (*service.LibraryService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	books := do.MustInvoke[*service.BookService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewLibraryService(storeHandle.Store, books, log.Logger), nil
}

// ProvideAnalyticsService provides family and user reading statistics.
func ProvideAnalyticsService(i do.Injector) (*service.AnalyticsService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAnalyticsService(storeHandle.Store, log.Logger), nil
}

// ProvideEntityService provides author, genre and cycle lookups.
func ProvideEntityService(i do.Injector) (*service.EntityService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)

	return service.NewEntityService(storeHandle.Store), nil
}

// ProvideReconcileService provides partial import repair and reindexing.
func ProvideReconcileService(i do.Injector) (*service.ReconcileService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	catalog := do.MustInvoke[*service.CatalogService](i)
	metadata := do.MustInvoke[*service.MetadataService](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewReconcileService(storeHandle.Store, catalog, metadata, indexHandle.SearchIndex, log.Logger), nil
}
