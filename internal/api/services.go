package api

import (
	"github.com/mailib/mailib-server/internal/service"
)

// Services groups the business services the handlers call.
type Services struct {
	Books     *service.BookService
	Search    *service.SearchService
	Library   *service.LibraryService
	Analytics *service.AnalyticsService
	Entities  *service.EntityService
}
