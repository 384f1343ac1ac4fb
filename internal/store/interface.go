// Package store defines the persistence interfaces of the mailib server.
package store

import (
	"context"

	"github.com/mailib/mailib-server/internal/domain"
)

// BookStore persists catalog books.
type BookStore interface {
	CreateBook(ctx context.Context, book *domain.Book) error
	GetBook(ctx context.Context, id string) (*domain.Book, error)
	GetBookByExternalID(ctx context.Context, t domain.SourceType, externalID string) (*domain.Book, error)
	GetBooksByIDs(ctx context.Context, ids []string) ([]*domain.Book, error)
	ListBooks(ctx context.Context) ([]*domain.Book, error)
	ListUnlinkedExternalBooks(ctx context.Context, kind domain.EntityKind) ([]*domain.Book, error)
}

// EntityStore persists authors, genres and cycles and their book links.
type EntityStore interface {
	GetEntity(ctx context.Context, kind domain.EntityKind, id string) (*domain.EntityRecord, error)
	GetEntityByExternalID(ctx context.Context, kind domain.EntityKind, externalID int64) (*domain.EntityRecord, error)
	FindEntityByNamePrefix(ctx context.Context, kind domain.EntityKind, name string) (*domain.EntityRecord, error)
	CreateEntity(ctx context.Context, rec *domain.EntityRecord) error
	LinkEntity(ctx context.Context, kind domain.EntityKind, bookID, entityID string) (bool, error)
	ListBookEntities(ctx context.Context, kind domain.EntityKind, bookID string) ([]domain.EntityRecord, error)
	ListBooksEntities(ctx context.Context, kind domain.EntityKind, bookIDs []string) (map[string][]domain.EntityRecord, error)
}

// OwnershipStore persists owner and reader rows. Rows are written with the
// book's internal id and matched on every identity form of the book.
type OwnershipStore interface {
	AddOwner(ctx context.Context, book *domain.Book, userID string) (bool, error)
	AddReader(ctx context.Context, book *domain.Book, userID string) (bool, error)
	RemoveOwners(ctx context.Context, book *domain.Book, userIDs []string) (int64, error)
	RemoveReaders(ctx context.Context, book *domain.Book, userIDs []string) (int64, error)
	UserFlags(ctx context.Context, book *domain.Book, userID string) (owned, read bool, err error)
}

// FamilyStore reads the users table owned by the account service.
type FamilyStore interface {
	GetUser(ctx context.Context, id string) (*domain.User, error)
	UpsertUser(ctx context.Context, user *domain.User) error
	FamilyMembers(ctx context.Context, userID string) ([]domain.User, error)
	FamilyMembersLacking(ctx context.Context, userID string, book *domain.Book, requireRead bool) ([]string, error)
}

// LibraryStore aggregates the family library.
type LibraryStore interface {
	FamilyLibrary(ctx context.Context, userID string, sortBy domain.LibrarySort, order domain.SortOrder, page Page) ([]domain.LibraryBook, error)
	CountFamilyLibrary(ctx context.Context, userID string) (int, error)
	FamilyAnalytics(ctx context.Context, userID string) ([]domain.MemberAnalytics, error)
}

// Store is the full persistence surface.
type Store interface {
	BookStore
	EntityStore
	OwnershipStore
	FamilyStore
	LibraryStore

	Ping(ctx context.Context) error
	Close() error
}
