package store

import (
	"context"
	"errors"

	"github.com/MalithGihan/mindmap-service/pkg/types"
)

var ErrNotFound = errors.New("not found")

// DocumentStore keeps extracted documents in upload order.
type DocumentStore interface {
	AddDocument(ctx context.Context, d types.Document) error
	ListDocuments(ctx context.Context) ([]types.Document, error)
	ClearDocuments(ctx context.Context) error
}

// ViewStore keeps saved views in creation order.
type ViewStore interface {
	SaveView(ctx context.Context, v types.View) error
	ListViews(ctx context.Context) ([]types.View, error)
	GetView(ctx context.Context, id string) (types.View, error)
	DeleteView(ctx context.Context, id string) error
}

type Store interface {
	DocumentStore
	ViewStore
	Close() error
}

// Open returns the store for driver: "memory" (default) or "sqlite".
func Open(driver, path string) (Store, error) {
	switch driver {
	case "", "memory":
		return NewMemory(), nil
	case "sqlite":
		return OpenSQLite(DefaultConfig(path))
	default:
		return nil, errors.New("unknown storage driver " + driver)
	}
}
