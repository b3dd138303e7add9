package storage

import (
	"context"
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("key not found")

// Storage is a durable key-value slot. Values are written wholesale; there
// are no partial updates.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Options struct {
	Driver      string
	Path        string
	DatabaseURL string
}

func Open(ctx context.Context, opts Options) (Storage, error) {
	switch opts.Driver {
	case DriverFile, "":
		return NewFileStorage(opts.Path)
	case DriverSQLite:
		return NewSQLiteStorage(ctx, opts.Path)
	case DriverPostgres:
		return NewPostgresStorage(ctx, opts.DatabaseURL)
	case DriverMemory:
		return NewMemoryStorage(), nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
}
