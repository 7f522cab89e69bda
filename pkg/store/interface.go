package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Read when nothing has been written yet.
var ErrNotFound = errors.New("document not found")

// Document holds one whole serialized ledger. Write replaces the previous
// content atomically: after a failed Write, Read still returns the old data.
type Document interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
	Close() error
}

// Backuper is implemented by documents that can keep a copy of their current
// content, so data that could not be loaded is not lost to the next save.
type Backuper interface {
	Backup(ctx context.Context) (string, error)
}
