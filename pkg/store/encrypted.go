package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/voidshard/budget/pkg/crypto"
)

// Encrypted seals everything written to the wrapped Document.
type Encrypted struct {
	inner  Document
	sealer *crypto.Sealer
}

func NewEncrypted(inner Document, key, sig string) (*Encrypted, error) {
	sealer, err := crypto.NewSealer(key, sig)
	if err != nil {
		return nil, err
	}
	return &Encrypted{inner: inner, sealer: sealer}, nil
}

func (e *Encrypted) Read(ctx context.Context) ([]byte, error) {
	data, err := e.inner.Read(ctx)
	if err != nil {
		return nil, err
	}
	plain, err := e.sealer.Open(data)
	if err != nil {
		return nil, fmt.Errorf("decrypt document: %w", err)
	}
	return plain, nil
}

func (e *Encrypted) Write(ctx context.Context, data []byte) error {
	sealed, err := e.sealer.Seal(data)
	if err != nil {
		return fmt.Errorf("encrypt document: %w", err)
	}
	return e.inner.Write(ctx, sealed)
}

func (e *Encrypted) Backup(ctx context.Context) (string, error) {
	b, ok := e.inner.(Backuper)
	if !ok {
		return "", errors.New("backup not supported")
	}
	return b.Backup(ctx)
}

func (e *Encrypted) Close() error {
	return e.inner.Close()
}
