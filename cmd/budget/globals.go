package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/voidshard/budget/pkg/ledger"
	"github.com/voidshard/budget/pkg/store"
)

// globals holds global options
type globals struct {
	Store         string `help:"Where data is kept [jsonfile:/path/file.json sqlite:/path/budget.db redis:localhost:6379 memory:]" default:"jsonfile:" env:"BUDGET_STORE"`
	LogLevel      string `help:"Log level." default:"warn" enum:"debug,info,warn,error" env:"BUDGET_LOG_LEVEL"`
	EncryptionKey string `help:"Encrypt stored data with this key (see keygen)." env:"BUDGET_ENCRYPTION_KEY"`
	SigningKey    string `help:"Sign stored data with this key (see keygen)." env:"BUDGET_SIGNING_KEY"`
}

// app is what every command shares once flags are parsed.
type app struct {
	out    io.Writer
	errOut io.Writer
	now    func() time.Time
}

func (g *globals) logger(a *app) *slog.Logger {
	level := slog.LevelWarn
	if err := level.UnmarshalText([]byte(g.LogLevel)); err != nil {
		level = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(a.errOut, &slog.HandlerOptions{Level: level}))
}

// document opens the configured store, sealed when keys are given.
func (g *globals) document() (store.Document, error) {
	doc, err := store.Open(g.Store)
	if err != nil {
		return nil, err
	}
	if g.EncryptionKey == "" && g.SigningKey == "" {
		return doc, nil
	}
	if g.EncryptionKey == "" || g.SigningKey == "" {
		doc.Close()
		return nil, errors.New("both an encryption and a signing key are needed to encrypt data")
	}

	enc, err := store.NewEncrypted(doc, g.EncryptionKey, g.SigningKey)
	if err != nil {
		doc.Close()
		return nil, fmt.Errorf("invalid key: %w", err)
	}
	return enc, nil
}

// open loads the ledger. The caller must Close it.
func (g *globals) open(ctx context.Context, a *app) (*ledger.Store, *slog.Logger, error) {
	log := g.logger(a)

	doc, err := g.document()
	if err != nil {
		return nil, log, err
	}

	s := ledger.Open(ctx, doc, ledger.WithLogger(log), ledger.WithClock(a.now))
	if err := s.LoadError(); err != nil {
		fmt.Fprintf(a.errOut, "Warning: saved data could not be loaded, starting empty (%v)\n", err)
	}
	return s, log, nil
}
