package cmd

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/opskb/opskb/internal/answer"
	"github.com/opskb/opskb/internal/config"
	kberrors "github.com/opskb/opskb/internal/errors"
	"github.com/opskb/opskb/internal/ingest"
	"github.com/opskb/opskb/internal/kb"
	"github.com/opskb/opskb/internal/output"
	"github.com/opskb/opskb/internal/store"
)

// app bundles the wired-up services a command needs.
type app struct {
	cfg     *config.Config
	store   *store.SQLiteStore
	engine  *answer.Engine
	printer *output.Printer
}

// openApp loads the config and opens the store. The returned cleanup
// function closes the database.
func openApp(cmd *cobra.Command) (*app, func(), error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, err
	}

	s, err := store.Open(cfg.DatabasePath())
	if err != nil {
		return nil, nil, err
	}

	engine, err := answer.NewEngine(s)
	if err != nil {
		_ = s.Close()
		return nil, nil, err
	}

	a := &app{
		cfg:     cfg,
		store:   s,
		engine:  engine,
		printer: output.NewPrinter(cmd.OutOrStdout()),
	}
	cleanup := func() { _ = s.Close() }
	return a, cleanup, nil
}

// pipeline builds an ingestion pipeline wired to the engine and guarded by
// the data-dir lock.
func (a *app) pipeline() *ingest.Pipeline {
	return ingest.New(a.store, ingest.Options{
		ChunkSize:    a.cfg.Chunking.Size,
		ChunkOverlap: a.cfg.Chunking.Overlap,
		Notifier:     a.engine,
		Logger:       slog.Default(),
		LockDir:      a.cfg.DataDir,
	})
}

// resolveCorpus maps a corpus name to its record. An empty name means no
// filter and returns nil.
func (a *app) resolveCorpus(ctx context.Context, name string) (*kb.Corpus, error) {
	if name == "" {
		return nil, nil
	}
	corpus, err := a.store.GetCorpusByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if corpus == nil {
		return nil, kberrors.New(kberrors.ErrCodeNotFound,
			"corpus not found").WithDetail("name", name)
	}
	return corpus, nil
}

// requireCorpus is resolveCorpus for commands where the corpus is
// mandatory: a blank name is rejected instead of meaning "no filter".
func (a *app) requireCorpus(ctx context.Context, name string) (*kb.Corpus, error) {
	if name == "" {
		return nil, kberrors.New(kberrors.ErrCodeInvalidInput,
			"corpus name must be non-empty")
	}
	return a.resolveCorpus(ctx, name)
}
