// Package ingest turns files on disk into chunked knowledge entries.
//
// The pipeline hashes each document's decoded text, so a file is only
// re-chunked when its content actually changed. Entries produced from a
// stale version of a file are removed before the new chunks are written.
package ingest

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/opskb/opskb/internal/chunk"
	kberrors "github.com/opskb/opskb/internal/errors"
	"github.com/opskb/opskb/internal/kb"
	"github.com/opskb/opskb/internal/store"
)

// Notifier receives entry lifecycle events so live indexes stay current.
// The answer engine implements it; a nil notifier disables the calls.
type Notifier interface {
	EntryCreated(entry *kb.Entry)
	EntriesRemoved(ids []string)
}

// Options tune a Pipeline. Zero values fall back to the chunk package
// defaults, a discard logger and no cross-process lock.
type Options struct {
	ChunkSize    int
	ChunkOverlap int
	Notifier     Notifier
	Logger       *slog.Logger
	LockDir      string
}

// Pipeline ingests documents into a corpus.
type Pipeline struct {
	store    store.Store
	notifier Notifier
	log      *slog.Logger
	size     int
	overlap  int
	lockDir  string
}

// New creates a pipeline over the given store.
func New(s store.Store, opts Options) *Pipeline {
	size := opts.ChunkSize
	if size <= 0 {
		size = chunk.DefaultSize
	}
	overlap := opts.ChunkOverlap
	if overlap < 0 {
		overlap = chunk.DefaultOverlap
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Pipeline{
		store:    s,
		notifier: opts.Notifier,
		log:      log,
		size:     size,
		overlap:  overlap,
		lockDir:  opts.LockDir,
	}
}

// IngestDirectory ingests every supported file under root into the corpus.
// When recursive is false only the directory's immediate files are
// considered.
func (p *Pipeline) IngestDirectory(ctx context.Context, corpusID, root string, recursive bool) (*kb.IngestReport, error) {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, kberrors.New(kberrors.ErrCodeFileNotFound,
				"ingestion root does not exist").WithDetail("path", root)
		}
		return nil, kberrors.Wrap(kberrors.ErrCodeFileUnreadable, "stat ingestion root", err).
			WithDetail("path", root)
	}
	if !info.IsDir() {
		return nil, kberrors.New(kberrors.ErrCodeRootNotDir,
			"ingestion root is not a directory").WithDetail("path", root)
	}

	var paths []string
	if recursive {
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.Type().IsRegular() {
				paths = append(paths, path)
			}
			return nil
		})
	} else {
		var items []fs.DirEntry
		items, err = os.ReadDir(root)
		for _, item := range items {
			if item.Type().IsRegular() {
				paths = append(paths, filepath.Join(root, item.Name()))
			}
		}
	}
	if err != nil {
		return nil, kberrors.Wrap(kberrors.ErrCodeFileUnreadable, "walk ingestion root", err).
			WithDetail("path", root)
	}
	return p.IngestPaths(ctx, corpusID, paths)
}

// IngestPaths ingests the given files into the corpus and reports what
// happened. Unsupported, unreadable and empty files end up in the report's
// Skipped list; an unchanged file counts as processed with zero new chunks.
func (p *Pipeline) IngestPaths(ctx context.Context, corpusID string, paths []string) (*kb.IngestReport, error) {
	if p.lockDir != "" {
		lock := NewFileLock(p.lockDir)
		if err := lock.Acquire(); err != nil {
			return nil, err
		}
		defer lock.Release()
	}

	report := &kb.IngestReport{CorpusID: corpusID}
	start := time.Now()

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		name := filepath.Base(path)
		if !SupportedExtension(path) {
			report.Skipped = append(report.Skipped, name)
			continue
		}

		created, err := p.ingestFile(ctx, corpusID, path)
		if err != nil {
			if kberrors.HasCategory(err, kberrors.CategoryIO) {
				p.log.WarnContext(ctx, "ingest.file.skipped",
					"path", path, "error", err)
				report.Skipped = append(report.Skipped, name)
				continue
			}
			return nil, err
		}
		if created < 0 {
			// Nothing chunkable in the file.
			report.Skipped = append(report.Skipped, name)
			continue
		}
		report.FilesProcessed++
		report.ChunksCreated += created
	}

	p.log.InfoContext(ctx, "ingest.completed",
		"corpus_id", corpusID,
		"files_processed", report.FilesProcessed,
		"chunks_created", report.ChunksCreated,
		"skipped", len(report.Skipped),
		"duration_ms", time.Since(start).Milliseconds())
	return report, nil
}

// ingestFile processes one document. The return value is the number of
// chunks created, 0 for an unchanged file, or -1 when the file held no
// chunkable text.
func (p *Pipeline) ingestFile(ctx context.Context, corpusID, path string) (int, error) {
	text, err := readDocument(path)
	if err != nil {
		return 0, err
	}
	if strings.TrimSpace(text) == "" {
		return -1, nil
	}

	sum := sha1.Sum([]byte(text))
	hash := hex.EncodeToString(sum[:])

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	fileID, existingHash, err := p.store.GetOrCreateCorpusFile(ctx, corpusID, abs, hash)
	if err != nil {
		return 0, err
	}
	switch existingHash {
	case "":
		// Fresh registration.
	case hash:
		p.log.DebugContext(ctx, "ingest.file.unchanged", "path", abs)
		return 0, nil
	default:
		// Content changed: retire the old chunks and re-register so the
		// stored hash reflects the new text.
		if err := p.retireFile(ctx, fileID); err != nil {
			return 0, err
		}
		fileID, _, err = p.store.GetOrCreateCorpusFile(ctx, corpusID, abs, hash)
		if err != nil {
			return 0, err
		}
	}

	chunks := chunk.Split(text, p.size, p.overlap)
	if len(chunks) == 0 {
		// Registered but nothing to index; drop the dangling record.
		if err := p.store.DeleteCorpusFile(ctx, fileID); err != nil {
			return 0, err
		}
		return -1, nil
	}

	stem := strings.TrimSuffix(filepath.Base(abs), filepath.Ext(abs))
	for i, body := range chunks {
		title := fmt.Sprintf("%s - part %d", stem, i+1)
		entryID, err := p.store.CreateEntry(ctx, title, body, body, nil, corpusID)
		if err != nil {
			return 0, err
		}
		if err := p.store.SaveChunkRef(ctx, fileID, entryID, i); err != nil {
			return 0, err
		}
		if p.notifier != nil {
			p.notifier.EntryCreated(&kb.Entry{
				ID:        entryID,
				Title:     title,
				Question:  body,
				Answer:    body,
				CorpusID:  corpusID,
				CreatedAt: time.Now().UTC(),
			})
		}
	}

	p.log.InfoContext(ctx, "ingest.file.processed",
		"path", abs, "chunks", len(chunks))
	return len(chunks), nil
}

// retireFile removes the entries a corpus file produced and the file record
// itself, notifying the live index of the dropped entry ids.
func (p *Pipeline) retireFile(ctx context.Context, fileID string) error {
	refs, err := p.store.ChunkRefs(ctx, fileID)
	if err != nil {
		return err
	}
	if err := p.store.DeleteEntriesForFile(ctx, fileID); err != nil {
		return err
	}
	if err := p.store.DeleteCorpusFile(ctx, fileID); err != nil {
		return err
	}
	if p.notifier != nil && len(refs) > 0 {
		ids := make([]string, 0, len(refs))
		for _, ref := range refs {
			ids = append(ids, ref.EntryID)
		}
		p.notifier.EntriesRemoved(ids)
	}
	return nil
}
