// Package store persists knowledge entries, corpora and corpus files.
// The SQLite implementation is the only one shipped; the Store interface is
// the boundary the retrieval and ingestion code programs against.
package store

import (
	"context"

	"github.com/opskb/opskb/internal/kb"
)

// Store is the persistence boundary consumed by the answer engine, the
// ingestion pipeline and the CLI. Implementations must be safe for
// concurrent use.
type Store interface {
	// ListEntries returns entries most-recent-first. An empty corpusID
	// returns every entry; otherwise only entries of that corpus.
	ListEntries(ctx context.Context, corpusID string) ([]*kb.Entry, error)

	// CreateEntry stores a new entry and returns its id.
	// Question and answer must be non-empty.
	CreateEntry(ctx context.Context, title, question, answer string, tags []string, corpusID string) (string, error)

	// DeleteEntriesForFile removes every entry produced by the given corpus
	// file, cascading the chunk links. The corpus file row itself survives.
	DeleteEntriesForFile(ctx context.Context, fileID string) error

	// GetOrCreateCorpusFile looks up the file record for corpusID+path.
	// If one exists its id and stored hash are returned unchanged; otherwise
	// a record with the given hash is created and existingHash is empty.
	GetOrCreateCorpusFile(ctx context.Context, corpusID, path, hash string) (id string, existingHash string, err error)

	// DeleteCorpusFile removes the file record and its chunk links.
	// Entries are not touched; use DeleteEntriesForFile first for a cascade.
	DeleteCorpusFile(ctx context.Context, fileID string) error

	// SaveChunkRef records that entryID is chunk number index of fileID.
	SaveChunkRef(ctx context.Context, fileID, entryID string, index int) error

	// ListFiles returns a corpus' file records, most-recent-first.
	ListFiles(ctx context.Context, corpusID string) ([]*kb.CorpusFile, error)

	// ChunkRefs returns the ordered chunk links of a corpus file.
	ChunkRefs(ctx context.Context, fileID string) ([]*kb.ChunkRef, error)

	// Corpus management.
	CreateCorpus(ctx context.Context, name, basePath, description string) (string, error)
	EnsureCorpus(ctx context.Context, name, basePath, description string) (*kb.Corpus, error)
	GetCorpus(ctx context.Context, id string) (*kb.Corpus, error)
	GetCorpusByName(ctx context.Context, name string) (*kb.Corpus, error)
	ListCorpora(ctx context.Context) ([]*kb.Corpus, error)
	DeleteCorpus(ctx context.Context, id string) (bool, error)

	// Close releases the underlying database handle.
	Close() error
}
