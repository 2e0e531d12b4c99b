// Package kb defines the domain types shared across the knowledge base:
// entries, corpora, corpus files and ingestion reports, plus the tokenizer
// used by both indexing and scoring.
package kb

import "time"

// Entry is one indexed question/answer unit with tags.
// Question and answer are non-empty at creation; tags are free-form strings
// kept in insertion order for display (matching ignores order and allows
// duplicates).
type Entry struct {
	ID        string
	Title     string
	Question  string
	Answer    string
	Tags      []string
	CorpusID  string // empty when the entry belongs to no corpus
	CreatedAt time.Time
}

// Corpus is a named collection of ingested files and the entries derived
// from them.
type Corpus struct {
	ID          string
	Name        string
	BasePath    string
	Description string
	CreatedAt   time.Time
}

// CorpusFile tracks one ingested file within a corpus. ContentHash is the
// hex SHA-1 digest of the normalised UTF-8 content and drives
// dedup-by-hash on re-ingestion.
type CorpusFile struct {
	ID          string
	CorpusID    string
	FileName    string
	FilePath    string
	ContentHash string
	CreatedAt   time.Time
}

// ChunkRef links a corpus file to one entry it produced, tagged with the
// chunk's position within the file. Indices are unique per file and
// contiguous from 0.
type ChunkRef struct {
	FileID  string
	EntryID string
	Index   int
}

// IngestReport aggregates the outcome of one ingestion call.
// Skipped holds the names of files that were passed over for a recoverable
// per-file reason (unsupported extension, undecodable, empty).
type IngestReport struct {
	CorpusID       string
	FilesProcessed int
	ChunksCreated  int
	Skipped        []string
}
