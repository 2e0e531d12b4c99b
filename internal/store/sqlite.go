package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	kberrors "github.com/opskb/opskb/internal/errors"
	"github.com/opskb/opskb/internal/kb"
)

// SQLiteStore implements Store on a local SQLite database.
// WAL mode allows a watcher process and the CLI to share one database.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

var _ Store = (*SQLiteStore)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS corpora (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	base_path TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS entries (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	question TEXT NOT NULL,
	answer TEXT NOT NULL,
	tags TEXT NOT NULL DEFAULT '[]',
	corpus_id TEXT,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS corpus_files (
	id TEXT PRIMARY KEY,
	corpus_id TEXT NOT NULL,
	file_name TEXT NOT NULL,
	file_path TEXT NOT NULL,
	content_hash TEXT NOT NULL,
	created_at TEXT NOT NULL,
	UNIQUE(corpus_id, file_path)
);

CREATE TABLE IF NOT EXISTS chunk_refs (
	corpus_file_id TEXT NOT NULL,
	entry_id TEXT NOT NULL,
	chunk_idx INTEGER NOT NULL,
	PRIMARY KEY (corpus_file_id, chunk_idx)
);

CREATE INDEX IF NOT EXISTS idx_entries_corpus ON entries(corpus_id);
CREATE INDEX IF NOT EXISTS idx_chunk_refs_entry ON chunk_refs(entry_id);
`

// Open opens (creating if needed) the knowledge base at path.
// An empty path opens an in-memory database for tests.
func Open(path string) (*SQLiteStore, error) {
	dsn := ":memory:"
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, kberrors.Wrap(kberrors.ErrCodeStoreOpen, "create data directory", err)
		}
		dsn = path
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, kberrors.Wrap(kberrors.ErrCodeStoreOpen, "open database", err)
	}

	// Single writer to prevent lock contention; SQLite serializes writes anyway.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// WAL must be set via PRAGMA for modernc.org/sqlite.
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, kberrors.Wrap(kberrors.ErrCodeStoreOpen, "set pragma", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, kberrors.Wrap(kberrors.ErrCodeStoreOpen, "initialize schema", err)
	}

	return &SQLiteStore{db: db, path: path}, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ListEntries(ctx context.Context, corpusID string) ([]*kb.Entry, error) {
	query := `SELECT id, title, question, answer, tags, COALESCE(corpus_id, ''), created_at
		FROM entries`
	args := []any{}
	if corpusID != "" {
		query += ` WHERE corpus_id = ?`
		args = append(args, corpusID)
	}
	query += ` ORDER BY created_at DESC, rowid DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, kberrors.StoreError("list entries", err)
	}
	defer rows.Close()

	var entries []*kb.Entry
	for rows.Next() {
		var e kb.Entry
		var tags, createdAt string
		if err := rows.Scan(&e.ID, &e.Title, &e.Question, &e.Answer, &tags, &e.CorpusID, &createdAt); err != nil {
			return nil, kberrors.StoreError("scan entry", err)
		}
		e.Tags = decodeTags(tags)
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

func (s *SQLiteStore) CreateEntry(ctx context.Context, title, question, answer string, tags []string, corpusID string) (string, error) {
	if strings.TrimSpace(question) == "" || strings.TrimSpace(answer) == "" {
		return "", kberrors.ValidationError("entry question and answer must be non-empty", nil)
	}

	id := uuid.NewString()
	var corpus any
	if corpusID != "" {
		corpus = corpusID
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO entries (id, title, question, answer, tags, corpus_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, title, question, answer, encodeTags(tags), corpus, now())
	if err != nil {
		return "", kberrors.StoreError("create entry", err)
	}
	return id, nil
}

func (s *SQLiteStore) DeleteEntriesForFile(ctx context.Context, fileID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return kberrors.StoreError("begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM entries WHERE id IN
			(SELECT entry_id FROM chunk_refs WHERE corpus_file_id = ?)`, fileID); err != nil {
		return kberrors.StoreError("delete file entries", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM chunk_refs WHERE corpus_file_id = ?`, fileID); err != nil {
		return kberrors.StoreError("delete chunk refs", err)
	}
	if err := tx.Commit(); err != nil {
		return kberrors.StoreError("commit", err)
	}
	return nil
}

func (s *SQLiteStore) GetOrCreateCorpusFile(ctx context.Context, corpusID, path, hash string) (string, string, error) {
	var id, existing string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, content_hash FROM corpus_files WHERE corpus_id = ? AND file_path = ?`,
		corpusID, path).Scan(&id, &existing)
	switch {
	case err == nil:
		return id, existing, nil
	case err != sql.ErrNoRows:
		return "", "", kberrors.StoreError("lookup corpus file", err)
	}

	id = uuid.NewString()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO corpus_files (id, corpus_id, file_name, file_path, content_hash, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, corpusID, filepath.Base(path), path, hash, now())
	if err != nil {
		return "", "", kberrors.StoreError("register corpus file", err)
	}
	return id, "", nil
}

func (s *SQLiteStore) DeleteCorpusFile(ctx context.Context, fileID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return kberrors.StoreError("begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM chunk_refs WHERE corpus_file_id = ?`, fileID); err != nil {
		return kberrors.StoreError("delete chunk refs", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM corpus_files WHERE id = ?`, fileID); err != nil {
		return kberrors.StoreError("delete corpus file", err)
	}
	if err := tx.Commit(); err != nil {
		return kberrors.StoreError("commit", err)
	}
	return nil
}

func (s *SQLiteStore) SaveChunkRef(ctx context.Context, fileID, entryID string, index int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO chunk_refs (corpus_file_id, entry_id, chunk_idx) VALUES (?, ?, ?)`,
		fileID, entryID, index)
	if err != nil {
		return kberrors.StoreError("save chunk ref", err)
	}
	return nil
}

func (s *SQLiteStore) ListFiles(ctx context.Context, corpusID string) ([]*kb.CorpusFile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, corpus_id, file_name, file_path, content_hash, created_at
		 FROM corpus_files WHERE corpus_id = ?
		 ORDER BY created_at DESC, rowid DESC`, corpusID)
	if err != nil {
		return nil, kberrors.StoreError("list corpus files", err)
	}
	defer rows.Close()

	var files []*kb.CorpusFile
	for rows.Next() {
		var f kb.CorpusFile
		var createdAt string
		if err := rows.Scan(&f.ID, &f.CorpusID, &f.FileName, &f.FilePath, &f.ContentHash, &createdAt); err != nil {
			return nil, kberrors.StoreError("scan corpus file", err)
		}
		f.CreatedAt = parseTime(createdAt)
		files = append(files, &f)
	}
	return files, rows.Err()
}

func (s *SQLiteStore) ChunkRefs(ctx context.Context, fileID string) ([]*kb.ChunkRef, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT corpus_file_id, entry_id, chunk_idx FROM chunk_refs
		 WHERE corpus_file_id = ? ORDER BY chunk_idx`, fileID)
	if err != nil {
		return nil, kberrors.StoreError("list chunk refs", err)
	}
	defer rows.Close()

	var refs []*kb.ChunkRef
	for rows.Next() {
		var r kb.ChunkRef
		if err := rows.Scan(&r.FileID, &r.EntryID, &r.Index); err != nil {
			return nil, kberrors.StoreError("scan chunk ref", err)
		}
		refs = append(refs, &r)
	}
	return refs, rows.Err()
}

func (s *SQLiteStore) CreateCorpus(ctx context.Context, name, basePath, description string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", kberrors.ValidationError("corpus name must be non-empty", nil)
	}
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO corpora (id, name, base_path, description, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, name, basePath, description, now())
	if err != nil {
		return "", kberrors.StoreError("create corpus", err)
	}
	return id, nil
}

func (s *SQLiteStore) EnsureCorpus(ctx context.Context, name, basePath, description string) (*kb.Corpus, error) {
	existing, err := s.GetCorpusByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if basePath != "" && basePath != existing.BasePath {
			if _, err := s.db.ExecContext(ctx,
				`UPDATE corpora SET base_path = ? WHERE id = ?`, basePath, existing.ID); err != nil {
				return nil, kberrors.StoreError("update corpus base path", err)
			}
			existing.BasePath = basePath
		}
		return existing, nil
	}
	id, err := s.CreateCorpus(ctx, name, basePath, description)
	if err != nil {
		return nil, err
	}
	return s.GetCorpus(ctx, id)
}

func (s *SQLiteStore) GetCorpus(ctx context.Context, id string) (*kb.Corpus, error) {
	return s.corpusBy(ctx, `id = ?`, id)
}

func (s *SQLiteStore) GetCorpusByName(ctx context.Context, name string) (*kb.Corpus, error) {
	return s.corpusBy(ctx, `name = ?`, name)
}

func (s *SQLiteStore) corpusBy(ctx context.Context, cond string, arg any) (*kb.Corpus, error) {
	var c kb.Corpus
	var createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, base_path, description, created_at FROM corpora WHERE `+cond,
		arg).Scan(&c.ID, &c.Name, &c.BasePath, &c.Description, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, kberrors.StoreError("get corpus", err)
	}
	c.CreatedAt = parseTime(createdAt)
	return &c, nil
}

func (s *SQLiteStore) ListCorpora(ctx context.Context) ([]*kb.Corpus, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, base_path, description, created_at FROM corpora
		 ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, kberrors.StoreError("list corpora", err)
	}
	defer rows.Close()

	var corpora []*kb.Corpus
	for rows.Next() {
		var c kb.Corpus
		var createdAt string
		if err := rows.Scan(&c.ID, &c.Name, &c.BasePath, &c.Description, &createdAt); err != nil {
			return nil, kberrors.StoreError("scan corpus", err)
		}
		c.CreatedAt = parseTime(createdAt)
		corpora = append(corpora, &c)
	}
	return corpora, rows.Err()
}

// DeleteCorpus removes the corpus, its file records, their chunk links and
// every entry belonging to the corpus. Returns false if no corpus matched.
func (s *SQLiteStore) DeleteCorpus(ctx context.Context, id string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, kberrors.StoreError("begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM chunk_refs WHERE corpus_file_id IN
			(SELECT id FROM corpus_files WHERE corpus_id = ?)`, id); err != nil {
		return false, kberrors.StoreError("delete corpus chunk refs", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM corpus_files WHERE corpus_id = ?`, id); err != nil {
		return false, kberrors.StoreError("delete corpus files", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM entries WHERE corpus_id = ?`, id); err != nil {
		return false, kberrors.StoreError("delete corpus entries", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM corpora WHERE id = ?`, id)
	if err != nil {
		return false, kberrors.StoreError("delete corpus", err)
	}
	affected, _ := res.RowsAffected()
	if err := tx.Commit(); err != nil {
		return false, kberrors.StoreError("commit", err)
	}
	return affected > 0, nil
}

func encodeTags(tags []string) string {
	if tags == nil {
		tags = []string{}
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func decodeTags(text string) []string {
	var tags []string
	if err := json.Unmarshal([]byte(text), &tags); err != nil {
		return nil
	}
	return tags
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func parseTime(text string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, text)
	if err != nil {
		return time.Time{}
	}
	return t
}
