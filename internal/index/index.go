// Package index maintains the in-memory inverted index over knowledge
// entries: a mapping from normalised term to per-entry occurrence counts.
//
// The index is incremental. Entries are inserted, replaced and removed by
// id, so callers pay for one document's tokens per mutation instead of a
// full rebuild per query. All methods are safe for concurrent use; readers
// always observe a consistent index, never a partially applied mutation.
package index

import (
	"sync"

	"github.com/opskb/opskb/internal/kb"
)

// Index is an inverted index keyed by entry id.
// Only terms that occur at least once are present, and every stored
// frequency is >= 1. For a fixed entry set the contents are identical
// regardless of the order mutations were applied in.
type Index struct {
	mu       sync.RWMutex
	postings map[string]map[string]int // term -> entry id -> frequency
	docTerms map[string][]string       // entry id -> distinct terms, for removal
	version  uint64
}

// New creates an empty index.
func New() *Index {
	return &Index{
		postings: make(map[string]map[string]int),
		docTerms: make(map[string][]string),
	}
}

// Upsert inserts or replaces the entry in the index.
func (ix *Index) Upsert(e *kb.Entry) {
	tokens := kb.Tokenize(kb.IndexText(e))

	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.removeLocked(e.ID)
	ix.addLocked(e.ID, tokens)
	ix.version++
}

// Remove deletes the entry's postings. Removing an unknown id is a no-op.
func (ix *Index) Remove(id string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if _, ok := ix.docTerms[id]; !ok {
		return
	}
	ix.removeLocked(id)
	ix.version++
}

// Reset replaces the whole index with postings built from entries.
func (ix *Index) Reset(entries []*kb.Entry) {
	tokenized := make(map[string][]string, len(entries))
	for _, e := range entries {
		tokenized[e.ID] = kb.Tokenize(kb.IndexText(e))
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.postings = make(map[string]map[string]int)
	ix.docTerms = make(map[string][]string, len(entries))
	for id, tokens := range tokenized {
		ix.addLocked(id, tokens)
	}
	ix.version++
}

// DocCount returns the number of indexed entries.
func (ix *Index) DocCount() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.docTerms)
}

// TermCount returns the number of distinct terms in the index.
func (ix *Index) TermCount() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.postings)
}

// Version returns a counter that increments on every mutation.
// Callers use it to invalidate derived caches.
func (ix *Index) Version() uint64 {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.version
}

// Lookup returns the total document count together with copies of the
// posting lists for the given terms, all read under a single lock so the
// result reflects one consistent state of the index. Terms with no
// postings are absent from the returned map.
func (ix *Index) Lookup(terms []string) (docCount int, postings map[string]map[string]int) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	postings = make(map[string]map[string]int, len(terms))
	for _, term := range terms {
		docs, ok := ix.postings[term]
		if !ok {
			continue
		}
		if _, seen := postings[term]; seen {
			continue
		}
		copied := make(map[string]int, len(docs))
		for id, freq := range docs {
			copied[id] = freq
		}
		postings[term] = copied
	}
	return len(ix.docTerms), postings
}

func (ix *Index) addLocked(id string, tokens []string) {
	if len(tokens) == 0 {
		// Still tracked as a document so DocCount matches the entry set.
		ix.docTerms[id] = nil
		return
	}
	seen := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		docs, ok := ix.postings[token]
		if !ok {
			docs = make(map[string]int)
			ix.postings[token] = docs
		}
		docs[id]++
		seen[token] = struct{}{}
	}
	terms := make([]string, 0, len(seen))
	for term := range seen {
		terms = append(terms, term)
	}
	ix.docTerms[id] = terms
}

func (ix *Index) removeLocked(id string) {
	terms, ok := ix.docTerms[id]
	if !ok {
		return
	}
	for _, term := range terms {
		docs := ix.postings[term]
		delete(docs, id)
		if len(docs) == 0 {
			delete(ix.postings, term)
		}
	}
	delete(ix.docTerms, id)
}
