// Package answer ranks knowledge entries against free-text questions using
// linear TF-IDF over the in-memory inverted index.
//
// The engine owns one index snapshot per corpus filter, built lazily from
// the store and maintained incrementally through the EntryCreated and
// EntriesRemoved hooks. Readers always see either the pre- or post-mutation
// index, never a partial one.
package answer

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/opskb/opskb/internal/index"
	"github.com/opskb/opskb/internal/kb"
	"github.com/opskb/opskb/internal/store"
)

// DefaultLimit is the number of matches returned when the caller passes a
// non-positive limit.
const DefaultLimit = 3

// resultCacheSize bounds the query result cache. Entries are keyed by index
// version, so stale results age out instead of being served.
const resultCacheSize = 256

// MatchKind tags how a result set was produced.
type MatchKind int

const (
	// MatchRanked means matches were scored and ordered by TF-IDF.
	// Every ranked match has score > 0.
	MatchRanked MatchKind = iota
	// MatchFallback means no entry scored above zero (or the query
	// tokenized to nothing); the matches are the filtered entry set in
	// listing order with score 0, so callers still see candidate material.
	MatchFallback
)

// String returns a human-readable representation of the kind.
func (k MatchKind) String() string {
	if k == MatchFallback {
		return "fallback"
	}
	return "ranked"
}

// Match pairs an entry with its relevance score.
type Match struct {
	Entry *kb.Entry
	Score float64
}

// Result is a ranked (or fallback) answer set.
type Result struct {
	Kind    MatchKind
	Matches []Match
}

// Engine answers questions over the entries of a Store.
type Engine struct {
	store store.Store

	mu        sync.RWMutex
	snapshots map[string]*snapshot // keyed by corpus filter ("" = all)

	group singleflight.Group
	cache *lru.Cache[string, Result]
}

// snapshot is one corpus filter's view: the listing-ordered entry set plus
// its inverted index.
type snapshot struct {
	mu      sync.RWMutex
	entries []*kb.Entry // most-recent-first, the tie-break order
	idx     *index.Index
}

// NewEngine creates an engine over the given store.
func NewEngine(s store.Store) (*Engine, error) {
	cache, err := lru.New[string, Result](resultCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create result cache: %w", err)
	}
	return &Engine{
		store:     s,
		snapshots: make(map[string]*snapshot),
		cache:     cache,
	}, nil
}

// Answer returns at most limit entries ranked by TF-IDF relevance to the
// query, restricted to corpusID when non-empty. Ties rank newer entries
// first (the store's listing order). When nothing scores above zero the
// result carries MatchFallback and up to limit entries at score 0; an empty
// entry set yields an empty ranked result. A non-positive limit uses
// DefaultLimit.
func (e *Engine) Answer(ctx context.Context, query string, limit int, corpusID string) (Result, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	snap, err := e.snapshot(ctx, corpusID)
	if err != nil {
		return Result{}, err
	}

	cacheKey := fmt.Sprintf("%d|%s|%d|%s", snap.idx.Version(), corpusID, limit, query)
	if cached, ok := e.cache.Get(cacheKey); ok {
		return cached, nil
	}

	result := score(snap, query, limit)
	e.cache.Add(cacheKey, result)
	return result, nil
}

// score runs the TF-IDF accumulation over one snapshot.
func score(snap *snapshot, query string, limit int) Result {
	snap.mu.RLock()
	entries := snap.entries
	snap.mu.RUnlock()

	if len(entries) == 0 {
		return Result{Kind: MatchRanked}
	}

	tokens := kb.Tokenize(query)
	docCount, postings := snap.idx.Lookup(tokens)

	scores := make(map[string]float64)
	for _, docs := range postings {
		// Smoothed IDF; always positive, so every accumulated score is > 0.
		idf := math.Log(float64(1+docCount)/float64(1+len(docs))) + 1
		for id, freq := range docs {
			scores[id] += idf * float64(freq)
		}
	}

	matches := make([]Match, 0, len(scores))
	for _, entry := range entries {
		if s, ok := scores[entry.ID]; ok && s > 0 {
			matches = append(matches, Match{Entry: entry, Score: s})
		}
	}

	if len(matches) == 0 {
		// Zero-score fallback: candidate material in listing order.
		n := limit
		if n > len(entries) {
			n = len(entries)
		}
		fallback := make([]Match, 0, n)
		for _, entry := range entries[:n] {
			fallback = append(fallback, Match{Entry: entry, Score: 0})
		}
		return Result{Kind: MatchFallback, Matches: fallback}
	}

	// Stable sort keeps the listing order (most-recent-first) for ties.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return Result{Kind: MatchRanked, Matches: matches}
}

// snapshot returns the view for the given filter, building it from the
// store on first use. Concurrent builds for the same filter are collapsed.
func (e *Engine) snapshot(ctx context.Context, corpusID string) (*snapshot, error) {
	e.mu.RLock()
	snap, ok := e.snapshots[corpusID]
	e.mu.RUnlock()
	if ok {
		return snap, nil
	}

	v, err, _ := e.group.Do(corpusID, func() (any, error) {
		e.mu.RLock()
		existing, ok := e.snapshots[corpusID]
		e.mu.RUnlock()
		if ok {
			return existing, nil
		}

		entries, err := e.store.ListEntries(ctx, corpusID)
		if err != nil {
			return nil, err
		}
		idx := index.New()
		idx.Reset(entries)
		built := &snapshot{entries: entries, idx: idx}

		e.mu.Lock()
		e.snapshots[corpusID] = built
		e.mu.Unlock()
		return built, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*snapshot), nil
}

// EntryCreated folds a newly stored entry into the live snapshots.
// Snapshots for other corpora are untouched.
func (e *Engine) EntryCreated(entry *kb.Entry) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for filter, snap := range e.snapshots {
		if filter != "" && filter != entry.CorpusID {
			continue
		}
		snap.mu.Lock()
		// Newest first, matching the store's listing order.
		snap.entries = append([]*kb.Entry{entry}, snap.entries...)
		snap.mu.Unlock()
		snap.idx.Upsert(entry)
	}
}

// EntriesRemoved drops the given entry ids from the live snapshots.
func (e *Engine) EntriesRemoved(ids []string) {
	if len(ids) == 0 {
		return
	}
	removed := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		removed[id] = struct{}{}
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, snap := range e.snapshots {
		snap.mu.Lock()
		// Copy rather than compact in place: readers hold the old slice
		// outside the lock.
		kept := make([]*kb.Entry, 0, len(snap.entries))
		for _, entry := range snap.entries {
			if _, gone := removed[entry.ID]; !gone {
				kept = append(kept, entry)
			}
		}
		snap.entries = kept
		snap.mu.Unlock()
		for id := range removed {
			snap.idx.Remove(id)
		}
	}
}

// Invalidate discards every snapshot so the next query rebuilds from the
// store. Used after bulk mutations that bypass the hooks.
func (e *Engine) Invalidate() {
	e.mu.Lock()
	e.snapshots = make(map[string]*snapshot)
	e.mu.Unlock()
	e.cache.Purge()
}
