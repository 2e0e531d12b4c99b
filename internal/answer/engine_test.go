package answer

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opskb/opskb/internal/store"
)

func newFixture(t *testing.T) (*Engine, *store.SQLiteStore) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "kb.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	e, err := NewEngine(s)
	require.NoError(t, err)
	return e, s
}

func addEntry(t *testing.T, s *store.SQLiteStore, title, question, answer string, tags ...string) string {
	t.Helper()
	id, err := s.CreateEntry(context.Background(), title, question, answer, tags, "")
	require.NoError(t, err)
	return id
}

func TestAnswer_EmptyEntrySetReturnsEmptyResult(t *testing.T) {
	e, _ := newFixture(t)

	result, err := e.Answer(context.Background(), "anything at all", 5, "")
	require.NoError(t, err)
	assert.Equal(t, MatchRanked, result.Kind)
	assert.Empty(t, result.Matches)
}

func TestAnswer_FallbackWhenNoTokenMatches(t *testing.T) {
	e, s := newFixture(t)
	first := addEntry(t, s, "Safety basics", "How do I start the machine?", "Follow the manual step by step.", "safety")
	second := addEntry(t, s, "Maintenance hint", "How to do daily maintenance?", "Clean and inspect key parts regularly.", "maintenance")

	result, err := e.Answer(context.Background(), "completely unrelated question", 3, "")
	require.NoError(t, err)

	assert.Equal(t, MatchFallback, result.Kind)
	require.Len(t, result.Matches, 2)
	// Listing order: most recent first.
	assert.Equal(t, second, result.Matches[0].Entry.ID)
	assert.Equal(t, first, result.Matches[1].Entry.ID)
	for _, m := range result.Matches {
		assert.Zero(t, m.Score)
	}
}

func TestAnswer_EmptyQueryFallbackRespectsLimit(t *testing.T) {
	e, s := newFixture(t)
	for i := 0; i < 5; i++ {
		addEntry(t, s, "t", "question text", "answer text")
	}

	result, err := e.Answer(context.Background(), "", 2, "")
	require.NoError(t, err)
	assert.Equal(t, MatchFallback, result.Kind)
	assert.Len(t, result.Matches, 2)
}

func TestAnswer_RanksHigherTermFrequencyFirst(t *testing.T) {
	e, s := newFixture(t)
	addEntry(t, s, "冷却液安全规范", "如何处理冷却液泄漏？", "立刻停机并检查冷却液状态。", "安全", "冷却液")
	addEntry(t, s, "冷却液维护周期", "冷却液多久更换一次？", "每 200 小时检查一次冷却液状态。", "维护", "冷却液")
	addEntry(t, s, "设备润滑计划", "润滑剂需要多久补充？", "按照计划每月补充润滑剂。", "维护")

	result, err := e.Answer(context.Background(), "冷却液 安全", 3, "")
	require.NoError(t, err)

	assert.Equal(t, MatchRanked, result.Kind)
	require.GreaterOrEqual(t, len(result.Matches), 2)
	assert.Contains(t, result.Matches[0].Entry.Tags, "安全")
	assert.Greater(t, result.Matches[0].Score, result.Matches[1].Score)
	for _, m := range result.Matches {
		assert.Positive(t, m.Score)
	}
}

func TestAnswer_ScoresSortedNonIncreasingAndLimited(t *testing.T) {
	e, s := newFixture(t)
	addEntry(t, s, "a", "pump pump pump", "pump")
	addEntry(t, s, "b", "pump valve", "pump")
	addEntry(t, s, "c", "pump", "seal")
	addEntry(t, s, "d", "valve", "seal")

	result, err := e.Answer(context.Background(), "pump", 2, "")
	require.NoError(t, err)

	assert.Equal(t, MatchRanked, result.Kind)
	require.Len(t, result.Matches, 2)
	assert.GreaterOrEqual(t, result.Matches[0].Score, result.Matches[1].Score)
	assert.Equal(t, "a", result.Matches[0].Entry.Title)
}

func TestAnswer_TieBreakIsMostRecentFirst(t *testing.T) {
	e, s := newFixture(t)
	older := addEntry(t, s, "older", "pump check", "routine")
	newer := addEntry(t, s, "newer", "pump check", "routine")

	result, err := e.Answer(context.Background(), "pump", 5, "")
	require.NoError(t, err)

	require.Len(t, result.Matches, 2)
	assert.Equal(t, result.Matches[0].Score, result.Matches[1].Score)
	assert.Equal(t, newer, result.Matches[0].Entry.ID)
	assert.Equal(t, older, result.Matches[1].Entry.ID)
}

func TestAnswer_CorpusFilterRestrictsCandidates(t *testing.T) {
	e, s := newFixture(t)
	ctx := context.Background()

	corpusID, err := s.CreateCorpus(ctx, "manuals", "", "")
	require.NoError(t, err)
	inCorpus, err := s.CreateEntry(ctx, "a", "pump overhaul", "steps", nil, corpusID)
	require.NoError(t, err)
	_, err = s.CreateEntry(ctx, "b", "pump overhaul", "steps", nil, "")
	require.NoError(t, err)

	result, err := e.Answer(ctx, "pump", 10, corpusID)
	require.NoError(t, err)
	require.Len(t, result.Matches, 1)
	assert.Equal(t, inCorpus, result.Matches[0].Entry.ID)
}

func TestEngine_HooksKeepSnapshotsFresh(t *testing.T) {
	e, s := newFixture(t)
	ctx := context.Background()
	addEntry(t, s, "a", "valve seat", "grind")

	// Prime the snapshot.
	result, err := e.Answer(ctx, "turbine", 3, "")
	require.NoError(t, err)
	assert.Equal(t, MatchFallback, result.Kind)

	// A new entry arrives through the hook, without Invalidate.
	id, err := s.CreateEntry(ctx, "b", "turbine blade", "balance", nil, "")
	require.NoError(t, err)
	entries, err := s.ListEntries(ctx, "")
	require.NoError(t, err)
	e.EntryCreated(entries[0])

	result, err = e.Answer(ctx, "turbine", 3, "")
	require.NoError(t, err)
	assert.Equal(t, MatchRanked, result.Kind)
	require.Len(t, result.Matches, 1)
	assert.Equal(t, id, result.Matches[0].Entry.ID)

	// And is dropped again through the removal hook.
	e.EntriesRemoved([]string{id})
	result, err = e.Answer(ctx, "turbine", 3, "")
	require.NoError(t, err)
	assert.Equal(t, MatchFallback, result.Kind)
}

func TestEngine_InvalidateForcesRebuildFromStore(t *testing.T) {
	e, s := newFixture(t)
	ctx := context.Background()

	result, err := e.Answer(ctx, "pump", 3, "")
	require.NoError(t, err)
	assert.Empty(t, result.Matches)

	// Entry added behind the engine's back.
	addEntry(t, s, "a", "pump repair", "replace seal")
	e.Invalidate()

	result, err = e.Answer(ctx, "pump", 3, "")
	require.NoError(t, err)
	assert.Equal(t, MatchRanked, result.Kind)
	require.Len(t, result.Matches, 1)
}

func TestMatchKind_String(t *testing.T) {
	assert.Equal(t, "ranked", MatchRanked.String())
	assert.Equal(t, "fallback", MatchFallback.String())
}
