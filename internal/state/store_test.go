package state

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/araroot/kotomine/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open("  ")
	require.Error(t, err)
}

func TestStore_SetGetRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", map[string]int{"a": 1}))

	var got map[string]int
	found, err := s.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 1, got["a"])

	found, err = s.Get(ctx, "missing", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_SetReplaces(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", "one"))
	require.NoError(t, s.Set(ctx, "k", "two"))

	var got string
	_, err := s.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.Equal(t, "two", got)
}

func TestEnsureIdentity_StableAcrossCalls(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first, err := s.EnsureIdentity(ctx)
	require.NoError(t, err)
	assert.Contains(t, first, "user_")

	second, err := s.EnsureIdentity(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second, "identity must persist once created")
}

func TestCurrentShow_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	show, err := s.CurrentShow(ctx)
	require.NoError(t, err)
	assert.Nil(t, show, "no show set yet")

	require.NoError(t, s.SetCurrentShow(ctx, model.ShowRef{Name: "ゆるキャン", Season: 2, Episode: 5}))

	show, err = s.CurrentShow(ctx)
	require.NoError(t, err)
	require.NotNil(t, show)
	assert.Equal(t, "ゆるキャン", show.Name)
	assert.Equal(t, 2, show.Season)
}

func TestPutSavedWord_AccumulatesBackup(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutSavedWord(ctx, "w1", model.SavedWord{Word: "面倒", Difficulty: "new"}))
	require.NoError(t, s.PutSavedWord(ctx, "w2", model.SavedWord{Word: "brilliant", Difficulty: "new"}))

	words, err := s.SavedWords(ctx)
	require.NoError(t, err)
	assert.Len(t, words, 2)
	assert.Equal(t, "面倒", words["w1"].Word)
}

func TestCandidates_PersistAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.SaveCandidates(ctx, []model.SentenceCandidate{
		{ID: "abc", Text: "テストだよ", LastSeenAt: 1000, Occurrences: 2, Status: model.StatusNew},
	}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	candidates, err := s.LoadCandidates(ctx)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "abc", candidates[0].ID)
	assert.Equal(t, 2, candidates[0].Occurrences)
}
