package duckdb

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinytelemetry/respfilter/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore("")
	require.NoError(t, err, "NewStore(\"\")")
	t.Cleanup(func() { store.Close() })
	return store
}

func testRun(id string, started time.Time) model.RunSummary {
	return model.RunSummary{
		ID:           id,
		Source:       "access.txt",
		Output:       "gifs_access.txt",
		Extension:    ".gif",
		ResponseCode: "200",
		Lines:        13,
		Matched:      9,
		Distinct:     6,
		Deduped:      true,
		StartedAt:    started,
		FinishedAt:   started.Add(250 * time.Millisecond),
	}
}

func TestNewStoreOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "runs.duckdb")
	store, err := NewStore(path, 5*time.Second)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, path, store.DBPath())
	assert.Equal(t, 5*time.Second, store.QueryTimeout)
	assert.FileExists(t, path)
}

func TestInsertAndListRuns(t *testing.T) {
	store := newTestStore(t)
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.InsertRun(testRun("run-a", base)))
	require.NoError(t, store.InsertRun(testRun("run-b", base.Add(time.Minute))))

	runs, err := store.RecentRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-b", runs[0].ID)
	assert.Equal(t, "run-a", runs[1].ID)
	assert.Equal(t, 9, runs[0].Matched)
	assert.Equal(t, 6, runs[0].Distinct)
	assert.True(t, runs[0].Deduped)
	assert.Equal(t, 250*time.Millisecond, runs[0].Elapsed)

	runs, err = store.RecentRuns(1)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestInsertRunDuplicateID(t *testing.T) {
	store := newTestStore(t)
	run := testRun("same", time.Now())

	require.NoError(t, store.InsertRun(run))
	assert.Error(t, store.InsertRun(run))
}

func TestTopSegments(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.InsertMatches("r1", []model.Match{
		{LineNo: 4, Segment: "livevideo.GIF", Code: "200"},
		{LineNo: 5, Segment: "livevideo.GIF", Code: "200"},
		{LineNo: 8, Segment: "NASA-logosmall.gif", Code: "200"},
	}))
	require.NoError(t, store.InsertMatches("r2", []model.Match{
		{LineNo: 1, Segment: "NASA-logosmall.gif", Code: "200"},
		{LineNo: 2, Segment: "NASA-logosmall.gif", Code: "200"},
		{LineNo: 3, Segment: "count.gif", Code: "200"},
	}))
	require.NoError(t, store.InsertMatches("r3", nil))

	top, err := store.TopSegments(2)
	require.NoError(t, err)
	assert.Equal(t, []model.SegmentCount{
		{Segment: "NASA-logosmall.gif", Count: 3},
		{Segment: "livevideo.GIF", Count: 2},
	}, top)
}

type fakeWriter struct {
	batches [][]model.Match
	failAt  int
}

func (f *fakeWriter) InsertRun(model.RunSummary) error { return nil }

func (f *fakeWriter) InsertMatches(_ string, matches []model.Match) error {
	if f.failAt > 0 && len(f.batches)+1 == f.failAt {
		return errors.New("boom")
	}
	f.batches = append(f.batches, append([]model.Match(nil), matches...))
	return nil
}

func TestMatchBufferBatches(t *testing.T) {
	w := &fakeWriter{}
	buf := NewMatchBuffer(w, "run", MatchBufferConfig{BatchSize: 2})

	for i := 1; i <= 5; i++ {
		buf.Add(model.Match{LineNo: i, Segment: "a.gif", Code: "200"})
	}
	assert.Len(t, w.batches, 2, "two full batches flushed before Flush")

	require.NoError(t, buf.Flush())
	require.Len(t, w.batches, 3)
	assert.Len(t, w.batches[2], 1)
	assert.Equal(t, 5, buf.Written())
}

func TestMatchBufferStopsAfterError(t *testing.T) {
	w := &fakeWriter{failAt: 1}
	buf := NewMatchBuffer(w, "run", MatchBufferConfig{BatchSize: 1})

	buf.Add(model.Match{LineNo: 1, Segment: "a.gif"})
	buf.Add(model.Match{LineNo: 2, Segment: "b.gif"})

	assert.Error(t, buf.Flush())
	assert.Empty(t, w.batches)
	assert.Zero(t, buf.Written())
}

func TestMatchBufferWithStore(t *testing.T) {
	store := newTestStore(t)
	buf := NewMatchBuffer(store, "run-x")

	buf.Add(model.Match{LineNo: 1, Segment: "count.gif", Code: "200"})
	buf.Add(model.Match{LineNo: 2, Segment: "count.gif", Code: "200"})
	require.NoError(t, buf.Flush())

	top, err := store.TopSegments(5)
	require.NoError(t, err)
	assert.Equal(t, []model.SegmentCount{{Segment: "count.gif", Count: 2}}, top)
}
