package eventlog

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/wsim/internal/model"
)

func TestFlushWritesCSVAndEmptiesBuffer(t *testing.T) {
	dir := t.TempDir()
	b := New()
	b.Append(
		model.EventRow{Timestamp: "00:01", Task: model.TaskSorting, Metric: "sort_total", Count: 1},
		model.EventRow{Timestamp: "00:01", Task: model.TaskSorting, Metric: "sort_error_rate", Count: 12.5},
	)

	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.Local)
	path, err := b.Flush(dir, now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "session_20260304_050607.csv"), path)
	assert.Zero(t, b.Len())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, Header, records[0])
	assert.Equal(t, []string{"00:01", "sorting", "sort_total", "1"}, records[1])
	assert.Equal(t, []string{"00:01", "sorting", "sort_error_rate", "12.5"}, records[2])
}

func TestFlushEmptyWritesNothing(t *testing.T) {
	dir := t.TempDir()
	path, err := New().Flush(dir, time.Now())
	require.NoError(t, err)
	assert.Empty(t, path)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFlushUnwritableDirReturnsError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	b := New()
	b.Append(model.EventRow{Timestamp: "00:00", Task: model.TaskPackaging, Metric: "pack_total", Count: 1})
	path, err := b.Flush(filepath.Join(blocker, "logs"), time.Now())
	assert.Error(t, err)
	assert.Empty(t, path)
}

func TestRowsAreNotMutatedByLaterAppends(t *testing.T) {
	b := New()
	b.Append(model.EventRow{Timestamp: "00:00", Task: model.TaskInspection, Metric: "insp_total", Count: 1})
	snapshot := b.Rows()
	b.Append(model.EventRow{Timestamp: "00:01", Task: model.TaskInspection, Metric: "insp_total", Count: 2})
	require.Len(t, snapshot, 1)
	assert.Equal(t, 1.0, snapshot[0].Count)
	assert.Equal(t, 2, b.Len())
}

func TestConcurrentAppendAndDrain(t *testing.T) {
	b := New()
	var wg sync.WaitGroup
	var mu sync.Mutex
	drained := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				b.Append(model.EventRow{Task: model.TaskSorting, Metric: "sort_total", Count: float64(j)})
				if j%25 == 0 {
					n := len(b.Drain())
					mu.Lock()
					drained += n
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 800, drained+b.Len())
}
