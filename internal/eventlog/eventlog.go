// Package eventlog buffers session metric rows and flushes them to CSV.
package eventlog

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/verte-zerg/wsim/internal/model"
)

// Header is the first CSV line.
var Header = []string{"timestamp", "task", "metric", "count"}

// Buffer is an append-only, concurrency-safe row buffer.
type Buffer struct {
	mu   sync.Mutex
	rows []model.EventRow
}

// New returns an empty buffer.
func New() *Buffer {
	return &Buffer{}
}

// Append adds rows to the end of the buffer.
func (b *Buffer) Append(rows ...model.EventRow) {
	if len(rows) == 0 {
		return
	}
	b.mu.Lock()
	b.rows = append(b.rows, rows...)
	b.mu.Unlock()
}

// Len returns the number of buffered rows.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.rows)
}

// Rows returns a copy of the buffered rows.
func (b *Buffer) Rows() []model.EventRow {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.EventRow(nil), b.rows...)
}

// Drain removes and returns every buffered row.
func (b *Buffer) Drain() []model.EventRow {
	b.mu.Lock()
	defer b.mu.Unlock()
	rows := b.rows
	b.rows = nil
	return rows
}

// FileName returns the CSV file name for a flush at the given time.
func FileName(now time.Time) string {
	return "session_" + now.Format("20060102_150405") + ".csv"
}

// Flush drains the buffer into a new CSV file under dir. It returns the file
// path, or "" when the buffer was empty. Rows are lost if the write fails.
func (b *Buffer) Flush(dir string, now time.Time) (string, error) {
	rows := b.Drain()
	if len(rows) == 0 {
		return "", nil
	}
	path := filepath.Join(dir, FileName(now))
	if err := writeCSV(path, rows); err != nil {
		return "", err
	}
	return path, nil
}

func writeCSV(path string, rows []model.EventRow) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create log dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(filepath.Dir(path), "session-*.csv.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp log: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	w := csv.NewWriter(tmpFile)
	if err := w.Write(Header); err != nil {
		return fmt.Errorf("failed to write log header: %w", err)
	}
	for _, row := range rows {
		record := []string{
			row.Timestamp,
			string(row.Task),
			row.Metric,
			strconv.FormatFloat(row.Count, 'f', -1, 64),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write log row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush log: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close log: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write log: %w", err)
	}
	return nil
}
