// Package report writes the evaluation results as an append-only CSV file.
//
// Every append is flushed and synced before returning: a crash after N
// successful appends leaves the header plus exactly N valid rows. That is
// the run's only crash-recovery mechanism, so no buffering happens across
// calls.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/auralab/stemscore/internal/domain/types"
	"github.com/auralab/stemscore/pkg/metrics"
)

// Writer appends completed score records to a CSV report.
type Writer struct {
	path string
	file *os.File
	csv  *csv.Writer
}

// Header returns the fixed column order of the report.
func Header() []string {
	columns := []string{"song", "listener", "score"}
	for _, k := range types.ScoreKeys() {
		columns = append(columns, k.Column())
	}
	return columns
}

// Open creates (or truncates) the report at path and writes the header row.
func Open(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrOpenReport, path, err)
	}

	w := &Writer{path: path, file: f, csv: csv.NewWriter(f)}
	if err := w.writeRow(Header()); err != nil {
		_ = f.Close()
		return nil, err
	}
	return w, nil
}

// Append writes one completed record and flushes it to disk before
// returning. Incomplete records are refused.
func (w *Writer) Append(rec types.ScoreRecord) error {
	if !rec.Complete() {
		return fmt.Errorf("%w: pair %s/%s", ErrIncompleteRecord, rec.Song, rec.Listener)
	}

	row := []string{rec.Song, rec.Listener, formatScore(rec.Score)}
	for _, k := range types.ScoreKeys() {
		row = append(row, formatScore(rec.Channels[k]))
	}

	if err := w.writeRow(row); err != nil {
		return err
	}
	metrics.RecordRowWritten()
	return nil
}

// Close flushes and closes the underlying file.
func (w *Writer) Close() error {
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		_ = w.file.Close()
		return fmt.Errorf("%w: %s: %v", ErrAppendReport, w.path, err)
	}
	return w.file.Close()
}

// Path returns the report file path.
func (w *Writer) Path() string {
	return w.path
}

func (w *Writer) writeRow(row []string) error {
	if err := w.csv.Write(row); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrAppendReport, w.path, err)
	}
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrAppendReport, w.path, err)
	}
	// Durability for the row, not just kernel buffers.
	if err := w.file.Sync(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrAppendReport, w.path, err)
	}
	return nil
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
