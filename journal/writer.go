package journal

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/pkg/errors"
)

// Writer is an append-only, single-writer journal file. It is the sole
// persistent truth for replay: if Append returns nil, the record is
// durable; if the process crashes before Append returns, the caller must
// treat the event as not-yet-observed (spec.md §4.2).
//
// Writer serializes concurrent Append calls with a mutex — the journal
// file is append-exclusive per spec.md §5 ("single writer per path"),
// and a single mutex is the simplest construct that satisfies it.
type Writer struct {
	mu   sync.Mutex
	file *os.File
}

// NewWriter opens path for append, creating it if necessary.
func NewWriter(path string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "journal: open %s", path)
	}
	return &Writer{file: f}, nil
}

// Append marshals entry to a single JSON line and writes it atomically:
// one Write syscall for the complete line, followed by Sync, so a torn
// record can only ever be the final, incomplete line of the file (never
// a truncated record followed by more valid records).
func (w *Writer) Append(entry Record) error {
	line, err := json.Marshal(entry)
	if err != nil {
		return errors.Wrap(err, "journal: marshal record")
	}
	line = append(line, '\n')

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.file.Write(line); err != nil {
		return errors.Wrap(err, "journal: write record")
	}
	if err := w.file.Sync(); err != nil {
		return errors.Wrap(err, "journal: sync record")
	}
	return nil
}

// Close flushes and closes the underlying file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}
