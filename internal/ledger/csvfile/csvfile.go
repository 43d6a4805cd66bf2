// Package csvfile stores the ledger as a comma-separated file with a
// fixed header row. The file is created on the first successful write
// and read as empty while it does not exist.
//
// There is no locking. Two processes appending at the same time may
// interleave rows, and two first writers may both emit the header.
package csvfile

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"unicode/utf8"

	"gastos/internal/core"
	"gastos/internal/ledger"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Store is a CSV ledger rooted at a single file path.
type Store struct {
	path string
}

// Ensure interface conformance
var _ ledger.Ledger = (*Store)(nil)

func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the file backing the store.
func (s *Store) Path() string { return s.path }

// Append writes one row, preceded by the header when the file is new or empty.
func (s *Store) Append(ctx context.Context, e core.Expense) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", core.WriteFault(err)
	}

	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", core.WriteFault(err)
		}
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return "", core.WriteFault(err)
	}

	if err := writeRow(f, e); err != nil {
		f.Close()
		return "", core.WriteFault(err)
	}
	if err := f.Close(); err != nil {
		return "", core.WriteFault(err)
	}

	slog.DebugContext(ctx, "Expense appended to CSV ledger", "path", s.path, "fecha", e.Date)
	return "csv:" + s.path, nil
}

func writeRow(f *os.File, e core.Expense) error {
	info, err := f.Stat()
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(core.Header()); err != nil {
			return err
		}
	}
	if err := w.Write(e.Row()); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// ListExpenses reads every data row in file order. Columns are matched by
// header name; an amount that does not parse is kept as text.
func (s *Store) ListExpenses(ctx context.Context) ([]core.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, core.ReadFault(err)
	}

	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []core.Entry{}, nil
	}
	if err != nil {
		return nil, core.ReadFault(err)
	}
	defer f.Close()

	entries, err := decode(f)
	if err != nil {
		return nil, core.ReadFault(err)
	}
	return entries, nil
}

func decode(r io.Reader) ([]core.Entry, error) {
	br := bufio.NewReader(r)
	if prefix, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(prefix, utf8BOM) {
		if _, err := br.Discard(len(utf8BOM)); err != nil {
			return nil, err
		}
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	// Stray quotes in old hand-edited rows are kept as literal text.
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return []core.Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if err := checkUTF8(cr, header); err != nil {
		return nil, err
	}

	entries := []core.Entry{}
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if err := checkUTF8(cr, record); err != nil {
			return nil, err
		}

		cols := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(record) {
				cols[name] = record[i]
			}
		}
		entries = append(entries, core.EntryFromColumns(cols))
	}
	return entries, nil
}

func checkUTF8(cr *csv.Reader, record []string) error {
	for i, field := range record {
		if !utf8.ValidString(field) {
			line, col := cr.FieldPos(i)
			return fmt.Errorf("line %d, column %d: invalid UTF-8", line, col)
		}
	}
	return nil
}
