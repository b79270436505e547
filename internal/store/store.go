// =============================================================================
// Oficina Recibos - Receipt Store
// =============================================================================
//
// The store keeps every receipt of the workshop in a single .xlsx workbook.
// The whole workbook is read into memory on Open and rewritten on every
// change; there is no incremental append.
//
// WRITE PATH:
//   1. The workbook is rebuilt in memory from the current receipts.
//   2. It is written to a temporary file next to the store.
//   3. The temporary file atomically replaces the store.
//   If any step fails, the in-memory change is undone and an IO error is
//   returned, so memory and disk never disagree.
//
// READ PATH:
//   A missing file is created empty. A file that exists but cannot be read
//   is reported as an IO error and left untouched.
//
// =============================================================================

package store

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ginjaninja78/oficina-recibos/internal/idgen"
	"github.com/ginjaninja78/oficina-recibos/internal/ledger"
	"github.com/ginjaninja78/oficina-recibos/internal/logging"
	"github.com/ginjaninja78/oficina-recibos/internal/types"
	"github.com/ginjaninja78/oficina-recibos/pkg/apperror"
	"github.com/natefinch/atomic"
	"github.com/xuri/excelize/v2"
	"go.uber.org/multierr"
)

// SheetName is the worksheet written by the store.
const SheetName = "Sheet1"

// Store is the in-memory copy of the receipts workbook.
type Store struct {
	path string
	log  logging.Logger

	// extra lists the unknown columns found on load, in file order.
	extra []string

	receipts []types.Receipt
}

// =============================================================================
// LOADING
// =============================================================================

// Open loads the workbook at path.
//
// PARAMETERS:
//   - path: The .xlsx file. Created with the header row if it does not exist.
//   - log: Receives warnings about legacy data. May be nil.
//
// RETURNS:
//   - The loaded store.
//   - An IO error if the file cannot be read or created.
func Open(path string, log logging.Logger) (*Store, error) {
	s := &Store{path: path, log: logging.OrNop(log)}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		s.log.Infof("receipt store %s not found, creating an empty one", path)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, apperror.NewIOError("store.open", fmt.Errorf("failed to create store directory: %w", err))
		}
		if err := s.save(); err != nil {
			return nil, err
		}
		return s, nil
	} else if err != nil {
		return nil, apperror.NewIOError("store.open", err)
	}

	if err := s.load(); err != nil {
		return nil, apperror.NewIOError("store.open", err)
	}
	s.log.Debugf("loaded %d receipts from %s", len(s.receipts), path)
	return s, nil
}

// load reads the first worksheet of the workbook into memory.
func (s *Store) load() (err error) {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to open store file: %w", err)
	}
	defer func() { err = multierr.Append(err, f.Close()) }()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return fmt.Errorf("store file has no sheets")
	}

	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
		if header[i] != "" && !isKnown(header[i]) {
			s.extra = append(s.extra, header[i])
		}
	}

	seen := make(map[string]bool)
	for i, row := range rows[1:] {
		if isRowEmpty(row) {
			continue
		}
		r := s.parseRow(header, row)
		if r.Number != "" && seen[r.Number] {
			s.log.Warnf("row %d repeats receipt number %s", i+2, r.Number)
		}
		seen[r.Number] = true
		s.receipts = append(s.receipts, r)
	}
	return nil
}

// parseRow maps one data row to a receipt.
func (s *Store) parseRow(header, row []string) types.Receipt {
	values := make(map[string]string, len(header))
	for i, h := range header {
		if h == "" || i >= len(row) {
			continue
		}
		values[h] = strings.TrimSpace(row[i])
	}

	var r types.Receipt
	for _, c := range columns {
		if c.set == nil {
			continue
		}
		v := values[c.name]
		if v == "" {
			if legacy, ok := legacyColumns[c.name]; ok {
				v = values[legacy]
			}
		}
		c.set(&r, v)
	}

	r.Number = idgen.Normalize(r.Number)
	r.Items = ledger.Decode(values[colItems], s.log)
	r.Total = ledger.Total(r.Items)

	for _, name := range s.extra {
		if v := values[name]; v != "" {
			if r.Extra == nil {
				r.Extra = make(map[string]string)
			}
			r.Extra[name] = v
		}
	}
	return r
}

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// =============================================================================
// QUERIES
// =============================================================================

// Path returns the workbook location.
func (s *Store) Path() string {
	return s.path
}

// All returns a copy of every receipt in file order.
func (s *Store) All() []types.Receipt {
	out := make([]types.Receipt, len(s.receipts))
	copy(out, s.receipts)
	return out
}

// Len returns the number of stored receipts.
func (s *Store) Len() int {
	return len(s.receipts)
}

// IDs returns the receipt numbers in file order.
func (s *Store) IDs() []string {
	ids := make([]string, 0, len(s.receipts))
	for _, r := range s.receipts {
		ids = append(ids, r.Number)
	}
	return ids
}

// NextID returns the number the next new receipt should use.
func (s *Store) NextID() string {
	return idgen.NextID(s.IDs())
}

// Find returns the receipt with the given number. A number typed without
// its leading zeros is padded first.
func (s *Store) Find(id string) (types.Receipt, bool) {
	if i := s.index(id); i >= 0 {
		return s.receipts[i], true
	}
	return types.Receipt{}, false
}

func (s *Store) index(id string) int {
	id = idgen.Normalize(id)
	if id == "" {
		return -1
	}
	for i, r := range s.receipts {
		if r.Number == id {
			return i
		}
	}
	return -1
}

// =============================================================================
// MUTATIONS
// =============================================================================

// Upsert replaces the receipt with the same number, keeping its position,
// or appends it, and rewrites the workbook.
func (s *Store) Upsert(r types.Receipt) error {
	r.Number = idgen.Normalize(r.Number)
	if r.Number == "" {
		return apperror.NewValidationError("store.upsert", "receipt number is required",
			apperror.FieldError{Field: "number", Message: "is required"})
	}
	r.Total = ledger.Total(r.Items)
	if err := checkCells(&r); err != nil {
		return err
	}

	previous, previousExtra := s.All(), s.extra
	s.addExtra(r.Extra)
	if i := s.index(r.Number); i >= 0 {
		s.receipts[i] = r
	} else {
		s.receipts = append(s.receipts, r)
	}

	if err := s.save(); err != nil {
		s.receipts, s.extra = previous, previousExtra
		return err
	}
	return nil
}

// addExtra registers unknown columns carried by a receipt so they are
// written too.
func (s *Store) addExtra(extra map[string]string) {
	var added []string
	for name := range extra {
		if !isKnown(name) && !contains(s.extra, name) {
			added = append(added, name)
		}
	}
	sort.Strings(added)
	if len(added) > 0 {
		s.extra = append(s.extra[:len(s.extra):len(s.extra)], added...)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Delete removes the receipt with the given number and rewrites the
// workbook. It reports false, without writing, when no receipt matches.
func (s *Store) Delete(id string) (bool, error) {
	i := s.index(id)
	if i < 0 {
		return false, nil
	}

	previous := s.All()
	s.receipts = append(s.receipts[:i:i], s.receipts[i+1:]...)

	if err := s.save(); err != nil {
		s.receipts = previous
		return false, err
	}
	return true, nil
}

// =============================================================================
// WRITING
// =============================================================================

// save rewrites the whole workbook through a temporary file.
func (s *Store) save() error {
	f := excelize.NewFile()
	buf, err := s.build(f)
	err = multierr.Append(err, f.Close())
	if err != nil {
		return apperror.NewIOError("store.save", fmt.Errorf("failed to build workbook: %w", err))
	}

	if err := atomic.WriteFile(s.path, buf); err != nil {
		return apperror.NewIOError("store.save", fmt.Errorf("failed to write %s: %w", s.path, err))
	}
	s.log.Debugf("wrote %d receipts to %s", len(s.receipts), s.path)
	return nil
}

// build fills f with the header and one row per receipt and serializes it.
func (s *Store) build(f *excelize.File) (*bytes.Buffer, error) {
	header := make([]interface{}, 0, len(columns)+len(s.extra))
	for _, c := range columns {
		header = append(header, c.name)
	}
	for _, name := range s.extra {
		header = append(header, name)
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i := range s.receipts {
		r := &s.receipts[i]
		row := make([]interface{}, 0, len(header))
		for _, c := range columns {
			row = append(row, c.get(r))
		}
		for _, name := range s.extra {
			row = append(row, r.Extra[name])
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write receipt %s: %w", r.Number, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf, nil
}
