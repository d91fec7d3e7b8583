package store

import (
	"fmt"
	"log/slog"

	"github.com/tbckr/domainintel/internal/apperr"
)

const recordSheet = "records"

// RecordStore is the append-only DNS record observation log. Rows have no
// key; every run adds its full set of observations.
type RecordStore struct {
	path   string
	logger *slog.Logger
}

// NewRecordStore returns a RecordStore backed by the workbook at path.
func NewRecordStore(path string, logger *slog.Logger) *RecordStore {
	return &RecordStore{path: path, logger: logger}
}

// Path returns the workbook location.
func (s *RecordStore) Path() string { return s.path }

// Append adds rows verbatim after the existing observations and rewrites the
// file. A missing or unreadable file is treated as an empty log.
func (s *RecordStore) Append(rows []RecordRow) error {
	existing, err := loadOrEmpty(s.path, recordColumns)
	if err != nil {
		s.logger.Warn("existing record store unreadable, starting empty", "path", s.path, "error", err)
	}

	all := existing
	for _, r := range rows {
		all = append(all, r.cells())
	}
	if n := clampCells(all); n > 0 {
		s.logger.Warn("values truncated to the spreadsheet cell limit", "path", s.path, "cells", n, "limit", maxCellChars)
	}
	if err := writeSheet(s.path, recordSheet, recordColumns, all); err != nil {
		return fmt.Errorf("%w: writing %s: %w", apperr.ErrStore, s.path, err)
	}
	s.logger.Debug("records appended", "path", s.path, "added", len(rows), "rows", len(all))
	return nil
}

// Rows reads back every stored observation in file order.
func (s *RecordStore) Rows() ([]RecordRow, error) {
	raw, err := loadOrEmpty(s.path, recordColumns)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", apperr.ErrStore, s.path, err)
	}
	out := make([]RecordRow, len(raw))
	for i, c := range raw {
		out[i] = recordRowFromCells(c)
	}
	return out, nil
}
