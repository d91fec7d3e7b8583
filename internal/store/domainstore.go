package store

import (
	"fmt"
	"log/slog"

	"github.com/tbckr/domainintel/internal/apperr"
)

const domainSheet = "domains"

// DomainStore is the deduplicated per-domain summary sheet, keyed by fqdn.
type DomainStore struct {
	path   string
	logger *slog.Logger
}

// NewDomainStore returns a DomainStore backed by the workbook at path.
func NewDomainStore(path string, logger *slog.Logger) *DomainStore {
	return &DomainStore{path: path, logger: logger}
}

// Path returns the workbook location.
func (s *DomainStore) Path() string { return s.path }

// Merge appends row to the stored dataset and drops every earlier row with
// the same fqdn, so the new row replaces any previous one entirely. A
// missing or unreadable file is treated as empty. The whole file is rewritten.
func (s *DomainStore) Merge(row DomainRow) error {
	existing, err := loadOrEmpty(s.path, domainColumns)
	if err != nil {
		s.logger.Warn("existing domain store unreadable, starting empty", "path", s.path, "error", err)
	}

	rows := dedupKeepLast(append(existing, row.cells()), domainKey)
	if n := clampCells(rows); n > 0 {
		s.logger.Warn("values truncated to the spreadsheet cell limit", "path", s.path, "cells", n, "limit", maxCellChars)
	}
	if err := writeSheet(s.path, domainSheet, domainColumns, rows); err != nil {
		return fmt.Errorf("%w: writing %s: %w", apperr.ErrStore, s.path, err)
	}
	s.logger.Debug("domain merged", "path", s.path, "fqdn", row.FQDN, "rows", len(rows))
	return nil
}

// Rows reads back every stored summary row in file order.
func (s *DomainStore) Rows() ([]DomainRow, error) {
	raw, err := loadOrEmpty(s.path, domainColumns)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", apperr.ErrStore, s.path, err)
	}
	out := make([]DomainRow, len(raw))
	for i, c := range raw {
		out[i] = domainRowFromCells(c)
	}
	return out, nil
}

// dedupKeepLast removes rows whose key column repeats a later row's, keeping
// the survivors in their original relative order.
func dedupKeepLast(rows [][]string, key int) [][]string {
	seen := make(map[string]struct{}, len(rows))
	kept := make([][]string, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		k := rows[i][key]
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		kept = append(kept, rows[i])
	}
	for i, j := 0, len(kept)-1; i < j; i, j = i+1, j-1 {
		kept[i], kept[j] = kept[j], kept[i]
	}
	return kept
}
