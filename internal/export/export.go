// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export writes a scrape session to disk as a spreadsheet, a
// structured document, or a SQLite database. Every format uses the column
// order of types.Columns and the filename convention of Filename.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdiddy/scholar-scraper/pkg/types"
)

const filenamePrefix = "scholar_articles"

// Ext returns the file extension for format, including the dot.
func Ext(format types.ExportFormat) (string, error) {
	switch format {
	case "", types.FormatXLSX:
		return ".xlsx", nil
	case types.FormatJSON:
		return ".json", nil
	case types.FormatYAML:
		return ".yaml", nil
	case types.FormatSQLite:
		return ".db", nil
	default:
		return "", fmt.Errorf("unknown export format %q: use xlsx, json, yaml, or sqlite", format)
	}
}

// Filename returns scholar_articles_{yearStart}_{yearEnd} with the
// extension for format.
func Filename(yearStart, yearEnd int, format types.ExportFormat) (string, error) {
	ext, err := Ext(format)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s_%d_%d%s", filenamePrefix, yearStart, yearEnd, ext), nil
}

// Path joins outDir and the session's filename. An empty outDir means the
// working directory.
func Path(outDir string, session types.Session, format types.ExportFormat) (string, error) {
	name, err := Filename(session.YearStart, session.YearEnd, format)
	if err != nil {
		return "", err
	}
	if outDir == "" {
		return name, nil
	}
	return filepath.Join(outDir, name), nil
}

// Write exports session according to cfg and returns the written path.
// An existing file of the same name is replaced. Cancellation of ctx does
// not abort the export: a cancelled run still saves what it gathered.
func Write(ctx context.Context, session types.Session, cfg types.ExportConfig) (string, error) {
	ctx = context.WithoutCancel(ctx)
	path, err := Path(cfg.OutDir, session, cfg.Format)
	if err != nil {
		return "", err
	}
	if cfg.OutDir != "" {
		if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
			return "", fmt.Errorf("creating output directory: %w", err)
		}
	}

	switch cfg.Format {
	case "", types.FormatXLSX:
		err = WriteXLSX(path, session.Records)
	case types.FormatJSON:
		err = WriteJSON(path, session)
	case types.FormatYAML:
		err = WriteYAML(path, session)
	case types.FormatSQLite:
		err = WriteSQLite(ctx, path, session)
	}
	if err != nil {
		return "", fmt.Errorf("exporting %s: %w", path, err)
	}
	return path, nil
}
