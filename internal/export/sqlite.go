// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/scholar-scraper/pkg/types"
)

var schema = []string{
	`CREATE TABLE articles (
		position INTEGER PRIMARY KEY,
		title TEXT NOT NULL,
		authors_and_source TEXT,
		year TEXT,
		journal_or_source TEXT,
		citations TEXT,
		link TEXT,
		pdf_link TEXT,
		keyword TEXT
	)`,
	`CREATE INDEX idx_articles_keyword ON articles(keyword)`,
	`CREATE TABLE outcomes (
		position INTEGER PRIMARY KEY,
		query TEXT NOT NULL,
		pages_fetched INTEGER,
		records INTEGER,
		skipped_blocks INTEGER,
		stop TEXT,
		error TEXT
	)`,
	`CREATE TABLE session (
		year_start INTEGER,
		year_end INTEGER
	)`,
}

// WriteSQLite writes the session into a fresh database at path. The
// articles table keeps session order in its position column. The database
// is built beside path and renamed over it only after a successful commit,
// so a failed write leaves any previous export in place.
func WriteSQLite(ctx context.Context, path string, session types.Session) error {
	tmp := path + ".tmp"
	if err := os.Remove(tmp); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing stale database: %w", err)
	}
	if err := writeSQLite(ctx, tmp, session); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing database: %w", err)
	}
	return nil
}

func writeSQLite(ctx context.Context, path string, session types.Session) error {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO session (year_start, year_end) VALUES (?, ?)`,
		session.YearStart, session.YearEnd,
	); err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO articles (position, title, authors_and_source, year, journal_or_source, citations, link, pdf_link, keyword)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range session.Records {
		if _, err := stmt.ExecContext(ctx,
			i, r.Title, r.AuthorsAndSource, r.Year, r.JournalOrSource,
			r.Citations, r.Link, r.PDFLink, r.Keyword,
		); err != nil {
			return fmt.Errorf("inserting article %d: %w", i, err)
		}
	}

	for i, o := range session.Outcomes {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO outcomes (position, query, pages_fetched, records, skipped_blocks, stop, error)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			i, o.Query, o.PagesFetched, o.Records, o.SkippedBlocks, string(o.Stop), o.Error,
		); err != nil {
			return fmt.Errorf("inserting outcome %s: %w", o.Query, err)
		}
	}

	return tx.Commit()
}

// ReadSQLite loads the records of a database written by WriteSQLite in
// session order.
func ReadSQLite(ctx context.Context, path string) ([]types.ResultRecord, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db, err := sql.Open("sqlite3", path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx,
		`SELECT title, authors_and_source, year, journal_or_source, citations, link, pdf_link, keyword
		 FROM articles ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("querying articles: %w", err)
	}
	defer rows.Close()

	var records []types.ResultRecord
	for rows.Next() {
		var r types.ResultRecord
		if err := rows.Scan(&r.Title, &r.AuthorsAndSource, &r.Year, &r.JournalOrSource,
			&r.Citations, &r.Link, &r.PDFLink, &r.Keyword); err != nil {
			return nil, fmt.Errorf("scanning article: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
