// Package cdb persists crawl state in a CockroachDB / PostgreSQL table so
// several machines can share it.
package cdb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/lib/pq"

	"github.com/mycok/uCrawl/crawlstate/state"
)

var (
	createTableQuery = `
					CREATE TABLE IF NOT EXISTS crawl_state (
						location TEXT NOT NULL,
						kind TEXT NOT NULL,
						url TEXT NOT NULL,
						PRIMARY KEY (location, kind, url)
					)
					`
	loadQuery   = "SELECT url FROM crawl_state WHERE location=$1 AND kind=$2 ORDER BY url"
	deleteQuery = "DELETE FROM crawl_state WHERE location=$1 AND kind=$2"
)

// Timeout applied to every statement that is not a bulk write.
const queryTimeout = 5 * time.Second

// Static and compile-time check to ensure CockroachDBState implements
// state.Store interface.
var _ state.Store = (*CockroachDBState)(nil)

// CockroachDBState stores crawl state rows in a CockroachDB instance.
type CockroachDBState struct {
	db *sql.DB
}

// NewCockroachDBState connects to dsn and makes sure the state table
// exists.
func NewCockroachDBState(dsn string) (*CockroachDBState, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	if err = db.PingContext(ctx); err != nil {
		return nil, err
	}

	if _, err = db.ExecContext(ctx, createTableQuery); err != nil {
		return nil, fmt.Errorf("create state table: %w", err)
	}

	return &CockroachDBState{db}, nil
}

// Close terminates the connection to the cockroachDB instance.
func (s *CockroachDBState) Close() error {
	return s.db.Close()
}

// Load returns the URLs saved for kind under location in lexical order.
func (s *CockroachDBState) Load(location string, kind state.Kind) ([]string, error) {
	if err := kind.Validate(); err != nil {
		return nil, fmt.Errorf("load %s: %w", kind, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, loadQuery, location, string(kind))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", kind, err)
	}
	defer func() { _ = rows.Close() }()

	var urls []string
	for rows.Next() {
		var u string
		if err = rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("load %s: %w", kind, err)
		}

		urls = append(urls, u)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("load %s: %w", kind, err)
	}

	return urls, nil
}

// Save replaces the rows saved for kind under location inside a single
// transaction, bulk loading the new set with COPY.
func (s *CockroachDBState) Save(location string, kind state.Kind, urls []string) (err error) {
	if err = kind.Validate(); err != nil {
		return fmt.Errorf("save %s: %w", kind, err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("save %s: %w", kind, err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				err = multierror.Append(err, rbErr)
			}
		}
	}()

	if _, err = tx.Exec(deleteQuery, location, string(kind)); err != nil {
		return fmt.Errorf("save %s: %w", kind, err)
	}

	stmt, err := tx.Prepare(pq.CopyIn("crawl_state", "location", "kind", "url"))
	if err != nil {
		return fmt.Errorf("save %s: %w", kind, err)
	}

	seen := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}

		if _, err = stmt.Exec(location, string(kind), u); err != nil {
			_ = stmt.Close()
			return fmt.Errorf("save %s: %w", kind, err)
		}
	}

	if _, err = stmt.Exec(); err != nil {
		_ = stmt.Close()
		return fmt.Errorf("save %s: %w", kind, err)
	}

	if err = stmt.Close(); err != nil {
		return fmt.Errorf("save %s: %w", kind, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("save %s: %w", kind, err)
	}

	return nil
}
