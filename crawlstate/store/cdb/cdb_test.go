package cdb

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	check "gopkg.in/check.v1"

	"github.com/mycok/uCrawl/crawlstate/state/statetest"
)

// Initialize and register an instance of the cockroachDBStateTestSuite to be
// executed by check testing package.
var _ = check.Suite(new(cockroachDBStateTestSuite))

// Test registers the [check] library with the go testing library and enables
// the running of the test suite using the go testing library.
func Test(t *testing.T) {
	check.TestingT(t)
}

// cockroachDBStateTestSuite embeds and runs the BaseSuite tests methods.
type cockroachDBStateTestSuite struct {
	db *sql.DB
	statetest.BaseSuite
}

func (s *cockroachDBStateTestSuite) SetUpSuite(c *check.C) {
	dsn := os.Getenv("CDB_DSN")
	if dsn == "" {
		c.Skip("Missing CDB_DSN envvar: skipping cockroachDB backed test suite")
	}

	st, err := NewCockroachDBState(dsn)
	if err != nil {
		c.Fatalf("Failed to make a database connection: %v", err)
	}

	s.SetStore(st)
	s.db = st.db
}

func (s *cockroachDBStateTestSuite) TearDownSuite(c *check.C) {
	if s.db != nil {
		s.flushDB(c)
		c.Assert(s.db.Close(), check.IsNil)
	}
}

func (s *cockroachDBStateTestSuite) SetUpTest(c *check.C) {
	s.flushDB(c)
}

// flushDB removes every row from the state table.
func (s *cockroachDBStateTestSuite) flushDB(c *check.C) {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	_, err := s.db.ExecContext(ctx, "TRUNCATE crawl_state")
	c.Assert(err, check.IsNil)
}
