package store

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func setupMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})

	s := New(db)
	s.now = func() time.Time { return fixedNow }
	return s, mock
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func duplicateEntry() error {
	return &mysql.MySQLError{Number: mysqlDuplicateEntry, Message: "Duplicate entry"}
}

func missingReference() error {
	return &mysql.MySQLError{Number: mysqlNoReferencedRow, Message: "Cannot add or update a child row"}
}
