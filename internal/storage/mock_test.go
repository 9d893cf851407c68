package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	nextIDQuery = regexp.QuoteMeta(`SELECT COALESCE(MAX(nid), 0) + 1 FROM notes`)
	insertQuery = regexp.QuoteMeta(`INSERT INTO notes (nid, date, message) VALUES (?, ?, ?)`)
)

// setupMockDB returns a store backed by sqlmock and a real lock file.
func setupMockDB(t *testing.T) (*DB, sqlmock.Sqlmock, string) {
	t.Helper()

	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	dir := t.TempDir()
	path := filepath.Join(dir, "notes.db")
	o := defaultOptions()
	o.now = func() time.Time { return time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC) }
	lock := NewFileLock(path+".lock", time.Second, 0, nil)

	return newDB(conn, path, lock, o), mock, path + ".lock"
}

func TestDB_Add_RollsBackOnInsertFailure(t *testing.T) {
	db, mock, lockPath := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(nextIDQuery).WillReturnRows(sqlmock.NewRows([]string{"next"}).AddRow(int64(1)))
	mock.ExpectExec(insertQuery).
		WithArgs(int64(1), sqlmock.AnyArg(), "first").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(nextIDQuery).WillReturnRows(sqlmock.NewRows([]string{"next"}).AddRow(int64(2)))
	mock.ExpectExec(insertQuery).
		WithArgs(int64(2), sqlmock.AnyArg(), "second").
		WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	_, err := db.Add(context.Background(), []string{"first", "second"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk I/O error")

	assert.NoError(t, mock.ExpectationsWereMet())
	_, statErr := os.Stat(lockPath)
	assert.True(t, os.IsNotExist(statErr), "lock must be released after rollback")
}

func TestDB_Clear_CommitFailure(t *testing.T) {
	db, mock, _ := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM notes`)).WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectCommit().WillReturnError(errors.New("database is locked"))

	_, err := db.Clear(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "committing")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_Renumber_RollsBackOnFailure(t *testing.T) {
	db, mock, _ := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT nid FROM notes ORDER BY nid`)).
		WillReturnRows(sqlmock.NewRows([]string{"nid"}).AddRow(int64(2)).AddRow(int64(5)))
	prep := mock.ExpectPrepare(regexp.QuoteMeta(`UPDATE notes SET nid = ? WHERE nid = ?`))
	prep.ExpectExec().WithArgs(int64(0), int64(2)).WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().WithArgs(int64(-1), int64(5)).WillReturnError(errors.New("constraint failed"))
	mock.ExpectRollback()

	_, err := db.Renumber(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "renumbering note 5")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_Search_QueryFailure(t *testing.T) {
	db, mock, _ := setupMockDB(t)

	mock.ExpectQuery(`SELECT nid, date, message FROM notes WHERE instr`).
		WithArgs("milk").
		WillReturnError(errors.New("no such table: notes"))

	_, err := db.Search(context.Background(), "milk")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "searching notes")
	assert.NoError(t, mock.ExpectationsWereMet())
}
