package sqlite_test

import (
	databaseerrors "cartstore/internal/database"
	"cartstore/internal/database/sqlite"
	"cartstore/internal/models"
	"cartstore/pkg/lib/logger/slogdiscard"

	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
)

var (
	selectContentsQuery = regexp.QuoteMeta(`SELECT contents FROM carts WHERE username = ?;`)
	selectCartQuery     = regexp.QuoteMeta(`SELECT id, username, COALESCE(contents, '') AS contents, COALESCE(cost, 0) AS cost FROM carts WHERE username = ?;`)
	upsertQuery         = regexp.QuoteMeta(`INSERT INTO carts (username, contents) VALUES (?, ?) ON CONFLICT(username) DO UPDATE SET contents = excluded.contents;`)
	deleteQuery         = regexp.QuoteMeta(`DELETE FROM carts WHERE username = ?;`)
)

func newTestStorage(t *testing.T) (*sqlite.Storage, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %s", err)
	}

	storage := sqlite.NewWithParams(slogdiscard.NewDiscardLogger(), sqlx.NewDb(db, "sqlite"))
	cleanup := func() { db.Close() }
	return storage, mock, cleanup
}

func TestMutations_ContextCanceled(t *testing.T) {
	storage, mock, cleanup := newTestStorage(t)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, storage.AddToCart(ctx, "alice", 1), context.Canceled)
	assert.ErrorIs(t, storage.RemoveFromCart(ctx, "alice", 1), context.Canceled)
	assert.ErrorIs(t, storage.DeleteCart(ctx, "alice"), context.Canceled)

	_, err := storage.GetCart(ctx, "alice")
	assert.ErrorIs(t, err, context.Canceled)

	_, err = storage.FetchCartContents(ctx, "alice")
	assert.ErrorIs(t, err, context.Canceled)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetCart_DeadlineExceeded(t *testing.T) {
	storage, mock, cleanup := newTestStorage(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond*10)
	defer cancel()
	time.Sleep(time.Millisecond * 15)

	_, err := storage.GetCart(ctx, "alice")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context.DeadlineExceeded, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestFetchCartContents_NoCart(t *testing.T) {
	storage, mock, cleanup := newTestStorage(t)
	defer cleanup()

	mock.ExpectQuery(selectContentsQuery).
		WithArgs("bob").
		WillReturnRows(sqlmock.NewRows([]string{"contents"}))

	contents, err := storage.FetchCartContents(context.Background(), "bob")
	assert.NoError(t, err)
	assert.Equal(t, []int{}, contents)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchCartContents_NullContents(t *testing.T) {
	storage, mock, cleanup := newTestStorage(t)
	defer cleanup()

	mock.ExpectQuery(selectContentsQuery).
		WithArgs("bob").
		WillReturnRows(sqlmock.NewRows([]string{"contents"}).AddRow(nil))

	contents, err := storage.FetchCartContents(context.Background(), "bob")
	assert.NoError(t, err)
	assert.Empty(t, contents)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchCartContents_Malformed(t *testing.T) {
	storage, mock, cleanup := newTestStorage(t)
	defer cleanup()

	mock.ExpectQuery(selectContentsQuery).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"contents"}).AddRow("not-json"))

	_, err := storage.FetchCartContents(context.Background(), "alice")
	assert.ErrorIs(t, err, databaseerrors.ErrMalformedContents)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchCartContents_QueryError(t *testing.T) {
	storage, mock, cleanup := newTestStorage(t)
	defer cleanup()

	dbErr := errors.New("disk I/O error")
	mock.ExpectQuery(selectContentsQuery).
		WithArgs("alice").
		WillReturnError(dbErr)

	_, err := storage.FetchCartContents(context.Background(), "alice")
	assert.ErrorIs(t, err, dbErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetCart_Success(t *testing.T) {
	storage, mock, cleanup := newTestStorage(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"id", "username", "contents", "cost"}).
		AddRow(7, "alice", "[10,20]", 0.0)
	mock.ExpectQuery(selectCartQuery).
		WithArgs("alice").
		WillReturnRows(rows)

	carts, err := storage.GetCart(context.Background(), "alice")
	assert.NoError(t, err)
	assert.Equal(t, []models.Cart{{Id: 7, Username: "alice", Contents: "[10,20]", Cost: 0}}, carts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetCart_NoRows(t *testing.T) {
	storage, mock, cleanup := newTestStorage(t)
	defer cleanup()

	mock.ExpectQuery(selectCartQuery).
		WithArgs("bob").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "contents", "cost"}))

	carts, err := storage.GetCart(context.Background(), "bob")
	assert.NoError(t, err)
	assert.NotNil(t, carts)
	assert.Empty(t, carts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddToCart_NewCart(t *testing.T) {
	storage, mock, cleanup := newTestStorage(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery(selectContentsQuery).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"contents"}))
	mock.ExpectExec(upsertQuery).
		WithArgs("alice", "[10]").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := storage.AddToCart(context.Background(), "alice", 10)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddToCart_AppendsDuplicate(t *testing.T) {
	storage, mock, cleanup := newTestStorage(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery(selectContentsQuery).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"contents"}).AddRow("[10,20]"))
	mock.ExpectExec(upsertQuery).
		WithArgs("alice", "[10,20,10]").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := storage.AddToCart(context.Background(), "alice", 10)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddToCart_MalformedContents(t *testing.T) {
	storage, mock, cleanup := newTestStorage(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery(selectContentsQuery).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"contents"}).AddRow("not-json"))
	mock.ExpectRollback()

	err := storage.AddToCart(context.Background(), "alice", 10)
	assert.ErrorIs(t, err, databaseerrors.ErrMalformedContents)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddToCart_BeginFail(t *testing.T) {
	storage, mock, cleanup := newTestStorage(t)
	defer cleanup()

	mock.ExpectBegin().WillReturnError(errors.New("database is locked"))

	err := storage.AddToCart(context.Background(), "alice", 10)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddToCart_UpsertFail(t *testing.T) {
	storage, mock, cleanup := newTestStorage(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery(selectContentsQuery).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"contents"}))
	mock.ExpectExec(upsertQuery).
		WithArgs("alice", "[10]").
		WillReturnError(errors.New("upsert error"))
	mock.ExpectRollback()

	err := storage.AddToCart(context.Background(), "alice", 10)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddToCart_CommitFail(t *testing.T) {
	storage, mock, cleanup := newTestStorage(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery(selectContentsQuery).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"contents"}))
	mock.ExpectExec(upsertQuery).
		WithArgs("alice", "[10]").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit().WillReturnError(errors.New("commit error"))

	err := storage.AddToCart(context.Background(), "alice", 10)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveFromCart_FirstOccurrence(t *testing.T) {
	storage, mock, cleanup := newTestStorage(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery(selectContentsQuery).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"contents"}).AddRow("[10,20,10]"))
	mock.ExpectExec(upsertQuery).
		WithArgs("alice", "[20,10]").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := storage.RemoveFromCart(context.Background(), "alice", 10)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveFromCart_LastItemLeavesEmptyArray(t *testing.T) {
	storage, mock, cleanup := newTestStorage(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery(selectContentsQuery).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"contents"}).AddRow("[10]"))
	mock.ExpectExec(upsertQuery).
		WithArgs("alice", "[]").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := storage.RemoveFromCart(context.Background(), "alice", 10)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveFromCart_ProductAbsent(t *testing.T) {
	storage, mock, cleanup := newTestStorage(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery(selectContentsQuery).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"contents"}).AddRow("[20]"))
	mock.ExpectRollback()

	err := storage.RemoveFromCart(context.Background(), "alice", 99)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveFromCart_NoCart(t *testing.T) {
	storage, mock, cleanup := newTestStorage(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery(selectContentsQuery).
		WithArgs("bob").
		WillReturnRows(sqlmock.NewRows([]string{"contents"}))
	mock.ExpectRollback()

	err := storage.RemoveFromCart(context.Background(), "bob", 99)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteCart(t *testing.T) {
	storage, mock, cleanup := newTestStorage(t)
	defer cleanup()

	mock.ExpectExec(deleteQuery).
		WithArgs("alice").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, storage.DeleteCart(context.Background(), "alice"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteCart_ExecError(t *testing.T) {
	storage, mock, cleanup := newTestStorage(t)
	defer cleanup()

	mock.ExpectExec(deleteQuery).
		WithArgs("alice").
		WillReturnError(errors.New("exec error"))

	assert.Error(t, storage.DeleteCart(context.Background(), "alice"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
