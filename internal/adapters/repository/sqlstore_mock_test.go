package repository_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/okian/breedgrade/internal/adapters/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var columns = []string{
	"id", "dog_name", "registration_number", "owner_name", "age_months", "gender",
	"scores_json", "notes", "total_score", "percentage", "created_at",
}

func TestSQLStore_CreateFailureIsUnavailable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := repository.NewSQLStore(db, repository.DriverPostgres)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO evaluations")).
		WillReturnError(errors.New("connection refused"))

	e, err := store.Create(context.Background(), fullCandidate("Rex", 5))
	assert.Error(t, err)
	assert.True(t, errors.Is(err, repository.ErrUnavailable))
	assert.Contains(t, err.Error(), "connection refused")
	assert.Empty(t, e.ID, "a failed create must not return a record")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_CreateBindsEveryField(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	at := time.Date(2026, 2, 3, 4, 5, 6, 7, time.UTC)
	store := repository.NewSQLStore(db, repository.DriverPostgres,
		repository.WithClock(func() time.Time { return at }),
		repository.WithIDGenerator(func() string { return "fixed-id" }),
	)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO evaluations")).
		WithArgs("fixed-id", "Rex", "REG-Rex", "Owner Rex", 14, "male",
			`{"head":5,"body":5,"legs":5,"coat":5,"temperament":5,"movement":5,"size":5}`,
			"line one\nline two", 35, 50, at.UnixNano()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	e, err := store.Create(context.Background(), fullCandidate("Rex", 5))
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", e.ID)
	assert.Equal(t, at, e.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_GetErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := repository.NewSQLStore(db, repository.DriverPostgres)
	ctx := context.Background()

	// no rows
	mock.ExpectQuery(regexp.QuoteMeta("FROM evaluations WHERE id = $1")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(columns))
	_, err = store.Get(ctx, "missing")
	assert.True(t, errors.Is(err, repository.ErrNotFound))

	// driver failure
	mock.ExpectQuery(regexp.QuoteMeta("FROM evaluations WHERE id = $1")).
		WithArgs("any").
		WillReturnError(errors.New("broken pipe"))
	_, err = store.Get(ctx, "any")
	assert.True(t, errors.Is(err, repository.ErrUnavailable))
	assert.False(t, errors.Is(err, repository.ErrNotFound))

	// corrupt scores column
	mock.ExpectQuery(regexp.QuoteMeta("FROM evaluations WHERE id = $1")).
		WithArgs("bad").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("bad", "Rex", "", "Owner", 14, "male", "{not json", "", 35, 50, int64(0)))
	_, err = store.Get(ctx, "bad")
	assert.True(t, errors.Is(err, repository.ErrUnavailable))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_ListAndStatsFailures(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := repository.NewSQLStore(db, repository.DriverPostgres)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC, seq DESC LIMIT $1")).
		WithArgs(50).
		WillReturnError(errors.New("timeout"))
	_, err = store.List(ctx, 50)
	assert.True(t, errors.Is(err, repository.ErrUnavailable))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT percentage FROM evaluations")).
		WillReturnError(errors.New("timeout"))
	_, err = store.Percentages(ctx)
	assert.True(t, errors.Is(err, repository.ErrUnavailable))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM evaluations")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	n, err := store.Count(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 3, n)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_ListDecodesRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := repository.NewSQLStore(db, repository.DriverPostgres)
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC, seq DESC")).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("b", "Two", "", "O", 10, "female", `{"head":9}`, "", 9, 13, at.Add(time.Second).UnixNano()).
			AddRow("a", "One", "", "O", 10, "male", `{"head":1}`, "", 1, 1, at.UnixNano()))

	list, err := store.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].ID)
	assert.Equal(t, 9, list[0].Scores["head"])
	assert.Equal(t, at.Add(time.Second), list[0].CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}
