package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/okian/breedgrade/internal/domain/model"
	"github.com/okian/breedgrade/pkg/metrics"
)

const evaluationColumns = `id, dog_name, registration_number, owner_name, age_months, gender,
	scores_json, notes, total_score, percentage, created_at`

// SQLStore persists evaluations through database/sql. Scores are stored as a
// JSON object keyed by trait; created_at holds Unix nanoseconds.
type SQLStore struct {
	db     *sql.DB
	driver Driver
	opts   options
}

// NewSQLStore wraps an open database. Call EnsureSchema before first use
// unless the schema is managed elsewhere.
func NewSQLStore(db *sql.DB, driver Driver, opts ...Option) *SQLStore {
	return &SQLStore{db: db, driver: driver, opts: applyOptions(opts)}
}

// EnsureSchema creates the evaluations table if it does not exist.
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	schema := schemaSQLite
	if s.driver == DriverPostgres {
		schema = schemaPostgres
	}
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return s.fail("schema", err)
	}
	return nil
}

// Create inserts c as a single statement; a failed insert leaves no row.
func (s *SQLStore) Create(ctx context.Context, c model.Candidate) (model.Evaluation, error) {
	start := time.Now()
	defer observe("create", string(s.driver), start)

	e := c.Evaluation(s.opts.newID(), s.opts.stamp())
	scores, err := json.Marshal(e.Scores)
	if err != nil {
		return model.Evaluation{}, fmt.Errorf("encode scores: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO evaluations (`+evaluationColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		e.ID, e.DogName, e.RegistrationNumber, e.OwnerName, e.AgeMonths, string(e.Gender),
		string(scores), e.Notes, e.TotalScore, e.Percentage, e.CreatedAt.UnixNano())
	if err != nil {
		return model.Evaluation{}, s.fail("create", err)
	}
	return e, nil
}

// Get loads one evaluation by id.
func (s *SQLStore) Get(ctx context.Context, id string) (model.Evaluation, error) {
	start := time.Now()
	defer observe("get", string(s.driver), start)

	row := s.db.QueryRowContext(ctx, `SELECT `+evaluationColumns+` FROM evaluations WHERE id = $1`, id)
	e, err := scanEvaluation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Evaluation{}, ErrNotFound
		}
		return model.Evaluation{}, s.fail("get", err)
	}
	return e, nil
}

// List returns evaluations by created_at descending, newest insert first on ties.
func (s *SQLStore) List(ctx context.Context, limit int) ([]model.Evaluation, error) {
	start := time.Now()
	defer observe("list", string(s.driver), start)

	query := `SELECT ` + evaluationColumns + ` FROM evaluations ORDER BY created_at DESC, seq DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, s.fail("list", err)
	}
	defer func() { _ = rows.Close() }()

	out := []model.Evaluation{}
	for rows.Next() {
		e, err := scanEvaluation(rows)
		if err != nil {
			return nil, s.fail("list", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, s.fail("list", err)
	}
	return out, nil
}

// Percentages reads the percentage column of every row.
func (s *SQLStore) Percentages(ctx context.Context) ([]int, error) {
	start := time.Now()
	defer observe("percentages", string(s.driver), start)

	rows, err := s.db.QueryContext(ctx, `SELECT percentage FROM evaluations`)
	if err != nil {
		return nil, s.fail("percentages", err)
	}
	defer func() { _ = rows.Close() }()

	ps := []int{}
	for rows.Next() {
		var p int
		if err := rows.Scan(&p); err != nil {
			return nil, s.fail("percentages", err)
		}
		ps = append(ps, p)
	}
	if err := rows.Err(); err != nil {
		return nil, s.fail("percentages", err)
	}
	return ps, nil
}

// Count returns the number of rows.
func (s *SQLStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM evaluations`).Scan(&n); err != nil {
		return 0, s.fail("count", err)
	}
	return n, nil
}

// Close closes the underlying database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) fail(op string, err error) error {
	metrics.RecordStoreError(op, string(s.driver))
	return fmt.Errorf("%s evaluation: %w: %w", op, ErrUnavailable, err)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvaluation(sc scanner) (model.Evaluation, error) {
	var (
		e         model.Evaluation
		gender    string
		scoresRaw string
		createdAt int64
	)
	if err := sc.Scan(&e.ID, &e.DogName, &e.RegistrationNumber, &e.OwnerName, &e.AgeMonths, &gender,
		&scoresRaw, &e.Notes, &e.TotalScore, &e.Percentage, &createdAt); err != nil {
		return model.Evaluation{}, err
	}
	if err := json.Unmarshal([]byte(scoresRaw), &e.Scores); err != nil {
		return model.Evaluation{}, fmt.Errorf("decode scores of %s: %w", e.ID, err)
	}
	e.Gender = model.Gender(gender)
	e.CreatedAt = time.Unix(0, createdAt).UTC()
	return e, nil
}

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS evaluations (
  seq INTEGER PRIMARY KEY AUTOINCREMENT,
  id TEXT NOT NULL UNIQUE,
  dog_name TEXT NOT NULL,
  registration_number TEXT NOT NULL DEFAULT '',
  owner_name TEXT NOT NULL,
  age_months INTEGER NOT NULL,
  gender TEXT NOT NULL,
  scores_json TEXT NOT NULL,
  notes TEXT NOT NULL DEFAULT '',
  total_score INTEGER NOT NULL,
  percentage INTEGER NOT NULL,
  created_at BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS evaluations_created_idx ON evaluations (created_at DESC, seq DESC);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS evaluations (
  seq BIGSERIAL PRIMARY KEY,
  id TEXT NOT NULL UNIQUE,
  dog_name TEXT NOT NULL,
  registration_number TEXT NOT NULL DEFAULT '',
  owner_name TEXT NOT NULL,
  age_months INTEGER NOT NULL,
  gender TEXT NOT NULL,
  scores_json TEXT NOT NULL,
  notes TEXT NOT NULL DEFAULT '',
  total_score INTEGER NOT NULL,
  percentage INTEGER NOT NULL,
  created_at BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS evaluations_created_idx ON evaluations (created_at DESC, seq DESC);
`
