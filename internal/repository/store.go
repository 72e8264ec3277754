package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"task-tracker/internal/model"
)

// QueryError wraps a storage engine failure together with the statement that caused it.
type QueryError struct {
	Op   string
	SQL  string
	Args []any
	Err  error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// Store is the only owner of the database handle. Every read and write of tasks and
// categories goes through it.
type Store struct {
	db  *gorm.DB
	log *logrus.Entry
	now func() time.Time
}

// Open connects to the database, creates the schema if needed and returns a ready Store.
func Open(driver, dsn string, log logrus.FieldLogger) (*Store, error) {
	db, err := NewDB(driver, dsn, log)
	if err != nil {
		return nil, err
	}
	return NewStore(db, log), nil
}

func NewStore(db *gorm.DB, log logrus.FieldLogger) *Store {
	return &Store{
		db:  db,
		log: log.WithField("component", "store"),
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ListOwners returns every user id that owns at least one task.
func (s *Store) ListOwners(ctx context.Context) ([]string, error) {
	const query = `SELECT DISTINCT user_id FROM tasks ORDER BY user_id`
	var owners []string
	if err := s.db.WithContext(ctx).Raw(query).Scan(&owners).Error; err != nil {
		return nil, s.queryError("list owners", query, nil, err)
	}
	return owners, nil
}

func (s *Store) queryError(op, query string, args []any, err error) error {
	s.log.WithFields(logrus.Fields{
		"op":   op,
		"sql":  query,
		"args": args,
	}).WithError(err).Error("query failed")
	return &QueryError{Op: op, SQL: query, Args: args, Err: err}
}

// execError reports a failed gorm call using the statement gorm built for it.
func (s *Store) execError(op string, tx *gorm.DB) error {
	return s.queryError(op, tx.Statement.SQL.String(), tx.Statement.Vars, tx.Error)
}

// selectRows runs a raw query and returns the rows as column maps for explicit decoding.
func (s *Store) selectRows(ctx context.Context, op, query string, args ...any) ([]model.Row, error) {
	s.log.WithFields(logrus.Fields{"op": op, "sql": query, "args": args}).Debug("query")

	rows, err := s.db.WithContext(ctx).Raw(query, args...).Rows()
	if err != nil {
		return nil, s.queryError(op, query, args, err)
	}
	out, err := scanRows(rows)
	if err != nil {
		return nil, s.queryError(op, query, args, err)
	}
	return out, nil
}

func scanRows(rows *sql.Rows) ([]model.Row, error) {
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []model.Row
	for rows.Next() {
		values := make([]any, len(cols))
		dest := make([]any, len(cols))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		row := make(model.Row, len(cols))
		for i, col := range cols {
			row[col] = values[i]
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func utcOrNil(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
