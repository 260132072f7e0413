package pgread

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"jarvismcp/internal/config"
	"jarvismcp/internal/domain"
)

const (
	statementTimeoutMS = 5000
	lockTimeoutMS      = 2000

	DefaultMaxRows = 100
	MaxRowsLimit   = 500
)

// Result is a tabular query result with column order preserved.
type Result struct {
	Columns []string
	Rows    []map[string]any
}

// runFunc executes one statement against one database. Swapped out in
// tests so no Postgres is needed.
type runFunc func(ctx context.Context, database, sql string, args ...any) (*Result, error)

type Store struct {
	cfg    config.Postgres
	logger *zap.Logger
	run    runFunc
}

func NewStore(cfg config.Postgres, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{cfg: cfg, logger: logger.Named("pgread")}
	s.run = s.runPgx
	return s
}

// NewStoreWithRunner injects a fake runner for tests.
func NewStoreWithRunner(cfg config.Postgres, logger *zap.Logger, run runFunc) *Store {
	s := NewStore(cfg, logger)
	s.run = run
	return s
}

// DefaultDatabase returns the configured database name.
func (s *Store) DefaultDatabase() string {
	return s.cfg.Database
}

// runPgx opens a fresh connection per call, pins it read-only, and applies
// the statement and lock timeouts before executing.
func (s *Store) runPgx(ctx context.Context, database, sql string, args ...any) (*Result, error) {
	conn, err := pgx.Connect(ctx, s.cfg.DSN(database))
	if err != nil {
		return nil, domain.E(domain.CodeBackendUnavailable, "pgread.connect", "postgres unreachable", err)
	}
	defer conn.Close(context.Background())

	setup := fmt.Sprintf("SET statement_timeout = %d; SET lock_timeout = %d", statementTimeoutMS, lockTimeoutMS)
	if _, err := conn.Exec(ctx, setup); err != nil {
		return nil, domain.E(domain.CodeBackendError, "pgread.setup", "apply query timeouts", err)
	}

	tx, err := conn.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, domain.E(domain.CodeBackendError, "pgread.begin", "begin read-only transaction", err)
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	rows, err := tx.Query(ctx, sql, args...)
	if err != nil {
		return nil, domain.E(domain.CodeBackendError, "pgread.query", "", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, field := range fields {
		columns[i] = string(field.Name)
	}

	result := &Result{Columns: columns}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, domain.E(domain.CodeBackendError, "pgread.scan", "", err)
		}
		row := make(map[string]any, len(columns))
		for i, column := range columns {
			row[column] = values[i]
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.E(domain.CodeBackendError, "pgread.query", "", err)
	}
	return result, nil
}

// ListDatabases returns non-template database names.
func (s *Store) ListDatabases(ctx context.Context) ([]string, error) {
	result, err := s.run(ctx, "postgres",
		`SELECT datname FROM pg_database WHERE datistemplate = false ORDER BY datname`)
	if err != nil {
		return nil, err
	}
	return singleColumn(result, "datname"), nil
}

// ListSchemas returns user schemas for a database.
func (s *Store) ListSchemas(ctx context.Context, database string) ([]string, error) {
	result, err := s.run(ctx, database,
		`SELECT schema_name FROM information_schema.schemata
		 WHERE schema_name NOT IN ('pg_catalog', 'information_schema')
		 ORDER BY schema_name`)
	if err != nil {
		return nil, err
	}
	return singleColumn(result, "schema_name"), nil
}

// ListTables returns schema-qualified base tables, optionally filtered to
// one schema.
func (s *Store) ListTables(ctx context.Context, database, schema string) ([]string, error) {
	var (
		result *Result
		err    error
	)
	if schema != "" {
		result, err = s.run(ctx, database,
			`SELECT table_schema, table_name FROM information_schema.tables
			 WHERE table_type = 'BASE TABLE' AND table_schema = $1
			 ORDER BY table_schema, table_name`, schema)
	} else {
		result, err = s.run(ctx, database,
			`SELECT table_schema, table_name FROM information_schema.tables
			 WHERE table_type = 'BASE TABLE'
			   AND table_schema NOT IN ('pg_catalog', 'information_schema')
			 ORDER BY table_schema, table_name`)
	}
	if err != nil {
		return nil, err
	}

	tables := make([]string, 0, len(result.Rows))
	for _, row := range result.Rows {
		tables = append(tables, fmt.Sprintf("%v.%v", row["table_schema"], row["table_name"]))
	}
	return tables, nil
}

// DescribeTable returns column metadata in ordinal order.
func (s *Store) DescribeTable(ctx context.Context, database, schema, table string) (*Result, error) {
	return s.run(ctx, database,
		`SELECT column_name, data_type, is_nullable, column_default
		 FROM information_schema.columns
		 WHERE table_schema = $1 AND table_name = $2
		 ORDER BY ordinal_position`, schema, table)
}

// Query runs a validated read-only SELECT wrapped with a row limit.
func (s *Store) Query(ctx context.Context, database, query string, maxRows int) (*Result, error) {
	if err := ValidateReadOnly(query); err != nil {
		return nil, err
	}
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}
	if maxRows > MaxRowsLimit {
		maxRows = MaxRowsLimit
	}
	return s.run(ctx, database, wrapWithLimit(query, maxRows))
}

func singleColumn(result *Result, column string) []string {
	values := make([]string, 0, len(result.Rows))
	for _, row := range result.Rows {
		values = append(values, fmt.Sprintf("%v", row[column]))
	}
	return values
}
