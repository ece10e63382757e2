package sink

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/crosstab/internal/tab"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteSink persists finished tables to a SQLite database.
// Uses WAL mode for concurrent read access by export consumers.
type SQLiteSink struct {
	db *sql.DB
}

// OpenSQLite creates or opens a SQLite database at the given path.
// Applies required pragmas and the schema automatically; idempotent.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
func OpenSQLite(path string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLiteSink{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteSink) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// WriteTable persists a table under (run token, stratum) in a single
// transaction - either the table row and all its cells land, or none.
// The run row is created on first write (idempotent via ON CONFLICT).
func (s *SQLiteSink) WriteTable(ctx context.Context, run RunInfo, stratum string, table *tab.FormattedTable) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (token, plan_name) VALUES (?, ?) ON CONFLICT(token) DO NOTHING`,
		run.Token, run.Plan,
	); err != nil {
		return fmt.Errorf("write run %s: %w", run.Token, err)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO tables (run_token, stratum, row_var, col_var) VALUES (?, ?, ?, ?)`,
		run.Token, stratum, table.RowVar, table.ColVar,
	)
	if err != nil {
		return fmt.Errorf("write table (run=%s stratum=%q): %w", run.Token, stratum, err)
	}
	tableID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("table id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO cells (table_id, row_idx, col_idx, row_label, col_label, value) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare cells: %w", err)
	}
	defer stmt.Close()

	for i, rowLabel := range table.RowLabels {
		for j, colLabel := range table.ColLabels {
			if _, err := stmt.ExecContext(ctx, tableID, i, j, rowLabel, colLabel, table.Cells[i][j]); err != nil {
				return fmt.Errorf("write cell (%d,%d): %w", i, j, err)
			}
		}
	}

	return tx.Commit()
}

// ReadTable reconstructs a persisted table. Labels and cells come back
// in their stored index order.
func (s *SQLiteSink) ReadTable(ctx context.Context, runToken, stratum string) (*tab.FormattedTable, error) {
	var tableID int64
	table := &tab.FormattedTable{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, row_var, col_var FROM tables WHERE run_token = ? AND stratum = ?`,
		runToken, stratum,
	).Scan(&tableID, &table.RowVar, &table.ColVar)
	if err != nil {
		return nil, fmt.Errorf("read table (run=%s stratum=%q): %w", runToken, stratum, err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT row_idx, col_idx, row_label, col_label, value FROM cells WHERE table_id = ? ORDER BY row_idx, col_idx`,
		tableID,
	)
	if err != nil {
		return nil, fmt.Errorf("read cells: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ri, ci int
		var rowLabel, colLabel, value string
		if err := rows.Scan(&ri, &ci, &rowLabel, &colLabel, &value); err != nil {
			return nil, fmt.Errorf("scan cell: %w", err)
		}
		if ri == len(table.RowLabels) {
			table.RowLabels = append(table.RowLabels, rowLabel)
			table.Cells = append(table.Cells, nil)
		}
		if ri == 0 {
			table.ColLabels = append(table.ColLabels, colLabel)
		}
		table.Cells[ri] = append(table.Cells[ri], value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cells: %w", err)
	}

	return table, nil
}

// Strata returns the stratum keys persisted for a run, in insertion
// order.
func (s *SQLiteSink) Strata(ctx context.Context, runToken string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT stratum FROM tables WHERE run_token = ? ORDER BY id`, runToken)
	if err != nil {
		return nil, fmt.Errorf("read strata: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var stratum string
		if err := rows.Scan(&stratum); err != nil {
			return nil, fmt.Errorf("scan stratum: %w", err)
		}
		out = append(out, stratum)
	}
	return out, rows.Err()
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}
