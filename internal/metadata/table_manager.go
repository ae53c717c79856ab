package metadata

import (
	"context"
	"database/sql"
	"strings"

	"github.com/cockroachdb/errors"
	_ "modernc.org/sqlite"
)

// TableManager reads table definitions and contents from a SQLite database
// so that StatsManager can derive statistics from real data.
type TableManager struct {
	db *sql.DB
}

// NewTableManager wraps an open database handle.
func NewTableManager(db *sql.DB) *TableManager {
	return &TableManager{db: db}
}

// OpenTableManager opens the SQLite database at path.
func OpenTableManager(path string) (*TableManager, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "open sqlite database %s", path)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "open sqlite database %s", path)
	}
	return NewTableManager(db), nil
}

// Close closes the underlying database.
func (t *TableManager) Close() error {
	return t.db.Close()
}

// Tables returns the user tables of the database in name order.
func (t *TableManager) Tables(ctx context.Context) ([]string, error) {
	rows, err := t.db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, errors.Wrap(err, "list tables")
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.Wrap(err, "list tables")
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

// Columns returns the column names of a table in declaration order.
func (t *TableManager) Columns(ctx context.Context, tableName string) ([]string, error) {
	rows, err := t.db.QueryContext(ctx, `SELECT name FROM pragma_table_info(?) ORDER BY cid`, tableName)
	if err != nil {
		return nil, errors.Wrapf(err, "columns of %s", tableName)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.Wrapf(err, "columns of %s", tableName)
		}
		columns = append(columns, strings.ToLower(name))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, errors.Wrapf(ErrUnknownRelation, "%q", tableName)
	}
	return columns, nil
}

// CountRows returns the number of rows in a table.
func (t *TableManager) CountRows(ctx context.Context, tableName string) (int, error) {
	var n int
	err := t.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+quoteIdent(tableName)).Scan(&n)
	if err != nil {
		return 0, errors.Wrapf(err, "count rows of %s", tableName)
	}
	return n, nil
}

// CountDistinct returns the number of distinct non-null values of a column.
func (t *TableManager) CountDistinct(ctx context.Context, tableName, column string) (int, error) {
	var n int
	q := "SELECT COUNT(DISTINCT " + quoteIdent(column) + ") FROM " + quoteIdent(tableName)
	if err := t.db.QueryRowContext(ctx, q).Scan(&n); err != nil {
		return 0, errors.Wrapf(err, "count distinct %s.%s", tableName, column)
	}
	return n, nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
