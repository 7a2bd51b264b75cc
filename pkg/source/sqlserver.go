package source

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/Vostanis/etl-io/pkg/errors"
	_ "github.com/denisenkom/go-mssqldb"
	"go.uber.org/zap"
)

// Row is a single result row keyed by column name.
type Row map[string]any

// OpenSQLServer opens a SQL Server connection pool for dsn.
func OpenSQLServer(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlserver", dsn)
	if err != nil {
		return nil, errors.Wrap(err, errors.TransportFailure, "could not open sql server connection")
	}
	return db, nil
}

// SQLQuery extracts rows from one or more database shards. Rows are
// returned in shard order.
type SQLQuery struct {
	dbs   []*sql.DB
	query string
	log   *zap.Logger
}

// NewSQLQuery creates a query source over the given shards.
func NewSQLQuery(query string, log *zap.Logger, dbs ...*sql.DB) *SQLQuery {
	if log == nil {
		log = zap.NewNop()
	}
	return &SQLQuery{dbs: dbs, query: query, log: log}
}

// Rows runs the query against every shard concurrently.
func (q *SQLQuery) Rows(ctx context.Context) ([]Row, error) {
	results := make([][]Row, len(q.dbs))
	errs := make([]error, len(q.dbs))
	var wg sync.WaitGroup

	for i, db := range q.dbs {
		wg.Add(1)
		go func(i int, db *sql.DB) {
			defer wg.Done()
			results[i], errs[i] = q.queryDB(ctx, db)
			if errs[i] == nil {
				q.log.Debug("extracted rows", zap.Int("shard", i+1), zap.Int("rows", len(results[i])))
			}
		}(i, db)
	}
	wg.Wait()

	var rows []Row
	for i := range results {
		if errs[i] != nil {
			return nil, errors.Wrap(errs[i], errors.TransportFailure, "shard %d", i+1)
		}
		rows = append(rows, results[i]...)
	}
	return rows, nil
}

func (q *SQLQuery) queryDB(ctx context.Context, db *sql.DB) ([]Row, error) {
	rows, err := db.QueryContext(ctx, q.query)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	var out []Row
	for rows.Next() {
		values := make([]any, len(cols))
		valuePtrs := make([]any, len(cols))
		for i := range values {
			valuePtrs[i] = &values[i]
		}
		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		out = append(out, scanRow(cols, values))
	}
	return out, rows.Err()
}

// scanRow pairs columns with values. Drivers hand back text and numeric
// types as []byte, which would otherwise encode as base64.
func scanRow(cols []string, values []any) Row {
	row := make(Row, len(cols))
	for i, col := range cols {
		if b, ok := values[i].([]byte); ok {
			row[col] = string(b)
			continue
		}
		row[col] = values[i]
	}
	return row
}

// Close closes every shard.
func (q *SQLQuery) Close() error {
	var errs []error
	for _, db := range q.dbs {
		if err := db.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("failed to close some connections: %v", errs)
	}
	return nil
}

// FetchQuery runs q and decodes the rows, as a JSON array, into I.
func FetchQuery[I any](ctx context.Context, q *SQLQuery) (I, error) {
	var zero I
	rows, err := q.Rows(ctx)
	if err != nil {
		return zero, err
	}
	if rows == nil {
		rows = []Row{}
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return zero, errors.Wrap(err, errors.FormatFailure, "could not encode rows")
	}
	return Decode[I](data)
}
