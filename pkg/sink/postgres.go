package sink

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/Vostanis/etl-io/pkg/errors"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// OpenPostgres opens and pings a PostgreSQL connection pool.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, errors.TransportFailure, "could not connect to postgres")
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, errors.TransportFailure, "could not ping postgres")
	}
	return db, nil
}

// Postgres stores each document as a JSONB row keyed by document id in the
// table named by the destination.
type Postgres struct {
	db  *sql.DB
	log *zap.Logger
}

// NewPostgres creates a PostgreSQL sink.
func NewPostgres(db *sql.DB, log *zap.Logger) *Postgres {
	if log == nil {
		log = zap.NewNop()
	}
	return &Postgres{db: db, log: log}
}

// EnsureTable creates the document table if it does not exist.
func (p *Postgres) EnsureTable(ctx context.Context, table string) error {
	if _, err := p.db.ExecContext(ctx, createTableQuery(table)); err != nil {
		return classifySQL(err, "could not create table %s", table)
	}
	return nil
}

// Upsert inserts the document or replaces the stored one.
func (p *Postgres) Upsert(ctx context.Context, document any, destination, documentID string) error {
	body, err := marshal(document)
	if err != nil {
		return err
	}
	if _, err := p.db.ExecContext(ctx, upsertQuery(destination), documentID, string(body)); err != nil {
		return classifySQL(err, "could not upsert document %s into %s", documentID, destination)
	}
	p.log.Debug("upserted document", zap.String("table", destination), zap.String("document_id", documentID))
	return nil
}

// quoteTable quotes a possibly schema-qualified table name.
func quoteTable(table string) string {
	parts := strings.Split(table, ".")
	for i, part := range parts {
		parts[i] = pq.QuoteIdentifier(part)
	}
	return strings.Join(parts, ".")
}

func createTableQuery(table string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id TEXT PRIMARY KEY,
		doc JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`, quoteTable(table))
}

func upsertQuery(table string) string {
	return fmt.Sprintf(`INSERT INTO %s (id, doc, updated_at)
	VALUES ($1, $2::jsonb, CURRENT_TIMESTAMP)
	ON CONFLICT (id) DO UPDATE SET
		doc = EXCLUDED.doc,
		updated_at = CURRENT_TIMESTAMP`, quoteTable(table))
}

// classifySQL separates errors reported by the server, which are
// Unclassified, from connection failures.
func classifySQL(err error, msg string, args ...any) error {
	var pqErr *pq.Error
	if stderrors.As(err, &pqErr) {
		return errors.Wrap(err, errors.Unclassified, msg, args...)
	}
	return errors.Wrap(err, errors.TransportFailure, msg, args...)
}
