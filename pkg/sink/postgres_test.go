package sink

import (
	"fmt"
	"testing"

	"github.com/Vostanis/etl-io/pkg/errors"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestQuoteTable(t *testing.T) {
	assert.Equal(t, `"documents"`, quoteTable("documents"))
	assert.Equal(t, `"public"."documents"`, quoteTable("public.documents"))
	assert.Equal(t, `"bad""name"`, quoteTable(`bad"name`))
}

func TestUpsertQuery(t *testing.T) {
	q := upsertQuery("public.people")
	assert.Contains(t, q, `INSERT INTO "public"."people" (id, doc, updated_at)`)
	assert.Contains(t, q, "ON CONFLICT (id) DO UPDATE SET")
	assert.Contains(t, createTableQuery("people"), `CREATE TABLE IF NOT EXISTS "people"`)
}

func TestClassifySQL(t *testing.T) {
	err := classifySQL(&pq.Error{Code: "23505", Message: "duplicate key"}, "upsert %s", "x")
	assert.Equal(t, errors.Unclassified, errors.KindOf(err))

	err = classifySQL(fmt.Errorf("dial tcp: connection refused"), "upsert %s", "x")
	assert.Equal(t, errors.TransportFailure, errors.KindOf(err))
}
