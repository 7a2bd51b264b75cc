package source

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanRow(t *testing.T) {
	created := time.Date(2024, 3, 19, 10, 40, 0, 0, time.UTC)
	row := scanRow(
		[]string{"customer_id", "email", "amount", "created_at", "country"},
		[]any{int64(7), []byte("a@b.c"), []byte("12.50"), created, nil},
	)
	assert.Equal(t, Row{
		"customer_id": int64(7),
		"email":       "a@b.c",
		"amount":      "12.50",
		"created_at":  created,
		"country":     nil,
	}, row)
}

func TestFetchQueryWithoutShards(t *testing.T) {
	q := NewSQLQuery("SELECT 1", nil)
	rows, err := FetchQuery[[]map[string]any](context.Background(), q)
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
	assert.NoError(t, q.Close())
}
