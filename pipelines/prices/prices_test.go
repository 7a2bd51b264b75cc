package prices

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Vostanis/etl-io/pkg/errors"
	"github.com/Vostanis/etl-io/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pricesJSON = `{"prices":[{"open":1,"close":2},{"open":3,"close":4},{"open":5,"close":6}]}`

func TestSplitPrices(t *testing.T) {
	out, err := NewPricesPipeline().ExtractAndTransform(context.Background(), pricesJSON)
	require.NoError(t, err)
	assert.Equal(t, Columns{Open: []int{1, 3, 5}, Close: []int{2, 4, 6}}, out)
}

func TestSplitPricesBadLiteral(t *testing.T) {
	_, err := NewPricesPipeline().ExtractAndTransform(context.Background(), `{"prices":`)
	assert.Equal(t, errors.FormatFailure, errors.KindOf(err))
}

const chartJSON = `{"chart":{"result":[{
	"meta":{"symbol":"AAPL"},
	"timestamp":[1704205800,1704292200,1704378600],
	"indicators":{"quote":[{
		"open":[187.15,null,182.15],
		"close":[185.64,184.25,181.91],
		"volume":[82488700,58414500,null]
	}]}
}]}}`

func TestChart(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(chartJSON))
	}))
	defer s.Close()

	out, err := NewChartPipeline().ExtractAndTransform(context.Background(), s.URL)
	require.NoError(t, err)
	assert.Equal(t, History{
		Symbol: "AAPL",
		Candles: []Candle{
			{Date: "2024-01-02", Open: 187.15, Close: 185.64, Volume: 82488700},
			{Date: "2024-01-04", Open: 182.15, Close: 181.91},
		},
	}, out)
}

func TestChartMalformed(t *testing.T) {
	tests := []struct {
		name  string
		chart string
	}{
		{"no results", `{"chart":{"result":[]}}`},
		{"no quotes", `{"chart":{"result":[{"timestamp":[1],"indicators":{"quote":[]}}]}}`},
		{"ragged", `{"chart":{"result":[{"timestamp":[1,2],"indicators":{"quote":[{"open":[1],"close":[1,2],"volume":[1,2]}]}}]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.chart))
			}))
			defer s.Close()

			_, err := NewChartPipeline().ExtractAndTransform(context.Background(), s.URL)
			assert.Equal(t, errors.FormatFailure, errors.KindOf(err))
		})
	}
}

func TestRegistered(t *testing.T) {
	for _, name := range []string{"prices", "chart"} {
		_, err := registry.Get(name)
		assert.NoError(t, err, name)
	}
}
