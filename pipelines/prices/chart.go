package prices

import (
	"context"
	"time"

	"github.com/Vostanis/etl-io/pkg/errors"
)

// Chart is the response of the Yahoo Finance v8 chart endpoint.
type Chart struct {
	Chart struct {
		Result []ChartResult `json:"result"`
	} `json:"chart"`
}

type ChartResult struct {
	Meta struct {
		Symbol string `json:"symbol"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []Quote `json:"quote"`
	} `json:"indicators"`
}

// Quote fields are nullable on days the exchange published nothing.
type Quote struct {
	Open   []*float64 `json:"open"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
}

type History struct {
	Symbol  string   `json:"symbol"`
	Candles []Candle `json:"candles"`
}

type Candle struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

func (chartBinding) Transform(_ context.Context, in Chart) (History, error) {
	if len(in.Chart.Result) == 0 {
		return History{}, errors.New(errors.FormatFailure, "chart has no results")
	}
	res := in.Chart.Result[0]
	if len(res.Indicators.Quote) == 0 {
		return History{}, errors.New(errors.FormatFailure, "chart %s has no quotes", res.Meta.Symbol)
	}
	q := res.Indicators.Quote[0]
	n := len(res.Timestamp)
	if len(q.Open) != n || len(q.Close) != n || len(q.Volume) != n {
		return History{}, errors.New(errors.FormatFailure,
			"chart %s: %d timestamps but %d opens, %d closes, %d volumes",
			res.Meta.Symbol, n, len(q.Open), len(q.Close), len(q.Volume))
	}

	out := History{Symbol: res.Meta.Symbol, Candles: make([]Candle, 0, n)}
	for i, ts := range res.Timestamp {
		if q.Open[i] == nil || q.Close[i] == nil {
			continue
		}
		c := Candle{
			Date:  time.Unix(ts, 0).UTC().Format("2006-01-02"),
			Open:  *q.Open[i],
			Close: *q.Close[i],
		}
		if q.Volume[i] != nil {
			c.Volume = *q.Volume[i]
		}
		out.Candles = append(out.Candles, c)
	}
	return out, nil
}
