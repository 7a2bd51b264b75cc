// Package prices reshapes daily price data.
package prices

import (
	"context"

	"github.com/Vostanis/etl-io/pkg/pipeline"
	"github.com/samber/lo"
)

//go:generate go run github.com/Vostanis/etl-io/cmd/etl-cli generate --decl pipelines.yaml --out pipelines_gen.go

type Prices struct {
	Prices []Price `json:"prices"`
}

type Price struct {
	Open  int `json:"open"`
	Close int `json:"close"`
}

// Columns holds the opens and closes as parallel columns.
type Columns struct {
	Open  []int `json:"open"`
	Close []int `json:"close"`
}

func (pricesBinding) Extract(ctx context.Context, literal string) (Prices, error) {
	return pipeline.ExtractLiteral[Prices]()(ctx, literal)
}

func (pricesBinding) Transform(_ context.Context, in Prices) (Columns, error) {
	return Columns{
		Open:  lo.Map(in.Prices, func(p Price, _ int) int { return p.Open }),
		Close: lo.Map(in.Prices, func(p Price, _ int) int { return p.Close }),
	}, nil
}
