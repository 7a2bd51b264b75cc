// Package customers summarises customer records spread over SQL Server
// shards into a per-country report.
package customers

import (
	"context"
	"database/sql"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/Vostanis/etl-io/pkg/errors"
	"github.com/Vostanis/etl-io/pkg/source"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"github.com/spf13/cast"
)

//go:generate go run github.com/Vostanis/etl-io/cmd/etl-cli generate --decl pipelines.yaml --out pipelines_gen.go

const query = `SELECT customer_id, shard_id, first_name, last_name,
	email, created_at, country, amount FROM source_table`

var validate = validator.New()

// Customer is a row of source_table.
type Customer struct {
	CustomerID int       `json:"customer_id" validate:"required"`
	ShardID    int       `json:"shard_id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Email      string    `json:"email" validate:"required,email"`
	CreatedAt  time.Time `json:"created_at"`
	Country    string    `json:"country" validate:"required"`
	Amount     Amount    `json:"amount"`
}

type Customers []Customer

// Amount accepts numbers and numeric strings. Drivers return DECIMAL columns
// as text.
type Amount float64

func (a *Amount) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v == nil {
		*a = 0
		return nil
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return err
	}
	*a = Amount(f)
	return nil
}

type Report struct {
	Customers int            `json:"customers"`
	Rejected  []int          `json:"rejected"`
	Amount    float64        `json:"amount"`
	Countries []CountryTotal `json:"countries"`
}

type CountryTotal struct {
	Country   string  `json:"country"`
	Customers int     `json:"customers"`
	Amount    float64 `json:"amount"`
}

// Extract queries every shard listed in dsns.
func (customersBinding) Extract(ctx context.Context, dsns string) (Customers, error) {
	shards := lo.Filter(strings.Split(dsns, ","), func(dsn string, _ int) bool {
		return strings.TrimSpace(dsn) != ""
	})
	if len(shards) == 0 {
		return nil, errors.New(errors.Unclassified, "no shards in locator")
	}

	dbs := make([]*sql.DB, 0, len(shards))
	for _, dsn := range shards {
		db, err := source.OpenSQLServer(strings.TrimSpace(dsn))
		if err != nil {
			_ = source.NewSQLQuery(query, nil, dbs...).Close()
			return nil, err
		}
		dbs = append(dbs, db)
	}
	q := source.NewSQLQuery(query, nil, dbs...)
	defer q.Close()

	return source.FetchQuery[Customers](ctx, q)
}

// Transform totals valid customers by country. Rows failing validation are
// reported by id and left out of the totals.
func (customersBinding) Transform(_ context.Context, in Customers) (Report, error) {
	report := Report{Rejected: []int{}, Countries: []CountryTotal{}}
	var valid []Customer
	for _, c := range in {
		if err := validate.Struct(c); err != nil {
			report.Rejected = append(report.Rejected, c.CustomerID)
			continue
		}
		valid = append(valid, c)
	}
	report.Customers = len(valid)

	for country, group := range lo.GroupBy(valid, func(c Customer) string { return c.Country }) {
		total := CountryTotal{Country: country, Customers: len(group)}
		for _, c := range group {
			total.Amount += float64(c.Amount)
		}
		report.Amount += total.Amount
		report.Countries = append(report.Countries, total)
	}
	sort.Slice(report.Countries, func(i, j int) bool {
		return report.Countries[i].Country < report.Countries[j].Country
	})
	return report, nil
}
