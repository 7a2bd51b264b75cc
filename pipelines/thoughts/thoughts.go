// Package thoughts flattens a timestamped thought log into a list of
// thoughts.
package thoughts

import (
	"context"

	"github.com/samber/lo"
)

//go:generate go run github.com/Vostanis/etl-io/cmd/etl-cli generate --decl pipelines.yaml --out pipelines_gen.go

type Original struct {
	FirstName        string    `json:"first_name"`
	LastName         string    `json:"last_name"`
	ThoughtsAndTimes []Thought `json:"thoughts"`
}

type Thought struct {
	Time    string `json:"time"`
	Thought string `json:"thought"`
}

type Reformatted struct {
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Thoughts  []string `json:"thoughts"`
}

func (thoughtsBinding) Transform(_ context.Context, in Original) (Reformatted, error) {
	return Reformatted{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Thoughts: lo.Map(in.ThoughtsAndTimes, func(t Thought, _ int) string {
			return t.Thought
		}),
	}, nil
}
