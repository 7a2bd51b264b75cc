// Package sink persists output documents to a destination store.
package sink

import (
	"context"
	"encoding/json"

	"github.com/Vostanis/etl-io/pkg/errors"
)

// Upserter creates or replaces the document stored under
// (destination, documentID).
type Upserter interface {
	Upsert(ctx context.Context, document any, destination, documentID string) error
}

// UpserterFunc adapts a function to Upserter.
type UpserterFunc func(ctx context.Context, document any, destination, documentID string) error

func (f UpserterFunc) Upsert(ctx context.Context, document any, destination, documentID string) error {
	return f(ctx, document, destination, documentID)
}

// Discard accepts every document and stores nothing.
var Discard Upserter = UpserterFunc(func(context.Context, any, string, string) error { return nil })

func marshal(document any) ([]byte, error) {
	bits, err := json.Marshal(document)
	if err != nil {
		return nil, errors.Wrap(err, errors.FormatFailure, "could not serialize document")
	}
	return bits, nil
}
