package sink

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/Vostanis/etl-io/pkg/errors"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"go.uber.org/zap"
)

// CouchDB upserts documents over the CouchDB HTTP API using its optimistic
// concurrency protocol: read the current _rev, then PUT with it. Nothing
// serializes the read and the write; a concurrent writer surfaces as a
// conflict.
type CouchDB struct {
	client *http.Client
	log    *zap.Logger
}

// NewCouchDB creates a CouchDB sink. A nil client uses http.DefaultClient.
func NewCouchDB(client *http.Client, log *zap.Logger) *CouchDB {
	if client == nil {
		client = http.DefaultClient
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CouchDB{client: client, log: log}
}

// Upsert writes document to {destination}/{documentID}, creating it when
// absent and updating it with the current revision when present.
func (c *CouchDB) Upsert(ctx context.Context, document any, destination, documentID string) error {
	url := strings.TrimRight(destination, "/") + "/" + documentID

	rev, found, err := c.revision(ctx, url)
	if err != nil {
		return err
	}

	body, err := marshal(document)
	if err != nil {
		return err
	}
	switch {
	case found:
		body, err = sjson.SetBytes(body, "_rev", rev)
		if err != nil {
			return errors.Wrap(err, errors.FormatFailure, "could not attach revision to document %s", documentID)
		}
	case gjson.GetBytes(body, "_rev").Exists():
		// a stale revision on a create would be rejected as a conflict
		body, err = sjson.DeleteBytes(body, "_rev")
		if err != nil {
			return errors.Wrap(err, errors.FormatFailure, "could not strip revision from document %s", documentID)
		}
	}

	if err := c.put(ctx, url, body); err != nil {
		return err
	}
	c.log.Debug("upserted document",
		zap.String("document_id", documentID),
		zap.Bool("update", found),
		zap.String("rev", rev),
	)
	return nil
}

// revision returns the current _rev of the document at url and whether
// the document exists.
func (c *CouchDB) revision(ctx context.Context, url string) (string, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", false, errors.Wrap(err, errors.TransportFailure, "could not build request for %s", url)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return "", false, errors.Wrap(err, errors.TransportFailure, "could not read document %s", url)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", false, errors.Wrap(err, errors.TransportFailure, "could not read document %s", url)
		}
		if !gjson.ValidBytes(body) {
			return "", false, errors.New(errors.FormatFailure, "document %s is not valid json", url)
		}
		rev := gjson.GetBytes(body, "_rev")
		if rev.Type != gjson.String || rev.Str == "" {
			return "", false, errors.New(errors.FormatFailure, "document %s has no _rev", url)
		}
		return rev.Str, true, nil
	case http.StatusNotFound:
		return "", false, nil
	default:
		return "", false, errors.New(errors.Unclassified, "unexpected status %d reading %s: expected 200 or 404", resp.StatusCode, url)
	}
}

func (c *CouchDB) put(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, errors.TransportFailure, "could not build request for %s", url)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Wrap(err, errors.TransportFailure, "could not write document %s", url)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.New(errors.Unclassified, "unexpected status %d writing %s", resp.StatusCode, url)
	}
	return nil
}
