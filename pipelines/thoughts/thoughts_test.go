package thoughts

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/Vostanis/etl-io/pkg/errors"
	"github.com/Vostanis/etl-io/pkg/registry"
	"github.com/Vostanis/etl-io/pkg/sink"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	input = `{"first_name":"kimon","last_name":"vostanis","thoughts":[{"time":"10:40","thought":"hmm"},{"time":"10:41","thought":"uh-huh"}]}`
	want  = `{"first_name":"kimon","last_name":"vostanis","thoughts":["hmm","uh-huh"]}`
)

func writeInput(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "thoughts.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestReformatFromFile(t *testing.T) {
	out, err := NewThoughtsPipeline().ExtractAndTransform(context.Background(), writeInput(t, input))
	require.NoError(t, err)

	bits, err := json.Marshal(out)
	require.NoError(t, err)
	assert.JSONEq(t, want, string(bits))
}

func TestReformatFromURL(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(input))
	}))
	defer s.Close()

	out, err := NewThoughtsPipeline().ExtractAndTransform(context.Background(), s.URL)
	require.NoError(t, err)
	assert.Equal(t, []string{"hmm", "uh-huh"}, out.Thoughts)
}

func TestNoThoughts(t *testing.T) {
	out, err := NewThoughtsPipeline().ExtractAndTransform(context.Background(), writeInput(t, `{"first_name":"a","last_name":"b"}`))
	require.NoError(t, err)
	bits, err := json.Marshal(out)
	require.NoError(t, err)
	assert.JSONEq(t, `{"first_name":"a","last_name":"b","thoughts":[]}`, string(bits))
}

func TestTruncatedInput(t *testing.T) {
	_, err := NewThoughtsPipeline().ExtractAndTransform(context.Background(), writeInput(t, input[:40]))
	assert.Equal(t, errors.FormatFailure, errors.KindOf(err))
}

func TestLoadToCouchDB(t *testing.T) {
	var body string
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		bits, _ := io.ReadAll(r.Body)
		body = string(bits)
		assert.Equal(t, "/people/kimon", r.URL.Path)
		w.WriteHeader(http.StatusCreated)
	}))
	defer s.Close()

	p := NewThoughtsPipeline().WithSink(sink.NewCouchDB(s.Client(), nil)).WithPropagateLoadErrors(true)
	require.NoError(t, p.ExtractTransformLoad(context.Background(), writeInput(t, input), s.URL+"/people", "kimon"))
	assert.JSONEq(t, want, body)
}

func TestRegistered(t *testing.T) {
	r, err := registry.Get("thoughts")
	require.NoError(t, err)
	out, err := r.Preview(context.Background(), writeInput(t, input))
	require.NoError(t, err)
	assert.Equal(t, []string{"hmm", "uh-huh"}, out.(Reformatted).Thoughts)
}
