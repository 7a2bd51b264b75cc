package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Vostanis/etl-io/pkg/env"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testEnv = &env.Config{
	CouchDBURL:  "http://couch:5984",
	PostgresDSN: "postgres://etl@localhost/etl?sslmode=disable",
	MongoURI:    "mongodb://localhost:27017",
	LogLevel:    "info",
}

func TestParse(t *testing.T) {
	t.Setenv("THOUGHTS_FILE", "./testdata/thoughts.json")
	path := filepath.Join(t.TempDir(), "job.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
pipeline:
  name: thoughts
source:
  locator: "${THOUGHTS_FILE}"
sink:
  destination: "http://couch:5984/people"
  document_id: kimon
  propagate_errors: true
log:
  level: debug
`), 0o600))

	job, err := NewParser(testEnv).Parse(path)
	require.NoError(t, err)
	assert.Equal(t, "thoughts", job.Pipeline.Name)
	assert.Equal(t, "./testdata/thoughts.json", job.Source.Locator)
	assert.Equal(t, SinkCouchDB, job.Sink.Type)
	assert.Equal(t, "kimon", job.Sink.DocumentID)
	assert.True(t, job.Sink.PropagateErrors)
	assert.Equal(t, "debug", job.Log.Level)
}

func TestParseDefaults(t *testing.T) {
	job, err := NewParser(testEnv).ParseBytes([]byte(`
pipeline: {name: thoughts}
source: {locator: ./thoughts.json}
`))
	require.NoError(t, err)
	assert.Equal(t, SinkCouchDB, job.Sink.Type)
	assert.Equal(t, "http://couch:5984/thoughts", job.Sink.Destination)
	_, err = uuid.Parse(job.Sink.DocumentID)
	assert.NoError(t, err)
	assert.Equal(t, "info", job.Log.Level)
	assert.False(t, job.Sink.PropagateErrors)

	job, err = NewParser(testEnv).ParseBytes([]byte(`
pipeline: {name: prices}
source: {locator: ./prices.json}
sink: {type: postgres, destination: public.prices}
`))
	require.NoError(t, err)
	assert.Equal(t, testEnv.PostgresDSN, job.Sink.URI)
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing name", `source: {locator: x.json}`},
		{"missing locator", `pipeline: {name: thoughts}`},
		{"unknown sink", "pipeline: {name: a}\nsource: {locator: x}\nsink: {type: redis, destination: d}"},
		{"mongo without database", "pipeline: {name: a}\nsource: {locator: x}\nsink: {type: mongo, destination: people}"},
		{"bad level", "pipeline: {name: a}\nsource: {locator: x}\nlog: {level: loud}"},
		{"not yaml", "pipeline: ["},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParser(testEnv).ParseBytes([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}

	t.Run("no destination without a couchdb default", func(t *testing.T) {
		_, err := NewParser(&env.Config{}).ParseBytes([]byte("pipeline: {name: a}\nsource: {locator: x}"))
		assert.Error(t, err)
	})
	t.Run("none sink needs no destination", func(t *testing.T) {
		_, err := NewParser(&env.Config{}).ParseBytes([]byte("pipeline: {name: a}\nsource: {locator: x}\nsink: {type: none}"))
		assert.NoError(t, err)
	})
	t.Run("missing file", func(t *testing.T) {
		_, err := NewParser(testEnv).Parse(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}

func TestExpand(t *testing.T) {
	t.Setenv("ETL_TEST_HOST", "couch")
	assert.Equal(t, "http://couch:5984", expand("http://${ETL_TEST_HOST}:5984"))
	assert.Equal(t, "${ETL_TEST_UNSET_VAR}", expand("${ETL_TEST_UNSET_VAR}"))
}
