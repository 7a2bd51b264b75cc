package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/Vostanis/etl-io/pkg/env"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Sink types
const (
	SinkCouchDB  = "couchdb"
	SinkPostgres = "postgres"
	SinkMongo    = "mongo"
	SinkNone     = "none"
)

// Job describes one run of a registered pipeline
type Job struct {
	Pipeline struct {
		Name        string `yaml:"name" validate:"required"`
		Description string `yaml:"description"`
	} `yaml:"pipeline"`
	Source struct {
		Locator   string `yaml:"locator" validate:"required"`
		UserAgent string `yaml:"user_agent"`
	} `yaml:"source"`
	Sink struct {
		Type            string `yaml:"type" validate:"oneof=couchdb postgres mongo none"`
		Destination     string `yaml:"destination" validate:"required_unless=Type none"`
		DocumentID      string `yaml:"document_id"`
		URI             string `yaml:"uri" validate:"required_if=Type postgres,required_if=Type mongo"`
		Database        string `yaml:"database" validate:"required_if=Type mongo"`
		PropagateErrors bool   `yaml:"propagate_errors"`
	} `yaml:"sink"`
	Log struct {
		Level string `yaml:"level" validate:"oneof=debug info warn warning error"`
	} `yaml:"log"`
}

var (
	envVarPattern = regexp.MustCompile(`\${([^}]+)}`)
	validate      = validator.New()
)

// Parser handles job file parsing
type Parser struct {
	env *env.Config
}

// NewParser creates a parser that fills unset fields from cfg. A nil cfg
// reads the process environment.
func NewParser(cfg *env.Config) *Parser {
	if cfg == nil {
		cfg = env.FromEnvironment()
	}
	return &Parser{env: cfg}
}

// Parse reads, expands, defaults and validates the job file.
func (p *Parser) Parse(filename string) (*Job, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", filename)
	}
	data, err := os.ReadFile(filepath.Clean(filename))
	if err != nil {
		return nil, fmt.Errorf("error reading configuration file: %w", err)
	}
	return p.ParseBytes(data)
}

// ParseBytes is Parse for an in-memory job file.
func (p *Parser) ParseBytes(data []byte) (*Job, error) {
	var job Job
	if err := yaml.Unmarshal([]byte(expand(string(data))), &job); err != nil {
		return nil, fmt.Errorf("error parsing configuration: %w", err)
	}
	p.applyDefaults(&job)
	if err := validate.Struct(&job); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &job, nil
}

// expand replaces ${VAR} with its environment value. Unset variables are
// left as written.
func expand(content string) string {
	return envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		value, ok := os.LookupEnv(match[2 : len(match)-1])
		if !ok || value == "" {
			return match
		}
		return value
	})
}

func (p *Parser) applyDefaults(job *Job) {
	if job.Sink.Type == "" {
		job.Sink.Type = SinkCouchDB
	}
	switch job.Sink.Type {
	case SinkCouchDB:
		if job.Sink.Destination == "" && p.env.CouchDBURL != "" && job.Pipeline.Name != "" {
			job.Sink.Destination = p.env.CouchDBURL + "/" + job.Pipeline.Name
		}
	case SinkPostgres:
		if job.Sink.URI == "" {
			job.Sink.URI = p.env.PostgresDSN
		}
	case SinkMongo:
		if job.Sink.URI == "" {
			job.Sink.URI = p.env.MongoURI
		}
	}
	if job.Sink.DocumentID == "" {
		job.Sink.DocumentID = uuid.NewString()
	}
	if job.Source.UserAgent == "" {
		job.Source.UserAgent = p.env.UserAgent
	}
	if job.Log.Level == "" {
		job.Log.Level = p.env.LogLevel
	}
	if job.Log.Level == "" {
		job.Log.Level = "info"
	}
}
