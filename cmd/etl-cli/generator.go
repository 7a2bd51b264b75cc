package main

import (
	"bytes"
	"fmt"
	"go/format"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"unicode"

	"gopkg.in/yaml.v3"
)

// Declaration lists the pipelines of one Go package.
type Declaration struct {
	Package   string            `yaml:"package"`
	Pipelines []PipelineBinding `yaml:"pipelines"`
}

// PipelineBinding declares one input/output pair and which steps the
// binding overrides. Transform is always required.
type PipelineBinding struct {
	Name    string `yaml:"name"`
	Binding string `yaml:"binding"`
	Input   string `yaml:"input"`
	Output  string `yaml:"output"`
	Extract bool   `yaml:"extract"`
	Load    bool   `yaml:"load"`
}

// Constructor is the exported function returning the bound pipeline.
func (b PipelineBinding) Constructor() string {
	return "New" + camel(b.Name, true) + "Pipeline"
}

func (b *PipelineBinding) applyDefaults() {
	if b.Binding == "" {
		b.Binding = camel(b.Name, false) + "Binding"
	}
}

// camel turns "login-analytics" into "LoginAnalytics" (or "loginAnalytics").
func camel(name string, exported bool) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '-' || r == '_' || r == ' '
	})
	var b strings.Builder
	for i, part := range parts {
		runes := []rune(strings.ToLower(part))
		if i > 0 || exported {
			runes[0] = unicode.ToUpper(runes[0])
		}
		b.WriteString(string(runes))
	}
	return b.String()
}

// ParseDeclaration reads and validates a declaration file.
func ParseDeclaration(path string) (*Declaration, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("error reading declaration file: %w", err)
	}
	var decl Declaration
	if err := yaml.Unmarshal(data, &decl); err != nil {
		return nil, fmt.Errorf("error parsing declaration: %w", err)
	}
	for i := range decl.Pipelines {
		decl.Pipelines[i].applyDefaults()
	}
	if err := validateDeclaration(&decl); err != nil {
		return nil, fmt.Errorf("invalid declaration: %w", err)
	}
	return &decl, nil
}

// GenerateBindings renders the Go source binding every declared pipeline.
func GenerateBindings(decl *Declaration, sourceName string) ([]byte, error) {
	data := struct {
		*Declaration
		Source string
	}{decl, sourceName}

	var buf bytes.Buffer
	t := template.Must(template.New("bindings").Parse(bindingsTemplate))
	if err := t.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render bindings: %w", err)
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("generated bindings do not parse: %w", err)
	}
	return src, nil
}

// GenerateFile reads declPath and writes the bindings to outPath.
func GenerateFile(declPath, outPath string) error {
	decl, err := ParseDeclaration(declPath)
	if err != nil {
		return err
	}
	src, err := GenerateBindings(decl, filepath.Base(declPath))
	if err != nil {
		return err
	}
	return os.WriteFile(outPath, src, 0o644)
}

// Scaffolder lays out a new pipeline package.
type Scaffolder struct {
	Name string
	Dir  string
}

func NewScaffolder(name, root string) *Scaffolder {
	return &Scaffolder{Name: name, Dir: filepath.Join(root, name)}
}

func (s *Scaffolder) Scaffold() error {
	if err := validatePipelineName(s.Name); err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create pipeline directory: %w", err)
	}

	binding := PipelineBinding{Name: s.Name}
	binding.applyDefaults()
	data := struct {
		Name      string
		Package   string
		Binding   string
		EnvPrefix string
	}{
		Name:      s.Name,
		Package:   packageName(s.Name),
		Binding:   binding.Binding,
		EnvPrefix: strings.ToUpper(strings.NewReplacer("-", "_", " ", "_").Replace(s.Name)),
	}

	files := map[string]string{
		"pipelines.yaml": declarationTemplate,
		"transform.go":   transformTemplate,
		"job.yaml":       jobTemplate,
		".env":           envTemplate,
	}
	for filename, tmpl := range files {
		if err := s.generateFile(filename, tmpl, data); err != nil {
			return fmt.Errorf("failed to generate %s: %w", filename, err)
		}
	}

	return GenerateFile(filepath.Join(s.Dir, "pipelines.yaml"), filepath.Join(s.Dir, "pipelines_gen.go"))
}

func (s *Scaffolder) generateFile(filename, tmpl string, data any) error {
	path := filepath.Join(s.Dir, filename)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	t := template.Must(template.New(filename).Parse(tmpl))
	return t.Execute(f, data)
}

func packageName(name string) string {
	return strings.ToLower(camel(name, false))
}
