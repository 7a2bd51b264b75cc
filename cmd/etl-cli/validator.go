package main

import (
	"fmt"
	"go/parser"
	"go/token"
	"regexp"

	"github.com/Vostanis/etl-io/pkg/config"
)

var pipelineName = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

func validateConfig(configPath string) (*config.Job, error) {
	return config.NewParser(nil).Parse(configPath)
}

func validatePipelineName(name string) error {
	if !pipelineName.MatchString(name) {
		return fmt.Errorf("pipeline name %q must be lower case letters, digits, '-' or '_'", name)
	}
	return nil
}

func validateDeclaration(decl *Declaration) error {
	if !token.IsIdentifier(decl.Package) {
		return fmt.Errorf("package %q is not a valid Go identifier", decl.Package)
	}
	if len(decl.Pipelines) == 0 {
		return fmt.Errorf("no pipelines declared")
	}

	names := make(map[string]bool, len(decl.Pipelines))
	bindings := make(map[string]bool, len(decl.Pipelines))
	for i, p := range decl.Pipelines {
		if err := validatePipelineName(p.Name); err != nil {
			return fmt.Errorf("pipeline %d: %w", i, err)
		}
		if names[p.Name] {
			return fmt.Errorf("pipeline %q declared twice", p.Name)
		}
		names[p.Name] = true

		if !token.IsIdentifier(p.Binding) {
			return fmt.Errorf("pipeline %q: binding %q is not a valid Go identifier", p.Name, p.Binding)
		}
		if bindings[p.Binding] {
			return fmt.Errorf("pipeline %q: binding %q used twice", p.Name, p.Binding)
		}
		bindings[p.Binding] = true

		if err := validateType(p.Input); err != nil {
			return fmt.Errorf("pipeline %q: input: %w", p.Name, err)
		}
		if err := validateType(p.Output); err != nil {
			return fmt.Errorf("pipeline %q: output: %w", p.Name, err)
		}
	}
	return nil
}

// validateType checks that typ parses as a Go type expression.
func validateType(typ string) error {
	if typ == "" {
		return fmt.Errorf("type is required")
	}
	if _, err := parser.ParseExpr("(*" + typ + ")(nil)"); err != nil {
		return fmt.Errorf("%q is not a Go type: %w", typ, err)
	}
	return nil
}
