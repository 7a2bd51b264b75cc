package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "github.com/Vostanis/etl-io/pipelines/customers"
	_ "github.com/Vostanis/etl-io/pipelines/prices"
	_ "github.com/Vostanis/etl-io/pipelines/thoughts"
	"github.com/Vostanis/etl-io/pkg/registry"
	"github.com/spf13/cobra"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "etl-cli",
		Short: "JSON ETL pipeline CLI",
		Long:  "Command line tool for generating, validating and running ETL pipelines",
	}

	var generateCmd = &cobra.Command{
		Use:   "generate",
		Short: "Generate pipeline bindings from a declaration file",
		Run:   runGenerate,
	}
	generateCmd.Flags().String("decl", "pipelines.yaml", "Declaration file")
	generateCmd.Flags().String("out", "", "Output file (default: pipelines_gen.go next to the declaration)")

	var scaffoldCmd = &cobra.Command{
		Use:   "scaffold",
		Short: "Scaffold a new pipeline package",
		Run:   runScaffold,
	}
	scaffoldCmd.Flags().String("name", "", "Name of the pipeline to scaffold")
	scaffoldCmd.Flags().String("dir", "pipelines", "Directory holding pipeline packages")
	scaffoldCmd.MarkFlagRequired("name")

	var validateCmd = &cobra.Command{
		Use:   "validate",
		Short: "Validate a job configuration file",
		Run:   runValidate,
	}
	validateCmd.Flags().String("config", "job.yaml", "Job configuration file")

	var listCmd = &cobra.Command{
		Use:   "list",
		Short: "List registered pipelines",
		Run:   runList,
	}

	var previewCmd = &cobra.Command{
		Use:   "preview",
		Short: "Extract and transform, printing the output instead of loading it",
		Run:   runPreview,
	}
	var runCmd = &cobra.Command{
		Use:   "run",
		Short: "Extract, transform and load one or more jobs",
		Run:   runRun,
	}
	previewCmd.Flags().String("config", "job.yaml", "Job configuration file")
	runCmd.Flags().StringSlice("config", []string{"job.yaml"}, "Job configuration files, run concurrently")
	runCmd.Flags().Int("parallel", 0, "Maximum jobs running at once (0 means no limit)")
	for _, cmd := range []*cobra.Command{previewCmd, runCmd} {
		cmd.Flags().String("env-dir", ".", "Directory holding the .env file")
	}

	rootCmd.AddCommand(generateCmd, scaffoldCmd, validateCmd, listCmd, previewCmd, runCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func runGenerate(cmd *cobra.Command, args []string) {
	decl, _ := cmd.Flags().GetString("decl")
	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		out = filepath.Join(filepath.Dir(decl), "pipelines_gen.go")
	}
	if err := GenerateFile(decl, out); err != nil {
		fmt.Printf("Failed to generate bindings: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Successfully generated bindings: %s\n", out)
}

func runScaffold(cmd *cobra.Command, args []string) {
	name, _ := cmd.Flags().GetString("name")
	dir, _ := cmd.Flags().GetString("dir")
	if err := NewScaffolder(name, dir).Scaffold(); err != nil {
		fmt.Printf("Failed to scaffold pipeline: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Successfully scaffolded pipeline: %s\n", name)
}

func runValidate(cmd *cobra.Command, args []string) {
	configPath, _ := cmd.Flags().GetString("config")
	job, err := validateConfig(configPath)
	if err != nil {
		fmt.Printf("Configuration validation failed: %v\n", err)
		os.Exit(1)
	}
	if _, err := registry.Get(job.Pipeline.Name); err != nil {
		fmt.Printf("Configuration validation failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Configuration is valid!")
}

func runList(cmd *cobra.Command, args []string) {
	for _, name := range registry.Names() {
		fmt.Println(name)
	}
}
