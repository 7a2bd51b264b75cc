package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Vostanis/etl-io/internal/logging"
	"github.com/Vostanis/etl-io/internal/orchestrator"
	"github.com/Vostanis/etl-io/pkg/config"
	"github.com/Vostanis/etl-io/pkg/env"
	"github.com/Vostanis/etl-io/pkg/pipeline"
	"github.com/Vostanis/etl-io/pkg/registry"
	"github.com/Vostanis/etl-io/pkg/sink"
	"github.com/Vostanis/etl-io/pkg/source"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// job is a parsed job file bound to its registered pipeline.
type job struct {
	cfg    *config.Job
	runner pipeline.Runner
	log    *zap.Logger
}

func loadJob(configPath, envDir string) (*job, error) {
	envConfig, err := env.Load(envDir)
	if err != nil {
		return nil, err
	}
	cfg, err := config.NewParser(envConfig).Parse(configPath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", configPath, err)
	}
	runner, err := registry.Get(cfg.Pipeline.Name)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.Log.Level, map[string]any{"pipeline": cfg.Pipeline.Name})
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return &job{cfg: cfg, runner: runner, log: logger}, nil
}

// settings configures the runner's default steps from the job file.
func (j *job) settings(s sink.Upserter) pipeline.Settings {
	propagate := j.cfg.Sink.PropagateErrors
	return pipeline.Settings{
		Reader: source.NewReader(
			source.WithUserAgent(j.cfg.Source.UserAgent),
			source.WithLogger(j.log),
		),
		Sink:                s,
		Logger:              j.log,
		PropagateLoadErrors: &propagate,
	}
}

// openSink connects the sink named by the job file. The returned close
// function releases its connections.
func (j *job) openSink(ctx context.Context) (sink.Upserter, func() error, error) {
	noop := func() error { return nil }
	switch j.cfg.Sink.Type {
	case config.SinkPostgres:
		db, err := sink.OpenPostgres(ctx, j.cfg.Sink.URI)
		if err != nil {
			return nil, nil, err
		}
		pg := sink.NewPostgres(db, j.log)
		if err := pg.EnsureTable(ctx, j.cfg.Sink.Destination); err != nil {
			db.Close()
			return nil, nil, err
		}
		return pg, db.Close, nil
	case config.SinkMongo:
		client, err := sink.OpenMongo(j.cfg.Sink.URI)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() error { return client.Disconnect(context.Background()) }
		return sink.NewMongo(client, j.cfg.Sink.Database, j.log), closeFn, nil
	case config.SinkNone:
		return sink.Discard, noop, nil
	default:
		return sink.NewCouchDB(nil, j.log), noop, nil
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runPreview(cmd *cobra.Command, args []string) {
	configPath, _ := cmd.Flags().GetString("config")
	envDir, _ := cmd.Flags().GetString("env-dir")
	j, err := loadJob(configPath, envDir)
	if err != nil {
		fmt.Printf("Failed to load job: %v\n", err)
		os.Exit(1)
	}
	defer j.log.Sync()

	ctx, cancel := signalContext()
	defer cancel()

	out, err := j.runner.Configure(j.settings(nil)).Preview(ctx, j.cfg.Source.Locator)
	if err != nil {
		j.log.Error("preview failed", zap.Error(err))
		fmt.Printf("Preview failed: %v\n", err)
		os.Exit(1)
	}
	bits, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		fmt.Printf("Failed to encode output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(bits))
}

// task opens the job's sink lazily so a batch never holds connections for
// jobs that have not started.
func (j *job) task() orchestrator.Task {
	var closeSink func() error
	return orchestrator.Task{
		Name: j.cfg.Pipeline.Name,
		Run: func(ctx context.Context) error {
			s, closeFn, err := j.openSink(ctx)
			if err != nil {
				return err
			}
			closeSink = closeFn

			j.log.Info("starting pipeline",
				zap.String("locator", j.cfg.Source.Locator),
				zap.String("sink", j.cfg.Sink.Type),
				zap.String("destination", j.cfg.Sink.Destination),
				zap.String("document_id", j.cfg.Sink.DocumentID),
			)
			return j.runner.Configure(j.settings(s)).
				Run(ctx, j.cfg.Source.Locator, j.cfg.Sink.Destination, j.cfg.Sink.DocumentID)
		},
		Close: func() error {
			defer j.log.Sync()
			if closeSink == nil {
				return nil
			}
			return closeSink()
		},
	}
}

func runRun(cmd *cobra.Command, args []string) {
	configPaths, _ := cmd.Flags().GetStringSlice("config")
	envDir, _ := cmd.Flags().GetString("env-dir")
	parallel, _ := cmd.Flags().GetInt("parallel")

	tasks := make([]orchestrator.Task, 0, len(configPaths))
	for _, path := range configPaths {
		j, err := loadJob(path, envDir)
		if err != nil {
			fmt.Printf("Failed to load job: %v\n", err)
			os.Exit(1)
		}
		tasks = append(tasks, j.task())
	}

	logger, err := logging.New(env.FromEnvironment().LogLevel, map[string]any{"component": "orchestrator"})
	if err != nil {
		fmt.Printf("Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, cancel := signalContext()
	defer cancel()

	if err := orchestrator.NewOrchestrator(logger, parallel, tasks...).Execute(ctx); err != nil {
		fmt.Printf("Pipeline execution failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Pipeline execution completed: %d job(s)\n", len(tasks))
}
