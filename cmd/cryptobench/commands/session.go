// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/bureau-foundation/cryptobench/cmd/cryptobench/cli"
	"github.com/bureau-foundation/cryptobench/lib/config"
	"github.com/bureau-foundation/cryptobench/lib/evaluation"
	"github.com/bureau-foundation/cryptobench/lib/metricsexport"
	"github.com/bureau-foundation/cryptobench/lib/profiling"
	"github.com/bureau-foundation/cryptobench/lib/report"
	"github.com/bureau-foundation/cryptobench/lib/resultstore"
)

// sessionParams are the flags shared by every command that loads
// configuration.
type sessionParams struct {
	ConfigPath string `json:"-" flag:"config,c" desc:"configuration file (default: $CRYPTOBENCH_CONFIG, else built-in defaults)"`
}

// outputParams are the flags shared by commands that produce results.
type outputParams struct {
	NoSave   bool `json:"-" flag:"no-save" desc:"do not record results in the result store"`
	NoReport bool `json:"-" flag:"no-report" desc:"do not write report files"`
}

// session is the per-invocation state built from configuration: the
// logger, and the optional result store and metrics exporter.
type session struct {
	config   *config.Config
	logger   *slog.Logger
	store    *resultstore.Store
	exporter *metricsexport.Exporter
	noReport bool
}

// loadConfig reads path, or the CRYPTOBENCH_CONFIG file, or defaults.
func loadConfig(path string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// openSession loads configuration and opens what output needs. A nil
// output opens neither the store nor the exporter.
func openSession(params sessionParams, output *outputParams, command string) (*session, error) {
	cfg, err := loadConfig(params.ConfigPath)
	if err != nil {
		return nil, err
	}
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	s := &session{
		config:   cfg,
		logger:   cli.NewCommandLogger(level).With("command", command),
		noReport: output == nil || output.NoReport,
	}
	if output == nil {
		return s, nil
	}

	if err := cfg.EnsurePaths(); err != nil {
		return nil, err
	}
	if !output.NoSave && cfg.Paths.Database != "" {
		if err := s.openStore(); err != nil {
			return nil, err
		}
	}
	if cfg.Export.PrometheusTextfile != "" {
		exporter, err := metricsexport.New()
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("creating metrics exporter: %w", err)
		}
		s.exporter = exporter
	}
	return s, nil
}

func (s *session) openStore() error {
	compression, err := s.config.Compression()
	if err != nil {
		return err
	}
	store, err := resultstore.Open(resultstore.Config{
		Path:        s.config.Paths.Database,
		Compression: compression,
		Logger:      s.logger,
	})
	if err != nil {
		return err
	}
	s.store = store
	return nil
}

// Close releases the result store.
func (s *session) Close() {
	if s.store == nil {
		return
	}
	if err := s.store.Close(); err != nil {
		s.logger.Warn("closing result store", "error", err)
	}
}

func (s *session) profilingConfig() profiling.Config {
	return profiling.Config{
		SampleInterval:      s.config.Sampling.Interval,
		MemoryInterval:      s.config.Sampling.MemoryInterval,
		StopTimeout:         s.config.Sampling.StopTimeout,
		DisableCycleCounter: !s.config.Sampling.CycleCounter,
		Logger:              s.logger,
	}
}

// newRunner builds an orchestrator and a runner over it. The returned
// function closes the orchestrator.
func (s *session) newRunner() (*evaluation.Runner, func() error, error) {
	orchestrator, err := profiling.New(s.profilingConfig())
	if err != nil {
		return nil, nil, err
	}
	runner := evaluation.NewRunner(evaluation.Config{Executor: orchestrator, Logger: s.logger})
	return runner, orchestrator.Close, nil
}

// published lists where one result went.
type published struct {
	Reports []string `json:"reports,omitempty"`
	Stored  bool     `json:"stored"`
}

// publish records a result: it runs save against the store, renders the
// report, and exports the evaluations' metrics. Every step runs even if
// an earlier one fails.
func (s *session) publish(ctx context.Context, id string, evaluations []evaluation.Evaluation,
	save func(context.Context, *resultstore.Store) error,
	render func(io.Writer, report.Options) error,
) (published, error) {
	var result published
	var errs []error

	if s.store != nil {
		if err := save(ctx, s.store); err != nil {
			errs = append(errs, fmt.Errorf("saving %s: %w", id, err))
		} else {
			result.Stored = true
		}
	}

	if !s.noReport {
		var buffer bytes.Buffer
		if err := render(&buffer, report.Options{ChartPoints: s.config.Report.ChartPoints}); err != nil {
			errs = append(errs, fmt.Errorf("rendering report: %w", err))
		} else {
			paths, err := report.WriteFiles(s.config.Paths.Reports, id, buffer.Bytes(), s.config.Report.HTML)
			result.Reports = paths
			if err != nil {
				errs = append(errs, err)
			}
		}
	}

	if s.exporter != nil {
		s.exporter.ObserveAll(evaluations)
		if err := s.exporter.WriteTextfile(s.config.Export.PrometheusTextfile); err != nil {
			errs = append(errs, fmt.Errorf("writing metrics textfile: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return result, err
	}
	s.logger.Info("result published", "id", id, "stored", result.Stored, "reports", result.Reports)
	return result, nil
}

func (s *session) publishEvaluation(ctx context.Context, e evaluation.Evaluation) (published, error) {
	return s.publish(ctx, e.ID, []evaluation.Evaluation{e},
		func(ctx context.Context, store *resultstore.Store) error { return store.SaveEvaluation(ctx, e) },
		func(w io.Writer, options report.Options) error { return report.Single(w, e, options) })
}

func (s *session) publishSeries(ctx context.Context, series evaluation.Series) (published, error) {
	return s.publish(ctx, series.ID, series.Evaluations,
		func(ctx context.Context, store *resultstore.Store) error { return store.SaveSeries(ctx, series) },
		func(w io.Writer, options report.Options) error { return report.Series(w, series, options) })
}

func (s *session) publishComparison(ctx context.Context, comparison evaluation.Comparison) (published, error) {
	return s.publish(ctx, comparison.ID, comparison.Evaluations,
		func(ctx context.Context, store *resultstore.Store) error { return store.SaveComparison(ctx, comparison) },
		func(w io.Writer, options report.Options) error { return report.Comparison(w, comparison, options) })
}

// signalContext is cancelled on SIGINT or SIGTERM. Workloads stop
// between operations when it is.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
