package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"idfworkspace/internal/config"
	"idfworkspace/internal/logging"
	"idfworkspace/internal/observability"
	"idfworkspace/internal/persistence"
	"idfworkspace/pkg/domain"
	"idfworkspace/pkg/idf"
	"idfworkspace/pkg/schema"
	"idfworkspace/pkg/schema/schemafile"
	"idfworkspace/pkg/workspace"
)

// errViolations marks a completed validation that found problems.
var errViolations = errors.New("model has violations")

type app struct {
	lookup func(string) (string, bool)
	stdout io.Writer
	stderr io.Writer

	cfg     config.Config
	log     *slog.Logger
	metrics workspace.MetricsRecorder
	flush   func(io.Writer) error

	// flag values
	storage     string
	sqlitePath  string
	postgresDSN string
	blobDriver  string
	blobRoot    string
	logLevel    string
	logFormat   string
	metricsKind string
	metricsOut  string
	schemaPath  string
	level       string
	now         func() time.Time
}

func run(args []string, stdout, stderr io.Writer, lookup func(string) (string, bool)) int {
	a := &app{lookup: lookup, stdout: stdout, stderr: stderr, now: time.Now}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.Execute()
	if ferr := a.writeMetrics(); err == nil {
		err = ferr
	}
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errViolations):
		return 1
	default:
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 2
	}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "idfws",
		Short:         "Schema-governed IDF workspace tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&a.storage, "storage", "", "snapshot storage driver: memory|sqlite|postgres|blob (env IDFWS_STORAGE_DRIVER)")
	pf.StringVar(&a.sqlitePath, "sqlite-path", "", "sqlite database file (env IDFWS_SQLITE_PATH)")
	pf.StringVar(&a.postgresDSN, "postgres-dsn", "", "postgres connection string (env IDFWS_POSTGRES_DSN)")
	pf.StringVar(&a.blobDriver, "blob-driver", "", "blob driver for blob storage: fs|s3|memory (env IDFWS_BLOB_DRIVER)")
	pf.StringVar(&a.blobRoot, "blob-root", "", "directory for the fs blob driver (env IDFWS_BLOB_FS_ROOT)")
	pf.StringVar(&a.logLevel, "log-level", "", "debug|info|warn|error (env IDFWS_LOG_LEVEL)")
	pf.StringVar(&a.logFormat, "log-format", "", "text|json (env IDFWS_LOG_FORMAT)")
	pf.StringVar(&a.metricsKind, "metrics", "none", "metrics recorder: none|expvar|prometheus")
	pf.StringVar(&a.metricsOut, "metrics-out", "", "write recorded metrics to this file on exit")

	root.AddCommand(a.validateCmd(), a.saveCmd(), a.loadCmd(), a.listCmd(), a.deleteCmd(), a.namesCmd())
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.FromLookup(a.lookup)
	if err != nil {
		return err
	}
	override := func(flag string, dst *string, v string) {
		if cmd.Flags().Changed(flag) {
			*dst = v
		}
	}
	override("storage", &cfg.StorageDriver, a.storage)
	override("sqlite-path", &cfg.SQLitePath, a.sqlitePath)
	override("postgres-dsn", &cfg.PostgresDSN, a.postgresDSN)
	override("blob-driver", &cfg.Blob.Driver, a.blobDriver)
	override("blob-root", &cfg.Blob.FSRoot, a.blobRoot)
	override("log-level", &cfg.LogLevel, a.logLevel)
	override("log-format", &cfg.LogFormat, a.logFormat)
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	if a.log, err = logging.New(a.stderr, cfg.LogLevel, cfg.LogFormat); err != nil {
		return err
	}
	return a.setupMetrics()
}

func (a *app) setupMetrics() error {
	switch a.metricsKind {
	case "", "none":
		a.metrics = observability.Nop{}
	case "expvar":
		rec := observability.NewExpvarRecorder("")
		a.metrics = rec
		a.flush = func(w io.Writer) error {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(rec.Snapshot())
		}
	case "prometheus":
		reg := prometheus.NewRegistry()
		rec, err := observability.NewPrometheusRecorder(reg)
		if err != nil {
			return err
		}
		a.metrics = rec
		a.flush = func(w io.Writer) error {
			families, err := reg.Gather()
			if err != nil {
				return err
			}
			for _, mf := range families {
				if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
					return err
				}
			}
			return nil
		}
	default:
		return fmt.Errorf("unknown metrics recorder %q", a.metricsKind)
	}
	return nil
}

func (a *app) writeMetrics() error {
	if a.flush == nil || a.metricsOut == "" {
		return nil
	}
	f, err := os.Create(a.metricsOut)
	if err != nil {
		return err
	}
	if err := a.flush(f); err != nil {
		return errors.Join(err, f.Close())
	}
	return f.Close()
}

func (a *app) loadSchema() (schema.Provider, error) {
	if a.schemaPath == "" {
		return nil, errors.New("--schema is required")
	}
	return schemafile.LoadFile(a.schemaPath)
}

// strictness resolves --level, falling back to IDFWS_STRICTNESS.
func (a *app) strictness() (domain.StrictnessLevel, error) {
	if a.level != "" {
		return domain.ParseStrictness(a.level)
	}
	return domain.ParseStrictness(a.cfg.Strictness)
}

func (a *app) workspaceOptions(level domain.StrictnessLevel) []workspace.Option {
	return []workspace.Option{
		workspace.WithStrictness(level),
		workspace.WithLogger(a.log),
		workspace.WithMetrics(a.metrics),
	}
}

// readModel builds a workspace from an IDF file at the given level.
func (a *app) readModel(provider schema.Provider, path string, level domain.StrictnessLevel) (*workspace.Workspace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	stream, err := idf.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	ws, err := workspace.FromRecordStream(provider, stream, a.workspaceOptions(level)...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ws, nil
}

func (a *app) openStore(ctx context.Context, provider schema.Provider) (persistence.Store, error) {
	return persistence.Open(ctx, a.cfg, provider)
}
