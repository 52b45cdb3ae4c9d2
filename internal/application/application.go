package application

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/eugenenazirov/config-cache-drift/internal/config"
	"github.com/eugenenazirov/config-cache-drift/internal/envfile"
	"github.com/eugenenazirov/config-cache-drift/internal/reconcile"
	"github.com/eugenenazirov/config-cache-drift/internal/sectionindex"
	"github.com/eugenenazirov/config-cache-drift/internal/snapshot"
)

// Paths are the resolved locations of the three inputs.
type Paths struct {
	EnvFile   string
	ConfigDir string
	Cache     string
}

// App encapsulates the inputs and collaborators of a drift check.
type App struct {
	paths     Paths
	extension string
	timeout   time.Duration
	resolver  *snapshot.Resolver
	logger    *zap.Logger
}

// Option configures App behaviour.
type Option func(*options)

type options struct {
	evaluator snapshot.Evaluator
	workDir   string
}

// WithEvaluator overrides the PHP evaluator, primarily for tests.
func WithEvaluator(evaluator snapshot.Evaluator) Option {
	return func(o *options) {
		o.evaluator = evaluator
	}
}

// WithWorkDir sets the directory the parent search starts from.
func WithWorkDir(dir string) Option {
	return func(o *options) {
		o.workDir = dir
	}
}

// New initializes the application from the provided configuration.
func New(cfg config.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.evaluator == nil {
		o.evaluator = snapshot.NewPHPEvaluator(cfg.PHPBinary)
	}

	if cfg.SearchParents {
		start := o.workDir
		if start == "" {
			wd, err := os.Getwd()
			if err != nil {
				return nil, fmt.Errorf("get working directory: %w", err)
			}
			start = wd
		}
		// An unresolved root falls through so Run reports the missing cache.
		if root, err := resolveProjectRoot(start, cfg.CachePath); err != nil {
			logger.Debug("project root not found in parents", zap.Error(err))
		} else {
			cfg.ProjectRoot = root
		}
	}

	paths := Paths{
		EnvFile:   cfg.EnvFilePath(),
		ConfigDir: cfg.ConfigDirPath(),
		Cache:     cfg.CacheFilePath(),
	}
	logger.Debug("resolved inputs",
		zap.String("env_file", paths.EnvFile),
		zap.String("config_dir", paths.ConfigDir),
		zap.String("cache", paths.Cache),
	)

	return &App{
		paths:     paths,
		extension: cfg.SectionExtension,
		timeout:   cfg.EvaluatorTimeout,
		resolver:  snapshot.NewResolver(o.evaluator, logger),
		logger:    logger,
	}, nil
}

// Paths returns the resolved input locations.
func (a *App) Paths() Paths {
	return a.paths
}

// Run performs one drift check. A missing snapshot is reported before any
// other input is read.
func (a *App) Run(ctx context.Context) (reconcile.Report, error) {
	if err := snapshot.CheckExists(a.paths.Cache); err != nil {
		return reconcile.Report{}, err
	}

	env, err := envfile.Load(a.paths.EnvFile)
	if err != nil {
		return reconcile.Report{}, err
	}
	a.logger.Debug("environment file loaded", zap.Int("keys", env.Len()))

	index, err := sectionindex.Build(a.paths.ConfigDir, a.extension)
	if err != nil {
		return reconcile.Report{}, err
	}
	a.logger.Debug("section index built", zap.Int("keys", len(index)))

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}
	snap, err := a.resolver.Resolve(ctx, a.paths.Cache)
	if err != nil {
		return reconcile.Report{}, err
	}

	report := reconcile.Reconcile(env, index, snap)
	a.logger.Debug("reconciliation finished",
		zap.Int("checked", report.Checked),
		zap.Int("findings", len(report.Findings)),
	)
	return report, nil
}

// resolveProjectRoot walks up from start to the first directory containing
// the relative cache path.
func resolveProjectRoot(start, cache string) (string, error) {
	if filepath.IsAbs(cache) {
		return start, nil
	}
	dir := start
	for {
		if _, err := os.Stat(filepath.Join(dir, cache)); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("unable to locate %s above %s", cache, start)
}
