package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/config-cache-drift/internal/application"
	"github.com/eugenenazirov/config-cache-drift/internal/config"
	"github.com/eugenenazirov/config-cache-drift/internal/logging"
	"github.com/eugenenazirov/config-cache-drift/internal/snapshot"
)

const (
	exitOK    = 0
	exitFatal = 1
	exitDrift = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	kingpinApp := kingpin.New("envdrift", "Reports drift between a .env file and the compiled config cache")
	kingpinApp.UsageWriter(stderr)
	kingpinApp.ErrorWriter(stderr)

	overrides := &config.CLIOverrides{}
	var timeoutSet, exitCodeSet, searchSet bool

	configFile := kingpinApp.Flag("config", "Path to YAML configuration file").String()
	root := kingpinApp.Flag("root", "Project root that relative input paths are resolved against").String()
	envFile := kingpinApp.Flag("env-file", "Environment file relative to the root").String()
	configDir := kingpinApp.Flag("config-dir", "Directory of section sources relative to the root").String()
	cache := kingpinApp.Flag("cache", "Compiled config cache relative to the root").String()
	extension := kingpinApp.Flag("extension", "Extension of section source files").String()
	php := kingpinApp.Flag("php", "PHP interpreter used to evaluate the cache").String()
	logLevel := kingpinApp.Flag("log-level", "Log level (debug, info, warn, error)").String()
	timeout := kingpinApp.Flag("evaluator-timeout", "Abort the evaluator after this long (0 waits forever)").IsSetByUser(&timeoutSet).Duration()
	exitCode := kingpinApp.Flag("exit-code", "Exit with status 2 when differences are found").IsSetByUser(&exitCodeSet).Bool()
	searchParents := kingpinApp.Flag("search-parents", "Look for the project root in parent directories").IsSetByUser(&searchSet).Bool()

	if _, err := kingpinApp.Parse(args); err != nil {
		fmt.Fprintf(stderr, "envdrift: %v\n", err)
		return exitFatal
	}

	overrides.ConfigFile = *configFile
	overrides.ProjectRoot = root
	overrides.EnvFile = envFile
	overrides.ConfigDir = configDir
	overrides.CachePath = cache
	overrides.SectionExtension = extension
	overrides.PHPBinary = php
	overrides.LogLevel = logLevel
	if timeoutSet {
		overrides.EvaluatorTimeout = timeout
	}
	if exitCodeSet {
		overrides.ExitCodeOnDiff = exitCode
	}
	if searchSet {
		overrides.SearchParents = searchParents
	}

	cfg, err := config.Load(overrides)
	if err != nil {
		fmt.Fprintf(stderr, "envdrift: failed to load configuration: %v\n", err)
		return exitFatal
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(stderr, "envdrift: failed to initialize logger: %v\n", err)
		return exitFatal
	}
	defer func() {
		_ = logger.Sync()
	}()

	app, err := application.New(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize application", zap.Error(err))
		return exitFatal
	}

	report, err := app.Run(ctx)
	if err != nil {
		if errors.Is(err, snapshot.ErrSnapshotMissing) {
			fmt.Fprintf(stdout, "Config cache file not found: %s\n", app.Paths().Cache)
			return exitFatal
		}
		logger.Error("drift check failed", zap.Error(err))
		return exitFatal
	}

	if _, err := report.WriteTo(stdout); err != nil {
		logger.Error("failed to write report", zap.Error(err))
		return exitFatal
	}

	if cfg.ExitCodeOnDiff && report.HasDifferences() {
		return exitDrift
	}
	return exitOK
}
