// Package app implements the application layer for stash.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.trai.ch/stash/internal/adapters/config" //nolint:depguard // Wired in app layer
	"go.trai.ch/stash/internal/adapters/fs"     //nolint:depguard // Wired in app layer
	"go.trai.ch/stash/internal/adapters/store"  //nolint:depguard // Wired in app layer
	"go.trai.ch/stash/internal/core/domain"
	"go.trai.ch/stash/internal/core/ports"
	"go.trai.ch/stash/internal/engine/memo"
	"go.trai.ch/zerr"
)

// StoreFactory builds a cache store for resolved settings. The store and
// the fingerprinter depend on the loaded configuration (cache directory,
// TTLs), so the App constructs them per run instead of receiving
// singletons.
type StoreFactory func(settings domain.CacheSettings) ports.CacheStore

// FingerprinterFactory builds a fingerprinter that ignores the named
// cache directory.
type FingerprinterFactory func(cacheDirName string) ports.Fingerprinter

// App represents the main application logic.
type App struct {
	loader    ports.ConfigLoader
	analyzer  ports.Analyzer
	logger    ports.Logger
	telemetry ports.Telemetry

	out              io.Writer
	newStore         StoreFactory
	newFingerprinter FingerprinterFactory
}

// RunOptions tune one Run invocation.
type RunOptions struct {
	// Force recomputes every requested operation, ignoring cached
	// entries.
	Force bool
	// Differential opts this run into stale-entry reuse even when the
	// configuration leaves it off.
	Differential bool
}

// New creates a new App instance.
func New(loader ports.ConfigLoader, analyzer ports.Analyzer, logger ports.Logger, telemetry ports.Telemetry) *App {
	return &App{
		loader:    loader,
		analyzer:  analyzer,
		logger:    logger,
		telemetry: telemetry,
		out:       os.Stdout,
		newStore: func(settings domain.CacheSettings) ports.CacheStore {
			return store.New(settings, logger)
		},
		newFingerprinter: func(cacheDirName string) ports.Fingerprinter {
			return fs.NewFingerprinter(fs.NewWalker(cacheDirName), logger)
		},
	}
}

// WithOutput redirects result payloads away from stdout.
func (a *App) WithOutput(w io.Writer) *App {
	a.out = w
	return a
}

// WithStoreFactory overrides how cache stores are built.
func (a *App) WithStoreFactory(f StoreFactory) *App {
	a.newStore = f
	return a
}

// WithFingerprinterFactory overrides how fingerprinters are built.
func (a *App) WithFingerprinterFactory(f FingerprinterFactory) *App {
	a.newFingerprinter = f
	return a
}

// SetConfigPath points the app at a different configuration file,
// relative to the working directory unless absolute.
func (a *App) SetConfigPath(path string) {
	a.loader = &config.FileConfigLoader{Filename: path}
}

// Close flushes the telemetry recorder. Call it once the App is done.
func (a *App) Close() error {
	return a.telemetry.Close()
}

// Run executes the named operations, serving results from the cache
// where possible, and writes each result payload to the output.
func (a *App) Run(ctx context.Context, operations []string, opts RunOptions) error {
	project, settings, err := a.openProject()
	if err != nil {
		return err
	}

	if len(operations) == 0 {
		return domain.ErrNoOperationsSpecified
	}

	cacheStore := a.newStore(settings)
	fingerprinter := a.newFingerprinter(filepath.Base(settings.Dir))
	memoizer := memo.New(fingerprinter, cacheStore, a.logger)

	for _, name := range operations {
		spec, ok := project.Operation(name)
		if !ok {
			return zerr.With(zerr.Wrap(domain.ErrUnknownOperation, "operation not configured"), "operation", name)
		}

		opCtx, vertex := a.telemetry.Record(ctx, name)
		res, err := memoizer.Do(opCtx, project.Root, name, spec.Params, memo.Options{
			Force:        opts.Force,
			Differential: opts.Differential || project.Cache.Differential,
		}, func(ctx context.Context) ([]byte, error) {
			return a.analyzer.Analyze(ctx, project.Root, spec)
		})
		if err != nil {
			vertex.Complete(err)
			return zerr.Wrap(err, "analysis failed")
		}
		if res.Mode != domain.ModeComputed {
			vertex.Cached()
		}
		vertex.Complete(nil)

		if _, err := a.out.Write(res.Payload); err != nil {
			return zerr.Wrap(err, "failed to write result")
		}
	}

	stats := memoizer.Stats()
	a.logger.Info(fmt.Sprintf("%d/%d served from cache", stats.CacheHits, stats.TotalRequests), "app")
	return nil
}

// Stats reports cache statistics derived from the persisted index.
// Session counters are zero here: this call opens its own session.
func (a *App) Stats() (domain.CacheStats, []domain.IndexRecord, error) {
	_, settings, err := a.openProject()
	if err != nil {
		return domain.CacheStats{}, nil, err
	}

	records := a.newStore(settings).Index()

	var saved float64
	for _, rec := range records {
		saved += rec.ExecutionSeconds
	}
	return domain.CacheStats{TimeSavedSeconds: saved}, records, nil
}

// Sweep removes persisted entries older than the configured maximum age
// and reports how many were removed.
func (a *App) Sweep() (int, error) {
	_, settings, err := a.openProject()
	if err != nil {
		return 0, err
	}
	return a.newStore(settings).Sweep(settings.MaxAge())
}

// openProject loads the configuration and resolves the cache directory
// against the project root.
func (a *App) openProject() (*domain.Project, domain.CacheSettings, error) {
	project, err := a.loader.Load(".")
	if err != nil {
		return nil, domain.CacheSettings{}, zerr.Wrap(err, "failed to load configuration")
	}

	settings := project.Cache
	if !filepath.IsAbs(settings.Dir) {
		settings.Dir = filepath.Join(project.Root, settings.Dir)
	}
	return project, settings, nil
}
