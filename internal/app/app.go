package app

import (
	"errors"
	"fmt"
	"os"
	"time"

	"recheck-go/internal/config"
	"recheck-go/internal/recheck"
	"recheck-go/internal/store"
)

// App is the application layer between the CLI and the recheck Service.
// It resolves configuration, opens the record store, wires up logging, and
// exposes the high-level operations. The caller must call Close when done.
type App struct {
	cfg     *config.Config
	store   recheck.Store
	service *recheck.Service
	logFile *os.File
}

// Options carries CLI-level overrides that take precedence over the config file.
type Options struct {
	// DataFile forces a TOML record store at this path, bypassing the
	// configured store backend.
	DataFile string
}

// New creates a fully wired App. operation identifies the CLI command being
// run (e.g. "Check", "RecordCommit") and tags every log line of this
// invocation.
func New(operation string, opts Options) (*App, error) {
	defaults, err := GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := loadConfig(defaults)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var st recheck.Store
	if opts.DataFile != "" {
		st, err = store.NewTOMLStore(opts.DataFile)
	} else {
		st, err = store.NewStoreFromConfig(cfg.Store, cfg.HostID)
	}
	if err != nil {
		return nil, fmt.Errorf("opening record store: %w", err)
	}

	opID := time.Now().UTC().Format("20060102T150405Z") + "-" + operation
	logger, logFile, err := newLogger(cfg.LogDir, opID)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	svc := recheck.NewService(st, &slogAdapter{l: logger}, recheck.RealClock{})

	return &App{
		cfg:     cfg,
		store:   st,
		service: svc,
		logFile: logFile,
	}, nil
}

// loadConfig reads the config file from its default location. A missing
// file is not an error: the tool works with zero setup, falling back to
// defaults derived from the base directory. A malformed file is fatal.
func loadConfig(defaults map[string]string) (*config.Config, error) {
	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return config.NewConfig("", defaults["base_dir"]), nil
		}
		return nil, err
	}
	return cfg, nil
}

// Check reports whether the named resource should be rechecked now.
// A non-empty seed makes the draw reproducible.
func (a *App) Check(name, seed string) (bool, error) {
	return a.service.Check(name, seed)
}

// RecordCommit creates or updates the record for name and persists the store.
func (a *App) RecordCommit(name string, commitTime time.Time, hash recheck.Hash) error {
	return a.service.RecordCommit(name, commitTime, hash)
}

// SetArchived flips the archived flag on an existing record.
func (a *App) SetArchived(name string, archived bool) error {
	return a.service.SetArchived(name, archived)
}

// SummarizeByChange buckets all records by time since last change.
func (a *App) SummarizeByChange() ([]recheck.BucketCount, error) {
	return a.service.SummarizeByChange()
}

// SummarizeByCheck buckets all records by time since last check.
func (a *App) SummarizeByCheck() ([]recheck.BucketCount, error) {
	return a.service.SummarizeByCheck()
}

// List returns every record sorted by resource name.
func (a *App) List() ([]recheck.ListEntry, error) {
	return a.service.List()
}

// Close releases the record store and the log file.
func (a *App) Close() error {
	var firstErr error
	if err := a.store.Close(); err != nil {
		firstErr = fmt.Errorf("closing store: %w", err)
	}
	if a.logFile != nil {
		if err := a.logFile.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing log file: %w", err)
		}
	}
	return firstErr
}
