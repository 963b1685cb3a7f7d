package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"slices"

	"github.com/patrickward/todomark"
	"github.com/patrickward/todomark/internal/config"
	"github.com/patrickward/todomark/internal/discovery"
)

// app holds the state shared by all subcommands: the persistent flags and what they resolve to.
type app struct {
	rootDir    string
	configPath string
	logFile    string
	verbose    bool

	cfg       *config.Config
	rm        *todomark.RootManager
	logCloser io.Closer
}

// load resolves the scan root, reads the configuration and sets up logging.
func (a *app) load() error {
	rm, err := todomark.NewRootManager(a.rootDir)
	if err != nil {
		return err
	}

	configPath := config.ResolvePath(a.configPath, rm.Path())
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}

	if a.logFile != "" {
		cfg.Log.File = a.logFile
	}

	closer, err := SetupLogging(cfg.Log, a.verbose)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	a.rm = rm
	a.cfg = cfg
	a.logCloser = closer

	log.Printf("Scanning %s with config %s", rm.Path(), configPath)
	return nil
}

// close releases the log file, if any.
func (a *app) close() error {
	if a.logCloser == nil {
		return nil
	}
	err := a.logCloser.Close()
	a.logCloser = nil
	return err
}

// newEngine builds an Engine for cfg that reads files below the scan root.
func (a *app) newEngine(cfg *config.Config) (*todomark.Engine, error) {
	pattern, err := cfg.Pattern()
	if err != nil {
		return nil, err
	}

	keyring := todomark.NewKeyring()
	if cfg.Encryption.IdentityFile != "" {
		if err := keyring.AddIdentitiesFromFile(cfg.Encryption.IdentityFile); err != nil {
			return nil, fmt.Errorf("failed to load identities: %w", err)
		}
	}

	return todomark.NewEngine(pattern, todomark.NewFileLineSource(a.rm, keyring),
		todomark.WithConcurrency(cfg.Embedded.Concurrency),
		todomark.WithTrimmedTypes(cfg.Embedded.TrimTypes),
	)
}

// discover lists the files to scan, leaving out the root-relative paths in skip.
func (a *app) discover(ctx context.Context, cfg *config.Config, skip ...string) ([]string, error) {
	files, err := discovery.Discover(ctx, a.rm, cfg.DiscoveryOptions())
	if err != nil {
		return nil, err
	}

	return slices.DeleteFunc(files, func(f string) bool {
		return slices.Contains(skip, f)
	}), nil
}

// index scans the discovered files and returns the complete index. A cancelled scan is an
// error; its partial index is not used.
func (a *app) index(ctx context.Context, cfg *config.Config, skip ...string) (*todomark.MarkerIndex, error) {
	engine, err := a.newEngine(cfg)
	if err != nil {
		return nil, err
	}

	files, err := a.discover(ctx, cfg, skip...)
	if err != nil {
		return nil, err
	}

	return engine.Index(ctx, files)
}

// block renders the marker block for cfg, leaving out the paths in skip.
func (a *app) block(ctx context.Context, cfg *config.Config, renderCfg todomark.RenderConfig, skip ...string) (string, error) {
	engine, err := a.newEngine(cfg)
	if err != nil {
		return "", err
	}

	files, err := a.discover(ctx, cfg, skip...)
	if err != nil {
		return "", err
	}

	block, err := engine.RenderMarkerBlock(ctx, files, renderCfg)
	if err != nil {
		return "", err
	}
	return block, nil
}

// relPath returns path relative to the scan root, slash-separated. Relative paths are taken
// as relative to the scan root already.
func (a *app) relPath(path string) (string, error) {
	if !filepath.IsAbs(path) {
		return filepath.ToSlash(filepath.Clean(path)), nil
	}

	rel, err := filepath.Rel(a.rm.Path(), path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	return filepath.ToSlash(rel), nil
}
