package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/custodia-labs/schemasync/internal/adapters/driven/config/file"
	"github.com/custodia-labs/schemasync/internal/adapters/driven/embedded"
	"github.com/custodia-labs/schemasync/internal/adapters/driven/solr"
	"github.com/custodia-labs/schemasync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/schemasync/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/schemasync/internal/adapters/driving/cli"
	"github.com/custodia-labs/schemasync/internal/core/domain"
	"github.com/custodia-labs/schemasync/internal/core/ports/driven"
	"github.com/custodia-labs/schemasync/internal/core/services"
	"github.com/custodia-labs/schemasync/internal/logger"
)

// wire builds the core services for one invocation from the global flags.
func wire(opts cli.Options) (*cli.Services, error) {
	var configStore driven.ConfigStore
	if opts.Ephemeral {
		configStore = memory.NewConfigStore()
	} else {
		fs, err := file.NewConfigStore(opts.ConfigDir)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		configStore = fs
	}

	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	applyOverrides(settings, opts)

	transport, err := newTransport(settings)
	if err != nil {
		return nil, err
	}

	snapshots, err := newSnapshotStore(opts)
	if err != nil {
		transport.Close()
		return nil, err
	}

	ops := services.NewSchemaOperations(settings.Solr.Collection, transport)
	logger.Debug("wired %s engine for collection %s", settings.Engine, settings.Solr.Collection)

	return &cli.Services{
		Settings:  settingsService,
		Schema:    ops,
		Sync:      services.NewSchemaSynchronizer(ops),
		Snapshots: services.NewSnapshotService(ops, snapshots),
		Close: func() error {
			errs := []error{transport.Close()}
			if c, ok := snapshots.(io.Closer); ok {
				errs = append(errs, c.Close())
			}
			return errors.Join(errs...)
		},
	}, nil
}

// applyOverrides layers command line flags over stored settings.
func applyOverrides(settings *domain.AppSettings, opts cli.Options) {
	if opts.URL != "" {
		settings.Solr.URL = opts.URL
		settings.Engine = domain.EngineSolr
	}
	if opts.Collection != "" {
		settings.Solr.Collection = opts.Collection
	}
	if opts.Embedded {
		settings.Engine = domain.EngineEmbedded
	}
}

func newTransport(settings *domain.AppSettings) (driven.SchemaTransport, error) {
	if settings.Engine == domain.EngineEmbedded {
		seed := embedded.DefaultSeed()
		if path := settings.Embedded.Seed; path != "" {
			var err error
			if seed, err = embedded.LoadSeed(path); err != nil {
				return nil, fmt.Errorf("load embedded seed: %w", err)
			}
		}
		return embedded.NewEngine(seed), nil
	}

	t, err := solr.New(solr.Config{
		BaseURL:           settings.Solr.URL,
		Username:          settings.Solr.Username,
		Password:          settings.Solr.Password,
		Token:             settings.Solr.Token,
		Timeout:           time.Duration(settings.Solr.TimeoutSeconds) * time.Second,
		RequestsPerSecond: settings.Solr.RequestsPerSecond,
	})
	if err != nil {
		return nil, fmt.Errorf("configure solr transport: %w", err)
	}
	return t, nil
}

func newSnapshotStore(opts cli.Options) (driven.SnapshotStore, error) {
	if opts.Ephemeral {
		return memory.NewSnapshotStore(), nil
	}
	var dataDir string
	if opts.ConfigDir != "" {
		dataDir = filepath.Join(opts.ConfigDir, "data")
	}
	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		return nil, fmt.Errorf("open snapshot store: %w", err)
	}
	return store, nil
}
