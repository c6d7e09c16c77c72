// Package cli implements the schemasync command line interface.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/schemasync/internal/core/ports/driving"
	"github.com/custodia-labs/schemasync/internal/logger"
)

// version is set at build time.
var version = "dev"

// Core services used by the commands. Populated by the Factory before a
// command runs, or directly by tests.
var (
	settingsService driving.SettingsService
	schemaService   driving.SchemaOperations
	syncService     driving.SchemaSynchronizer
	snapshotService driving.SnapshotService
)

// Options are the resolved global flags passed to the Factory.
type Options struct {
	// ConfigDir holds config.toml and the snapshot database. Empty uses ~/.schemasync.
	ConfigDir string

	// URL overrides the configured engine base URL.
	URL string

	// Collection overrides the configured collection.
	Collection string

	// Embedded selects the in-process engine regardless of configuration.
	Embedded bool

	// Ephemeral keeps configuration and snapshots in memory.
	Ephemeral bool
}

// Services is the set of wired core services.
type Services struct {
	Settings  driving.SettingsService
	Schema    driving.SchemaOperations
	Sync      driving.SchemaSynchronizer
	Snapshots driving.SnapshotService

	// Close releases transports and stores. May be nil.
	Close func() error
}

// Factory wires services for one invocation.
type Factory func(opts Options) (*Services, error)

var (
	factory Factory
	wired   *Services
	opts    Options
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "schemasync",
	Short: "Inspect and synchronise search engine schemas",
	Long: `schemasync reads a collection's live schema, adds and removes field and
copy field definitions, and converges the schema towards a desired-schema file.

The engine is a Solr-compatible Schema API endpoint, or an in-process engine
seeded from a schema document (--embedded).`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
		return teardown()
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "log every schema request to stderr")
	flags.StringVar(&opts.ConfigDir, "config-dir", "", "configuration directory (default ~/.schemasync)")
	flags.StringVar(&opts.URL, "url", "", "engine base URL (overrides solr.url)")
	flags.StringVarP(&opts.Collection, "collection", "c", "", "collection to manage (overrides solr.collection)")
	flags.BoolVar(&opts.Embedded, "embedded", false, "use the in-process engine")
	flags.BoolVar(&opts.Ephemeral, "ephemeral", false, "keep configuration and snapshots in memory")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command with f wiring the services.
func Execute(ctx context.Context, f Factory) error {
	factory = f
	return rootCmd.ExecuteContext(ctx)
}

// annotationNoServices marks commands that run without wired services.
const annotationNoServices = "schemasync/no-services"

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	if factory == nil || cmd.Annotations[annotationNoServices] != "" {
		return nil
	}

	svc, err := factory(opts)
	if err != nil {
		return err
	}
	wired = svc
	settingsService = svc.Settings
	schemaService = svc.Schema
	syncService = svc.Sync
	snapshotService = svc.Snapshots
	return nil
}

func teardown() error {
	if wired == nil || wired.Close == nil {
		return nil
	}
	err := wired.Close()
	wired = nil
	return err
}

// Errors returned when a command runs without its service wired.
var (
	errSchemaNotConfigured   = errors.New("schema service not configured")
	errSyncNotConfigured     = errors.New("sync service not configured")
	errSnapshotNotConfigured = errors.New("snapshot service not configured")
	errSettingsNotConfigured = errors.New("settings service not configured")
)
