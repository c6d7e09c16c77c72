package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/schemasync/internal/adapters/driven/schemafile"
	"github.com/custodia-labs/schemasync/internal/core/domain"
	"github.com/custodia-labs/schemasync/internal/core/ports/driving"
	"github.com/custodia-labs/schemasync/internal/logger"
)

var syncFlags struct {
	dryRun bool
	prune  bool
	watch  bool
}

var syncCmd = &cobra.Command{
	Use:   "sync <file>",
	Short: "Converge the live schema towards a desired-schema file",
	Long: `Compares the live schema with a desired-schema TOML file and applies the
difference. Without --prune only additions and replacements are made; with it,
fields and copy fields missing from the file are removed too. System fields
such as _version_ and the collection's unique key field are never removed.

Changes are applied one at a time and the first rejection stops the run.
Earlier changes are not rolled back.

With --watch the file is re-applied every time it is saved.`,
	Args: cobra.ExactArgs(1),
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&syncFlags.dryRun, "dry-run", false, "show the plan without applying it")
	syncCmd.Flags().BoolVar(&syncFlags.prune, "prune", false, "remove fields and copy fields absent from the file")
	syncCmd.Flags().BoolVarP(&syncFlags.watch, "watch", "w", false, "re-apply the file whenever it changes")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	if syncService == nil {
		return errSyncNotConfigured
	}

	path := args[0]
	ctx := cmd.Context()
	syncOpts := driving.SyncOptions{Prune: syncFlags.prune}

	if err := syncFile(ctx, cmd, path, syncOpts); err != nil {
		return err
	}
	if !syncFlags.watch {
		return nil
	}

	cmd.Println(mutedStyle.Render(fmt.Sprintf("Watching %s for changes (Ctrl+C to stop)...", path)))
	return schemafile.Watch(ctx, path, func() {
		cmd.Println()
		cmd.Println(titleStyle.Render(path + " changed"))
		// A bad edit must not end the watch.
		if err := syncFile(ctx, cmd, path, syncOpts); err != nil {
			cmd.PrintErrln(errorStyle.Render("Error: " + err.Error()))
		}
	})
}

// syncFile loads path, prints the plan and applies it unless in dry-run mode.
func syncFile(ctx context.Context, cmd *cobra.Command, path string, syncOpts driving.SyncOptions) error {
	desired, err := schemafile.Load(path)
	if err != nil {
		return err
	}
	return syncSchema(ctx, cmd, desired, syncOpts)
}

func syncSchema(
	ctx context.Context, cmd *cobra.Command, desired domain.SchemaDefinition, syncOpts driving.SyncOptions,
) error {
	plan, err := syncService.Plan(ctx, desired, syncOpts)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	printDiff(cmd, plan)
	if plan.IsEmpty() {
		return nil
	}
	if syncFlags.dryRun {
		cmd.Println(mutedStyle.Render("Dry run: nothing applied."))
		return nil
	}

	applied, err := syncService.Apply(ctx, plan)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	logger.Debug("Sync applied %d change(s)", applied)
	cmd.Println(successStyle.Render(fmt.Sprintf("Applied %d change(s).", applied)))
	return nil
}
