package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/schemasync/internal/core/ports/driving"
	"github.com/custodia-labs/schemasync/internal/schemacodec"
)

var snapshotFlags struct {
	note   string
	json   bool
	dryRun bool
	prune  bool
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Capture and compare schema snapshots",
	Long: `Snapshots record the live schema of the bound collection so it can be
inspected, compared with the live schema later, or restored.`,
}

var snapshotSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Capture the live schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if snapshotService == nil {
			return errSnapshotNotConfigured
		}
		snapshot, err := snapshotService.Capture(cmd.Context(), snapshotFlags.note)
		if err != nil {
			return err
		}
		cmd.Println(successStyle.Render("Saved snapshot " + snapshot.ID))
		return nil
	},
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List snapshots of the collection",
	Args:  cobra.NoArgs,
	RunE:  runSnapshotList,
}

var snapshotShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a snapshot's fields",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnapshotShow,
}

var snapshotDiffCmd = &cobra.Command{
	Use:   "diff <id>",
	Short: "Show the changes that would restore a snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if snapshotService == nil {
			return errSnapshotNotConfigured
		}
		diff, err := snapshotService.Diff(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printDiff(cmd, diff)
		return nil
	},
}

var snapshotRestoreCmd = &cobra.Command{
	Use:   "restore <id>",
	Short: "Converge the live schema back to a snapshot",
	Long: `Applies the changes between the live schema and a stored snapshot, the same
way 'schemasync sync' applies a desired-schema file. Use --prune to also remove
fields added since the snapshot was taken.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if snapshotService == nil {
			return errSnapshotNotConfigured
		}
		if syncService == nil {
			return errSyncNotConfigured
		}
		snapshot, err := snapshotService.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		prevDryRun := syncFlags.dryRun
		syncFlags.dryRun = snapshotFlags.dryRun
		defer func() { syncFlags.dryRun = prevDryRun }()

		return syncSchema(cmd.Context(), cmd, snapshot.Schema, driving.SyncOptions{Prune: snapshotFlags.prune})
	},
}

var snapshotDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if snapshotService == nil {
			return errSnapshotNotConfigured
		}
		if err := snapshotService.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		cmd.Println(successStyle.Render("Deleted snapshot " + args[0]))
		return nil
	},
}

func init() {
	snapshotSaveCmd.Flags().StringVarP(&snapshotFlags.note, "note", "m", "", "note stored with the snapshot")
	snapshotShowCmd.Flags().BoolVar(&snapshotFlags.json, "json", false, "output the schema document as JSON")
	snapshotRestoreCmd.Flags().BoolVar(&snapshotFlags.dryRun, "dry-run", false, "show the plan without applying it")
	snapshotRestoreCmd.Flags().BoolVar(&snapshotFlags.prune, "prune", false, "remove fields absent from the snapshot")

	snapshotCmd.AddCommand(snapshotSaveCmd)
	snapshotCmd.AddCommand(snapshotListCmd)
	snapshotCmd.AddCommand(snapshotShowCmd)
	snapshotCmd.AddCommand(snapshotDiffCmd)
	snapshotCmd.AddCommand(snapshotRestoreCmd)
	snapshotCmd.AddCommand(snapshotDeleteCmd)
	rootCmd.AddCommand(snapshotCmd)
}

func runSnapshotList(cmd *cobra.Command, _ []string) error {
	if snapshotService == nil {
		return errSnapshotNotConfigured
	}

	snapshots, err := snapshotService.List(cmd.Context())
	if err != nil {
		return err
	}
	if len(snapshots) == 0 {
		cmd.Println("No snapshots found.")
		return nil
	}

	t := newTable("ID", "CAPTURED", "FIELDS", "NOTE")
	for i := range snapshots {
		t.Row(
			snapshots[i].ID,
			snapshots[i].CapturedAt.Local().Format(time.DateTime),
			fmt.Sprint(len(snapshots[i].Schema.FieldNames())),
			snapshots[i].Note,
		)
	}
	cmd.Println(t.String())
	return nil
}

func runSnapshotShow(cmd *cobra.Command, args []string) error {
	if snapshotService == nil {
		return errSnapshotNotConfigured
	}

	snapshot, err := snapshotService.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if snapshotFlags.json {
		data, err := schemacodec.Encode(snapshot.Schema)
		if err != nil {
			return fmt.Errorf("failed to encode schema: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println(titleStyle.Render("Snapshot " + snapshot.ID))
	cmd.Println(mutedStyle.Render(fmt.Sprintf("collection: %s  captured: %s",
		snapshot.Collection, snapshot.CapturedAt.Local().Format(time.DateTime))))
	if snapshot.Note != "" {
		cmd.Println(mutedStyle.Render("note: " + snapshot.Note))
	}
	cmd.Println()
	printFieldTable(cmd, snapshot.Schema.Fields())
	return nil
}
