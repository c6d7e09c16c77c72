package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/schemasync/internal/core/domain"
)

func formatVersion(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func jsonIndent(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal: %w", err)
	}
	return string(data), nil
}

// printDiff lists every change in diff, one per line.
func printDiff(cmd *cobra.Command, diff domain.SchemaDiff) {
	if diff.IsEmpty() {
		cmd.Println(mutedStyle.Render("No changes."))
		return
	}

	for _, cf := range diff.RemoveCopyFields {
		cmd.Println(errorStyle.Render("  - copy field " + cf.String()))
	}
	for _, name := range diff.RemoveFields {
		cmd.Println(errorStyle.Render("  - field " + name))
	}
	for _, f := range diff.AddFields {
		cmd.Println(successStyle.Render(fmt.Sprintf("  + field %s (%s)", f.Name(), f.Type())))
	}
	for _, f := range diff.ReplaceFields {
		cmd.Println(warningStyle.Render(fmt.Sprintf("  ~ field %s (%s)", f.Name(), f.Type())))
	}
	for _, cf := range diff.AddCopyFields {
		cmd.Println(successStyle.Render("  + copy field " + cf.String()))
	}
	cmd.Println()
	cmd.Println(diff.Summary())
}
