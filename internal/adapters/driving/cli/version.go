package cli

import (
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the schemasync version",
	Args:  cobra.NoArgs,
	Annotations: map[string]string{
		annotationNoServices: "true",
	},
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("schemasync version %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
