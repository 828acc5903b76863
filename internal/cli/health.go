package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check a running server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := newClient().Health(cmd.Context())
		if resp != nil {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if encErr := enc.Encode(resp); encErr != nil {
				return encErr
			}
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
	addClientFlags(healthCmd)
}
