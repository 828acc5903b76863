package cli

import (
	"github.com/spf13/cobra"

	"github.com/Aleph-Alpha/colbert-search/v1/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Start the indexing and search API. The configured collection is dropped and
recreated empty before the listener opens.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := app.New(cfg)
		if err := a.Err(); err != nil {
			return err
		}
		a.Run()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
