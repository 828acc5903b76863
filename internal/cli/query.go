package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Aleph-Alpha/colbert-search/v1/server"
)

var (
	queryTexts []string
	queryTopK  int
	queryBatch bool
	queryJSON  bool
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Search a running server",
	Long: `Send one or more queries and print the ranked documents for each.

Examples:
  colbert-search query -q "how do cats sleep"
  colbert-search query -q "cats" -q "markets" -k 5 --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(queryTexts) == 0 {
			return fmt.Errorf("at least one -q is required")
		}

		c := newClient()
		var (
			results []server.QueryResult
			err     error
		)
		if queryBatch {
			results, err = c.BatchSearch(cmd.Context(), queryTexts, queryTopK)
		} else {
			results, err = c.Search(cmd.Context(), queryTexts, queryTopK)
		}
		if err != nil {
			return err
		}
		return writeResults(cmd.OutOrStdout(), results, queryJSON)
	},
}

func init() {
	rootCmd.AddCommand(queryCmd)
	addClientFlags(queryCmd)
	queryCmd.Flags().StringArrayVarP(&queryTexts, "query", "q", nil, "query text (repeatable)")
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "results per query (default server's pipeline.default_top_k)")
	queryCmd.Flags().BoolVar(&queryBatch, "batch", false, "use /batch_search/ instead of /search/")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "print the raw JSON response")
}

const previewLen = 120

func writeResults(out io.Writer, results []server.QueryResult, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	for i, r := range results {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "Query: %q\n", r.Query)
		if r.Error != "" {
			fmt.Fprintf(out, "  error: %s\n", r.Error)
			continue
		}
		if len(r.Results) == 0 {
			fmt.Fprintln(out, "  no results")
			continue
		}
		for rank, hit := range r.Results {
			fmt.Fprintf(out, "  %d. [%.4f] %s\n", rank+1, hit.Score, hit.DocID)
			if p := preview(hit.Text); p != "" {
				fmt.Fprintf(out, "     %s\n", p)
			}
		}
	}
	return nil
}

func preview(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) > previewLen {
		return string(runes[:previewLen]) + "..."
	}
	return text
}
