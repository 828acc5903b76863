package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/Aleph-Alpha/colbert-search/v1/client"
	"github.com/Aleph-Alpha/colbert-search/v1/server"
)

var (
	ingestExcludes  []string
	ingestBatchSize int
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <glob>...",
	Short: "Index files through a running server",
	Long: `Read every file matching the given patterns and send them to /batch_index/.
The relative file path becomes the doc_id. Patterns support ** (doublestar).

Examples:
  colbert-search ingest "docs/**/*.md"
  colbert-search ingest "**/*.txt" --exclude "**/vendor/**" --batch-size 64`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	addClientFlags(ingestCmd)
	ingestCmd.Flags().StringSliceVar(&ingestExcludes, "exclude", nil, "glob patterns to skip (repeatable)")
	ingestCmd.Flags().IntVar(&ingestBatchSize, "batch-size", 0, "documents per request (default pipeline.max_batch_size)")
}

func runIngest(cmd *cobra.Command, args []string) error {
	paths, err := expandPatterns(args, ingestExcludes)
	if err != nil {
		return err
	}
	docs, skipped, err := loadDocuments(paths)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, path := range skipped {
		fmt.Fprintf(out, "skipping empty file %s\n", path)
	}
	if len(docs) == 0 {
		fmt.Fprintln(out, "No documents to index.")
		return nil
	}

	size := ingestBatchSize
	if size <= 0 {
		size = cfg.Pipeline.MaxBatchSize
	}

	summary, err := ingest(cmd.Context(), newClient(), docs, size, out)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Indexed %d of %d documents in %s\n", summary.Indexed, len(docs), summary.Elapsed.Round(time.Millisecond))
	for _, item := range summary.Failures {
		fmt.Fprintf(out, "  failed %s: %s\n", item.DocID, item.Error)
	}
	if len(summary.Failures) > 0 {
		return fmt.Errorf("%d documents failed to index", len(summary.Failures))
	}
	return nil
}

type ingestSummary struct {
	Indexed  int
	Failures []server.BatchIndexItem
	Elapsed  time.Duration
}

// ingest sends docs in batches of size, advancing a progress bar written to
// out. A transport or non-2xx error aborts the run; per-document failures
// are collected.
func ingest(ctx context.Context, c *client.Client, docs []server.IndexRequest, size int, out io.Writer) (ingestSummary, error) {
	var summary ingestSummary
	start := time.Now()

	bar := progressbar.NewOptions(len(docs),
		progressbar.OptionSetWriter(out),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowBytes(false),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("[cyan]Indexing[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(out)
		}),
	)

	for _, batch := range chunk(docs, size) {
		resp, err := c.BatchIndex(ctx, batch)
		if err != nil {
			_ = bar.Exit()
			return summary, fmt.Errorf("batch starting at %s: %w", batch[0].DocID, err)
		}
		summary.Indexed += resp.Count
		for _, item := range resp.Results {
			if item.Status != server.ItemIndexed {
				summary.Failures = append(summary.Failures, item)
			}
		}
		_ = bar.Add(len(batch))
	}

	summary.Elapsed = time.Since(start)
	return summary, nil
}
