package cli

import (
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Aleph-Alpha/colbert-search/v1/client"
	"github.com/Aleph-Alpha/colbert-search/v1/config"
)

var (
	cfgFile string
	cfg     *config.Config

	apiURL string
	apiKey string
)

var rootCmd = &cobra.Command{
	Use:   "colbert-search",
	Short: "Late-interaction document indexing and semantic search",
	Long: `colbert-search embeds documents with a ColBERT-style model, mean-pools the
token vectors and serves nearest-neighbour search over HTTP.

Example usage:
  colbert-search serve                        # Run the API
  colbert-search ingest "docs/**/*.md"        # Index matching files
  colbert-search query -q "how do cats sleep" # Search the index`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file (environment variables override it)")
}

// addClientFlags registers the flags shared by commands talking to a
// running server.
func addClientFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&apiURL, "url", "", "API base URL (default derived from server.address)")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key (default server.api_key / API_KEY)")
}

func newClient() *client.Client {
	url := apiURL
	if url == "" {
		url = baseURL(cfg.Server.Address)
	}
	key := apiKey
	if key == "" {
		key = cfg.Server.APIKey
	}
	return client.New(url, key, client.WithTimeout(cfg.Server.RequestTimeout))
}

// baseURL turns a listen address such as ":8000" or "0.0.0.0:8000" into a
// URL reachable from the same host.
func baseURL(addr string) string {
	if strings.HasPrefix(addr, "http://") || strings.HasPrefix(addr, "https://") {
		return addr
	}
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}
