package main

import (
	"fmt"
	"time"

	"github.com/Adda-Baaj/tranco-watch/internal/config"
	"github.com/Adda-Baaj/tranco-watch/pkg/httpclient"
	"github.com/Adda-Baaj/tranco-watch/pkg/tranco"
	"github.com/spf13/cobra"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	cfg       *config.Config
	baseURL   string
	timeout   time.Duration
	output    string
	userAgent string
}

// client builds a Tranco client from the flags.
func (o *rootOptions) client() *tranco.Client {
	transport := httpclient.NewRestyClient(o.timeout).SetUserAgent(o.userAgent)
	return tranco.NewClient(
		tranco.WithHTTPClient(transport),
		tranco.WithBaseURL(o.baseURL),
	)
}

// newRootCommand returns the tranco [cobra.Command] with defaults taken from cfg.
func newRootCommand(cfg *config.Config) *cobra.Command {
	opts := &rootOptions{cfg: cfg}

	root := &cobra.Command{
		Use:           "tranco",
		Short:         "Query the Tranco domain ranking service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			switch opts.output {
			case formatJSON, formatYAML:
				return nil
			default:
				return fmt.Errorf("unsupported --output %q (expected %s or %s)", opts.output, formatJSON, formatYAML)
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.baseURL, "base-url", cfg.APIBaseURL, "Tranco API base URL")
	flags.DurationVar(&opts.timeout, "timeout", cfg.HTTPTimeout, "per-request timeout (0 disables)")
	flags.StringVarP(&opts.output, "output", "o", formatJSON, "output format: json or yaml")
	flags.StringVar(&opts.userAgent, "user-agent", cfg.UserAgent, "User-Agent header")

	root.AddCommand(
		ranksSubcommand(opts),
		listSubcommand(opts),
		listDateSubcommand(opts),
		downloadSubcommand(opts),
		processedSubcommand(opts),
	)
	return root
}
