package main

import (
	"fmt"
	"time"

	"github.com/Adda-Baaj/tranco-watch/internal/storage"
	"github.com/Adda-Baaj/tranco-watch/pkg/tranco"
	"github.com/spf13/cobra"
)

const dateLayout = "2006-01-02"

// ranksSubcommand returns the ranks [cobra.Command].
func ranksSubcommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ranks <domain>",
		Short: "Show the rank history of a domain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := opts.client().Ranks(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), opts.output, res)
		},
	}
}

// listSubcommand returns the list [cobra.Command].
func listSubcommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list <id>",
		Short: "Show the descriptor of a list by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := opts.client().List(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), opts.output, res)
		},
	}
}

// listDateSubcommand returns the list-date [cobra.Command].
func listDateSubcommand(opts *rootOptions) *cobra.Command {
	var subdomains bool
	cmd := &cobra.Command{
		Use:   "list-date <YYYY-MM-DD>",
		Short: "Show the descriptor of the daily list for a date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := time.Parse(dateLayout, args[0])
			if err != nil {
				return fmt.Errorf("invalid date %q: %w", args[0], err)
			}
			res, err := opts.client().ListForDate(cmd.Context(), day, subdomainsFlag(cmd, subdomains))
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), opts.output, res)
		},
	}
	cmd.Flags().BoolVar(&subdomains, "subdomains", false, "request the list variant with subdomains")
	return cmd
}

// downloadSubcommand returns the download [cobra.Command].
func downloadSubcommand(opts *rootOptions) *cobra.Command {
	var (
		date       string
		limit      int
		subdomains bool
	)
	cmd := &cobra.Command{
		Use:   "download [id]",
		Short: "Download and parse a list by id or by --date",
		Args: func(cmd *cobra.Command, args []string) error {
			if (len(args) == 1) == (date != "") {
				return fmt.Errorf("pass either a list id or --date")
			}
			return cobra.MaximumNArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client := opts.client()

			var (
				list tranco.ListsResponse
				err  error
			)
			if date != "" {
				day, perr := time.Parse(dateLayout, date)
				if perr != nil {
					return fmt.Errorf("invalid --date %q: %w", date, perr)
				}
				list, err = client.ListForDate(ctx, day, subdomainsFlag(cmd, subdomains))
			} else {
				list, err = client.List(ctx, args[0])
			}
			if err != nil {
				return err
			}
			if !list.Ready() {
				return fmt.Errorf("list %s is not ready for download (available=%t failed=%t)", list.ListID, list.Available, list.Failed)
			}

			rows, err := readRows(cmd, client, list, limit)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), opts.output, rows)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "resolve the daily list for YYYY-MM-DD")
	cmd.Flags().IntVar(&limit, "limit", 0, "stop after N rows (0 reads the whole list)")
	cmd.Flags().BoolVar(&subdomains, "subdomains", false, "with --date, request the list variant with subdomains")
	return cmd
}

// readRows streams list, stopping after limit rows when limit is positive.
func readRows(cmd *cobra.Command, client *tranco.Client, list tranco.ListsResponse, limit int) ([]tranco.RankedDomain, error) {
	if limit <= 0 {
		return client.DownloadList(cmd.Context(), list)
	}

	r, err := client.OpenList(cmd.Context(), list)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	rows := make([]tranco.RankedDomain, 0, limit)
	for len(rows) < limit && r.Next() {
		rows = append(rows, r.Record())
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}

// processedSubcommand returns the processed [cobra.Command].
func processedSubcommand(opts *rootOptions) *cobra.Command {
	var (
		path  string
		limit int
	)
	cmd := &cobra.Command{
		Use:   "processed",
		Short: "Show lists already processed by the watcher",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := storage.NewStore("bbolt", path, storage.Options{
				ListTTL:         opts.cfg.StorageTTL,
				CleanupInterval: opts.cfg.StorageCleanupInterval,
			})
			if err != nil {
				return err
			}
			defer store.Close()

			recent, err := store.Recent(limit)
			if err != nil {
				return err
			}
			if recent == nil {
				recent = []storage.ListRecord{}
			}
			return writeOutput(cmd.OutOrStdout(), opts.output, recent)
		},
	}
	cmd.Flags().StringVar(&path, "db", opts.cfg.BBoltPath, "bbolt database written by the watcher")
	cmd.Flags().IntVar(&limit, "limit", 10, "number of records to show (0 shows all)")
	return cmd
}

// subdomainsFlag returns nil unless --subdomains was given explicitly.
func subdomainsFlag(cmd *cobra.Command, value bool) *bool {
	if !cmd.Flags().Changed("subdomains") {
		return nil
	}
	return tranco.Bool(value)
}
