package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"redust/internal/catalogsync"
	"redust/internal/cdn"
	"redust/internal/ledger"
)

func newSyncCommand(ctx *commandContext) *cobra.Command {
	var opts catalogsync.Options

	cmd := &cobra.Command{
		Use:   "sync [asset names...]",
		Short: "Fetch the current catalog and download skeleton bundles",
		Long: "Fetch the catalog for the live bundle version and download the bundles it lists.\n" +
			"With asset names, only the bundles holding those assets are downloaded; otherwise\n" +
			"bundles are selected by the configured key prefix and suffix.",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Names = args
			return ctx.withLock(func() error {
				return ctx.withLedger(func(store *ledger.Store) error {
					result, err := runSync(ctx, cmd, store, opts)
					if err != nil {
						return err
					}
					printSyncResult(cmd.OutOrStdout(), result)
					return nil
				})
			})
		},
	}
	cmd.Flags().StringVar(&opts.Version, "version", "", "Use this bundle version instead of asking the maintenance endpoint")
	cmd.Flags().BoolVar(&opts.Prune, "prune", false, "Remove cached bundles the catalog no longer lists")
	return cmd
}

// runSync performs a sync with terminal progress bars on stderr.
func runSync(ctx *commandContext, cmd *cobra.Command, store *ledger.Store, opts catalogsync.Options) (catalogsync.Result, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return catalogsync.Result{}, err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return catalogsync.Result{}, err
	}
	bundles, err := ctx.store()
	if err != nil {
		return catalogsync.Result{}, err
	}

	ui := newProgressUI(cmd.ErrOrStderr())
	defer ui.stop()
	opts.Progress = func(bundle string, index, count int, done, total int64) {
		label := fmt.Sprintf("[%d/%d] %s", index+1, count, bundle)
		ui.bytes(bundle, label, done, total)
	}

	client := cdn.New(cfg.CDN, cdn.WithLogger(logger))
	syncer := catalogsync.New(cfg, client, bundles, store, logger)
	return syncer.Sync(ctx.runContext(cmd), opts)
}

func printSyncResult(out io.Writer, result catalogsync.Result) {
	rows := [][]string{
		{"Version", result.Version},
		{"Quality", result.Quality},
		{"Catalog", result.CatalogPath},
		{"Bundles selected", strconv.Itoa(len(result.Paths))},
		{"Downloaded", strconv.Itoa(len(result.Downloaded))},
		{"Already cached", strconv.Itoa(len(result.Cached))},
		{"Stale", strconv.Itoa(len(result.Stale))},
	}
	if len(result.Pruned) > 0 {
		rows = append(rows, []string{"Pruned", strconv.Itoa(len(result.Pruned))})
	}
	fmt.Fprintln(out, renderTable("Sync", []string{"Field", "Value"}, rows, nil))
	if len(result.Missing) > 0 {
		fmt.Fprintln(out, "Assets not found in the catalog:")
		for _, name := range result.Missing {
			fmt.Fprintf(out, " - %s\n", name)
		}
	}
	if len(result.Stale) > 0 && len(result.Pruned) == 0 {
		fmt.Fprintf(out, "%d cached bundle(s) are no longer in the catalog; run `redust sync --prune` to remove them.\n", len(result.Stale))
	}
}
