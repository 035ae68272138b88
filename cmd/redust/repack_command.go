package main

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"redust/internal/bundle"
	"redust/internal/catalog"
	"redust/internal/catalogsync"
	"redust/internal/config"
	"redust/internal/ledger"
	"redust/internal/logging"
	"redust/internal/mods"
	"redust/internal/repack"
	"redust/internal/services"
)

type repackOptions struct {
	offline bool
	dryRun  bool
	convert bool
}

func newRepackCommand(ctx *commandContext) *cobra.Command {
	var opts repackOptions

	cmd := &cobra.Command{
		Use:   "repack",
		Short: "Apply the mods folder to the game bundles",
		Long: "Scan the mods folder, sync the catalog and bundles, match mod files to\n" +
			"bundle contents, and write modded bundles into the output folder.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLock(func() error {
				return ctx.withLedger(func(store *ledger.Store) error {
					return runRepack(ctx, cmd, store, opts)
				})
			})
		},
	}
	cmd.Flags().BoolVar(&opts.offline, "offline", false, "Use the catalog and bundles already on disk")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Show the matches without writing bundles")
	cmd.Flags().BoolVar(&opts.convert, "convert", false, "Convert pending skeleton JSON files first")
	return cmd
}

func runRepack(ctx *commandContext, cmd *cobra.Command, store *ledger.Store, opts repackOptions) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	runCtx := ctx.runContext(cmd)

	set, err := mods.Scan(cfg.Paths.ModsDir)
	if err != nil {
		return err
	}
	if len(set.PendingJSON) > 0 {
		if opts.convert {
			report := runConvert(ctx, cmd, logger, set.PendingJSON)
			printConvertReport(out, report)
			if set, err = mods.Scan(cfg.Paths.ModsDir); err != nil {
				return err
			}
		} else {
			fmt.Fprintf(out, "%d skeleton JSON file(s) have no binary form; run `redust convert` or pass --convert\n", len(set.PendingJSON))
		}
	}
	printDuplicates(out, logger, set)
	if len(set.Files) == 0 {
		fmt.Fprintf(out, "No mod files found in %s\n", cfg.Paths.ModsDir)
		return nil
	}

	var paths []string
	if opts.offline {
		paths, err = localBundlePaths(ctx, cfg)
	} else {
		var result catalogsync.Result
		result, err = runSync(ctx, cmd, store, catalogsync.Options{})
		paths = result.Paths
	}
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		fmt.Fprintln(out, "No bundles available to repack")
		return nil
	}

	opener := bundle.NewToolOpener(cfg.Tools.BundleTool)
	contents, err := repack.Inspect(runCtx, opener, paths, logger)
	if err != nil {
		return err
	}
	assoc := repack.Associate(contents, set.Files)
	printUnmatched(out, assoc)

	if opts.dryRun {
		printAssociation(out, assoc)
		return nil
	}
	if len(assoc.Bundles) == 0 {
		fmt.Fprintln(out, "No mod matched any bundle")
		return nil
	}

	bundles, err := ctx.store()
	if err != nil {
		return err
	}
	ui := newProgressUI(cmd.ErrOrStderr())
	repacker := repack.New(cfg, opener, bundles, store, logger)
	report, err := repacker.Run(runCtx, assoc, func(done, total int) {
		ui.count("repack", "Repacking", done, total)
	})
	ui.stop()
	printRepackReport(out, report)
	if err != nil {
		return err
	}
	return report.Failed.Err()
}

// localBundlePaths selects bundles from the catalog on disk, keeping only
// the ones already cached.
func localBundlePaths(ctx *commandContext, cfg *config.Config) ([]string, error) {
	bundles, err := ctx.store()
	if err != nil {
		return nil, err
	}
	version, ok := bundles.LatestLocalCatalog()
	if !ok {
		return nil, services.Wrap(services.ErrFatalInput, "repack", "load catalog", "offline mode needs a previously synced catalog", errNoLocalCatalog)
	}
	cat, err := bundles.LoadCatalog(version)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, info := range cat.BundlesMatching(catalog.Pattern{Prefix: cfg.Catalog.BundlePrefix, Suffix: cfg.Catalog.BundleSuffix}) {
		cached, err := bundles.Has(info)
		if err != nil {
			return nil, err
		}
		if !cached {
			continue
		}
		path, err := bundles.PathFor(info)
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func printDuplicates(out io.Writer, logger *slog.Logger, set mods.Set) {
	if len(set.Duplicates) == 0 {
		return
	}
	winners := make([]string, 0, len(set.Duplicates))
	for winner := range set.Duplicates {
		winners = append(winners, winner)
	}
	sort.Strings(winners)
	fmt.Fprintln(out, "Duplicate mod files (the first one is used):")
	for _, winner := range winners {
		fmt.Fprintf(out, " - %s\n", winner)
		for _, other := range set.Duplicates[winner] {
			fmt.Fprintf(out, "     ignored: %s\n", other)
		}
		logging.WarnWithContext(logger, "duplicate mod file", "mod_duplicate",
			logging.String("used", winner),
			logging.Any("ignored", set.Duplicates[winner]),
			logging.String(logging.FieldImpact, "later files are not applied"),
		)
	}
}

func printUnmatched(out io.Writer, assoc repack.Association) {
	if len(assoc.Unmatched) == 0 {
		return
	}
	names := make([]string, 0, len(assoc.Unmatched))
	for name := range assoc.Unmatched {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintln(out, "Mod files not found in any bundle:")
	for _, name := range names {
		fmt.Fprintf(out, " - %s (%s)\n", name, assoc.Unmatched[name])
	}
}

func printAssociation(out io.Writer, assoc repack.Association) {
	rows := make([][]string, 0, assoc.ModCount())
	for _, group := range assoc.Bundles {
		for _, m := range group.Mods {
			rows = append(rows, []string{group.Bundle, m.Entry, string(m.Type), m.Source})
		}
	}
	fmt.Fprintln(out, renderTable("Planned replacements", []string{"Bundle", "Entry", "Type", "Mod file"}, rows, nil))
}

func printRepackReport(out io.Writer, report repack.Report) {
	rows := make([][]string, 0, len(report.Outputs))
	for _, o := range report.Outputs {
		rows = append(rows, []string{o.Path, strconv.Itoa(o.Replaced), formatBytes(o.Size), shortDigest(o.Digest)})
	}
	if len(rows) > 0 {
		fmt.Fprintln(out, renderTable("Modded bundles", []string{"Output", "Replaced", "Size", "Digest"}, rows,
			[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft}))
	}
	for _, item := range report.Failed {
		fmt.Fprintf(out, "failed: %s: %v\n", item.Item, item.Err)
	}
}
