package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"redust/internal/ledger"
	"redust/internal/mods"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the workspace, last sync, and recent outputs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			workspace := newStatusSection("Workspace", out)
			workspace.add("Work dir", statusInfo, cfg.Paths.WorkDir)
			workspace.add("Mods", statusInfo, cfg.Paths.ModsDir)
			workspace.add("Modded output", statusInfo, cfg.Paths.ModdedDir)
			if set, err := mods.Scan(cfg.Paths.ModsDir); err != nil {
				workspace.add("Mod files", statusWarn, err.Error())
			} else if len(set.PendingJSON) > 0 {
				workspace.addf("Mod files", statusWarn, "%d replacement(s), %d JSON skeleton(s) need converting", len(set.Files), len(set.PendingJSON))
			} else {
				workspace.addf("Mod files", statusOK, "%d replacement(s)", len(set.Files))
			}
			workspace.write(out)

			return ctx.withLedger(func(store *ledger.Store) error {
				runCtx := ctx.runContext(cmd)
				rec, err := store.LatestCatalog(runCtx, cfg.CDN.Quality)
				if err != nil {
					return err
				}
				syncSection := newStatusSection("Sync", out)
				if rec == nil {
					syncSection.add("Catalog", statusWarn, "never synced")
				} else {
					known, err := store.KnownBundles(runCtx, rec.Version)
					if err != nil {
						return err
					}
					syncSection.add("Catalog", statusOK, rec.Version)
					syncSection.add("Fetched", statusInfo, rec.FetchedAt.Local().Format(time.DateTime))
					syncSection.addf("Bundles", statusInfo, "%d in catalog, %d selected", rec.BundleCount, len(known))
				}
				syncSection.write(out)

				outputs, err := store.Outputs(runCtx, limit)
				if err != nil {
					return err
				}
				if len(outputs) == 0 {
					fmt.Fprintln(out, "No modded bundles written yet")
					return nil
				}
				rows := make([][]string, 0, len(outputs))
				for _, o := range outputs {
					rows = append(rows, []string{
						o.WrittenAt.Local().Format(time.DateTime),
						o.BundlePath,
						strconv.Itoa(o.ModCount),
						shortDigest(o.Digest),
					})
				}
				fmt.Fprintln(out, renderTable("Recent outputs", []string{"Written", "Bundle", "Mods", "Digest"}, rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft}))
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "Number of recent outputs to show")
	return cmd
}
