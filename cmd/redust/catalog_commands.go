package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"redust/internal/catalog"
)

var errNoLocalCatalog = errors.New("no local catalog; run `redust sync` first or pass --version")

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	var version string

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the downloaded content catalog",
	}
	cmd.PersistentFlags().StringVar(&version, "version", "", "Catalog version to read (default: the one on disk)")

	load := func() (*catalog.Catalog, string, error) {
		store, err := ctx.store()
		if err != nil {
			return nil, "", err
		}
		v := version
		if v == "" {
			found, ok := store.LatestLocalCatalog()
			if !ok {
				return nil, "", errNoLocalCatalog
			}
			v = found
		}
		cat, err := store.LoadCatalog(v)
		if err != nil {
			return nil, "", err
		}
		return cat, v, nil
	}

	cmd.AddCommand(newCatalogBundlesCommand(ctx, load))
	cmd.AddCommand(newCatalogResolveCommand(load))
	return cmd
}

type catalogLoader func() (*catalog.Catalog, string, error)

func newCatalogBundlesCommand(ctx *commandContext, load catalogLoader) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "bundles",
		Short: "List bundles selected by the configured key filter",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			cat, version, err := load()
			if err != nil {
				return err
			}
			bundles := cat.Bundles()
			if !all {
				bundles = cat.BundlesMatching(catalog.Pattern{
					Prefix: cfg.Catalog.BundlePrefix,
					Suffix: cfg.Catalog.BundleSuffix,
				})
			}
			rows := make([][]string, 0, len(bundles))
			for _, b := range bundles {
				rows = append(rows, []string{b.Name, b.Key, shortDigest(b.Hash), formatBytes(b.Size)})
			}
			title := fmt.Sprintf("Bundles (%s, %d)", version, len(rows))
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(title,
				[]string{"Name", "Key", "Hash", "Size"}, rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight}))
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "List every bundle, ignoring the key filter")
	return cmd
}

func newCatalogResolveCommand(load catalogLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <asset names...>",
		Short: "Show which bundle holds each asset",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, _, err := load()
			if err != nil {
				return err
			}
			res := cat.Resolve(args)
			rows := make([][]string, 0, len(args))
			for _, a := range res.Assets {
				rows = append(rows, []string{a.Name, a.Bundle.Name, a.Bundle.Key, cat.InternalID(a.EntryIndex)})
			}
			for _, name := range res.Missing {
				rows = append(rows, []string{name, "(not found)", "", ""})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable("Resolve", []string{"Asset", "Bundle", "Key", "Internal ID"}, rows, nil))
			if len(res.Missing) > 0 {
				return fmt.Errorf("%d asset(s) not found", len(res.Missing))
			}
			return nil
		},
	}
}
