package main

import (
	"github.com/spf13/cobra"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func newRootCommand() *cobra.Command {
	var flags rootFlags
	ctx := newCommandContext(&flags)

	rootCmd := &cobra.Command{
		Use:   "redust",
		Short: "Download game bundles and repack them with mods",
		Long: "redust keeps a local copy of the game's skeleton bundles in step with the CDN,\n" +
			"converts Spine JSON mods to binary skeletons, and writes modded bundles.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&flags.config, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Log at debug level")

	rootCmd.AddCommand(
		newSyncCommand(ctx),
		newConvertCommand(ctx),
		newRepackCommand(ctx),
		newEncodeCommand(ctx),
		newInspectCommand(),
		newCatalogCommand(ctx),
		newStatusCommand(ctx),
		newDoctorCommand(ctx),
		newConfigCommand(ctx),
	)
	return rootCmd
}
