package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"redust/internal/convert"
	"redust/internal/mods"
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "convert [skeleton.json...]",
		Short: "Convert skeleton JSON mods into binary skeletons",
		Long: "Convert the given skeleton JSON files next to themselves as .skel files.\n" +
			"Without arguments, every JSON skeleton in the mods folder that has no\n" +
			"binary sibling is converted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			files := args
			if len(files) == 0 {
				set, err := mods.Scan(cfg.Paths.ModsDir)
				if err != nil {
					return err
				}
				files = set.PendingJSON
			}
			out := cmd.OutOrStdout()
			if len(files) == 0 {
				fmt.Fprintln(out, "No skeleton JSON files need converting")
				return nil
			}
			return ctx.withLock(func() error {
				logger, err := ctx.ensureLogger()
				if err != nil {
					return err
				}
				report := runConvert(ctx, cmd, logger, files)
				printConvertReport(out, report)
				return report.Failed.Err()
			})
		},
	}
}

func runConvert(ctx *commandContext, cmd *cobra.Command, logger *slog.Logger, files []string) convert.Report {
	ui := newProgressUI(cmd.ErrOrStderr())
	defer ui.stop()
	converter := convert.New(logger, func(done, total int) {
		ui.count("convert", "Converting skeletons", done, total)
	})
	return converter.Run(ctx.runContext(cmd), files)
}

func printConvertReport(out io.Writer, report convert.Report) {
	rows := make([][]string, 0, len(report.Converted)+len(report.Failed))
	for _, dst := range report.Converted {
		note := ""
		if skipped := report.Skipped[dst]; len(skipped) > 0 {
			note = fmt.Sprintf("%d item(s) omitted", len(skipped))
		}
		rows = append(rows, []string{dst, "converted", note})
	}
	for _, item := range report.Failed {
		rows = append(rows, []string{item.Item, "failed", item.Err.Error()})
	}
	fmt.Fprintln(out, renderTable("Conversion", []string{"File", "Result", "Notes"}, rows, nil))
}
