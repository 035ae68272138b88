package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"redust/internal/spine"
)

func newEncodeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "encode <skeleton.json> <output.skel>",
		Short: "Encode a single skeleton JSON file",
		Args:  cobra.ExactArgs(2),
		Annotations: map[string]string{
			"skipConfigLoad": "true",
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := spine.ConvertFile(ctx.runContext(cmd), args[0], args[1])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote %s (%d bones, %d slots, %d skins, %d animations)\n",
				args[1], len(doc.Bones), len(doc.Slots), len(doc.Skins), len(doc.Animations))
			for _, item := range doc.Skipped {
				fmt.Fprintf(out, "  skipped: %s\n", item)
			}
			return nil
		},
	}
}
