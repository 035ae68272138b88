package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"redust/internal/services"
	"redust/internal/spine"
)

func newInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file.skel>",
		Short: "Show the header, bones, slots and constraints of a binary skeleton",
		Args:  cobra.ExactArgs(1),
		Annotations: map[string]string{
			"skipConfigLoad": "true",
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return services.Wrap(services.ErrFatalInput, "inspect", "open skeleton", args[0], err)
			}
			defer f.Close()
			summary, err := spine.Inspect(f)
			if err != nil {
				return services.Wrap(services.ErrFatalInput, "inspect", "read skeleton", args[0], err)
			}
			printSkeletonSummary(cmd, args[0], summary)
			return nil
		},
	}
}

func printSkeletonSummary(cmd *cobra.Command, path string, s *spine.Summary) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: spine %s, hash %016x, %gx%g at (%g, %g)\n",
		path, s.Version, uint64(s.Hash), s.Width, s.Height, s.X, s.Y)
	fmt.Fprintf(out, "String table: %d entries\n", len(s.Strings))

	boneName := func(i int) string {
		if i < 0 || i >= len(s.Bones) {
			return "-"
		}
		return s.Bones[i].Name
	}
	boneRows := make([][]string, 0, len(s.Bones))
	for i, b := range s.Bones {
		boneRows = append(boneRows, []string{strconv.Itoa(i), b.Name, boneName(b.Parent), spine.TransformName(b.Transform)})
	}
	fmt.Fprintln(out, renderTable("Bones", []string{"#", "Name", "Parent", "Transform"}, boneRows, []columnAlignment{alignRight}))

	if len(s.Slots) > 0 {
		slotRows := make([][]string, 0, len(s.Slots))
		for _, slot := range s.Slots {
			attachment := slot.Attachment
			if attachment == "" {
				attachment = "-"
			}
			slotRows = append(slotRows, []string{slot.Name, boneName(slot.Bone), slot.Color, slot.Dark, attachment, spine.BlendName(slot.Blend)})
		}
		fmt.Fprintln(out, renderTable("Slots", []string{"Name", "Bone", "Color", "Dark", "Attachment", "Blend"}, slotRows, nil))
	}

	for _, group := range []struct {
		label string
		names []string
	}{
		{"IK constraints", s.IK},
		{"Transform constraints", s.Transform},
		{"Path constraints", s.Path},
	} {
		if len(group.names) == 0 {
			continue
		}
		fmt.Fprintf(out, "%s: %s\n", group.label, strings.Join(group.names, ", "))
	}
}
