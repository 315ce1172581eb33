package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/wlshot/internal/capture"
)

var listOutputsFn = capture.ListOutputs

func newOutputsCmd(r *root) *cobra.Command {
	return &cobra.Command{
		Use:   "outputs",
		Short: "List the outputs that can be captured",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.runOutputs()
		},
	}
}

func (r *root) runOutputs() error {
	outputs, err := listOutputsFn(r.captureOptions())
	if err != nil {
		return fmt.Errorf("failed to list outputs: %w", err)
	}
	fmt.Fprintln(r.stdout, "available outputs (* marks the default):")
	for _, out := range outputs {
		marker := " "
		if out.Primary {
			marker = "*"
		}
		fmt.Fprintf(r.stdout, "%s %s\n", marker, formatOutputLabel(out))
	}
	fmt.Fprintln(r.stdout, "selectors: <index>, #<index>, primary, name or description substring")
	return nil
}

func formatOutputLabel(out capture.OutputInfo) string {
	parts := []string{fmt.Sprintf("%d: %s", out.Index, out.Label())}
	rect := out.Rect
	parts = append(parts, fmt.Sprintf("%dx%d+%d+%d", rect.Dx(), rect.Dy(), rect.Min.X, rect.Min.Y))
	if out.Scale > 1 {
		parts = append(parts, fmt.Sprintf("scale %d", out.Scale))
	}
	if out.Refresh > 0 {
		parts = append(parts, fmt.Sprintf("%.2f Hz", float64(out.Refresh)/1000))
	}
	if out.Description != "" && out.Description != out.Label() {
		parts = append(parts, out.Description)
	}
	return strings.Join(parts, "  ")
}
