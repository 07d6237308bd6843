package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show line, record and byte counts of the inputs",
	Long: `Display statistics about each input including:
- Number of lines and records
- Size after decompression`,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) (err error) {
	ctx := cmd.Context()
	e, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, e.close()) }()

	inputs, err := e.pipeline.Inputs(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, in := range inputs {
		fmt.Fprintf(out, "%s: %s\n", in.Mate, in.Name)
		fmt.Fprintf(out, "  Lines:   %s\n", humanize.Comma(in.Lines))
		fmt.Fprintf(out, "  Records: %s\n", humanize.Comma(in.Records))
		fmt.Fprintf(out, "  Size:    %s\n", humanize.Bytes(uint64(in.Bytes)))
		if in.Lines%4 != 0 {
			fmt.Fprintf(out, "  Warning: %d trailing lines do not form a record\n", in.Lines%4)
		}
	}
	if len(inputs) == 2 && inputs[0].Records != inputs[1].Records {
		fmt.Fprintln(out, "Warning: mate files hold different numbers of records")
	}
	return nil
}
