package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/seqpipe/pairedio"
	"github.com/seqpipe/pairedio/internal/pipeline"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Copy FASTQ inputs to their outputs in chunks",
	Long: `Read the inputs in chunks, process the chunks in parallel and write
each mate to its output in input order.

Paired-end runs write basename.pair1.truncated and basename.pair2.truncated,
plus the singleton and discarded outputs. Single-end runs write
basename.truncated and basename.discarded. The compression extension is
appended to every default name.`,
	RunE: runRun,
}

var (
	runInterleave bool
	runQuiet      bool
)

func init() {
	runCmd.Flags().BoolVar(&runInterleave, "interleave", false, "write both mates to the mate 1 output, one pair after another")
	runCmd.Flags().BoolVarP(&runQuiet, "quiet", "q", false, "do not print progress")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) (err error) {
	ctx := cmd.Context()

	var opts []pipeline.Option
	if !runQuiet {
		opts = append(opts, pipeline.WithProgress(os.Stderr))
	}
	e, err := setup(ctx, cmd, opts...)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, e.close()) }()

	mode := pipeline.Copy
	outputs := e.settings.OutputRoles()
	if runInterleave {
		mode = pipeline.Interleave
		outputs = []pairedio.ReadType{pairedio.Mate1}
	}

	result, err := e.pipeline.Run(ctx, mode)
	if err != nil {
		return fmt.Errorf("run %s: %w", result.RunID, err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run:      %s\n", result.RunID)
	fmt.Fprintf(out, "Chunks:   %s\n", humanize.Comma(result.Chunks))
	fmt.Fprintf(out, "Lines:    %s\n", humanize.Comma(result.Lines))
	fmt.Fprintf(out, "Duration: %s\n", result.Duration.Round(time.Millisecond))
	for _, role := range outputs {
		fmt.Fprintf(out, "Output:   %-20s %s\n", role, e.pipeline.Resolver().OutputPath(role))
	}
	return nil
}
