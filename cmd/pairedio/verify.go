package main

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/seqpipe/pairedio/internal/pipeline"
	"github.com/seqpipe/pairedio/internal/transform"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check that FASTQ inputs are well formed and paired",
	Long: `Read the inputs without writing anything and check that:
- Every record has four lines, with '@' and '+' markers
- Mate 1 and mate 2 hold the same number of records`,
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) (err error) {
	ctx := cmd.Context()
	e, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, e.close()) }()

	out := cmd.OutOrStdout()
	result, err := e.pipeline.Run(ctx, pipeline.Verify)
	switch {
	case errors.Is(err, transform.ErrMateMismatch):
		fmt.Fprintln(out, "FAIL: mate files differ in length")
		return err
	case errors.Is(err, transform.ErrPartialRecord), errors.Is(err, transform.ErrMalformed):
		fmt.Fprintf(out, "FAIL: %v\n", err)
		return err
	case err != nil:
		return err
	}

	records := result.Lines / 4
	if e.settings.Paired() {
		records /= 2
	}
	fmt.Fprintf(out, "OK: %s records in %s chunks\n", humanize.Comma(records), humanize.Comma(result.Chunks))
	return nil
}
