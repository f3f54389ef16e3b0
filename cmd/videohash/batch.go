package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/ZanzyTHEbar/videohash/vhash/fingerprint"
	"github.com/ZanzyTHEbar/videohash/vhash/pipeline"

	"github.com/samber/lo"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

func newBatchCmd(a *app) *cobra.Command {
	var matrix bool

	cmd := &cobra.Command{
		Use:   "batch INPUT...",
		Short: "Hash several videos concurrently",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := lo.Map(args, func(input string, _ int) pipeline.Options {
				return a.optionsFor(input)
			})

			bar := progressbar.NewOptions(len(opts),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionSetDescription("Hashing videos"),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
			results := pipeline.HashAllFunc(cmd.Context(), opts, a.cfg.VideoHash.Workers, func(pipeline.Result) {
				_ = bar.Add(1)
			})
			_ = bar.Finish()

			out := cmd.OutOrStdout()
			for _, r := range results {
				if r.Err != nil {
					fmt.Fprintf(out, "error\t%s\t%v\n", args[r.Index], r.Err)
					continue
				}
				printHash(cmd, r.Hash.Hash, args[r.Index])
				if err := r.Hash.DeleteWorkspace(); err != nil {
					a.logger.Warn().Err(err).Str("input", args[r.Index]).Msg("Failed to delete workspace")
				}
			}

			ok := lo.Filter(results, func(r pipeline.Result, _ int) bool { return r.Err == nil })
			if matrix && len(ok) > 1 {
				hashes := lo.Map(ok, func(r pipeline.Result, _ int) fingerprint.Hash { return r.Hash.Hash })
				m, err := pipeline.DistanceMatrix(hashes)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw)
				for i, row := range m {
					fmt.Fprintf(tw, "%s", args[ok[i].Index])
					for _, d := range row {
						fmt.Fprintf(tw, "\t%d", d)
					}
					fmt.Fprintln(tw)
				}
				if err := tw.Flush(); err != nil {
					return err
				}
			}

			if failed := len(results) - len(ok); failed > 0 {
				return fmt.Errorf("%d of %d videos failed", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&matrix, "matrix", false, "print the pairwise distance matrix")
	return cmd
}
