package main

import (
	"fmt"

	"github.com/ZanzyTHEbar/videohash/vhash/fingerprint"
	"github.com/ZanzyTHEbar/videohash/vhash/pipeline"

	"github.com/spf13/cobra"
)

func newCompareCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "compare A B",
		Short: "Print the Hamming distance between two videos or hashes",
		Long:  "Each argument is a local path, a URL, or an encoded hash starting with 0x or 0b.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			left, err := a.resolve(cmd, args[0])
			if err != nil {
				return err
			}

			var right fingerprint.Operand = fingerprint.Encoded(args[1])
			if !isEncodedHash(args[1]) {
				h, err := a.resolve(cmd, args[1])
				if err != nil {
					return err
				}
				right = h
			}

			d, err := left.Difference(right)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d\n", d)
			return nil
		},
	}
}

// resolve parses an encoded hash or computes the hash of a video
func (a *app) resolve(cmd *cobra.Command, input string) (fingerprint.Hash, error) {
	if isEncodedHash(input) {
		if input[1] == 'x' || input[1] == 'X' {
			return fingerprint.ParseHex(input)
		}
		return fingerprint.ParseBinary(input)
	}

	vh, err := pipeline.New(cmd.Context(), a.optionsFor(input))
	if err != nil {
		return fingerprint.Hash{}, err
	}
	defer func() {
		if derr := vh.DeleteWorkspace(); derr != nil {
			a.logger.Warn().Err(derr).Msg("Failed to delete workspace")
		}
	}()
	return vh.Hash, nil
}
