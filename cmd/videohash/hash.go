package main

import (
	"github.com/ZanzyTHEbar/videohash/vhash/pipeline"

	"github.com/spf13/cobra"
)

func newHashCmd(a *app) *cobra.Command {
	var (
		path string
		url  string
		keep bool
	)

	cmd := &cobra.Command{
		Use:   "hash",
		Short: "Hash one video from a local path or a URL",
		Example: `  videohash hash --path ./clip.mp4
  videohash hash --url https://www.youtube.com/watch?v=PapBjpzRhnA`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := a.options()
			opts.Path, opts.URL = path, url

			vh, err := pipeline.New(cmd.Context(), opts)
			if err != nil {
				return err
			}
			printHash(cmd, vh.Hash, vh.Source.String())

			if keep {
				a.logger.Info().Str("workspace", vh.Workspace.TaskDir).Str("collage", vh.CollagePath).Msg("Workspace kept")
				return nil
			}
			return vh.DeleteWorkspace()
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "local video file")
	cmd.Flags().StringVar(&url, "url", "", "remote video URL")
	cmd.Flags().BoolVar(&keep, "keep", false, "keep the frames and collage on disk")
	cmd.MarkFlagsMutuallyExclusive("path", "url")
	cmd.MarkFlagsOneRequired("path", "url")
	return cmd
}
