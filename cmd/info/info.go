// ABOUTME: Info command printing sample details
// ABOUTME: Loads each file on a headless device and reports format and tags
package info

import (
	"github.com/Resonate-Protocol/resonate-sampler/internal/app"
	"github.com/Resonate-Protocol/resonate-sampler/internal/config"
	"github.com/spf13/cobra"
)

// Command creates the info command describing audio files
func Command(ctx *config.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "info FILE...",
		Short: "Show format, length and tags of audio files",
		Long:  `Load each file into a headless device buffer and print its format, length and metadata.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Info(cmd.OutOrStdout(), args)
		},
	}
}
