// ABOUTME: Play command loading samples into pads
// ABOUTME: Runs the sample pad TUI or headless playback
package play

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/Resonate-Protocol/resonate-sampler/internal/app"
	"github.com/Resonate-Protocol/resonate-sampler/internal/config"
	"github.com/spf13/cobra"
)

// Command creates the play command
func Command(ctx *config.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "play FILE...",
		Short: "Play audio files as sample pads",
		Long: `Load each file once and play it. With the TUI, keys 1-9 start a new voice of
the matching pad, s stops all voices and q quits. Without the TUI, each file
plays once with two overlapping voices.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), ctx.Settings, args)
		},
	}
}

func run(parent context.Context, settings *config.Settings, paths []string) error {
	if parent == nil {
		parent = context.Background()
	}
	runCtx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	device, err := app.OpenDevice(settings)
	if err != nil {
		return fmt.Errorf("failed to open %s device: %w", settings.Backend, err)
	}

	sampler, err := app.New(settings, device)
	if err != nil {
		_ = device.Close()
		return err
	}
	defer func() {
		if err := sampler.Close(); err != nil {
			log.Printf("Warning: close: %v", err)
		}
	}()

	if err := sampler.LoadPads(paths); err != nil {
		log.Printf("Some samples failed to load: %v", err)
		if len(sampler.Pads()) == 0 {
			return err
		}
	}

	if settings.TUI {
		return sampler.RunTUI(runCtx)
	}
	return sampler.PlayAll(runCtx)
}
