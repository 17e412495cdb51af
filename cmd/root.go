// ABOUTME: Root command of the sampler CLI
// ABOUTME: Loads configuration and sets up logging before any subcommand runs
package cmd

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/Resonate-Protocol/resonate-sampler/cmd/info"
	"github.com/Resonate-Protocol/resonate-sampler/cmd/play"
	"github.com/Resonate-Protocol/resonate-sampler/internal/config"
	"github.com/Resonate-Protocol/resonate-sampler/internal/version"
	"github.com/spf13/cobra"
)

// RootCommand creates and returns the root command
func RootCommand(ctx *config.Context) *cobra.Command {
	var logFile *os.File

	rootCmd := &cobra.Command{
		Use:           "resonate-sampler",
		Short:         "Load audio samples into device buffers and play them",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&ctx.ConfigFile, "config", "", "Config file (default ./config.yaml or ~/.config/resonate-sampler/config.yaml)")
	if err := config.BindFlags(rootCmd, ctx.Viper); err != nil {
		log.Printf("Warning: %v", err)
	}

	rootCmd.AddCommand(
		info.Command(ctx),
		play.Command(ctx),
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		config.ApplyFlags(cmd, ctx.Viper)
		if err := ctx.Load(); err != nil {
			return err
		}

		// Streaming logs go to stdout only when play runs without the TUI
		stream := cmd.Name() == "play" && !ctx.Settings.TUI

		f, err := setupLogging(ctx.Settings.Log.File, stream)
		if err != nil {
			return err
		}
		logFile = f

		log.Printf("Starting %s", version.String())
		return nil
	}

	rootCmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if logFile != nil {
			return logFile.Close()
		}
		return nil
	}

	return rootCmd
}

// setupLogging sends the standard logger to the log file, and also to
// stdout when stream is set
func setupLogging(path string, stream bool) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return nil, fmt.Errorf("error opening log file: %w", err)
	}

	if stream {
		log.SetOutput(io.MultiWriter(os.Stdout, f))
	} else {
		log.SetOutput(f)
	}
	return f, nil
}
