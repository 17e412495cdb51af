// ABOUTME: Entry point for the Resonate sampler
// ABOUTME: Runs the cobra command tree
package main

import (
	"fmt"
	"os"

	"github.com/Resonate-Protocol/resonate-sampler/cmd"
	"github.com/Resonate-Protocol/resonate-sampler/internal/config"
)

func main() {
	rootCmd := cmd.RootCommand(config.NewContext())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
