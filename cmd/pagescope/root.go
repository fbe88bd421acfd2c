package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
	rootCmd = &cobra.Command{
		Use:   "pagescope",
		Short: "Silent capability-usage observer",
		Long: `Pagescope - Silent Capability-Usage Observer

Pagescope wraps a page environment's sensitive capability entry points
(camera, microphone, geolocation, clipboard, notifications) and reports
every successful use as a structured event, including silent use of
capabilities granted in the past. It never blocks a capability and never
breaks the page: interception is purely additive.`,
		Version: version,
	}
)

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetVersionTemplate(`Pagescope {{.Version}} - Silent Capability-Usage Observer
`)
}
