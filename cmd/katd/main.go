package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	envFile string

	rootCmd = &cobra.Command{
		Use:           "katd",
		Short:         "Drive a KAT text display on an avatar over OSC",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the sync loop with the local control API",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}

	sayCmd = &cobra.Command{
		Use:   "say [text...]",
		Short: "Show one message for a while, then hide it",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSay,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	serveCmd.Flags().StringVar(&initialText, "text", "", "text to show on startup")
	sayCmd.Flags().DurationVar(&holdFor, "hold", defaultHold, "how long to keep the message up")

	rootCmd.AddCommand(serveCmd, sayCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "katd:", err)
		os.Exit(1)
	}
}
