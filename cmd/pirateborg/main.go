// Package main is the pirateborg command line: perform actions, post their
// outcomes to the chat log, click outcome buttons and run automations.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var showMetrics bool

var rootCmd = &cobra.Command{
	Use:   "pirateborg",
	Short: "Pirate Borg outcome engine",
	Long: `Rolls game actions into outcomes, posts them as chat messages and resolves
their buttons and automations. Storage and the actor roster are configured
through PIRATEBORG_* environment variables.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&showMetrics, "metrics", false, "print dispatcher metrics to stderr when done")

	rootCmd.AddCommand(actionCmd)
	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(clickCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(actionsCmd)
}
