package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/rpg-pirateborg/internal/pirateborg"
)

var actionsCmd = &cobra.Command{
	Use:   "actions",
	Short: "List the action types",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		for _, action := range pirateborg.Actions() {
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), action); err != nil {
				return err
			}
		}
		return nil
	},
}
