package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/rpg-pirateborg/internal/orchestrators/automation"
)

var processCmd = &cobra.Command{
	Use:   "process <message-id>",
	Short: "Run pending automations on a chat message",
	Long: `Run the automations of every outcome on a message that has not been
processed yet. Outcomes already marked done are skipped, so running this twice
applies nothing the second time.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			out, err := a.automation.HandleChatMessage(ctx, &automation.HandleChatMessageInput{MessageID: args[0]})
			if err != nil {
				return fmt.Errorf("failed to process message %s: %w", args[0], err)
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "processed %d, skipped %d, written %t\n",
				out.Processed, out.Skipped, out.Written)
			return err
		})
	},
}
