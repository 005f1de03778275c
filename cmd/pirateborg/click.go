package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/rpg-pirateborg/internal/orchestrators/automation"
	"github.com/KirkDiggler/rpg-pirateborg/internal/orchestrators/chatbutton"
	"github.com/KirkDiggler/rpg-pirateborg/internal/outcome"
	"github.com/KirkDiggler/rpg-pirateborg/internal/services/chatlog"
)

var clickProcess bool

var clickCmd = &cobra.Command{
	Use:   "click <message-id> <outcome-id>",
	Short: "Click the button of an outcome",
	Long: `Click the button attached to an outcome. The follow-up outcomes are appended
to the same message. Clicking twice rolls twice.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		messageID, outcomeID := args[0], args[1]

		return withApp(func(ctx context.Context, a *app) error {
			stored, err := a.chatLog.Outcomes(ctx, &chatlog.OutcomesInput{MessageID: messageID})
			if err != nil {
				return fmt.Errorf("failed to read message %s: %w", messageID, err)
			}
			source := outcome.FindByID(stored.Outcomes, outcomeID)
			if source == nil || source.Button == nil {
				return fmt.Errorf("outcome %s on message %s has no button", outcomeID, messageID)
			}

			out, err := a.buttons.HandleChatMessage(ctx, &chatbutton.HandleChatMessageInput{
				MessageID: messageID,
				Button:    source.Button.Data,
			})
			if err != nil {
				return fmt.Errorf("failed to click %s: %w", source.Button.Title, err)
			}

			if clickProcess {
				if _, err := a.automation.HandleChatMessage(ctx, &automation.HandleChatMessageInput{MessageID: messageID}); err != nil {
					return fmt.Errorf("failed to run automations: %w", err)
				}
			}

			return printOutcomes(cmd.OutOrStdout(), out.Message, out.Outcomes)
		})
	},
}

func init() {
	clickCmd.Flags().BoolVar(&clickProcess, "process", true, "run automations after the click")
}
