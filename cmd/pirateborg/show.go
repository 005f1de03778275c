package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	chatmessage "github.com/KirkDiggler/rpg-pirateborg/internal/repositories/chat_message"
	"github.com/KirkDiggler/rpg-pirateborg/internal/services/chatlog"
)

var (
	showJSON    bool
	showContent bool
	showLimit   int
)

var showCmd = &cobra.Command{
	Use:   "show [message-id]",
	Short: "Show a chat message, or list recent messages",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			w := cmd.OutOrStdout()

			if len(args) == 0 {
				list, err := a.messages.List(ctx, chatmessage.ListInput{Limit: showLimit})
				if err != nil {
					return fmt.Errorf("failed to list messages: %w", err)
				}
				for _, msg := range list.Messages {
					fmt.Fprintf(w, "%s  %s  %s\n", msg.CreatedAt.Format("2006-01-02 15:04:05"), msg.ID, msg.Speaker.Alias)
				}
				return nil
			}

			msg, err := a.chatLog.Message(ctx, &chatlog.MessageInput{MessageID: args[0]})
			if err != nil {
				return fmt.Errorf("failed to get message %s: %w", args[0], err)
			}
			stored, err := a.chatLog.Outcomes(ctx, &chatlog.OutcomesInput{MessageID: args[0]})
			if err != nil {
				return fmt.Errorf("failed to read outcomes: %w", err)
			}

			if showJSON {
				output, err := json.MarshalIndent(stored.Outcomes, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal outcomes: %w", err)
				}
				fmt.Fprintln(w, string(output))
				return nil
			}
			if showContent {
				fmt.Fprintln(w, msg.Message.Content)
				return nil
			}
			return printOutcomes(w, msg.Message, stored.Outcomes)
		})
	},
}

func init() {
	showCmd.Flags().BoolVar(&showJSON, "json", false, "print the stored outcomes as JSON")
	showCmd.Flags().BoolVar(&showContent, "content", false, "print the rendered message content")
	showCmd.Flags().IntVar(&showLimit, "limit", 20, "number of recent messages to list")
}
