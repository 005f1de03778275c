package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/rpg-pirateborg/internal/entities"
	"github.com/KirkDiggler/rpg-pirateborg/internal/orchestrators/automation"
	"github.com/KirkDiggler/rpg-pirateborg/internal/outcome"
	"github.com/KirkDiggler/rpg-pirateborg/internal/pirateborg"
	"github.com/KirkDiggler/rpg-pirateborg/internal/repositories/actor"
	chatmessage "github.com/KirkDiggler/rpg-pirateborg/internal/repositories/chat_message"
	"github.com/KirkDiggler/rpg-pirateborg/internal/services/chatlog"
)

var (
	actionActor    string
	actionTarget   string
	actionAbility  string
	actionWeapon   string
	actionDR       int
	actionFormula  string
	actionCritical bool
	actionLong     bool
	actionEntries  []string
	actionTitle    string
	actionProcess  bool
)

var actionCmd = &cobra.Command{
	Use:   "action <type>",
	Short: "Perform an action and post its outcome",
	Long: `Perform one game action for an actor, post the outcome to the chat log and,
unless --process=false, run its automations. Run "pirateborg actions" for the
list of action types.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			return runAction(ctx, a, outcome.ActionType(args[0]), cmd.OutOrStdout())
		})
	},
}

func init() {
	actionCmd.Flags().StringVar(&actionActor, "actor", "", "acting actor id")
	actionCmd.Flags().StringVar(&actionTarget, "target", "", "target token")
	actionCmd.Flags().StringVar(&actionAbility, "ability", "", "ability for test-ability")
	actionCmd.Flags().StringVar(&actionWeapon, "weapon", "", "weapon id for attacks and damage")
	actionCmd.Flags().IntVar(&actionDR, "dr", 0, "difficulty rating override")
	actionCmd.Flags().StringVar(&actionFormula, "formula", "", "damage, heal or incoming damage formula override")
	actionCmd.Flags().BoolVar(&actionCritical, "critical", false, "double damage dice")
	actionCmd.Flags().BoolVar(&actionLong, "long", false, "long rest")
	actionCmd.Flags().StringArrayVar(&actionEntries, "entry", nil, "table entry for draw-table, repeat per row")
	actionCmd.Flags().StringVar(&actionTitle, "title", "", "table title for draw-table")
	actionCmd.Flags().BoolVar(&actionProcess, "process", true, "run automations after posting")
}

func runAction(ctx context.Context, a *app, action outcome.ActionType, w io.Writer) error {
	in := pirateborg.ActionInput{
		TargetToken: actionTarget,
		Ability:     actionAbility,
		WeaponID:    actionWeapon,
		DR:          actionDR,
		Formula:     actionFormula,
		Critical:    actionCritical,
		Long:        actionLong,
		Title:       actionTitle,
	}

	if actionActor != "" {
		got, err := a.actors.Get(ctx, actor.GetInput{ID: actionActor})
		if err != nil {
			return fmt.Errorf("failed to get actor %s: %w", actionActor, err)
		}
		in.Actor = got.Actor
	}

	if action == pirateborg.ActionDrawTable {
		draw, err := drawEntry(ctx, a, actionEntries)
		if err != nil {
			return err
		}
		in.Draw = draw
	}

	outcomes, err := a.rules.Perform(ctx, action, in)
	if err != nil {
		return fmt.Errorf("failed to perform %s: %w", action, err)
	}

	posted, err := a.chatLog.Post(ctx, &chatlog.PostInput{
		Speaker:  speakerOf(in.Actor),
		Outcomes: outcomes,
	})
	if err != nil {
		return fmt.Errorf("failed to post outcome: %w", err)
	}

	if actionProcess {
		if _, err := a.automation.HandleChatMessage(ctx, &automation.HandleChatMessageInput{MessageID: posted.Message.ID}); err != nil {
			return fmt.Errorf("failed to run automations: %w", err)
		}
	}

	return printOutcomes(w, posted.Message, outcomes)
}

// drawEntry rolls one row of an ad hoc table
func drawEntry(ctx context.Context, a *app, entries []string) (*outcome.Draw, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("draw-table needs at least one --entry")
	}

	roll, err := a.evaluator.Evaluate(ctx, fmt.Sprintf("d%d", len(entries)), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to roll table: %w", err)
	}
	return &outcome.Draw{Roll: roll, Results: []string{entries[roll.Total-1]}}, nil
}

func speakerOf(a *entities.Actor) chatmessage.Speaker {
	if a == nil {
		return chatmessage.Speaker{Alias: "Game Master"}
	}
	return chatmessage.Speaker{ActorID: a.ID, TokenID: a.TokenID, Alias: a.Name}
}
