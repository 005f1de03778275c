package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/KirkDiggler/rpg-pirateborg/internal/outcome"
	chatmessage "github.com/KirkDiggler/rpg-pirateborg/internal/repositories/chat_message"
)

// printOutcomes writes a plain text summary of a message's outcomes
func printOutcomes(w io.Writer, msg *chatmessage.ChatMessage, outcomes []*outcome.Outcome) error {
	var b strings.Builder

	fmt.Fprintf(&b, "message %s", msg.ID)
	if msg.Speaker.Alias != "" {
		fmt.Fprintf(&b, " (%s)", msg.Speaker.Alias)
	}
	b.WriteString("\n")

	for _, o := range outcomes {
		fmt.Fprintf(&b, "  [%s] %s %s\n", o.ID, o.Type, o.Title)
		if o.Roll != nil {
			fmt.Fprintf(&b, "    roll: %s\n", o.Roll)
		}
		if o.Result != "" {
			fmt.Fprintf(&b, "    result: %s vs DR %d\n", o.Result, o.DR)
		}
		if o.Description != "" {
			fmt.Fprintf(&b, "    %s\n", strings.ReplaceAll(o.Description, "\n", "\n    "))
		}
		if o.TotalDamage > 0 {
			fmt.Fprintf(&b, "    damage: %d -> %s\n", o.TotalDamage, o.TargetToken)
		}
		if o.Heal > 0 {
			fmt.Fprintf(&b, "    heal: %d\n", o.Heal)
		}
		if o.Button != nil {
			fmt.Fprintf(&b, "    button: %q (pirateborg click %s %s)\n", o.Button.Title, msg.ID, o.ID)
		}
		if len(o.Automations) > 0 {
			fmt.Fprintf(&b, "    automations: %v done=%t\n", o.Automations, o.AutomationDone)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
