package pirateborg

import (
	"context"

	"github.com/KirkDiggler/rpg-pirateborg/internal/entities"
	"github.com/KirkDiggler/rpg-pirateborg/internal/orchestrators/chatbutton"
	"github.com/KirkDiggler/rpg-pirateborg/internal/outcome"
)

// RegisterButtons adds the follow-up handlers for the buttons test actions
// attach
func (r *Rules) RegisterButtons(registry *chatbutton.Registry) {
	registry.Register(ButtonRollDamage, r.button(ActionDamage, func(in *ActionInput, source *outcome.Outcome) {
		in.Formula = source.PropString(PropDamageFormula)
		in.Critical = source.IsCriticalSuccess
	}))
	registry.Register(ButtonTakeDamage, r.button(ActionTakeDamage, func(in *ActionInput, source *outcome.Outcome) {
		in.Formula = source.PropString(PropIncomingDamage)
		in.Critical = source.IsFumble
	}))
	registry.Register(ButtonShipDamage, r.button(ActionShipDamage, func(in *ActionInput, source *outcome.Outcome) {
		in.Formula = source.PropString(PropDamageFormula)
		in.Critical = source.IsCriticalSuccess
	}))
	registry.Register(ButtonMishap, r.button(ActionMishap, nil))
	registry.Register(ButtonRepairHull, r.button(ActionRepairHull, nil))
}

// button runs action for the speaker, carrying the source outcome's target
// and whatever fill copies from it
func (r *Rules) button(action outcome.ActionType, fill func(in *ActionInput, source *outcome.Outcome)) chatbutton.Handler {
	return chatbutton.HandlerFunc(func(ctx context.Context, speaker *entities.Actor, source *outcome.Outcome) ([]*outcome.Outcome, error) {
		in := ActionInput{
			Actor:       speaker,
			TargetToken: source.TargetToken,
		}
		if fill != nil {
			fill(&in, source)
		}
		return r.Perform(ctx, action, in)
	})
}
