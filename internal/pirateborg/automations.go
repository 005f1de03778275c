package pirateborg

import (
	"context"
	"log/slog"

	"github.com/KirkDiggler/rpg-pirateborg/internal/errors"
	"github.com/KirkDiggler/rpg-pirateborg/internal/orchestrators/automation"
	"github.com/KirkDiggler/rpg-pirateborg/internal/outcome"
	"github.com/KirkDiggler/rpg-pirateborg/internal/repositories/actor"
)

// Animator plays the visual effect of an outcome
type Animator interface {
	Animate(ctx context.Context, o *outcome.Outcome) error
}

// LogAnimator stands in for a scene renderer by logging what would be shown
type LogAnimator struct{}

// Animate logs the outcome
func (LogAnimator) Animate(_ context.Context, o *outcome.Outcome) error {
	slog.Info("Animating outcome",
		"outcome_id", o.ID,
		"type", o.Type,
		"target", o.TargetToken)
	return nil
}

// RegisterAutomations adds the damage, heal, max hp and animation handlers.
// Types already present in registry are left alone.
func (r *Rules) RegisterAutomations(registry *automation.Registry) {
	registry.Register(outcome.AutomationDamage, automation.HandlerFunc(r.applyDamage))
	registry.Register(outcome.AutomationHeal, automation.HandlerFunc(r.applyHeal))
	registry.Register(outcome.AutomationMaxHP, automation.HandlerFunc(r.applyMaxHPGain))
	registry.Register(outcome.AutomationAnimation, automation.HandlerFunc(r.animate))
}

// applyDamage lowers the target's HP by the outcome's total damage, not
// below zero. Without a target there is nobody to hurt.
func (r *Rules) applyDamage(ctx context.Context, o *outcome.Outcome) error {
	if o.TargetToken == "" {
		slog.Debug("Damage without target", "outcome_id", o.ID)
		return nil
	}

	target, err := r.actorRepo.GetByToken(ctx, actor.GetByTokenInput{TokenID: o.TargetToken})
	if err != nil {
		return errors.Wrapf(err, "failed to resolve damage target %s", o.TargetToken)
	}

	hp := max(target.Actor.HP.Value-o.TotalDamage, 0)
	if _, err := r.actorRepo.UpdateHP(ctx, actor.UpdateHPInput{ID: target.Actor.ID, Value: hp}); err != nil {
		return errors.Wrapf(err, "failed to apply damage to %s", target.Actor.ID)
	}

	slog.Info("Applied damage",
		"outcome_id", o.ID,
		"actor_id", target.Actor.ID,
		"damage", o.TotalDamage,
		"hp", hp)
	return nil
}

// applyHeal raises HP on the targeted actor, or the initiator when nothing
// is targeted, clamped to max
func (r *Rules) applyHeal(ctx context.Context, o *outcome.Outcome) error {
	token := o.TargetToken
	if token == "" {
		token = o.InitiatorToken
	}
	if token == "" {
		slog.Debug("Heal without recipient", "outcome_id", o.ID)
		return nil
	}

	recipient, err := r.actorRepo.GetByToken(ctx, actor.GetByTokenInput{TokenID: token})
	if err != nil {
		return errors.Wrapf(err, "failed to resolve heal recipient %s", token)
	}

	hp := min(recipient.Actor.HP.Value+o.Heal, recipient.Actor.HP.Max)
	if _, err := r.actorRepo.UpdateHP(ctx, actor.UpdateHPInput{ID: recipient.Actor.ID, Value: hp}); err != nil {
		return errors.Wrapf(err, "failed to heal %s", recipient.Actor.ID)
	}

	slog.Info("Applied heal",
		"outcome_id", o.ID,
		"actor_id", recipient.Actor.ID,
		"heal", o.Heal,
		"hp", hp)
	return nil
}

// applyMaxHPGain raises the initiator's max HP by the rolled gain. Current
// HP is left where it is.
func (r *Rules) applyMaxHPGain(ctx context.Context, o *outcome.Outcome) error {
	gain := o.PropInt(PropMaxHPGain)
	if gain <= 0 || o.InitiatorToken == "" {
		slog.Debug("Max hp gain without effect", "outcome_id", o.ID, "gain", gain)
		return nil
	}

	initiator, err := r.actorRepo.GetByToken(ctx, actor.GetByTokenInput{TokenID: o.InitiatorToken})
	if err != nil {
		return errors.Wrapf(err, "failed to resolve %s", o.InitiatorToken)
	}

	maxHP := initiator.Actor.HP.Max + gain
	if _, err := r.actorRepo.UpdateMaxHP(ctx, actor.UpdateMaxHPInput{ID: initiator.Actor.ID, Max: maxHP}); err != nil {
		return errors.Wrapf(err, "failed to raise max hp of %s", initiator.Actor.ID)
	}

	slog.Info("Raised max hp",
		"outcome_id", o.ID,
		"actor_id", initiator.Actor.ID,
		"gain", gain,
		"max_hp", maxHP)
	return nil
}

func (r *Rules) animate(ctx context.Context, o *outcome.Outcome) error {
	if r.animator == nil {
		return nil
	}
	return r.animator.Animate(ctx, o)
}
