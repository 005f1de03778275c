// Package pirateborg holds the game actions of the pirate ruleset: one
// outcome factory per action, the text tables they read, and the button and
// automation handlers that follow up on their outcomes.
package pirateborg

import (
	"context"
	"sort"

	"github.com/KirkDiggler/rpg-pirateborg/internal/entities"
	"github.com/KirkDiggler/rpg-pirateborg/internal/errors"
	"github.com/KirkDiggler/rpg-pirateborg/internal/outcome"
	"github.com/KirkDiggler/rpg-pirateborg/internal/repositories/actor"
)

// ActionInput carries everything an action may need. Each action reads only
// the fields it documents.
type ActionInput struct {
	Actor *entities.Actor

	// TargetToken is the externally selected target, if any
	TargetToken string

	// Ability names the ability for test-ability
	Ability string

	// WeaponID selects the weapon for attack, boarding and small-arms
	WeaponID string

	// DR overrides the action's difficulty rating
	DR int

	// Formula overrides the damage, heal or incoming damage formula
	Formula string

	// Critical doubles damage dice
	Critical bool

	// Long selects a long rest
	Long bool

	// Draw is the table draw for draw-table
	Draw *outcome.Draw
	// Title names the drawn table
	Title string
}

// Config holds the dependencies for the rules
type Config struct {
	Builder   *outcome.Builder
	ActorRepo actor.Repository

	// Animator is optional; without one the animation automation does nothing
	Animator Animator
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config is required")
	}

	vb := errors.NewValidationBuilder()
	if c.Builder == nil {
		vb.RequiredField("Builder")
	}
	if c.ActorRepo == nil {
		vb.RequiredField("ActorRepo")
	}
	return vb.Build()
}

// Rules builds outcomes for game actions
type Rules struct {
	builder   *outcome.Builder
	actorRepo actor.Repository
	animator  Animator
}

// New creates the rules
func New(cfg *Config) (*Rules, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &Rules{
		builder:   cfg.Builder,
		actorRepo: cfg.ActorRepo,
		animator:  cfg.Animator,
	}, nil
}

type actionFunc func(r *Rules, ctx context.Context, in ActionInput) ([]*outcome.Outcome, error)

func single(fn func(r *Rules, ctx context.Context, in ActionInput) (*outcome.Outcome, error)) actionFunc {
	return func(r *Rules, ctx context.Context, in ActionInput) ([]*outcome.Outcome, error) {
		o, err := fn(r, ctx, in)
		if err != nil {
			return nil, err
		}
		return []*outcome.Outcome{o}, nil
	}
}

var rollActions = map[outcome.ActionType]actionFunc{
	ActionDamage:          single((*Rules).Damage),
	ActionTakeDamage:      single((*Rules).TakeDamage),
	ActionShipDamage:      single((*Rules).ShipDamage),
	ActionRepairHull:      single((*Rules).RepairHull),
	ActionHeal:            single((*Rules).Heal),
	ActionRest:            single((*Rules).Rest),
	ActionBroken:          single((*Rules).Broken),
	ActionMishap:          single((*Rules).Mishap),
	ActionMorale:          single((*Rules).Morale),
	ActionCrewMorale:      single((*Rules).CrewMorale),
	ActionReaction:        single((*Rules).Reaction),
	ActionPartyInitiative: single((*Rules).PartyInitiative),
	ActionInitiative:      single((*Rules).Initiative),
	ActionGetBetter:       single((*Rules).GetBetter),
	ActionDrawTable:       single((*Rules).DrawTable),
}

// Perform runs the named action
func (r *Rules) Perform(ctx context.Context, action outcome.ActionType, in ActionInput) ([]*outcome.Outcome, error) {
	if _, ok := testActions[action]; ok {
		o, err := r.Test(ctx, action, in)
		if err != nil {
			return nil, err
		}
		return []*outcome.Outcome{o}, nil
	}

	fn, ok := rollActions[action]
	if !ok {
		return nil, errors.Unimplementedf("unknown action %s", action)
	}
	return fn(r, ctx, in)
}

// Actions lists every action Perform accepts, sorted
func Actions() []outcome.ActionType {
	actions := make([]outcome.ActionType, 0, len(testActions)+len(rollActions))
	for a := range testActions {
		actions = append(actions, a)
	}
	for a := range rollActions {
		actions = append(actions, a)
	}
	sort.Slice(actions, func(i, j int) bool { return actions[i] < actions[j] })
	return actions
}

func requireActor(in ActionInput) error {
	if in.Actor == nil {
		return errors.InvalidArgument("actor is required")
	}
	return nil
}

// targetArmorTier resolves the armor of the actor behind token, 0 when there
// is no target
func (r *Rules) targetArmorTier(ctx context.Context, token string) (int, error) {
	if token == "" {
		return 0, nil
	}
	out, err := r.actorRepo.GetByToken(ctx, actor.GetByTokenInput{TokenID: token})
	if err != nil {
		return 0, errors.Wrapf(err, "failed to resolve target %s", token)
	}
	return out.Actor.ArmorTier(), nil
}
