package pirateborg

import (
	"context"
	"fmt"

	"github.com/KirkDiggler/rpg-pirateborg/internal/errors"
	"github.com/KirkDiggler/rpg-pirateborg/internal/outcome"
	"github.com/KirkDiggler/rpg-pirateborg/internal/pkg/pipe"
	"github.com/KirkDiggler/rpg-pirateborg/internal/repositories/actor"
)

// Roll actions
const (
	ActionDamage          outcome.ActionType = "damage"
	ActionTakeDamage      outcome.ActionType = "take-damage"
	ActionShipDamage      outcome.ActionType = "ship-damage"
	ActionRepairHull      outcome.ActionType = "repair-hull"
	ActionHeal            outcome.ActionType = "heal"
	ActionRest            outcome.ActionType = "rest"
	ActionBroken          outcome.ActionType = "broken"
	ActionMishap          outcome.ActionType = "mishap"
	ActionMorale          outcome.ActionType = "morale"
	ActionCrewMorale      outcome.ActionType = "crew-morale"
	ActionReaction        outcome.ActionType = "reaction"
	ActionPartyInitiative outcome.ActionType = "party-initiative"
	ActionInitiative      outcome.ActionType = "initiative"
	ActionGetBetter       outcome.ActionType = "get-better"
	ActionDrawTable       outcome.ActionType = "draw-table"
)

// Props set by roll actions
const (
	PropArmorReduction = "armorReduction"
	PropMoraleBroken   = "moraleBroken"
	PropMaxHPGain      = "maxHpGain"
)

const (
	healFormula       = "d4"
	shortRestFormula  = "d4"
	longRestFormula   = "d6"
	repairFormula     = "d6"
	brokenFormula     = "d4"
	mishapFormula     = "d6"
	moraleFormula     = "2d6"
	moraleFallout     = "d6"
	reactionFormula   = "2d6"
	partyInitFormula  = "d6"
	initiativeFormula = "d6+@abilities.agility.value"
	getBetterFormula  = "6d10"
	maxHPGainFormula  = "d6"
)

// armorDie is the die rolled to reduce damage for an armor tier, "" for none
func armorDie(tier int) string {
	switch {
	case tier <= 0:
		return ""
	case tier == 1:
		return "d2"
	case tier == 2:
		return "d4"
	default:
		return "d6"
	}
}

func doubled(formula string, critical bool) string {
	if !critical {
		return formula
	}
	return "(" + formula + ")*2"
}

// sideRoll evaluates a formula that is not the outcome's own roll
func (r *Rules) sideRoll(ctx context.Context, formula string) (int, error) {
	roll, err := r.builder.Evaluator().Evaluate(ctx, formula, nil)
	if err != nil {
		return 0, err
	}
	return roll.Total, nil
}

// reduced resolves armorReduction then totalDamage then the title that reads
// it. Order matters: each prop sees the ones before it.
func (r *Rules) reduced(die, titleFormat string) outcome.Step {
	return outcome.WithAsyncProps(
		outcome.P(PropArmorReduction, func(ctx context.Context, _ *outcome.Outcome) (any, error) {
			if die == "" {
				return 0, nil
			}
			return r.sideRoll(ctx, die)
		}),
		outcome.P("totalDamage", func(_ context.Context, o *outcome.Outcome) (any, error) {
			return max(o.Roll.Total-o.PropInt(PropArmorReduction), 0), nil
		}),
		outcome.P("title", func(_ context.Context, o *outcome.Outcome) (any, error) {
			return fmt.Sprintf(titleFormat, o.TotalDamage), nil
		}),
	)
}

// Damage rolls weapon damage against the selected target. A critical doubles
// the damage and lowers the target's armor one tier.
func (r *Rules) Damage(ctx context.Context, in ActionInput) (*outcome.Outcome, error) {
	if err := requireActor(in); err != nil {
		return nil, err
	}

	formula := in.Formula
	if formula == "" {
		formula = defaultWeaponDamage
		if w := in.Actor.Weapon(in.WeaponID); w != nil {
			formula = w.Damage
		}
	}

	tier, err := r.targetArmorTier(ctx, in.TargetToken)
	if err != nil {
		return nil, err
	}
	if in.Critical && tier > 0 {
		tier--
	}

	return pipe.AsyncPipe(
		r.builder.WithRoll(outcome.RollInput{
			Formula:      doubled(formula, in.Critical),
			FormulaLabel: "Damage",
			Data:         in.Actor.RollData(),
		}),
		r.reduced(armorDie(tier), "%d damage"),
		outcome.WithTarget(in.Actor, in.TargetToken),
		outcome.WithAutomations(outcome.AutomationDamage, outcome.AutomationAnimation),
	)(ctx, r.builder.New(outcome.Options{Type: ActionDamage}))
}

// TakeDamage rolls incoming damage against the actor's own armor
func (r *Rules) TakeDamage(ctx context.Context, in ActionInput) (*outcome.Outcome, error) {
	if err := requireActor(in); err != nil {
		return nil, err
	}

	formula := in.Formula
	if formula == "" {
		formula = defaultIncomingDamage
	}

	return pipe.AsyncPipe(
		r.builder.WithRoll(outcome.RollInput{
			Formula:      doubled(formula, in.Critical),
			FormulaLabel: "Incoming damage",
		}),
		r.reduced(armorDie(in.Actor.ArmorTier()), "Take %d damage"),
		outcome.WithTarget(in.Actor, in.Actor.TokenID),
		outcome.WithAutomations(outcome.AutomationDamage, outcome.AutomationAnimation),
	)(ctx, r.builder.New(outcome.Options{Type: ActionTakeDamage}))
}

// ShipDamage rolls a ship's weapon against the target hull. Hulls have no
// armor roll.
func (r *Rules) ShipDamage(ctx context.Context, in ActionInput) (*outcome.Outcome, error) {
	if err := requireActor(in); err != nil {
		return nil, err
	}

	formula := in.Formula
	if formula == "" {
		if in.Actor.Ship == nil || in.Actor.Ship.Damage == "" {
			formula = defaultBroadside
		} else {
			formula = in.Actor.Ship.Damage
		}
	}

	return pipe.AsyncPipe(
		r.builder.WithRoll(outcome.RollInput{
			Formula:      doubled(formula, in.Critical),
			FormulaLabel: "Hull damage",
			Data:         in.Actor.RollData(),
		}),
		r.reduced("", "%d hull damage"),
		outcome.WithTarget(in.Actor, in.TargetToken),
		outcome.WithAutomations(outcome.AutomationDamage, outcome.AutomationAnimation),
	)(ctx, r.builder.New(outcome.Options{Type: ActionShipDamage}))
}

func healed(titleFormat string) outcome.Step {
	return outcome.WithAsyncProps(
		outcome.P("heal", func(_ context.Context, o *outcome.Outcome) (any, error) {
			return o.Roll.Total, nil
		}),
		outcome.P("title", func(_ context.Context, o *outcome.Outcome) (any, error) {
			return fmt.Sprintf(titleFormat, o.Heal), nil
		}),
	)
}

// RepairHull restores hull to the ship behind the target token, or to the
// actor itself when it is the ship
func (r *Rules) RepairHull(ctx context.Context, in ActionInput) (*outcome.Outcome, error) {
	if err := requireActor(in); err != nil {
		return nil, err
	}
	if err := r.requireShip(ctx, in); err != nil {
		return nil, err
	}

	formula := in.Formula
	if formula == "" {
		formula = repairFormula
	}

	return pipe.AsyncPipe(
		r.builder.WithRoll(outcome.RollInput{Formula: formula, FormulaLabel: "Repair"}),
		healed("Repair %d hull"),
		outcome.WithTarget(in.Actor, in.TargetToken),
		outcome.WithAutomations(outcome.AutomationHeal),
	)(ctx, r.builder.New(outcome.Options{Type: ActionRepairHull}))
}

// requireShip fails unless the hull being repaired belongs to a ship
func (r *Rules) requireShip(ctx context.Context, in ActionInput) error {
	if in.TargetToken == "" {
		if in.Actor.Ship == nil {
			return errors.FailedPreconditionf("%s is not a ship and no ship is targeted", in.Actor.Name)
		}
		return nil
	}

	out, err := r.actorRepo.GetByToken(ctx, actor.GetByTokenInput{TokenID: in.TargetToken})
	if err != nil {
		return errors.Wrapf(err, "failed to resolve target %s", in.TargetToken)
	}
	if out.Actor.Ship == nil {
		return errors.FailedPreconditionf("%s is not a ship", out.Actor.Name)
	}
	return nil
}

// Heal rolls healing for the target, or the actor when nothing is targeted
func (r *Rules) Heal(ctx context.Context, in ActionInput) (*outcome.Outcome, error) {
	if err := requireActor(in); err != nil {
		return nil, err
	}

	formula := in.Formula
	if formula == "" {
		formula = healFormula
	}

	return pipe.AsyncPipe(
		r.builder.WithRoll(outcome.RollInput{Formula: formula, FormulaLabel: "Heal", Data: in.Actor.RollData()}),
		healed("Heal %d HP"),
		outcome.WithTarget(in.Actor, in.TargetToken),
		outcome.WithAutomations(outcome.AutomationHeal, outcome.AutomationAnimation),
	)(ctx, r.builder.New(outcome.Options{Type: ActionHeal}))
}

// Rest heals d4 on a short rest and d6 on a long one. Starving actors do not
// heal and roll nothing.
func (r *Rules) Rest(ctx context.Context, in ActionInput) (*outcome.Outcome, error) {
	if err := requireActor(in); err != nil {
		return nil, err
	}

	title, formula := textRestShort, shortRestFormula
	if in.Long {
		title, formula = textRestLong, longRestFormula
	}

	opts := outcome.Options{Type: ActionRest, Title: title}
	if in.Actor.Starving {
		opts.Description = textStarving
		return outcome.WithTarget(in.Actor, "")(ctx, r.builder.New(opts))
	}

	return pipe.AsyncPipe(
		r.builder.WithRoll(outcome.RollInput{Formula: formula, FormulaLabel: title}),
		outcome.WithAsyncProps(
			outcome.P("heal", func(_ context.Context, o *outcome.Outcome) (any, error) {
				return o.Roll.Total, nil
			}),
			outcome.P("description", func(_ context.Context, o *outcome.Outcome) (any, error) {
				return fmt.Sprintf("Heal %d HP", o.Heal), nil
			}),
		),
		outcome.WithTarget(in.Actor, ""),
		outcome.WithAutomations(outcome.AutomationHeal),
	)(ctx, r.builder.New(opts))
}

// tableRoll rolls formula and describes the outcome with the table entry for
// the primary die
func (r *Rules) tableRoll(ctx context.Context, action outcome.ActionType, title, formula string, table []string) (*outcome.Outcome, error) {
	return pipe.AsyncPipe(
		r.builder.WithRoll(outcome.RollInput{Formula: formula, FormulaLabel: title}),
		outcome.WithAsyncProps(outcome.P("description", func(_ context.Context, o *outcome.Outcome) (any, error) {
			return tableEntry(table, o.Roll.PrimaryDie()), nil
		})),
	)(ctx, r.builder.New(outcome.Options{Type: action, Title: title}))
}

// Broken rolls on the broken table when an actor drops to zero HP
func (r *Rules) Broken(ctx context.Context, in ActionInput) (*outcome.Outcome, error) {
	if err := requireActor(in); err != nil {
		return nil, err
	}
	o, err := r.tableRoll(ctx, ActionBroken, "Broken", brokenFormula, brokenTable)
	if err != nil {
		return nil, err
	}
	return outcome.WithTarget(in.Actor, "")(ctx, o)
}

// Mishap rolls on the mishap table after a fumbled invocation
func (r *Rules) Mishap(ctx context.Context, in ActionInput) (*outcome.Outcome, error) {
	if err := requireActor(in); err != nil {
		return nil, err
	}
	o, err := r.tableRoll(ctx, ActionMishap, "Mishap", mishapFormula, mishapTable)
	if err != nil {
		return nil, err
	}
	return outcome.WithTarget(in.Actor, "")(ctx, o)
}

// moraleCheck rolls 2d6 against score. Rolling over the score breaks morale,
// and a d6 decides between the low and high fallout.
func (r *Rules) moraleCheck(ctx context.Context, action outcome.ActionType, title string, score int, holds, low, high string) (*outcome.Outcome, error) {
	return pipe.AsyncPipe(
		r.builder.WithRoll(outcome.RollInput{Formula: moraleFormula, FormulaLabel: title}),
		outcome.WithAsyncProps(
			outcome.P(PropMoraleBroken, func(_ context.Context, o *outcome.Outcome) (any, error) {
				return o.Roll.Total > score, nil
			}),
			outcome.P("description", func(ctx context.Context, o *outcome.Outcome) (any, error) {
				if !o.PropBool(PropMoraleBroken) {
					return holds, nil
				}
				fallout, err := r.sideRoll(ctx, moraleFallout)
				if err != nil {
					return nil, err
				}
				if fallout <= moraleFleeMax {
					return low, nil
				}
				return high, nil
			}),
		),
	)(ctx, r.builder.New(outcome.Options{Type: action, Title: title}))
}

// Morale checks whether a creature keeps fighting
func (r *Rules) Morale(ctx context.Context, in ActionInput) (*outcome.Outcome, error) {
	if err := requireActor(in); err != nil {
		return nil, err
	}
	if in.Actor.Morale <= 0 {
		return nil, errors.FailedPreconditionf("%s has no morale score", in.Actor.Name)
	}

	o, err := r.moraleCheck(ctx, ActionMorale, "Morale", in.Actor.Morale, textMoraleHolds, textFlees, textSurrenders)
	if err != nil {
		return nil, err
	}
	return outcome.WithTarget(in.Actor, "")(ctx, o)
}

// CrewMorale checks whether a ship's crew keeps fighting
func (r *Rules) CrewMorale(ctx context.Context, in ActionInput) (*outcome.Outcome, error) {
	if err := requireActor(in); err != nil {
		return nil, err
	}
	if in.Actor.Ship == nil || in.Actor.Ship.CrewMorale <= 0 {
		return nil, errors.FailedPreconditionf("%s has no crew morale", in.Actor.Name)
	}

	o, err := r.moraleCheck(ctx, ActionCrewMorale, "Crew Morale", in.Actor.Ship.CrewMorale, textCrewHolds, textCrewDeserts, textCrewMutinies)
	if err != nil {
		return nil, err
	}
	return outcome.WithTarget(in.Actor, "")(ctx, o)
}

// Reaction rolls how strangers receive the party
func (r *Rules) Reaction(ctx context.Context, _ ActionInput) (*outcome.Outcome, error) {
	return pipe.AsyncPipe(
		r.builder.WithRoll(outcome.RollInput{Formula: reactionFormula, FormulaLabel: "Reaction"}),
		outcome.WithAsyncProps(outcome.P("description", func(_ context.Context, o *outcome.Outcome) (any, error) {
			return reaction(o.Roll.Total), nil
		})),
	)(ctx, r.builder.New(outcome.Options{Type: ActionReaction, Title: "Reaction"}))
}

// PartyInitiative decides which side acts first
func (r *Rules) PartyInitiative(ctx context.Context, _ ActionInput) (*outcome.Outcome, error) {
	return pipe.AsyncPipe(
		r.builder.WithRoll(outcome.RollInput{Formula: partyInitFormula, FormulaLabel: "Party Initiative"}),
		outcome.WithAsyncProps(outcome.P("description", func(_ context.Context, o *outcome.Outcome) (any, error) {
			if o.Roll.Total >= partyInitiativeHigh {
				return textPartyFirst, nil
			}
			return textEnemiesFirst, nil
		})),
	)(ctx, r.builder.New(outcome.Options{Type: ActionPartyInitiative, Title: "Party Initiative"}))
}

// Initiative rolls individual initiative
func (r *Rules) Initiative(ctx context.Context, in ActionInput) (*outcome.Outcome, error) {
	if err := requireActor(in); err != nil {
		return nil, err
	}
	o, err := r.builder.RollOutcome(ctx,
		outcome.Options{Type: ActionInitiative, Title: "Initiative"},
		outcome.RollInput{Formula: initiativeFormula, FormulaLabel: "Initiative", Data: in.Actor.RollData()},
	)
	if err != nil {
		return nil, err
	}
	return outcome.WithTarget(in.Actor, "")(ctx, o)
}

// GetBetter rolls 6d10 against max HP; beating it raises max HP by d6
func (r *Rules) GetBetter(ctx context.Context, in ActionInput) (*outcome.Outcome, error) {
	if err := requireActor(in); err != nil {
		return nil, err
	}

	return pipe.AsyncPipe(
		r.builder.WithRoll(outcome.RollInput{Formula: getBetterFormula, FormulaLabel: "Get Better"}),
		outcome.WithAsyncProps(
			outcome.P(PropMaxHPGain, func(ctx context.Context, o *outcome.Outcome) (any, error) {
				if o.Roll.Total < in.Actor.HP.Max {
					return 0, nil
				}
				return r.sideRoll(ctx, maxHPGainFormula)
			}),
			outcome.P("description", func(_ context.Context, o *outcome.Outcome) (any, error) {
				gain := o.PropInt(PropMaxHPGain)
				if gain == 0 {
					return textNoBetter, nil
				}
				return fmt.Sprintf("%s by %d", textGetBetter, gain), nil
			}),
		),
		outcome.WithTarget(in.Actor, ""),
		outcome.WithWhen(func(o *outcome.Outcome) bool {
			return o.PropInt(PropMaxHPGain) > 0
		}, outcome.WithAutomations(outcome.AutomationMaxHP)),
	)(ctx, r.builder.New(outcome.Options{Type: ActionGetBetter, Title: "Get Better"}))
}

// DrawTable adapts a draw made elsewhere into an outcome
func (r *Rules) DrawTable(ctx context.Context, in ActionInput) (*outcome.Outcome, error) {
	title := in.Title
	if title == "" {
		title = "Draw"
	}

	o, err := r.builder.DrawOutcome(ctx, outcome.Options{Type: ActionDrawTable, Title: title}, in.Draw)
	if err != nil {
		return nil, err
	}
	if in.Actor == nil {
		return o, nil
	}
	return outcome.WithTarget(in.Actor, "")(ctx, o)
}
