package pirateborg

import (
	"context"
	"fmt"
	"strings"

	"github.com/KirkDiggler/rpg-pirateborg/internal/entities"
	"github.com/KirkDiggler/rpg-pirateborg/internal/errors"
	"github.com/KirkDiggler/rpg-pirateborg/internal/outcome"
	"github.com/KirkDiggler/rpg-pirateborg/internal/pkg/pipe"
)

// Test actions
const (
	ActionTestAbility  outcome.ActionType = "test-ability"
	ActionAttack       outcome.ActionType = "attack"
	ActionDefend       outcome.ActionType = "defend"
	ActionInvokeRitual outcome.ActionType = "invoke-ritual"
	ActionInvokeRelic  outcome.ActionType = "invoke-relic"
	ActionBroadside    outcome.ActionType = "broadside"
	ActionSmallArms    outcome.ActionType = "small-arms"
	ActionRam          outcome.ActionType = "ram"
	ActionFullSail     outcome.ActionType = "full-sail"
	ActionComeAbout    outcome.ActionType = "come-about"
	ActionRepair       outcome.ActionType = "repair"
	ActionSingShanty   outcome.ActionType = "sing-shanty"
	ActionBoarding     outcome.ActionType = "boarding"
)

// Button types
const (
	ButtonRollDamage outcome.ButtonType = "roll-damage"
	ButtonTakeDamage outcome.ButtonType = "take-damage"
	ButtonShipDamage outcome.ButtonType = "ship-damage"
	ButtonMishap     outcome.ButtonType = "mishap"
	ButtonRepairHull outcome.ButtonType = "repair-hull"
)

// Props set by test actions and read back by button handlers
const (
	PropDamageFormula  = "damageFormula"
	PropIncomingDamage = "incomingDamage"
	PropWeapon         = "weapon"
	PropAbility        = "ability"
)

const (
	defaultWeaponDamage   = "d2"
	defaultIncomingDamage = "d6"
	defaultBroadside      = "2d6"
	defaultRam            = "d8"
	heavyArmorTier        = 3
	heavyArmorPenalty     = 2
)

var (
	critFirst   = []outcome.Result{outcome.ResultCriticalSuccess, outcome.ResultFumble, outcome.ResultSuccess, outcome.ResultFailure}
	fumbleFirst = []outcome.Result{outcome.ResultFumble, outcome.ResultCriticalSuccess, outcome.ResultSuccess, outcome.ResultFailure}
)

// testAction is one row of the d20 test table. The precedence decides which
// text describes the outcome; it is not always the order WithTest uses for
// the result field.
type testAction struct {
	title      func(in ActionInput) string
	formula    func(in ActionInput) string
	dr         func(in ActionInput) int
	precedence []outcome.Result
	texts      map[outcome.Result]string

	// ship actions need an actor with a ship sheet
	ship bool

	button *testButton

	// props are attached before the button so handlers can read them
	props func(in ActionInput) map[string]any
}

type testButton struct {
	title string
	kind  outcome.ButtonType
	when  func(o *outcome.Outcome) bool
}

func fixedTitle(title string) func(ActionInput) string {
	return func(ActionInput) string { return title }
}

func abilityFormula(ability string) func(ActionInput) string {
	return func(ActionInput) string { return "d20+@abilities." + ability + ".value" }
}

func shipFormula(stat string) func(ActionInput) string {
	return func(ActionInput) string { return "d20+@ship." + stat + ".value" }
}

func onSuccess(o *outcome.Outcome) bool { return o.IsSuccess }
func onFailure(o *outcome.Outcome) bool { return o.IsFailure }
func onFumble(o *outcome.Outcome) bool  { return o.IsFumble }

func weaponProps(in ActionInput) map[string]any {
	props := map[string]any{PropDamageFormula: defaultWeaponDamage}
	if in.Actor == nil {
		return props
	}
	if w := in.Actor.Weapon(in.WeaponID); w != nil {
		props[PropDamageFormula] = w.Damage
		props[PropWeapon] = w.Name
	}
	return props
}

func attackAbility(in ActionInput) string {
	if in.Actor != nil {
		if w := in.Actor.Weapon(in.WeaponID); w != nil && w.Ranged {
			return entities.AbilityAgility
		}
	}
	return entities.AbilityStrength
}

var testActions = map[outcome.ActionType]testAction{
	ActionTestAbility: {
		title: func(in ActionInput) string {
			return "Test " + titleCase(in.Ability)
		},
		formula: func(in ActionInput) string {
			return "d20+@abilities." + in.Ability + ".value"
		},
		precedence: critFirst,
		texts: map[outcome.Result]string{
			outcome.ResultCriticalSuccess: "Critical success!",
			outcome.ResultFumble:          "Fumble!",
			outcome.ResultSuccess:         "Success",
			outcome.ResultFailure:         "Failure",
		},
		props: func(in ActionInput) map[string]any {
			return map[string]any{PropAbility: in.Ability}
		},
	},
	ActionAttack: {
		title: func(in ActionInput) string {
			if w := weaponProps(in)[PropWeapon]; w != nil {
				return fmt.Sprintf("Attack with %s", w)
			}
			return "Attack"
		},
		formula: func(in ActionInput) string {
			return "d20+@abilities." + attackAbility(in) + ".value"
		},
		precedence: critFirst,
		texts: map[outcome.Result]string{
			outcome.ResultCriticalSuccess: "Critical hit! Damage dice are doubled and the target's armor is reduced one tier.",
			outcome.ResultFumble:          "Fumble! Your weapon breaks or slips from your grip.",
			outcome.ResultSuccess:         "Hit",
			outcome.ResultFailure:         "Miss",
		},
		button: &testButton{title: "Roll Damage", kind: ButtonRollDamage, when: onSuccess},
		props:  weaponProps,
	},
	ActionDefend: {
		title:   fixedTitle("Defend"),
		formula: abilityFormula(entities.AbilityAgility),
		dr: func(in ActionInput) int {
			if in.Actor != nil && in.Actor.ArmorTier() >= heavyArmorTier {
				return outcome.DefaultDR + heavyArmorPenalty
			}
			return outcome.DefaultDR
		},
		precedence: fumbleFirst,
		texts: map[outcome.Result]string{
			outcome.ResultFumble:          "Fumble! You take double damage.",
			outcome.ResultCriticalSuccess: "Critical! You dodge and get a free attack.",
			outcome.ResultSuccess:         "You dodge the blow",
			outcome.ResultFailure:         "You are hit",
		},
		button: &testButton{title: "Take Damage", kind: ButtonTakeDamage, when: onFailure},
		props: func(in ActionInput) map[string]any {
			incoming := in.Formula
			if incoming == "" {
				incoming = defaultIncomingDamage
			}
			return map[string]any{PropIncomingDamage: incoming}
		},
	},
	ActionInvokeRitual: {
		title:      fixedTitle("Invoke Ritual"),
		formula:    abilityFormula(entities.AbilitySpirit),
		precedence: []outcome.Result{outcome.ResultFumble, outcome.ResultCriticalSuccess, outcome.ResultFailure, outcome.ResultSuccess},
		texts: map[outcome.Result]string{
			outcome.ResultFumble:          "Fumble! The ritual backfires. Roll on the mishap table.",
			outcome.ResultCriticalSuccess: "Critical! The ritual's effect is doubled.",
			outcome.ResultFailure:         "The ritual fails and you are stunned",
			outcome.ResultSuccess:         "The ritual takes hold",
		},
		button: &testButton{title: "Roll Mishap", kind: ButtonMishap, when: onFumble},
	},
	ActionInvokeRelic: {
		title:      fixedTitle("Invoke Relic"),
		formula:    abilityFormula(entities.AbilitySpirit),
		precedence: []outcome.Result{outcome.ResultCriticalSuccess, outcome.ResultSuccess, outcome.ResultFumble, outcome.ResultFailure},
		texts: map[outcome.Result]string{
			outcome.ResultCriticalSuccess: "Critical! The relic answers and is not spent.",
			outcome.ResultSuccess:         "The relic answers",
			outcome.ResultFumble:          "Fumble! The relic turns on you. Roll on the mishap table.",
			outcome.ResultFailure:         "The relic stays silent",
		},
		button: &testButton{title: "Roll Mishap", kind: ButtonMishap, when: onFumble},
	},
	ActionBroadside: {
		title:      fixedTitle("Broadside"),
		formula:    shipFormula("skill"),
		ship:       true,
		precedence: critFirst,
		texts: map[outcome.Result]string{
			outcome.ResultCriticalSuccess: "Critical! The broadside rakes the enemy deck.",
			outcome.ResultFumble:          "Fumble! A cannon explodes on your own deck.",
			outcome.ResultSuccess:         "The broadside hits",
			outcome.ResultFailure:         "The shots splash into the sea",
		},
		button: &testButton{title: "Roll Ship Damage", kind: ButtonShipDamage, when: onSuccess},
		props: func(in ActionInput) map[string]any {
			formula := defaultBroadside
			if in.Actor != nil && in.Actor.Ship != nil && in.Actor.Ship.Damage != "" {
				formula = in.Actor.Ship.Damage
			}
			return map[string]any{PropDamageFormula: formula}
		},
	},
	ActionSmallArms: {
		title:   fixedTitle("Small Arms"),
		formula: abilityFormula(entities.AbilityAgility),
		precedence: []outcome.Result{
			outcome.ResultCriticalSuccess, outcome.ResultSuccess, outcome.ResultFumble, outcome.ResultFailure,
		},
		texts: map[outcome.Result]string{
			outcome.ResultCriticalSuccess: "Critical! The volley cuts down the enemy crew.",
			outcome.ResultSuccess:         "The volley finds its mark",
			outcome.ResultFumble:          "Fumble! Powder flashes in the pan.",
			outcome.ResultFailure:         "The volley misses",
		},
		button: &testButton{title: "Roll Damage", kind: ButtonRollDamage, when: onSuccess},
		props:  weaponProps,
	},
	ActionRam: {
		title:      fixedTitle("Ram"),
		formula:    shipFormula("agility"),
		ship:       true,
		precedence: fumbleFirst,
		texts: map[outcome.Result]string{
			outcome.ResultFumble:          "Fumble! Your own hull splinters.",
			outcome.ResultCriticalSuccess: "Critical! The ram drives deep into the enemy hull.",
			outcome.ResultSuccess:         "The ram strikes home",
			outcome.ResultFailure:         "The enemy slips away",
		},
		button: &testButton{title: "Roll Ship Damage", kind: ButtonShipDamage, when: onSuccess},
		props: func(in ActionInput) map[string]any {
			formula := defaultRam
			if in.Actor != nil && in.Actor.Ship != nil && in.Actor.Ship.Ram != "" {
				formula = in.Actor.Ship.Ram
			}
			return map[string]any{PropDamageFormula: formula}
		},
	},
	ActionFullSail: {
		title:      fixedTitle("Full Sail"),
		formula:    shipFormula("agility"),
		ship:       true,
		precedence: critFirst,
		texts: map[outcome.Result]string{
			outcome.ResultCriticalSuccess: "Critical! The wind is yours, move twice.",
			outcome.ResultFumble:          "Fumble! A sail tears loose.",
			outcome.ResultSuccess:         "The ship surges ahead",
			outcome.ResultFailure:         "The sails luff",
		},
	},
	ActionComeAbout: {
		title:   fixedTitle("Come About"),
		formula: shipFormula("agility"),
		ship:    true,
		precedence: []outcome.Result{
			outcome.ResultSuccess, outcome.ResultCriticalSuccess, outcome.ResultFumble, outcome.ResultFailure,
		},
		texts: map[outcome.Result]string{
			outcome.ResultSuccess:         "The ship comes about",
			outcome.ResultCriticalSuccess: "Critical! The ship turns on a doubloon.",
			outcome.ResultFumble:          "Fumble! The ship is caught in irons.",
			outcome.ResultFailure:         "The ship holds its course",
		},
	},
	ActionRepair: {
		title:      fixedTitle("Repair"),
		formula:    abilityFormula(entities.AbilityPresence),
		precedence: critFirst,
		texts: map[outcome.Result]string{
			outcome.ResultCriticalSuccess: "Critical! The carpenter works wonders.",
			outcome.ResultFumble:          "Fumble! The patch gives way.",
			outcome.ResultSuccess:         "The hull is patched",
			outcome.ResultFailure:         "The leak keeps coming",
		},
		button: &testButton{title: "Repair Hull", kind: ButtonRepairHull, when: onSuccess},
	},
	ActionSingShanty: {
		title:      fixedTitle("Sing Shanty"),
		formula:    abilityFormula(entities.AbilitySpirit),
		precedence: fumbleFirst,
		texts: map[outcome.Result]string{
			outcome.ResultFumble:          "Fumble! The crew jeers.",
			outcome.ResultCriticalSuccess: "Critical! The whole crew joins in.",
			outcome.ResultSuccess:         "The crew's spirits lift",
			outcome.ResultFailure:         "Nobody sings along",
		},
	},
	ActionBoarding: {
		title:      fixedTitle("Boarding"),
		formula:    abilityFormula(entities.AbilityStrength),
		precedence: critFirst,
		texts: map[outcome.Result]string{
			outcome.ResultCriticalSuccess: "Critical! You land among the enemy with a free attack.",
			outcome.ResultFumble:          "Fumble! You fall between the hulls.",
			outcome.ResultSuccess:         "You make it across",
			outcome.ResultFailure:         "You are repelled",
		},
		button: &testButton{title: "Roll Damage", kind: ButtonRollDamage, when: onSuccess},
		props:  weaponProps,
	},
}

// Test runs one of the d20 test actions
func (r *Rules) Test(ctx context.Context, action outcome.ActionType, in ActionInput) (*outcome.Outcome, error) {
	row, ok := testActions[action]
	if !ok {
		return nil, errors.Unimplementedf("%s is not a test action", action)
	}
	if err := requireActor(in); err != nil {
		return nil, err
	}
	if action == ActionTestAbility && !isAbility(in.Ability) {
		return nil, errors.InvalidArgumentf("unknown ability %q", in.Ability)
	}
	if row.ship && in.Actor.Ship == nil {
		return nil, errors.FailedPreconditionf("%s needs a ship, %s has none", action, in.Actor.Name)
	}

	dr := in.DR
	if dr <= 0 && row.dr != nil {
		dr = row.dr(in)
	}

	var props map[string]any
	if row.props != nil {
		props = row.props(in)
	}

	steps := []outcome.Step{
		r.builder.WithRoll(outcome.RollInput{
			Formula:      row.formula(in),
			FormulaLabel: row.title(in),
			Data:         in.Actor.RollData(),
		}),
		outcome.WithTest(outcome.TestInput{DR: dr}),
		outcome.WithAsyncProps(outcome.P("description", func(_ context.Context, o *outcome.Outcome) (any, error) {
			return row.texts[selectResult(o, row.precedence)], nil
		})),
		outcome.WithTarget(in.Actor, in.TargetToken),
	}
	if row.button != nil {
		steps = append(steps, outcome.WithWhen(row.button.when, r.builder.WithButton(row.button.title, row.button.kind)))
	}

	return pipe.AsyncPipe(steps...)(ctx, r.builder.New(outcome.Options{
		Type:  action,
		Title: row.title(in),
		Props: props,
	}))
}

// selectResult walks precedence and returns the first classification the
// outcome carries. Failure is the fallback.
func selectResult(o *outcome.Outcome, precedence []outcome.Result) outcome.Result {
	for _, result := range precedence {
		switch {
		case result == outcome.ResultCriticalSuccess && o.IsCriticalSuccess,
			result == outcome.ResultFumble && o.IsFumble,
			result == outcome.ResultSuccess && o.IsSuccess,
			result == outcome.ResultFailure && o.IsFailure:
			return result
		}
	}
	return outcome.ResultFailure
}

func isAbility(name string) bool {
	switch name {
	case entities.AbilityStrength, entities.AbilityAgility, entities.AbilityPresence,
		entities.AbilityToughness, entities.AbilitySpirit:
		return true
	default:
		return false
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
