// Package formula evaluates dice formulas such as "d20+@abilities.agility.value"
// against an actor's roll data.
package formula

//go:generate mockgen -destination=mock/mock_evaluator.go -package=formulamock github.com/KirkDiggler/rpg-pirateborg/internal/formula Evaluator

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/KirkDiggler/rpg-toolkit/dice"

	"github.com/KirkDiggler/rpg-pirateborg/internal/errors"
)

// Evaluator turns a formula and a data context into a Roll
type Evaluator interface {
	Evaluate(ctx context.Context, formula string, data map[string]any) (*Roll, error)
}

// RollHook is awaited after every evaluation, e.g. to wait for a dice
// animation to finish before the pipeline continues.
type RollHook interface {
	AfterRoll(ctx context.Context, roll *Roll) error
}

// RollHookFunc adapts a function to RollHook
type RollHookFunc func(ctx context.Context, roll *Roll) error

// AfterRoll calls f
func (f RollHookFunc) AfterRoll(ctx context.Context, roll *Roll) error {
	return f(ctx, roll)
}

// Config holds the dependencies for the evaluator
type Config struct {
	Roller dice.Roller

	// Hook is optional
	Hook RollHook
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config is required")
	}

	vb := errors.NewValidationBuilder()
	if c.Roller == nil {
		vb.RequiredField("Roller")
	}
	return vb.Build()
}

type evaluator struct {
	roller dice.Roller
	hook   RollHook
}

// New creates an evaluator rolling through cfg.Roller
func New(cfg *Config) (Evaluator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &evaluator{
		roller: cfg.Roller,
		hook:   cfg.Hook,
	}, nil
}

// Evaluate parses and evaluates formula. Dice terms are rolled left to right.
func (e *evaluator) Evaluate(ctx context.Context, formula string, data map[string]any) (*Roll, error) {
	tree, err := parse(formula)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse formula %q", formula)
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Canceled("roll canceled")
	}

	roll := &Roll{Formula: formula}
	value, err := e.eval(tree, data, roll)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to evaluate formula %q", formula)
	}
	roll.Total = int(math.Round(value))

	if e.hook != nil {
		if err := e.hook.AfterRoll(ctx, roll); err != nil {
			return nil, errors.Wrap(err, "roll hook failed")
		}
	}

	return roll, nil
}

func (e *evaluator) eval(n node, data map[string]any, roll *Roll) (float64, error) {
	switch n := n.(type) {
	case *numberNode:
		return n.value, nil

	case *varNode:
		return lookup(data, n.path)

	case *diceNode:
		return e.rollDice(n.spec, roll)

	case *unaryNode:
		v, err := e.eval(n.operand, data, roll)
		return -v, err

	case *binaryNode:
		left, err := e.eval(n.left, data, roll)
		if err != nil {
			return 0, err
		}
		right, err := e.eval(n.right, data, roll)
		if err != nil {
			return 0, err
		}
		return applyOp(n.op, left, right)

	case *callNode:
		args := make([]float64, len(n.args))
		for i, arg := range n.args {
			v, err := e.eval(arg, data, roll)
			if err != nil {
				return 0, err
			}
			args[i] = v
		}
		return applyFunc(n.name, args), nil

	default:
		return 0, errors.Internalf("unknown node %T", n)
	}
}

func (e *evaluator) rollDice(spec diceSpec, roll *Roll) (float64, error) {
	results, err := e.roller.RollN(spec.count, spec.faces)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to roll %dd%d", spec.count, spec.faces)
	}

	kept := keep(results, spec)
	term := DieTerm{
		Count:   spec.count,
		Faces:   spec.faces,
		Results: results,
		Kept:    kept,
	}
	for _, face := range kept {
		term.Total += face
	}
	roll.Dice = append(roll.Dice, term)

	return float64(term.Total), nil
}

// keep selects the kept faces while preserving roll order
func keep(results []int, spec diceSpec) []int {
	if spec.keep == keepAll {
		return append([]int(nil), results...)
	}

	idx := make([]int, len(results))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		if spec.keep == keepHighest {
			return results[idx[a]] > results[idx[b]]
		}
		return results[idx[a]] < results[idx[b]]
	})
	chosen := idx[:spec.n]
	sort.Ints(chosen)

	kept := make([]int, len(chosen))
	for i, j := range chosen {
		kept[i] = results[j]
	}
	return kept
}

func applyOp(op string, left, right float64) (float64, error) {
	switch op {
	case "+":
		return left + right, nil
	case "-":
		return left - right, nil
	case "*":
		return left * right, nil
	case "/":
		if right == 0 {
			return 0, errors.InvalidArgument("division by zero")
		}
		return left / right, nil
	case "%":
		if right == 0 {
			return 0, errors.InvalidArgument("division by zero")
		}
		return math.Mod(left, right), nil
	case "<":
		return boolValue(left < right), nil
	case ">":
		return boolValue(left > right), nil
	case "<=":
		return boolValue(left <= right), nil
	case ">=":
		return boolValue(left >= right), nil
	case "==":
		return boolValue(left == right), nil
	case "!=":
		return boolValue(left != right), nil
	default:
		return 0, errors.InvalidArgumentf("unknown operator %q", op)
	}
}

func applyFunc(name string, args []float64) float64 {
	switch name {
	case "min":
		v := args[0]
		for _, a := range args[1:] {
			v = math.Min(v, a)
		}
		return v
	case "max":
		v := args[0]
		for _, a := range args[1:] {
			v = math.Max(v, a)
		}
		return v
	case "abs":
		return math.Abs(args[0])
	case "floor":
		return math.Floor(args[0])
	case "ceil":
		return math.Ceil(args[0])
	default:
		return math.Round(args[0])
	}
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// lookup resolves a dotted path in data. Missing keys count as 0.
func lookup(data map[string]any, path string) (float64, error) {
	var current any = data
	for _, key := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			slog.Debug("formula variable missing", "path", path)
			return 0, nil
		}
		current, ok = m[key]
		if !ok {
			slog.Debug("formula variable missing", "path", path)
			return 0, nil
		}
	}

	switch v := current.(type) {
	case nil:
		return 0, nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case float32:
		return float64(v), nil
	case float64:
		return v, nil
	case bool:
		return boolValue(v), nil
	case json.Number:
		return v.Float64()
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, errors.InvalidArgumentf("variable @%s is not a number: %q", path, v)
		}
		return f, nil
	default:
		return 0, errors.InvalidArgumentf("variable @%s is not a number", path)
	}
}
