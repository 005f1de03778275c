package outcome

import (
	"context"
	"strings"

	"github.com/KirkDiggler/rpg-pirateborg/internal/errors"
	"github.com/KirkDiggler/rpg-pirateborg/internal/formula"
	"github.com/KirkDiggler/rpg-pirateborg/internal/pkg/idgen"
	"github.com/KirkDiggler/rpg-pirateborg/internal/pkg/pipe"
)

// Test defaults
const (
	DefaultDR       = 12
	DefaultFumbleOn = 1
	DefaultCritOn   = 20
)

// Step enriches an outcome. Steps never mutate their input.
type Step = pipe.Func[*Outcome]

// Config holds the dependencies for the builder
type Config struct {
	Evaluator   formula.Evaluator
	IDGenerator idgen.Generator
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config is required")
	}

	vb := errors.NewValidationBuilder()
	if c.Evaluator == nil {
		vb.RequiredField("Evaluator")
	}
	if c.IDGenerator == nil {
		vb.RequiredField("IDGenerator")
	}
	return vb.Build()
}

// Builder owns the collaborators steps need: the formula evaluator for rolls
// and the id generator for outcomes and buttons.
type Builder struct {
	evaluator formula.Evaluator
	idGen     idgen.Generator
}

// NewBuilder creates a builder from cfg
func NewBuilder(cfg *Config) (*Builder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &Builder{
		evaluator: cfg.Evaluator,
		idGen:     cfg.IDGenerator,
	}, nil
}

// Evaluator exposes the evaluator for factories that need a side roll
func (b *Builder) Evaluator() formula.Evaluator {
	return b.evaluator
}

// Options seed a new outcome
type Options struct {
	Type        ActionType
	Title       string
	Description string
	Props       map[string]any
}

// RollInput describes the roll attached by WithRoll
type RollInput struct {
	Formula string

	// FormulaLabel defaults to Formula
	FormulaLabel string

	Data map[string]any
}

// TestInput describes how WithTest classifies a roll. Zero values take the
// defaults (dr 12, fumble on 1, critical on 20).
type TestInput struct {
	DR       int
	FumbleOn int
	CritOn   int
}

// Draw is a table draw made outside the engine
type Draw struct {
	Roll    *formula.Roll
	Results []string
}

// New creates an outcome with a fresh id
func (b *Builder) New(opts Options) *Outcome {
	o := &Outcome{
		ID:          b.idGen.Generate(),
		Type:        opts.Type,
		Title:       opts.Title,
		Description: opts.Description,
	}
	if len(opts.Props) > 0 {
		o.Props = make(map[string]any, len(opts.Props))
		for k, v := range opts.Props {
			o.Props[k] = v
		}
	}
	return o
}

// WithRoll evaluates the formula and attaches roll, formula and label
func (b *Builder) WithRoll(in RollInput) Step {
	return func(ctx context.Context, o *Outcome) (*Outcome, error) {
		if o.Roll != nil {
			return nil, errors.FailedPreconditionf("outcome %s already has a roll", o.ID)
		}

		roll, err := b.evaluator.Evaluate(ctx, in.Formula, in.Data)
		if err != nil {
			return nil, err
		}

		next := o.Clone()
		next.Roll = roll
		next.Formula = in.Formula
		next.FormulaLabel = in.FormulaLabel
		if next.FormulaLabel == "" {
			next.FormulaLabel = in.Formula
		}
		return next, nil
	}
}

// WithTest classifies the attached roll against a difficulty rating.
//
// IsSuccess/IsFailure compare the total with dr; IsCriticalSuccess/IsFumble
// look only at the primary die, so a fumble can still be a numeric success.
// Result picks one with precedence critical, fumble, success, failure.
func WithTest(in TestInput) Step {
	return func(_ context.Context, o *Outcome) (*Outcome, error) {
		if o.Roll == nil {
			return nil, errors.FailedPreconditionf("outcome %s has no roll to test", o.ID)
		}

		dr := in.DR
		if dr <= 0 {
			dr = DefaultDR
		}
		fumbleOn := in.FumbleOn
		if fumbleOn <= 0 {
			fumbleOn = DefaultFumbleOn
		}
		critOn := in.CritOn
		if critOn <= 0 {
			critOn = DefaultCritOn
		}

		next := o.Clone()
		next.DR = dr
		next.IsSuccess = o.Roll.Total >= dr
		next.IsFailure = o.Roll.Total < dr
		if len(o.Roll.Dice) > 0 {
			primary := o.Roll.PrimaryDie()
			next.IsCriticalSuccess = primary >= critOn
			next.IsFumble = primary <= fumbleOn
		}

		switch {
		case next.IsCriticalSuccess:
			next.Result = ResultCriticalSuccess
		case next.IsFumble:
			next.Result = ResultFumble
		case next.IsSuccess:
			next.Result = ResultSuccess
		default:
			next.Result = ResultFailure
		}
		return next, nil
	}
}

// WithDraw adapts a table draw: the draw's roll becomes the outcome roll and
// the drawn texts, in order, become the description.
func WithDraw(draw *Draw) Step {
	return func(_ context.Context, o *Outcome) (*Outcome, error) {
		if draw == nil || draw.Roll == nil {
			return nil, errors.InvalidArgument("draw with a roll is required")
		}
		if o.Roll != nil {
			return nil, errors.FailedPreconditionf("outcome %s already has a roll", o.ID)
		}

		next := o.Clone()
		next.Roll = draw.Roll
		next.Formula = draw.Roll.Formula
		next.FormulaLabel = draw.Roll.Formula
		next.DrawResults = append([]string(nil), draw.Results...)
		next.Description = strings.Join(draw.Results, "\n")
		return next, nil
	}
}

// Prop computes one value from the outcome built so far
type Prop struct {
	Key     string
	Resolve func(ctx context.Context, o *Outcome) (any, error)
}

// P is shorthand for a Prop
func P(key string, resolve func(ctx context.Context, o *Outcome) (any, error)) Prop {
	return Prop{Key: key, Resolve: resolve}
}

// WithAsyncProps resolves props one after another in the given order, folding
// each value into the outcome before the next resolver runs. Later props can
// therefore read earlier ones.
func WithAsyncProps(props ...Prop) Step {
	return func(ctx context.Context, o *Outcome) (*Outcome, error) {
		next := o.Clone()
		for _, prop := range props {
			value, err := prop.Resolve(ctx, next)
			if err != nil {
				return nil, err
			}
			if err := next.set(prop.Key, value); err != nil {
				return nil, err
			}
		}
		return next, nil
	}
}

// WithWhen applies step only when pred holds for the incoming outcome
func WithWhen(pred func(o *Outcome) bool, step Step) Step {
	return pipe.When(pred, step)
}

// TokenHolder is anything with an active token on the scene
type TokenHolder interface {
	ActiveToken() string
}

// WithTarget records the initiator's active token and the selected target
func WithTarget(actor TokenHolder, targetToken string) Step {
	return func(_ context.Context, o *Outcome) (*Outcome, error) {
		next := o.Clone()
		if actor != nil {
			next.InitiatorToken = actor.ActiveToken()
		}
		next.TargetToken = targetToken
		return next, nil
	}
}

// WithButton attaches a button whose data points back at the outcome
func (b *Builder) WithButton(title string, buttonType ButtonType) Step {
	return func(_ context.Context, o *Outcome) (*Outcome, error) {
		next := o.Clone()
		next.Button = &Button{
			Title: title,
			Data: ButtonData{
				Type:    buttonType,
				ID:      b.idGen.Generate(),
				Outcome: o.ID,
			},
		}
		return next, nil
	}
}

// WithAutomations appends automation tags. Duplicates are kept.
func WithAutomations(types ...AutomationType) Step {
	return func(_ context.Context, o *Outcome) (*Outcome, error) {
		next := o.Clone()
		next.Automations = append(next.Automations, types...)
		return next, nil
	}
}

// RollOutcome is New followed by WithRoll
func (b *Builder) RollOutcome(ctx context.Context, opts Options, roll RollInput) (*Outcome, error) {
	return b.WithRoll(roll)(ctx, b.New(opts))
}

// TestOutcome is New, WithRoll and WithTest
func (b *Builder) TestOutcome(ctx context.Context, opts Options, roll RollInput, test TestInput) (*Outcome, error) {
	return pipe.AsyncPipe(b.WithRoll(roll), WithTest(test))(ctx, b.New(opts))
}

// DrawOutcome is New followed by WithDraw
func (b *Builder) DrawOutcome(ctx context.Context, opts Options, draw *Draw) (*Outcome, error) {
	return WithDraw(draw)(ctx, b.New(opts))
}

// set folds a resolved prop. Keys naming typed fields must carry the field's
// type; anything else lands in Props.
func (o *Outcome) set(key string, value any) error {
	switch key {
	case "title", "description", "initiatorToken", "targetToken":
		s, ok := value.(string)
		if !ok {
			return errors.InvalidArgumentf("prop %s must be a string, got %T", key, value)
		}
		switch key {
		case "title":
			o.Title = s
		case "description":
			o.Description = s
		case "initiatorToken":
			o.InitiatorToken = s
		default:
			o.TargetToken = s
		}
	case "heal", "totalDamage", "dr":
		n, ok := toInt(value)
		if !ok {
			return errors.InvalidArgumentf("prop %s must be a number, got %T", key, value)
		}
		switch key {
		case "heal":
			o.Heal = n
		case "totalDamage":
			o.TotalDamage = n
		default:
			o.DR = n
		}
	default:
		if o.Props == nil {
			o.Props = make(map[string]any)
		}
		o.Props[key] = value
	}
	return nil
}
