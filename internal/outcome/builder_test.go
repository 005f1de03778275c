package outcome_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-pirateborg/internal/errors"
	"github.com/KirkDiggler/rpg-pirateborg/internal/formula"
	"github.com/KirkDiggler/rpg-pirateborg/internal/outcome"
	"github.com/KirkDiggler/rpg-pirateborg/internal/pkg/idgen"
	"github.com/KirkDiggler/rpg-pirateborg/internal/pkg/pipe"
	"github.com/KirkDiggler/rpg-pirateborg/internal/testutils"
)

type tokenHolder string

func (t tokenHolder) ActiveToken() string { return string(t) }

type BuilderTestSuite struct {
	suite.Suite
	ctx     context.Context
	roller  *testutils.ScriptedRoller
	builder *outcome.Builder
}

func TestBuilderSuite(t *testing.T) {
	suite.Run(t, new(BuilderTestSuite))
}

func (s *BuilderTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.roller = testutils.NewScriptedRoller()

	eval, err := formula.New(&formula.Config{Roller: s.roller})
	s.Require().NoError(err)

	s.builder, err = outcome.NewBuilder(&outcome.Config{
		Evaluator:   eval,
		IDGenerator: idgen.NewSequential("id"),
	})
	s.Require().NoError(err)
}

func (s *BuilderTestSuite) TestNew() {
	first := s.builder.New(outcome.Options{Type: "attack", Title: "Attack", Props: map[string]any{"weapon": "cutlass"}})
	second := s.builder.New(outcome.Options{Type: "attack"})

	s.Equal("id_1", first.ID)
	s.Equal("id_2", second.ID)
	s.Equal(outcome.ActionType("attack"), first.Type)
	s.Equal("Attack", first.Title)
	s.Equal("cutlass", first.PropString("weapon"))
	s.Nil(second.Props)
}

func (s *BuilderTestSuite) TestTestOutcomeCriticalSuccess() {
	s.roller.Push(20)

	o, err := s.builder.TestOutcome(s.ctx,
		outcome.Options{Type: "attack"},
		outcome.RollInput{Formula: "d20+5"},
		outcome.TestInput{DR: 12},
	)
	s.Require().NoError(err)

	s.Equal(25, o.Roll.Total)
	s.True(o.IsCriticalSuccess)
	s.False(o.IsFumble)
	s.True(o.IsSuccess)
	s.False(o.IsFailure)
	s.Equal(outcome.ResultCriticalSuccess, o.Result)
	s.Equal("d20+5", o.Formula)
	s.Equal("d20+5", o.FormulaLabel)
	s.Equal(12, o.DR)
}

func (s *BuilderTestSuite) TestTestOutcomeFumbleBeatsFailure() {
	s.roller.Push(1)

	o, err := s.builder.TestOutcome(s.ctx,
		outcome.Options{Type: "attack"},
		outcome.RollInput{Formula: "d20+5"},
		outcome.TestInput{DR: 12},
	)
	s.Require().NoError(err)

	s.Equal(6, o.Roll.Total)
	s.True(o.IsFumble)
	s.False(o.IsSuccess)
	s.True(o.IsFailure)
	s.Equal(outcome.ResultFumble, o.Result)
}

func (s *BuilderTestSuite) TestFumbleCanMeetDR() {
	s.roller.Push(1)

	o, err := s.builder.TestOutcome(s.ctx,
		outcome.Options{Type: "test-ability"},
		outcome.RollInput{Formula: "d20+15"},
		outcome.TestInput{},
	)
	s.Require().NoError(err)

	s.Equal(16, o.Roll.Total)
	s.True(o.IsFumble)
	s.True(o.IsSuccess)
	s.False(o.IsFailure)
	s.Equal(outcome.ResultFumble, o.Result)
}

func (s *BuilderTestSuite) TestWithTestResults() {
	testCases := []struct {
		name     string
		face     int
		test     outcome.TestInput
		expected outcome.Result
	}{
		{name: "plain success", face: 12, expected: outcome.ResultSuccess},
		{name: "plain failure", face: 11, expected: outcome.ResultFailure},
		{name: "custom crit range", face: 19, test: outcome.TestInput{CritOn: 19}, expected: outcome.ResultCriticalSuccess},
		{name: "custom fumble range", face: 2, test: outcome.TestInput{FumbleOn: 2}, expected: outcome.ResultFumble},
		{name: "higher dr", face: 14, test: outcome.TestInput{DR: 15}, expected: outcome.ResultFailure},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.roller.Push(tc.face)

			o, err := s.builder.TestOutcome(s.ctx, outcome.Options{Type: "test"}, outcome.RollInput{Formula: "d20"}, tc.test)
			s.Require().NoError(err)
			s.Equal(tc.expected, o.Result)
		})
	}
}

func (s *BuilderTestSuite) TestWithTestWithoutDiceNeverCrits() {
	o, err := s.builder.TestOutcome(s.ctx, outcome.Options{Type: "test"}, outcome.RollInput{Formula: "12"}, outcome.TestInput{})
	s.Require().NoError(err)

	s.False(o.IsFumble)
	s.False(o.IsCriticalSuccess)
	s.Equal(outcome.ResultSuccess, o.Result)
}

func (s *BuilderTestSuite) TestWithTestRequiresRoll() {
	_, err := outcome.WithTest(outcome.TestInput{})(s.ctx, s.builder.New(outcome.Options{Type: "test"}))
	s.True(errors.IsFailedPrecondition(err))
}

func (s *BuilderTestSuite) TestRollIsNeverReplaced() {
	s.roller.Push(4)

	o, err := s.builder.RollOutcome(s.ctx, outcome.Options{Type: "heal"}, outcome.RollInput{Formula: "d4", FormulaLabel: "Rest"})
	s.Require().NoError(err)
	s.Equal("Rest", o.FormulaLabel)

	_, err = s.builder.WithRoll(outcome.RollInput{Formula: "d6"})(s.ctx, o)
	s.True(errors.IsFailedPrecondition(err))
	s.Equal(4, o.Roll.Total)
}

func (s *BuilderTestSuite) TestFormulaErrorPropagates() {
	_, err := s.builder.RollOutcome(s.ctx, outcome.Options{Type: "heal"}, outcome.RollInput{Formula: "d4+"})
	s.True(errors.IsInvalidArgument(err))
}

func (s *BuilderTestSuite) TestWithDraw() {
	draw := &outcome.Draw{
		Roll:    &formula.Roll{Formula: "1d12", Total: 7, Dice: []formula.DieTerm{{Count: 1, Faces: 12, Results: []int{7}, Kept: []int{7}, Total: 7}}},
		Results: []string{"A rusty cutlass", "Half a map"},
	}

	o, err := s.builder.DrawOutcome(s.ctx, outcome.Options{Type: "draw-table", Title: "Loot"}, draw)
	s.Require().NoError(err)

	s.Same(draw.Roll, o.Roll)
	s.Equal("1d12", o.Formula)
	s.Equal("1d12", o.FormulaLabel)
	s.Equal([]string{"A rusty cutlass", "Half a map"}, o.DrawResults)
	s.Equal("A rusty cutlass\nHalf a map", o.Description)

	_, err = s.builder.DrawOutcome(s.ctx, outcome.Options{Type: "draw-table"}, nil)
	s.True(errors.IsInvalidArgument(err))
}

func (s *BuilderTestSuite) TestWithAsyncPropsOrdering() {
	o, err := outcome.WithAsyncProps(
		outcome.P("a", func(context.Context, *outcome.Outcome) (any, error) { return 1, nil }),
		outcome.P("b", func(_ context.Context, o *outcome.Outcome) (any, error) { return o.PropInt("a") + 1, nil }),
	)(s.ctx, s.builder.New(outcome.Options{Type: "test"}))
	s.Require().NoError(err)

	s.Equal(1, o.PropInt("a"))
	s.Equal(2, o.PropInt("b"))
}

func (s *BuilderTestSuite) TestWithAsyncPropsTypedFields() {
	o, err := outcome.WithAsyncProps(
		outcome.P("totalDamage", func(context.Context, *outcome.Outcome) (any, error) { return 7, nil }),
		outcome.P("title", func(_ context.Context, o *outcome.Outcome) (any, error) {
			if o.TotalDamage == 7 {
				return "Seven damage", nil
			}
			return "wrong order", nil
		}),
		outcome.P("heal", func(context.Context, *outcome.Outcome) (any, error) { return float64(3), nil }),
	)(s.ctx, s.builder.New(outcome.Options{Type: "damage"}))
	s.Require().NoError(err)

	s.Equal(7, o.TotalDamage)
	s.Equal("Seven damage", o.Title)
	s.Equal(3, o.Heal)

	_, err = outcome.WithAsyncProps(
		outcome.P("title", func(context.Context, *outcome.Outcome) (any, error) { return 12, nil }),
	)(s.ctx, o)
	s.True(errors.IsInvalidArgument(err))
}

func (s *BuilderTestSuite) TestWithWhen() {
	button := s.builder.WithButton("Roll Damage", "roll-damage")
	hasButton := outcome.WithWhen(func(o *outcome.Outcome) bool { return o.IsSuccess }, button)

	success := s.builder.New(outcome.Options{Type: "attack"})
	success.IsSuccess = true
	withButton, err := hasButton(s.ctx, success)
	s.Require().NoError(err)
	s.NotNil(withButton.Button)
	s.Nil(success.Button, "input must not be mutated")

	failure := s.builder.New(outcome.Options{Type: "attack"})
	unchanged, err := hasButton(s.ctx, failure)
	s.Require().NoError(err)
	s.Nil(unchanged.Button)
	s.Equal(failure, unchanged)
}

func (s *BuilderTestSuite) TestButtonCorrelation() {
	o := s.builder.New(outcome.Options{Type: "attack"})
	other := s.builder.New(outcome.Options{Type: "defend"})

	o, err := s.builder.WithButton("Roll Damage", "roll-damage")(s.ctx, o)
	s.Require().NoError(err)

	s.Equal(o.ID, o.Button.Data.Outcome)
	s.Equal(outcome.ButtonType("roll-damage"), o.Button.Data.Type)
	s.NotEmpty(o.Button.Data.ID)
	s.NotEqual(o.ID, o.Button.Data.ID)

	s.Same(o, outcome.FindByID([]*outcome.Outcome{other, o}, o.Button.Data.Outcome))
	s.Nil(outcome.FindByID([]*outcome.Outcome{other}, "missing"))
}

func (s *BuilderTestSuite) TestWithTargetAndAutomations() {
	o, err := pipe.AsyncPipe(
		outcome.WithTarget(tokenHolder("token_pc"), "token_npc"),
		outcome.WithAutomations(outcome.AutomationDamage),
		outcome.WithAutomations(outcome.AutomationAnimation, outcome.AutomationDamage),
	)(s.ctx, s.builder.New(outcome.Options{Type: "damage"}))
	s.Require().NoError(err)

	s.Equal("token_pc", o.InitiatorToken)
	s.Equal("token_npc", o.TargetToken)
	s.Equal([]outcome.AutomationType{outcome.AutomationDamage, outcome.AutomationAnimation, outcome.AutomationDamage}, o.Automations)
	s.True(o.HasAutomation(outcome.AutomationAnimation))
	s.False(o.HasAutomation(outcome.AutomationHeal))
	s.False(o.AutomationDone)

	noActor, err := outcome.WithTarget(nil, "")(s.ctx, o)
	s.Require().NoError(err)
	s.Empty(noActor.InitiatorToken)
}

func (s *BuilderTestSuite) TestJSONRoundTripKeepsFlagNames() {
	s.roller.Push(15)
	o, err := pipe.AsyncPipe(
		s.builder.WithRoll(outcome.RollInput{Formula: "d20"}),
		outcome.WithTest(outcome.TestInput{}),
		s.builder.WithButton("Roll Damage", "roll-damage"),
		outcome.WithAutomations(outcome.AutomationDamage),
	)(s.ctx, s.builder.New(outcome.Options{Type: "attack", Props: map[string]any{"bonus": 2}}))
	s.Require().NoError(err)

	raw, err := json.Marshal(o)
	s.Require().NoError(err)

	var generic map[string]any
	s.Require().NoError(json.Unmarshal(raw, &generic))
	for _, key := range []string{"id", "type", "roll", "formula", "formulaLabel", "dr", "isSuccess", "result", "button", "automations"} {
		s.Contains(generic, key)
	}
	s.NotContains(generic, "automationDone")

	var decoded outcome.Outcome
	s.Require().NoError(json.Unmarshal(raw, &decoded))
	s.Equal(o.Button, decoded.Button)
	s.Equal(2, decoded.PropInt("bonus"))
}
