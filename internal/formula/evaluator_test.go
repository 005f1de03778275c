package formula_test

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-pirateborg/internal/errors"
	"github.com/KirkDiggler/rpg-pirateborg/internal/formula"
	"github.com/KirkDiggler/rpg-pirateborg/internal/testutils"
)

type EvaluatorTestSuite struct {
	suite.Suite
	ctx    context.Context
	roller *testutils.ScriptedRoller
	eval   formula.Evaluator
	data   map[string]any
}

func TestEvaluatorSuite(t *testing.T) {
	suite.Run(t, new(EvaluatorTestSuite))
}

func (s *EvaluatorTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.roller = testutils.NewScriptedRoller()

	eval, err := formula.New(&formula.Config{Roller: s.roller})
	s.Require().NoError(err)
	s.eval = eval

	s.data = map[string]any{
		"abilities": map[string]any{
			"strength": map[string]any{"value": 3},
			"agility":  map[string]any{"value": -1},
		},
		"armor": 3,
		"label": "not a number",
		"digits": "2",
	}
}

func (s *EvaluatorTestSuite) TestEvaluate() {
	testCases := []struct {
		name    string
		formula string
		faces   []int
		total   int
		primary int
	}{
		{name: "d20 plus flat", formula: "d20+5", faces: []int{20}, total: 25, primary: 20},
		{name: "fumble face", formula: "d20+5", faces: []int{1}, total: 6, primary: 1},
		{name: "ability variable", formula: "2d6+@abilities.strength.value", faces: []int{4, 5}, total: 12, primary: 4},
		{name: "negative ability", formula: "d20+@abilities.agility.value", faces: []int{10}, total: 9, primary: 10},
		{name: "keep highest", formula: "2d20kh", faces: []int{5, 17}, total: 17, primary: 17},
		{name: "keep lowest", formula: "2d20kl1", faces: []int{5, 17}, total: 5, primary: 5},
		{name: "armor clamp", formula: "max(d4-@armor, 0)", faces: []int{2}, total: 0, primary: 2},
		{name: "min function", formula: "min(d6, 3)", faces: []int{6}, total: 3, primary: 6},
		{name: "comparison true", formula: "d20>=12", faces: []int{15}, total: 1, primary: 15},
		{name: "comparison false", formula: "d20>=12", faces: []int{11}, total: 0, primary: 11},
		{name: "missing variable is zero", formula: "d6+@abilities.spirit.value", faces: []int{3}, total: 3, primary: 3},
		{name: "numeric string variable", formula: "@digits*2", total: 4},
		{name: "division rounds half away", formula: "7/2", total: 4},
		{name: "negative division", formula: "-7/2", total: -4},
		{name: "precedence", formula: "2+3*4", total: 14},
		{name: "parentheses", formula: "(2+3)*4", total: 20},
		{name: "floor", formula: "floor(7/2)", total: 3},
		{name: "percentile", formula: "d%", faces: []int{42}, total: 42, primary: 42},
		{name: "doubled damage dice", formula: "2*d8", faces: []int{7}, total: 14, primary: 7},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.roller.Push(tc.faces...)

			roll, err := s.eval.Evaluate(s.ctx, tc.formula, s.data)
			s.Require().NoError(err)
			s.Equal(tc.formula, roll.Formula)
			s.Equal(tc.total, roll.Total)
			s.Equal(tc.primary, roll.PrimaryDie())
			s.Zero(s.roller.Remaining())
		})
	}
}

func (s *EvaluatorTestSuite) TestDiceTermsInOrder() {
	s.roller.Push(3, 4, 6)

	roll, err := s.eval.Evaluate(s.ctx, "d4 + 2d6", nil)
	s.Require().NoError(err)
	s.Require().Len(roll.Dice, 2)
	s.Equal(formula.DieTerm{Count: 1, Faces: 4, Results: []int{3}, Kept: []int{3}, Total: 3}, roll.Dice[0])
	s.Equal(formula.DieTerm{Count: 2, Faces: 6, Results: []int{4, 6}, Kept: []int{4, 6}, Total: 10}, roll.Dice[1])
	s.Equal([]int{3, 4, 6}, roll.Faces())
	s.Equal("d4 + 2d6 [3; 4 6] = 13", roll.String())
}

func (s *EvaluatorTestSuite) TestMalformedFormulas() {
	for _, bad := range []string{"", "d20+", "2d", "foo(1)", "(d20", "d20)", "max()", "abs(1,2)", "3 = 3", "d0", "3d6kh4", "1/0", "@label+1", "#"} {
		s.Run(bad, func() {
			roll, err := s.eval.Evaluate(s.ctx, bad, s.data)
			s.Error(err)
			s.Nil(roll)
			s.True(errors.IsInvalidArgument(err), "expected invalid argument, got %v", err)
		})
	}
}

func (s *EvaluatorTestSuite) TestRollerFailurePropagates() {
	roll, err := s.eval.Evaluate(s.ctx, "d20", nil)
	s.Error(err)
	s.Nil(roll)
	s.Contains(err.Error(), "failed to roll 1d20")
}

func (s *EvaluatorTestSuite) TestCanceledContext() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	_, err := s.eval.Evaluate(ctx, "d20", nil)
	s.True(errors.IsCanceled(err))
	s.Empty(s.roller.Calls())
}

func TestEvaluatorHook(t *testing.T) {
	ctx := context.Background()

	t.Run("hook sees the finished roll", func(t *testing.T) {
		var seen *formula.Roll
		eval, err := formula.New(&formula.Config{
			Roller: testutils.NewScriptedRoller(12),
			Hook: formula.RollHookFunc(func(_ context.Context, roll *formula.Roll) error {
				seen = roll
				return nil
			}),
		})
		require.NoError(t, err)

		roll, err := eval.Evaluate(ctx, "d20+1", nil)
		require.NoError(t, err)
		assert.Same(t, roll, seen)
		assert.Equal(t, 13, seen.Total)
	})

	t.Run("hook failure aborts", func(t *testing.T) {
		eval, err := formula.New(&formula.Config{
			Roller: testutils.NewScriptedRoller(12),
			Hook: formula.RollHookFunc(func(context.Context, *formula.Roll) error {
				return stderrors.New("animation failed")
			}),
		})
		require.NoError(t, err)

		roll, err := eval.Evaluate(ctx, "d20", nil)
		assert.Nil(t, roll)
		assert.ErrorContains(t, err, "animation failed")
	})
}

func TestNew(t *testing.T) {
	_, err := formula.New(nil)
	assert.True(t, errors.IsInvalidArgument(err))

	_, err = formula.New(&formula.Config{})
	assert.True(t, errors.IsInvalidArgument(err))
	assert.Contains(t, err.Error(), "Roller")
}
