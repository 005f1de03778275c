package pipe_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/rpg-pirateborg/internal/pkg/pipe"
)

func TestPipe(t *testing.T) {
	double := func(v int) int { return v * 2 }
	inc := func(v int) int { return v + 1 }

	assert.Equal(t, 7, pipe.Pipe(double, inc)(3))
	assert.Equal(t, 8, pipe.Pipe(inc, double)(3))
	assert.Equal(t, 3, pipe.Pipe[int]()(3))
}

func TestAsyncPipe(t *testing.T) {
	ctx := context.Background()

	t.Run("stages run in order", func(t *testing.T) {
		var order []string
		stage := func(name string) pipe.Func[[]string] {
			return func(_ context.Context, v []string) ([]string, error) {
				order = append(order, name)
				return append(v, name), nil
			}
		}

		result, err := pipe.AsyncPipe(stage("a"), stage("b"), stage("c"))(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, result)
		assert.Equal(t, []string{"a", "b", "c"}, order)
	})

	t.Run("error aborts remaining stages", func(t *testing.T) {
		boom := errors.New("boom")
		called := false

		result, err := pipe.AsyncPipe(
			pipe.Lift(func(v int) int { return v + 1 }),
			func(context.Context, int) (int, error) { return 0, boom },
			func(_ context.Context, v int) (int, error) {
				called = true
				return v, nil
			},
		)(ctx, 1)

		assert.ErrorIs(t, err, boom)
		assert.Zero(t, result)
		assert.False(t, called)
	})
}

func TestWhen(t *testing.T) {
	ctx := context.Background()
	addTen := pipe.Lift(func(v int) int { return v + 10 })
	isEven := func(v int) bool { return v%2 == 0 }

	got, err := pipe.When(isEven, addTen)(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 12, got)

	got, err = pipe.When(isEven, addTen)(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, got)
}
