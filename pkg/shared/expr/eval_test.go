package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvalBool(t *testing.T) {
	payload := map[string]interface{}{"class": "car", "score": 0.92}

	t.Run("test a field comparison", func(t *testing.T) {
		ok, err := EvalBool(`payload.class == "car"`, payload)
		assert.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("test a conjunction", func(t *testing.T) {
		ok, err := EvalBool(`payload.class == "car" && payload.score >= 0.9`, payload)
		assert.NoError(t, err)
		assert.True(t, ok)

		ok, err = EvalBool(`payload.class == "car" && payload.score >= 0.95`, payload)
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("test sprig helpers", func(t *testing.T) {
		ok, err := EvalBool(`sprig.upper(payload.class) == "CAR"`, payload)
		assert.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("test invalid expression", func(t *testing.T) {
		_, err := EvalBool(`payload.class ==`, payload)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unable to compile expression")
	})

	t.Run("test non-boolean result", func(t *testing.T) {
		_, err := EvalBool(`payload.class`, payload)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unable to cast expression result")
	})

	t.Run("test cached program is reused", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			ok, err := EvalBool(`payload.score < 1.0`, payload)
			assert.NoError(t, err)
			assert.True(t, ok)
		}
		_, cached := programs.Get(`payload.score < 1.0`)
		assert.True(t, cached)
	})
}
