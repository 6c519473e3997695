package gesture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirection_Encoding(t *testing.T) {
	assert.Equal(t, 0, int(Left))
	assert.Equal(t, 1, int(Down))
	assert.Equal(t, 2, int(Right))
	assert.Equal(t, 3, int(Up))
	assert.Equal(t, 4, int(None))
}

func TestDirection_StringAndParse(t *testing.T) {
	for _, d := range []Direction{Left, Down, Right, Up, None} {
		got, err := ParseDirection(d.String())
		require.NoError(t, err)
		assert.Equal(t, d, got)
	}

	got, err := ParseDirection(" UP ")
	require.NoError(t, err)
	assert.Equal(t, Up, got)

	_, err = ParseDirection("sideways")
	assert.Error(t, err)

	assert.Equal(t, "direction(9)", Direction(9).String())
}

func TestDirection_Valid(t *testing.T) {
	assert.True(t, Left.Valid())
	assert.True(t, Up.Valid())
	assert.False(t, None.Valid())
	assert.False(t, Direction(-1).Valid())
}
