package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestField(t *testing.T) {
	t.Parallel()

	t.Run("zero value is absent", func(t *testing.T) {
		t.Parallel()

		var f Field[string]
		assert.False(t, f.IsSet())
		_, ok := f.Value()
		assert.False(t, ok)
	})

	t.Run("set carries the value", func(t *testing.T) {
		t.Parallel()

		f := Set("bartender")
		assert.True(t, f.IsSet())
		v, ok := f.Value()
		assert.True(t, ok)
		assert.Equal(t, "bartender", v)
		assert.Equal(t, any("bartender"), f.arg())
	})

	t.Run("null is set but carries no value", func(t *testing.T) {
		t.Parallel()

		f := Null[time.Time]()
		assert.True(t, f.IsSet())
		_, ok := f.Value()
		assert.False(t, ok)
		assert.Nil(t, f.arg())
	})
}

func TestBinder(t *testing.T) {
	t.Parallel()

	t.Run("numbers markers in bind order", func(t *testing.T) {
		t.Parallel()

		var b binder
		assert.Equal(t, "$1", b.bind("a"))
		assert.Equal(t, "$2", b.bind(7))
		assert.Equal(t, "$3", b.bind(nil))
		assert.Equal(t, []any{"a", 7, nil}, b.args)
	})

	t.Run("json values are marshaled once", func(t *testing.T) {
		t.Parallel()

		var b binder
		marker, err := b.bindJSON(map[string]bool{"mon_am": true})
		require.NoError(t, err)
		assert.Equal(t, "$1", marker)
		assert.JSONEq(t, `{"mon_am":true}`, string(b.args[0].([]byte)))
	})

	t.Run("nil payloads bind the empty document of their kind", func(t *testing.T) {
		t.Parallel()

		var b binder
		var blocks map[string]bool
		marker, err := b.bindJSON(blocks)
		require.NoError(t, err)
		assert.Equal(t, "$1", marker)
		assert.JSONEq(t, `{}`, string(b.args[0].([]byte)))

		var grid []map[string]any
		marker, err = b.bindJSON(grid)
		require.NoError(t, err)
		assert.Equal(t, "$2", marker)
		assert.JSONEq(t, `[]`, string(b.args[1].([]byte)))
	})
}
