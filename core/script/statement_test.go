package script

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const stateDoc = `
state = {
	id = 5
	name = "STATE_5"
	manpower = 1000
	impassable = yes
	provinces = { 1 2 3 }
	history = {
		owner = FRA
		victory_points = { 1 10 }
		victory_points = { 2 5 }
	}
	local_supplies = 1.5
	empty = { }
}`

func TestStatement_Lookup(t *testing.T) {
	root := ParseString(stateDoc).Root()

	t.Run("ChainedThroughBlocks", func(t *testing.T) {
		state, ok := root.Lookup("state")
		require.True(t, ok)
		history, ok := state.Lookup("history")
		require.True(t, ok)
		owner, ok := history.Get("owner")
		require.True(t, ok)
		assert.Equal(t, "FRA", owner.String())
	})

	t.Run("Path", func(t *testing.T) {
		owner, ok := root.Path("state", "history", "owner")
		require.True(t, ok)
		assert.Equal(t, "FRA", owner.Value.String())

		_, ok = root.Path("state", "history", "controller")
		assert.False(t, ok)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, ok := root.Lookup("missing")
		assert.False(t, ok)
	})

	t.Run("LookupIntoScalar", func(t *testing.T) {
		id, ok := root.Path("state", "id")
		require.True(t, ok)
		_, ok = id.Lookup("anything")
		assert.False(t, ok)
		assert.Nil(t, id.Children())
	})

	t.Run("LookupIntoEmpty", func(t *testing.T) {
		empty, ok := root.Path("state", "empty")
		require.True(t, ok)
		assert.True(t, empty.Value.IsEmpty())
		_, ok = empty.Lookup("x")
		assert.False(t, ok)
	})

	t.Run("FirstAndLast", func(t *testing.T) {
		history, ok := root.Path("state", "history")
		require.True(t, ok)

		first, ok := history.Get("victory_points")
		require.True(t, ok)
		fv, _ := first.Ints()
		assert.Equal(t, []int{1, 10}, fv)

		last, ok := history.GetLast("victory_points")
		require.True(t, ok)
		lv, _ := last.Ints()
		assert.Equal(t, []int{2, 5}, lv)

		assert.Len(t, history.All("victory_points"), 2)
		assert.Empty(t, history.All("missing"))
	})
}

func TestValue_Conversions(t *testing.T) {
	state, ok := ParseString(stateDoc).Root().Lookup("state")
	require.True(t, ok)

	id, _ := state.Get("id")
	n, ok := id.Int()
	require.True(t, ok)
	assert.Equal(t, 5, n)

	name, _ := state.Get("name")
	assert.Equal(t, `"STATE_5"`, name.String())
	assert.Equal(t, "STATE_5", name.Unquoted())
	_, ok = name.Int()
	assert.False(t, ok)

	imp, _ := state.Get("impassable")
	b, ok := imp.Bool()
	require.True(t, ok)
	assert.True(t, b)

	supplies, _ := state.Get("local_supplies")
	f, ok := supplies.Float()
	require.True(t, ok)
	assert.InDelta(t, 1.5, f, 1e-9)

	provinces, _ := state.Get("provinces")
	assert.Equal(t, KindArray, provinces.Kind())
	ids, ok := provinces.Ints()
	require.True(t, ok)
	assert.Equal(t, []int{1, 2, 3}, ids)
	assert.Equal(t, []string{"1", "2", "3"}, provinces.Strings())
	fs, ok := provinces.Floats()
	require.True(t, ok)
	assert.Equal(t, []float64{1, 2, 3}, fs)

	empty, _ := state.Get("empty")
	none, ok := empty.Ints()
	assert.True(t, ok)
	assert.Empty(t, none)

	mixed := Array(Coerce("1"), Coerce("abc"))
	_, ok = mixed.Ints()
	assert.False(t, ok)
}
