package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTopologicalOrder_CrossesTracks(t *testing.T) {
	g := mustBuild(
		trackUnit("plate", "expo", 0, "sear", "fries"),
		trackUnit("sear", "grill", 0),
		trackUnit("fries", "fry", 0),
	)
	order, complete := TopologicalOrder(g)
	assert.True(t, complete)
	assert.Equal(t, []string{"fries", "sear", "plate"}, order)
}

func TestTopologicalOrder_Cycle(t *testing.T) {
	g := mustBuild(unit("a"), unit("b", "c"), unit("c", "b"))
	order, complete := TopologicalOrder(g)
	assert.False(t, complete)
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestEntryPointsAndComponents(t *testing.T) {
	g := mustBuild(unit("a"), unit("b", "a"), unit("c"), unit("d", "c"), unit("e"))
	assert.Equal(t, []string{"a", "c", "e"}, EntryPoints(g))
	assert.Equal(t, 3, Components(g))
}

func TestComponents_Empty(t *testing.T) {
	assert.Equal(t, 0, Components(mustBuild()))
}
