package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/survivordraft/internal/model"
)

func TestDefaultCatalogHasBuiltinScenarios(t *testing.T) {
	c := Default()

	scenarios := c.List()
	require.Len(t, scenarios, 3)
	assert.Equal(t, model.ScenarioID("desert"), scenarios[0].ID)
	assert.Equal(t, model.ScenarioID("jungle"), scenarios[1].ID)
	assert.Equal(t, model.ScenarioID("arctic"), scenarios[2].ID)

	for _, s := range scenarios {
		assert.NotEmpty(t, s.Situations, s.ID)
		counts := map[model.ItemCategory]int{}
		for _, it := range s.Items {
			counts[it.Category]++
		}
		for _, cat := range model.Categories {
			assert.Positive(t, counts[cat], "%s has no %s items", s.ID, cat)
		}
	}
}

func TestGetUnknownScenario(t *testing.T) {
	_, ok := Default().Get("moon")
	assert.False(t, ok)
}

func TestGetReturnsIndependentCopies(t *testing.T) {
	c := Default()

	first, ok := c.Get("desert")
	require.True(t, ok)
	first.Items[0].ID = "mutated"
	first.Situations = nil

	second, _ := c.Get("desert")
	assert.Equal(t, model.ItemID("water"), second.Items[0].ID)
	assert.Len(t, second.Situations, 5)

	listed := c.List()
	listed[0].Items = nil
	again, _ := c.Get("desert")
	assert.Len(t, again.Items, 10)
}
