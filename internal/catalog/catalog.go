// Package catalog holds the static scenario catalogue rooms are created from.
package catalog

import (
	"github.com/mcoot/survivordraft/internal/model"
)

// Catalog is a read-only set of scenarios.
// Every accessor returns deep copies, so callers can never mutate the catalogue.
type Catalog struct {
	scenarios []model.Scenario
	byID      map[model.ScenarioID]int
}

// New creates a catalogue from the given scenarios, preserving their order
func New(scenarios []model.Scenario) *Catalog {
	c := &Catalog{
		scenarios: make([]model.Scenario, len(scenarios)),
		byID:      make(map[model.ScenarioID]int, len(scenarios)),
	}
	for i, s := range scenarios {
		c.scenarios[i] = s.Clone()
		c.byID[s.ID] = i
	}
	return c
}

// Default returns the built-in catalogue
func Default() *Catalog {
	return New(builtinScenarios())
}

// List returns every scenario
func (c *Catalog) List() []model.Scenario {
	out := make([]model.Scenario, len(c.scenarios))
	for i, s := range c.scenarios {
		out[i] = s.Clone()
	}
	return out
}

// Get returns the scenario with the given ID
func (c *Catalog) Get(id model.ScenarioID) (model.Scenario, bool) {
	i, ok := c.byID[id]
	if !ok {
		return model.Scenario{}, false
	}
	return c.scenarios[i].Clone(), true
}
