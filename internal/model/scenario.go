package model

import (
	"slices"
	"time"
)

// ScenarioID identifies a catalogue scenario
type ScenarioID string

// ItemID identifies an item within a room's pool
type ItemID string

// SituationID identifies a situation within a scenario
type SituationID string

// ItemCategory is how useful an item is expected to be
type ItemCategory string

const (
	CategoryIdeal    ItemCategory = "ideal"
	CategoryPossible ItemCategory = "possible"
	CategoryAbsurd   ItemCategory = "absurd"
)

// Categories lists the item categories in allocation order
var Categories = []ItemCategory{CategoryIdeal, CategoryPossible, CategoryAbsurd}

// Item is something a player can draft
type Item struct {
	ID          ItemID
	Name        string
	Description string
	Category    ItemCategory
}

// Situation is a timed prompt answered with one drafted item
type Situation struct {
	ID          SituationID
	Description string
	TimeLimit   time.Duration
	IdealItems  []ItemID // flavour only, never enforced
}

// Scenario is a themed item pool plus an ordered list of situations
type Scenario struct {
	ID              ScenarioID
	Name            string
	Description     string
	BackgroundImage string
	Items           []Item
	Situations      []Situation
}

// Clone returns a deep copy that shares no slices with s
func (s Scenario) Clone() Scenario {
	out := s
	out.Items = slices.Clone(s.Items)
	out.Situations = slices.Clone(s.Situations)
	for i := range out.Situations {
		out.Situations[i] = out.Situations[i].Clone()
	}
	return out
}

// Clone returns a deep copy of the situation
func (s Situation) Clone() Situation {
	out := s
	out.IdealItems = slices.Clone(s.IdealItems)
	return out
}

// FindItem returns the pool item with the given ID, or nil
func (s *Scenario) FindItem(id ItemID) *Item {
	for i := range s.Items {
		if s.Items[i].ID == id {
			return &s.Items[i]
		}
	}
	return nil
}

// SituationIndex returns the position of the situation in the scenario, or -1
func (s *Scenario) SituationIndex(id SituationID) int {
	for i := range s.Situations {
		if s.Situations[i].ID == id {
			return i
		}
	}
	return -1
}
