package allocator

import (
	"fmt"
	"slices"

	"github.com/mcoot/survivordraft/internal/dependencies/random"
	"github.com/mcoot/survivordraft/internal/model"
)

// Targets is the number of items to draw from each category
type Targets struct {
	Ideal    int
	Possible int
	Absurd   int
}

// For returns the target for the given category
func (t Targets) For(category model.ItemCategory) int {
	switch category {
	case model.CategoryIdeal:
		return t.Ideal
	case model.CategoryPossible:
		return t.Possible
	case model.CategoryAbsurd:
		return t.Absurd
	default:
		return 0
	}
}

// Total returns the sum of all category targets
func (t Targets) Total() int {
	return t.Ideal + t.Possible + t.Absurd
}

// TargetsFor splits needed items 30/40/30, rounding half up, with absurd
// taking whatever is left so the total is always exact
func TargetsFor(needed int) Targets {
	if needed <= 0 {
		return Targets{}
	}
	ideal := (needed*3 + 5) / 10
	possible := (needed*4 + 5) / 10
	return Targets{
		Ideal:    ideal,
		Possible: possible,
		Absurd:   needed - ideal - possible,
	}
}

// Service builds the per-room item pool used for a draft
type Service struct {
	random random.Random
}

// New creates a new allocator service
func New(random random.Random) *Service {
	return &Service{random: random}
}

// Allocate draws playerCount*ItemsPerPlayer items from pool in the fixed
// category proportions. Categories smaller than their target are padded with
// copies of their items under new "<id>-<n>" ids. The result is shuffled.
func (s *Service) Allocate(pool []model.Item, playerCount int) ([]model.Item, error) {
	targets := TargetsFor(playerCount * model.ItemsPerPlayer)

	byCategory := make(map[model.ItemCategory][]model.Item, len(model.Categories))
	taken := make(map[model.ItemID]bool, targets.Total())
	for _, item := range pool {
		if taken[item.ID] {
			continue
		}
		taken[item.ID] = true
		byCategory[item.Category] = append(byCategory[item.Category], item)
	}

	allocated := make([]model.Item, 0, targets.Total())
	for _, category := range model.Categories {
		drawn, err := s.draw(byCategory[category], targets.For(category), taken)
		if err != nil {
			return nil, fmt.Errorf("%s items: %w", category, err)
		}
		allocated = append(allocated, drawn...)
	}

	s.random.Shuffle(len(allocated), func(i, j int) {
		allocated[i], allocated[j] = allocated[j], allocated[i]
	})
	return allocated, nil
}

// draw samples target items from candidates without replacement, cycling
// through synthesized copies once the candidates run out
func (s *Service) draw(candidates []model.Item, target int, taken map[model.ItemID]bool) ([]model.Item, error) {
	if target == 0 {
		return nil, nil
	}
	if len(candidates) == 0 {
		return nil, model.ErrInsufficientPool
	}

	shuffled := slices.Clone(candidates)
	s.random.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	if target <= len(shuffled) {
		return shuffled[:target], nil
	}

	counters := make(map[model.ItemID]int)
	for i := len(shuffled); i < target; i++ {
		copied := shuffled[i%len(candidates)]
		copied.ID = nextCopyID(copied.ID, counters, taken)
		taken[copied.ID] = true
		shuffled = append(shuffled, copied)
	}
	return shuffled, nil
}

// nextCopyID returns the first "<base>-<n>" not already in use
func nextCopyID(base model.ItemID, counters map[model.ItemID]int, taken map[model.ItemID]bool) model.ItemID {
	for {
		counters[base]++
		id := model.ItemID(fmt.Sprintf("%s-%d", base, counters[base]))
		if !taken[id] {
			return id
		}
	}
}
