package testutil

import (
	"time"

	"github.com/mcoot/survivordraft/internal/model"
)

// SampleRoom returns a room in the voting phase with every optional field set
func SampleRoom(code model.RoomCode) *model.Room {
	created := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	situation := model.Situation{
		ID:          "sandstorm",
		Description: "A sandstorm is approaching.",
		TimeLimit:   time.Minute,
		IdealItems:  []model.ItemID{"blanket"},
	}
	choice := model.ItemID("water")
	return &model.Room{
		ID:          model.RoomID("room-" + string(code)),
		Code:        code,
		Status:      model.StatusVoting,
		HostSession: "session-alice",
		Players: []model.Player{
			{
				ID:            "player-alice",
				Session:       "session-alice",
				DisplayName:   "Alice",
				SelectedItems: []model.ItemID{"water"},
				IsReady:       true,
				IsHost:        true,
				CurrentChoice: &choice,
				UsedItems:     []model.ItemID{"water"},
				JoinedAt:      created,
			},
			{
				ID:            "player-bob",
				Session:       "session-bob",
				DisplayName:   "Bob",
				SelectedItems: []model.ItemID{"rope"},
				IsReady:       true,
				VotesReceived: 3,
				RoundVotes:    1,
				JoinedAt:      created,
			},
		},
		MaxPlayers: 4,
		Scenario: model.Scenario{
			ID:   "desert",
			Name: "Relentless Desert",
			Items: []model.Item{
				{ID: "water", Name: "Canteen", Category: model.CategoryIdeal},
				{ID: "rope", Name: "Rope", Category: model.CategoryPossible},
			},
			Situations: []model.Situation{situation},
		},
		CurrentSituation: &situation,
		Ballots:          map[model.PlayerID]model.PlayerID{"player-alice": "player-bob"},
		CreatedAt:        created,
		UpdatedAt:        created.Add(time.Minute),
	}
}
