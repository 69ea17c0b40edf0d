package response

import (
	"time"

	"github.com/mcoot/survivordraft/internal/model"
)

// Item represents a draftable item in API responses
type Item struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// ItemFromModel converts a model.Item
func ItemFromModel(i model.Item) Item {
	return Item{
		ID:          string(i.ID),
		Name:        i.Name,
		Description: i.Description,
		Category:    string(i.Category),
	}
}

// Situation represents a timed prompt
type Situation struct {
	ID               string   `json:"id"`
	Description      string   `json:"description"`
	TimeLimitSeconds int      `json:"time_limit_seconds"`
	IdealItems       []string `json:"ideal_items"`
}

// SituationFromModel converts a model.Situation
func SituationFromModel(s model.Situation) Situation {
	ideal := make([]string, len(s.IdealItems))
	for i, id := range s.IdealItems {
		ideal[i] = string(id)
	}
	return Situation{
		ID:               string(s.ID),
		Description:      s.Description,
		TimeLimitSeconds: int(s.TimeLimit / time.Second),
		IdealItems:       ideal,
	}
}

// ScenarioSummary is a catalogue entry
type ScenarioSummary struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	BackgroundImage string `json:"background_image"`
	ItemCount       int    `json:"item_count"`
	SituationCount  int    `json:"situation_count"`
}

// ScenarioSummaryFromModel converts a model.Scenario into a catalogue entry
func ScenarioSummaryFromModel(s model.Scenario) ScenarioSummary {
	return ScenarioSummary{
		ID:              string(s.ID),
		Name:            s.Name,
		Description:     s.Description,
		BackgroundImage: s.BackgroundImage,
		ItemCount:       len(s.Items),
		SituationCount:  len(s.Situations),
	}
}

// Scenario is the room's working copy of a scenario
type Scenario struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Description     string      `json:"description"`
	BackgroundImage string      `json:"background_image"`
	Items           []Item      `json:"items"`
	Situations      []Situation `json:"situations"`
}

// ScenarioFromModel converts a model.Scenario
func ScenarioFromModel(s model.Scenario) Scenario {
	items := make([]Item, len(s.Items))
	for i, item := range s.Items {
		items[i] = ItemFromModel(item)
	}
	situations := make([]Situation, len(s.Situations))
	for i, sit := range s.Situations {
		situations[i] = SituationFromModel(sit)
	}
	return Scenario{
		ID:              string(s.ID),
		Name:            s.Name,
		Description:     s.Description,
		BackgroundImage: s.BackgroundImage,
		Items:           items,
		Situations:      situations,
	}
}

// Player represents a room participant. Sessions are never exposed.
type Player struct {
	ID            string    `json:"id"`
	DisplayName   string    `json:"display_name"`
	IsHost        bool      `json:"is_host"`
	IsReady       bool      `json:"is_ready"`
	SelectedItems []Item    `json:"selected_items"`
	UsedItems     []string  `json:"used_items"`
	CurrentChoice *string   `json:"current_choice"`
	VotesReceived int       `json:"votes_received"`
	RoundVotes    int       `json:"round_votes"`
	JoinedAt      time.Time `json:"joined_at"`
}

// PlayerFromModel converts a model.Player, resolving drafted items against the room's pool
func PlayerFromModel(p *model.Player, scenario *model.Scenario) Player {
	selected := make([]Item, 0, len(p.SelectedItems))
	for _, id := range p.SelectedItems {
		if item := scenario.FindItem(id); item != nil {
			selected = append(selected, ItemFromModel(*item))
		} else {
			selected = append(selected, Item{ID: string(id)})
		}
	}
	used := make([]string, len(p.UsedItems))
	for i, id := range p.UsedItems {
		used[i] = string(id)
	}
	var choice *string
	if p.CurrentChoice != nil {
		c := string(*p.CurrentChoice)
		choice = &c
	}
	return Player{
		ID:            string(p.ID),
		DisplayName:   p.DisplayName,
		IsHost:        p.IsHost,
		IsReady:       p.IsReady,
		SelectedItems: selected,
		UsedItems:     used,
		CurrentChoice: choice,
		VotesReceived: p.VotesReceived,
		RoundVotes:    p.RoundVotes,
		JoinedAt:      p.JoinedAt,
	}
}

// Room represents a room snapshot in API responses
type Room struct {
	ID               string            `json:"id"`
	Code             string            `json:"code"`
	Status           string            `json:"status"`
	HostID           *string           `json:"host_id"`
	MaxPlayers       int               `json:"max_players"`
	Players          []Player          `json:"players"`
	Scenario         Scenario          `json:"scenario"`
	CurrentSituation *Situation        `json:"current_situation"`
	CurrentTurn      *string           `json:"current_turn"`
	Votes            map[string]string `json:"votes,omitempty"`
	Winners          []string          `json:"winners,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// RoomFromModel converts a model.Room
func RoomFromModel(r *model.Room) Room {
	players := make([]Player, len(r.Players))
	for i := range r.Players {
		players[i] = PlayerFromModel(&r.Players[i], &r.Scenario)
	}

	var hostID *string
	if host := r.GetHost(); host != nil {
		id := string(host.ID)
		hostID = &id
	}

	var situation *Situation
	if r.CurrentSituation != nil {
		s := SituationFromModel(*r.CurrentSituation)
		situation = &s
	}

	var turn *string
	if r.CurrentTurn != nil {
		t := string(*r.CurrentTurn)
		turn = &t
	}

	var votes map[string]string
	if len(r.Ballots) > 0 {
		votes = make(map[string]string, len(r.Ballots))
		for voter, voted := range r.Ballots {
			votes[string(voter)] = string(voted)
		}
	}

	var winners []string
	if r.Status == model.StatusFinished {
		for _, p := range r.Winners() {
			winners = append(winners, string(p.ID))
		}
	}

	return Room{
		ID:               string(r.ID),
		Code:             string(r.Code),
		Status:           string(r.Status),
		HostID:           hostID,
		MaxPlayers:       r.MaxPlayers,
		Players:          players,
		Scenario:         ScenarioFromModel(r.Scenario),
		CurrentSituation: situation,
		CurrentTurn:      turn,
		Votes:            votes,
		Winners:          winners,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

// RoomSession is returned by create and join: the room plus the identity the
// caller should present when it opens its live connection
type RoomSession struct {
	Room     Room   `json:"room"`
	PlayerID string `json:"player_id"`
	Session  string `json:"session"`
}

// Health is the health check body
type Health struct {
	Status string `json:"status"`
}
