package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mcoot/survivordraft/internal/api/response"
	"github.com/mcoot/survivordraft/internal/ws"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
	errW   io.Writer
}

// NewOutput creates a new Output formatter
func NewOutput(format string, w, errW io.Writer) *Output {
	return &Output{format: format, w: w, errW: errW}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == outputJSON {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == outputJSON {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		_, _ = fmt.Fprintln(o.errW, string(data))
	} else {
		_, _ = fmt.Fprintf(o.errW, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == outputJSON {
		data, _ := json.Marshal(map[string]string{"message": msg})
		_, _ = fmt.Fprintln(o.w, string(data))
	} else {
		_, _ = fmt.Fprintln(o.w, msg)
	}
}

// PrintStream outputs one live message; JSON output is one object per line
func (o *Output) PrintStream(msg ws.ServerMessage) {
	if o.format == outputJSON {
		data, _ := json.Marshal(msg)
		_, _ = fmt.Fprintln(o.w, string(data))
		return
	}

	switch msg.Type {
	case ws.TypeConnected:
		o.printf("Connected (session %s)\n", msg.Session)
	case ws.TypeError:
		o.printf("Error: %s (%s)\n", msg.Message, msg.Code)
	case ws.TypeMessage:
		o.printf(">> %s\n", msg.Message)
	default:
		if msg.Room != nil {
			o.printRoom(*msg.Room)
		}
		if msg.Message != "" {
			o.printf(">> %s\n", msg.Message)
		}
	}
}

func (o *Output) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(o.w, format, args...)
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.RoomSession:
		o.printRoomSession(v)
	case response.Room:
		o.printRoom(v)
	case []response.ScenarioSummary:
		o.printScenarios(v)
	case response.Health:
		o.printHealth(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printRoomSession(rs response.RoomSession) {
	o.printRoom(rs.Room)
	o.printf("You: %s\n", rs.PlayerID)
	o.printf("Session: %s\n", rs.Session)
}

func (o *Output) printRoom(r response.Room) {
	o.printf("Room: %s\n", r.Code)
	o.printf("Scenario: %s\n", r.Scenario.Name)
	o.printf("Status: %s\n", r.Status)

	names := make(map[string]string, len(r.Players))
	for _, p := range r.Players {
		names[p.ID] = p.DisplayName
	}

	if r.CurrentTurn != nil {
		o.printf("Turn: %s\n", names[*r.CurrentTurn])
	}
	if r.CurrentSituation != nil {
		o.printf("Situation: %s (%ds)\n", r.CurrentSituation.Description, r.CurrentSituation.TimeLimitSeconds)
	}

	o.printf("Players (%d/%d):\n", len(r.Players), r.MaxPlayers)
	for _, p := range r.Players {
		var tags []string
		if p.IsHost {
			tags = append(tags, "host")
		}
		if p.IsReady && r.Status == "waiting" {
			tags = append(tags, "ready")
		}
		if p.CurrentChoice != nil {
			tags = append(tags, "chose "+*p.CurrentChoice)
		}
		if voted, ok := r.Votes[p.ID]; ok {
			tags = append(tags, "voted "+names[voted])
		}
		tagStr := ""
		if len(tags) > 0 {
			tagStr = " [" + strings.Join(tags, ", ") + "]"
		}
		o.printf("  - %s (%s) votes=%d%s\n", p.DisplayName, p.ID, p.VotesReceived, tagStr)

		if len(p.SelectedItems) > 0 {
			items := make([]string, len(p.SelectedItems))
			for i, item := range p.SelectedItems {
				items[i] = item.ID
			}
			o.printf("      items: %s\n", strings.Join(items, ", "))
		}
	}

	if r.Status == "drafting" {
		taken := make(map[string]bool)
		for _, p := range r.Players {
			for _, item := range p.SelectedItems {
				taken[item.ID] = true
			}
		}
		o.printf("Available items:\n")
		for _, item := range r.Scenario.Items {
			if !taken[item.ID] {
				o.printf("  - %s: %s (%s)\n", item.ID, item.Name, item.Category)
			}
		}
	}

	if len(r.Winners) > 0 {
		winners := make([]string, len(r.Winners))
		for i, id := range r.Winners {
			winners[i] = names[id]
		}
		o.printf("Winners: %s\n", strings.Join(winners, ", "))
	}
}

func (o *Output) printScenarios(scenarios []response.ScenarioSummary) {
	for _, s := range scenarios {
		o.printf("%s: %s (%d items, %d situations)\n", s.ID, s.Name, s.ItemCount, s.SituationCount)
		if s.Description != "" {
			o.printf("    %s\n", s.Description)
		}
	}
}

func (o *Output) printHealth(h response.Health) {
	o.printf("Status: %s\n", h.Status)
}
