package entity

import "time"

// MatchResult is the archived outcome of an ended room.
type MatchResult struct {
	RoomID  string        `json:"roomId"`
	Winner  string        `json:"winner,omitempty"`
	Players []MatchPlayer `json:"players"`
	EndedAt time.Time     `json:"endedAt"`
}

type MatchPlayer struct {
	Name         string `json:"name"`
	Score        int    `json:"score"`
	LinesCleared int    `json:"linesCleared"`
}

// MatchResult - builds the archive record for the current roster.
func (that *Room) MatchResult(endedAt time.Time) MatchResult {
	result := MatchResult{
		RoomID:  that.ID,
		Players: make([]MatchPlayer, 0, len(that.order)),
		EndedAt: endedAt,
	}

	if winner := that.Winner(); winner != nil {
		result.Winner = winner.Name
	}

	for _, player := range that.Players() {
		result.Players = append(result.Players, MatchPlayer{
			Name:         player.Name,
			Score:        player.Score,
			LinesCleared: player.LinesCleared,
		})
	}

	return result
}
