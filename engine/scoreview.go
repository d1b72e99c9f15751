package engine

import (
	"arcadia/games"
	"fmt"
)

type DebugRow struct {
	Label string `json:"label"`
	Hex   string `json:"hex"`
	Value uint8  `json:"value"`
}

// ScoreView is the "score" view model: the live score plus the raw bytes behind it.
type ScoreView struct {
	Score      int        `json:"score"`
	Formatted  string     `json:"formatted"`
	Lives      int        `json:"lives"`
	IsGameOver bool       `json:"isGameOver"`
	Debug      []DebugRow `json:"debug"`
}

func NewScoreView(s games.State) *ScoreView {
	v := &ScoreView{
		Score:      s.Score,
		Formatted:  s.Formatted(),
		Lives:      s.Lives,
		IsGameOver: s.IsGameOver,
		Debug:      make([]DebugRow, len(s.Debug)),
	}
	for i, d := range s.Debug {
		v.Debug[i] = DebugRow{
			Label: "0x" + d.Label,
			Hex:   fmt.Sprintf("0x%02x", d.Value),
			Value: d.Value,
		}
	}
	return v
}
