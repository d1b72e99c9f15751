package games

import (
	"arcadia/nes"
	"fmt"
	"strconv"
	"strings"
)

// DebugByte is one raw byte behind the decoded state, labelled the way the debug table shows it.
type DebugByte struct {
	Label string `json:"label"`
	Value uint8  `json:"value"`
}

func (d DebugByte) String() string {
	return fmt.Sprintf("%s=$%02X", d.Label, d.Value)
}

// State is the decoded game state at one tick.
type State struct {
	Score      int         `json:"score"`
	Lives      int         `json:"lives"`
	IsGameOver bool        `json:"isGameOver"`
	Debug      []DebugByte `json:"debug,omitempty"`
}

func (s State) Formatted() string {
	return FormatScore(s.Score)
}

// ReadState decodes score, lives and the debug bytes from view.
func ReadState(cfg *MemoryConfig, view nes.View) State {
	lives := ReadLives(cfg, view)
	return State{
		Score:      DecodeScore(cfg, view),
		Lives:      lives,
		IsGameOver: lives == GameOverLives,
		Debug:      DebugBytes(cfg, view),
	}
}

// DebugBytes returns the raw score bytes followed by the raw lives byte. The lives byte is omitted when
// no lives address is configured.
func DebugBytes(cfg *MemoryConfig, view nes.View) []DebugByte {
	if cfg == nil || view == nil {
		return nil
	}

	debug := make([]DebugByte, 0, len(cfg.ScoreAddresses)+1)
	for _, address := range cfg.ScoreAddresses {
		raw, _ := nes.ReadU8(view, cfg.ScoreByteOffset(address))
		label := strings.ToUpper(strconv.FormatInt(int64(address), 16))
		if cfg.Mode == ModeDirect {
			label = "OFFSET_" + strconv.Itoa(address)
		}
		debug = append(debug, DebugByte{Label: label, Value: raw})
	}

	if cfg.LivesAddress != 0 {
		raw, _ := nes.ReadU8(view, cfg.LivesByteOffset())
		label := strings.ToUpper(strconv.FormatInt(int64(cfg.LivesAddress), 16)) + "_LIVES"
		if cfg.Mode == ModeDirect {
			label = "LIVES_OFFSET_" + strconv.Itoa(cfg.LivesAddress)
		}
		debug = append(debug, DebugByte{Label: label, Value: raw})
	}
	return debug
}

// FormatScore zero-pads score to six digits.
func FormatScore(score int) string {
	return fmt.Sprintf("%06d", score)
}
