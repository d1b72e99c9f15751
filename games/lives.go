package games

import "arcadia/nes"

// GameOverLives is the life count reported when the game is over.
const GameOverLives = -1

// ReadLives returns the remaining lives, or GameOverLives.
//
// In address+baseOffset mode the counter holds lives-1 and $FF marks game over.
// In direct mode the counter holds lives and both 0 and $FF mark game over.
func ReadLives(cfg *MemoryConfig, view nes.View) int {
	if cfg == nil || view == nil {
		return 0
	}

	raw, _ := nes.ReadU8(view, cfg.LivesByteOffset())
	switch cfg.Mode {
	case ModeDirect:
		if raw == 0 || raw == 0xFF {
			return GameOverLives
		}
		return int(raw)
	default:
		if raw == 0xFF {
			return GameOverLives
		}
		return int(raw) + 1
	}
}

func IsGameOver(cfg *MemoryConfig, view nes.View) bool {
	return ReadLives(cfg, view) == GameOverLives
}
