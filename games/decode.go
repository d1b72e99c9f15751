package games

import "arcadia/nes"

// DecodeScore reads the configured BCD score digits from view and returns the decimal score.
// Each digit is the low nibble of its byte, most significant first. In address+baseOffset mode a digit
// above 9 means the score is not initialised yet and the whole score is 0; in direct mode such a digit
// contributes 0 to its position. Unreadable bytes read as 0. A nil view decodes to 0.
func DecodeScore(cfg *MemoryConfig, view nes.View) int {
	if cfg == nil || view == nil {
		return 0
	}

	score := 0
	for _, address := range cfg.ScoreAddresses {
		raw, _ := nes.ReadU8(view, cfg.ScoreByteOffset(address))
		digit := int(raw & 0x0F)
		if digit > 9 {
			if cfg.Mode == ModeAddressOffset {
				return 0
			}
			digit = 0
		}
		score = score*10 + digit
	}
	return score
}

// MaxScore is the largest score representable by cfg's digit count.
func MaxScore(cfg *MemoryConfig) int {
	max := 0
	for range cfg.ScoreAddresses {
		max = max*10 + 9
	}
	return max
}
