package games

import (
	"arcadia/nes"
	"fmt"
)

const (
	// DefaultScanAnchor is the NES address of the first Super Mario Bros score digit.
	DefaultScanAnchor = 0x07DE
	DefaultScanStep   = 100

	scanDigits = 6
)

// OffsetCandidate is a heap offset at which six valid BCD digits were found past the anchor.
type OffsetCandidate struct {
	Offset int    `json:"offset"`
	Digits string `json:"digits"`
}

// AddressMatch is an NES address whose six following digits decode to the expected score.
type AddressMatch struct {
	Address int   `json:"address"`
	Digits  []int `json:"digits"`
	Score   int   `json:"score"`
}

func (m AddressMatch) String() string {
	return fmt.Sprintf("$%04X", m.Address)
}

// ScanForScoreOffsets looks for candidate base offsets of NES RAM within a heap view. For every
// offset = 0, step, 2*step, ... below Len-0x800 it reads six bytes at anchor+offset and reports the
// offset when all six low nibbles are decimal digits.
func ScanForScoreOffsets(view nes.View, anchor, step int) []OffsetCandidate {
	if view == nil {
		return nil
	}
	if step <= 0 {
		step = DefaultScanStep
	}

	candidates := make([]OffsetCandidate, 0, 16)
	limit := view.Len() - nes.RAMSize
	var buf [scanDigits]byte
	for offset := 0; offset < limit; offset += step {
		digits, ok := readDigits(view, anchor+offset, buf[:])
		if !ok {
			continue
		}
		candidates = append(candidates, OffsetCandidate{Offset: offset, Digits: digitString(digits)})
	}
	return candidates
}

// FindScoreAddresses scans NES addresses $0000-$07FA, through cfg's score offset, for six consecutive
// BCD digits equal to expected.
func FindScoreAddresses(cfg *MemoryConfig, view nes.View, expected int) []AddressMatch {
	if cfg == nil || view == nil {
		return nil
	}

	base := cfg.ScoreOffset
	if cfg.Mode == ModeDirect {
		base = 0
	}

	matches := make([]AddressMatch, 0, 4)
	var buf [scanDigits]byte
	for address := 0; address <= nes.RAMSize-scanDigits; address++ {
		digits, ok := readDigits(view, base+address, buf[:])
		if !ok {
			continue
		}
		score := 0
		for _, d := range digits {
			score = score*10 + d
		}
		if score != expected {
			continue
		}
		matches = append(matches, AddressMatch{Address: address, Digits: digits, Score: score})
	}
	return matches
}

// readDigits reads len(buf) bytes at offset and returns their low nibbles if they are all 0-9.
func readDigits(view nes.View, offset int, buf []byte) ([]int, bool) {
	if offset < 0 || offset+len(buf) > view.Len() {
		return nil, false
	}
	n, _ := view.ReadAt(buf, int64(offset))
	if n != len(buf) {
		return nil, false
	}
	digits := make([]int, len(buf))
	for i, b := range buf {
		d := int(b & 0x0F)
		if d > 9 {
			return nil, false
		}
		digits[i] = d
	}
	return digits, true
}

func digitString(digits []int) string {
	s := make([]byte, len(digits))
	for i, d := range digits {
		s[i] = byte('0' + d)
	}
	return string(s)
}
