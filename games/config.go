package games

import (
	"arcadia/nes"
	"fmt"
	"strings"
	"time"
)

const DefaultPollInterval = 100 * time.Millisecond

// Mode selects how configured score/lives addresses map to view offsets.
type Mode int

const (
	// ModeAddressOffset adds a base offset to NES addresses ($0000-$07FF).
	ModeAddressOffset Mode = iota
	// ModeDirect uses configured addresses as raw view offsets.
	ModeDirect
)

func (m Mode) String() string {
	switch m {
	case ModeAddressOffset:
		return "address+baseOffset"
	case ModeDirect:
		return "direct"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// MemoryConfig describes where a game keeps its score digits and life counter.
// Treat it as immutable once registered; use Clone to derive variants.
type MemoryConfig struct {
	ID          string
	Name        string
	Title       string
	APIGameName string
	Core        string
	// Controls is a short key binding hint shown by the UI.
	Controls string

	// ScoreAddresses lists score digit locations, most significant digit first.
	ScoreAddresses []int
	LivesAddress   int
	ScoreOffset    int
	LivesOffset    int
	Mode           Mode

	PollInterval time.Duration
}

type ConfigError struct {
	ID     string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("games: config %q: %s", e.ID, e.Reason)
}

func (c *MemoryConfig) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return &ConfigError{ID: c.ID, Reason: "missing id"}
	}
	if strings.TrimSpace(c.Name) == "" {
		return &ConfigError{ID: c.ID, Reason: "missing name"}
	}
	if n := len(c.ScoreAddresses); n != 6 && n != 7 {
		return &ConfigError{ID: c.ID, Reason: fmt.Sprintf("score must have 6 or 7 digits, has %d", n)}
	}
	if c.Mode != ModeAddressOffset && c.Mode != ModeDirect {
		return &ConfigError{ID: c.ID, Reason: fmt.Sprintf("unknown addressing %v", c.Mode)}
	}
	for _, a := range c.ScoreAddresses {
		if a < 0 {
			return &ConfigError{ID: c.ID, Reason: fmt.Sprintf("negative score address %d", a)}
		}
		if c.Mode == ModeAddressOffset && a >= nes.RAMSize {
			return &ConfigError{ID: c.ID, Reason: fmt.Sprintf("score address $%04x outside NES RAM", a)}
		}
	}
	if c.LivesAddress < 0 || c.ScoreOffset < 0 || c.LivesOffset < 0 {
		return &ConfigError{ID: c.ID, Reason: "negative lives address or offset"}
	}
	if c.PollInterval < 0 {
		return &ConfigError{ID: c.ID, Reason: "negative poll interval"}
	}
	return nil
}

func (c *MemoryConfig) Clone() *MemoryConfig {
	clone := *c
	clone.ScoreAddresses = append([]int(nil), c.ScoreAddresses...)
	return &clone
}

func (c *MemoryConfig) Digits() int { return len(c.ScoreAddresses) }

func (c *MemoryConfig) GameName() string {
	if c.APIGameName != "" {
		return c.APIGameName
	}
	return c.Name
}

func (c *MemoryConfig) Interval() time.Duration {
	if c.PollInterval > 0 {
		return c.PollInterval
	}
	return DefaultPollInterval
}

// ScoreByteOffset returns the view offset of a configured score address.
func (c *MemoryConfig) ScoreByteOffset(address int) int {
	if c.Mode == ModeDirect {
		return address
	}
	return address + c.ScoreOffset
}

// LivesByteOffset returns the view offset of the life counter.
func (c *MemoryConfig) LivesByteOffset() int {
	if c.Mode == ModeDirect {
		return c.LivesAddress
	}
	return c.LivesAddress + c.LivesOffset
}

// Regions lists the view ranges the decoder and monitor read.
func (c *MemoryConfig) Regions() []nes.Region {
	regions := make([]nes.Region, 0, len(c.ScoreAddresses)+1)
	for _, a := range c.ScoreAddresses {
		regions = append(regions, nes.Region{Offset: c.ScoreByteOffset(a), Size: 1})
	}
	regions = append(regions, nes.Region{Offset: c.LivesByteOffset(), Size: 1})
	return nes.MergeRegions(regions)
}

// ForKind adapts the config to a view kind. Heap views use the config as is. On RAM-only views NES
// addresses index the view directly, so address+baseOffset configs drop both base offsets; direct
// offsets point into a heap layout and cannot be served from RAM.
func (c *MemoryConfig) ForKind(kind nes.Kind) (*MemoryConfig, error) {
	if kind == nes.KindHeap {
		return c, nil
	}
	if c.Mode == ModeDirect {
		return nil, &ConfigError{ID: c.ID, Reason: "direct offsets require a heap memory view, got " + kind.String()}
	}

	rebased := c.Clone()
	rebased.ScoreOffset = 0
	rebased.LivesOffset = 0
	return rebased, nil
}
