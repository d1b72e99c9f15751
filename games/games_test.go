package games

import (
	"arcadia/nes"
	"errors"
	"reflect"
	"testing"
)

const testHeapSize = 0x1000

var (
	testAddressConfig = MemoryConfig{
		ID:             "addr",
		Name:           "Address Game",
		ScoreAddresses: []int{0x07DE, 0x07DF, 0x07E0, 0x07E1, 0x07E2, 0x07E3},
		LivesAddress:   0x075A,
		ScoreOffset:    0x100,
		LivesOffset:    0x106,
		Mode:           ModeAddressOffset,
	}
	testDirectConfig = MemoryConfig{
		ID:             "direct",
		Name:           "Direct Game",
		ScoreAddresses: []int{0x900, 0x901, 0x902, 0x903, 0x904, 0x905, 0x906},
		LivesAddress:   0xA00,
		Mode:           ModeDirect,
	}
)

func newTestHeap() *nes.Heap {
	return nes.NewHeap(make([]byte, testHeapSize), nes.KindHeap)
}

func pokeScore(h *nes.Heap, cfg *MemoryConfig, raw ...byte) {
	for i, b := range raw {
		h.Poke(cfg.ScoreByteOffset(cfg.ScoreAddresses[i]), b)
	}
}

func TestDecodeScore_AddressOffset(t *testing.T) {
	cfg := testAddressConfig.Clone()

	tests := []struct {
		name string
		raw  []byte
		want int
	}{
		{name: "zero", raw: []byte{0, 0, 0, 0, 0, 0}, want: 0},
		{name: "1250", raw: []byte{0x00, 0x00, 0x01, 0x02, 0x05, 0x00}, want: 1250},
		{name: "max", raw: []byte{9, 9, 9, 9, 9, 9}, want: 999999},
		{name: "high nibble ignored", raw: []byte{0xF1, 0x22, 0x33, 0x44, 0x55, 0x66}, want: 123456},
		{name: "invalid nibble zeroes score", raw: []byte{0, 0, 1, 2, 0x0A, 0}, want: 0},
		{name: "uninitialised RAM", raw: []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHeap()
			pokeScore(h, cfg, tt.raw...)
			if actual, expected := DecodeScore(cfg, h), tt.want; actual != expected {
				t.Errorf("DecodeScore() actual = %v, expected = %v", actual, expected)
			}
		})
	}
}

func TestDecodeScore_AllValidDigits(t *testing.T) {
	cfg := testAddressConfig.Clone()
	h := newTestHeap()

	// every digit value in every position
	for pos := 0; pos < 6; pos++ {
		for d := 0; d <= 9; d++ {
			raw := []byte{1, 2, 3, 4, 5, 6}
			raw[pos] = byte(d)
			pokeScore(h, cfg, raw...)

			expected := 0
			for _, b := range raw {
				expected = expected*10 + int(b)
			}
			if actual := DecodeScore(cfg, h); actual != expected {
				t.Fatalf("DecodeScore(%v) actual = %v, expected = %v", raw, actual, expected)
			}
		}
	}
}

func TestDecodeScore_Direct(t *testing.T) {
	cfg := testDirectConfig.Clone()

	tests := []struct {
		name string
		raw  []byte
		want int
	}{
		{name: "all valid", raw: []byte{0, 0, 1, 2, 5, 0, 0}, want: 12500},
		{name: "invalid digit counts as zero", raw: []byte{0, 0, 1, 2, 5, 15, 0}, want: 12500},
		{name: "several invalid digits", raw: []byte{0x0C, 1, 0x0F, 3, 4, 5, 6}, want: 103456},
		{name: "max", raw: []byte{9, 9, 9, 9, 9, 9, 9}, want: 9999999},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHeap()
			pokeScore(h, cfg, tt.raw...)
			if actual, expected := DecodeScore(cfg, h), tt.want; actual != expected {
				t.Errorf("DecodeScore() actual = %v, expected = %v", actual, expected)
			}
		})
	}
}

func TestDecodeScore_NoMemory(t *testing.T) {
	cfg := testAddressConfig.Clone()
	if actual := DecodeScore(cfg, nil); actual != 0 {
		t.Errorf("DecodeScore(nil) actual = %v, expected = %v", actual, 0)
	}

	// score bytes past the end of the view read as 0
	short := nes.NewHeap(make([]byte, 0x100), nes.KindHeap)
	if actual := DecodeScore(cfg, short); actual != 0 {
		t.Errorf("DecodeScore(short) actual = %v, expected = %v", actual, 0)
	}
}

func TestReadLives(t *testing.T) {
	for raw := 0; raw <= 0xFF; raw++ {
		h := newTestHeap()

		cfg := testAddressConfig.Clone()
		h.Poke(cfg.LivesByteOffset(), byte(raw))
		expected := raw + 1
		if raw == 0xFF {
			expected = GameOverLives
		}
		if actual := ReadLives(cfg, h); actual != expected {
			t.Errorf("address mode ReadLives(%d) actual = %v, expected = %v", raw, actual, expected)
		}

		cfg = testDirectConfig.Clone()
		h.Poke(cfg.LivesByteOffset(), byte(raw))
		expected = raw
		if raw == 0 || raw == 0xFF {
			expected = GameOverLives
		}
		if actual := ReadLives(cfg, h); actual != expected {
			t.Errorf("direct mode ReadLives(%d) actual = %v, expected = %v", raw, actual, expected)
		}
	}
}

func TestReadState(t *testing.T) {
	cfg := testAddressConfig.Clone()
	h := newTestHeap()
	pokeScore(h, cfg, 0, 0, 1, 2, 5, 0)
	h.Poke(cfg.LivesByteOffset(), 0xFF)

	s := ReadState(cfg, h)
	if s.Score != 1250 || s.Lives != GameOverLives || !s.IsGameOver {
		t.Fatalf("ReadState() actual = %+v", s)
	}
	if actual, expected := s.Formatted(), "001250"; actual != expected {
		t.Errorf("Formatted() actual = %v, expected = %v", actual, expected)
	}

	labels := make([]string, len(s.Debug))
	for i, d := range s.Debug {
		labels[i] = d.Label
	}
	expected := []string{"7DE", "7DF", "7E0", "7E1", "7E2", "7E3", "75A_LIVES"}
	if !reflect.DeepEqual(labels, expected) {
		t.Errorf("debug labels actual = %v, expected = %v", labels, expected)
	}
	if s.Debug[6].Value != 0xFF {
		t.Errorf("lives debug byte actual = %v, expected = %v", s.Debug[6].Value, 0xFF)
	}
}

func TestDebugBytes_Direct(t *testing.T) {
	cfg := testDirectConfig.Clone()
	debug := DebugBytes(cfg, newTestHeap())
	if actual, expected := debug[0].Label, "OFFSET_2304"; actual != expected {
		t.Errorf("first label actual = %v, expected = %v", actual, expected)
	}
	if actual, expected := debug[len(debug)-1].Label, "LIVES_OFFSET_2560"; actual != expected {
		t.Errorf("lives label actual = %v, expected = %v", actual, expected)
	}

	cfg.LivesAddress = 0
	if actual, expected := len(DebugBytes(cfg, newTestHeap())), 7; actual != expected {
		t.Errorf("len without lives actual = %v, expected = %v", actual, expected)
	}
}

func TestMemoryConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *MemoryConfig)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *MemoryConfig) {}},
		{name: "no id", mutate: func(c *MemoryConfig) { c.ID = "" }, wantErr: true},
		{name: "no name", mutate: func(c *MemoryConfig) { c.Name = " " }, wantErr: true},
		{name: "five digits", mutate: func(c *MemoryConfig) { c.ScoreAddresses = c.ScoreAddresses[:5] }, wantErr: true},
		{name: "seven digits", mutate: func(c *MemoryConfig) { c.ScoreAddresses = append(c.ScoreAddresses, 0x7E4) }},
		{name: "address outside RAM", mutate: func(c *MemoryConfig) { c.ScoreAddresses[0] = 0x800 }, wantErr: true},
		{name: "negative offset", mutate: func(c *MemoryConfig) { c.LivesOffset = -1 }, wantErr: true},
		{name: "bad mode", mutate: func(c *MemoryConfig) { c.Mode = Mode(7) }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testAddressConfig.Clone()
			tt.mutate(c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			var cerr *ConfigError
			if err != nil && !errors.As(err, &cerr) {
				t.Errorf("Validate() error type = %T, expected *ConfigError", err)
			}
		})
	}
}

func TestMemoryConfig_ForKind(t *testing.T) {
	cfg := testAddressConfig.Clone()

	same, err := cfg.ForKind(nes.KindHeap)
	if err != nil || same != cfg {
		t.Fatalf("ForKind(heap) = %v, %v", same, err)
	}

	ram, err := cfg.ForKind(nes.KindRAM)
	if err != nil {
		t.Fatal(err)
	}
	if ram.ScoreOffset != 0 || ram.LivesOffset != 0 {
		t.Errorf("ForKind(ram) offsets actual = %d/%d, expected = 0/0", ram.ScoreOffset, ram.LivesOffset)
	}
	if cfg.ScoreOffset != 0x100 {
		t.Errorf("ForKind mutated the receiver")
	}

	v := nes.NewRAM()
	v.Poke(0x07DE, 0, 0, 1, 2, 5, 0)
	v.Poke(0x075A, 2)
	if actual, expected := DecodeScore(ram, v), 1250; actual != expected {
		t.Errorf("DecodeScore(ram) actual = %v, expected = %v", actual, expected)
	}
	if actual, expected := ReadLives(ram, v), 3; actual != expected {
		t.Errorf("ReadLives(ram) actual = %v, expected = %v", actual, expected)
	}

	var cerr *ConfigError
	if _, err := testDirectConfig.Clone().ForKind(nes.KindRAM); !errors.As(err, &cerr) {
		t.Errorf("ForKind(ram) on direct config error = %v, expected *ConfigError", err)
	}
}

func TestMemoryConfig_Regions(t *testing.T) {
	cfg := testAddressConfig.Clone()
	expected := []nes.Region{
		{Offset: 0x075A + 0x106, Size: 1},
		{Offset: 0x07DE + 0x100, Size: 6},
	}
	if actual := cfg.Regions(); !reflect.DeepEqual(actual, expected) {
		t.Errorf("Regions() actual = %v, expected = %v", actual, expected)
	}
}

func TestDecodeScore_FromSnapshot(t *testing.T) {
	cfg := testAddressConfig.Clone()
	h := newTestHeap()
	pokeScore(h, cfg, 0, 0, 1, 2, 5, 0)
	h.Poke(cfg.LivesByteOffset(), 1)

	snap, err := nes.Capture(h, cfg.Regions())
	if err != nil {
		t.Fatal(err)
	}
	// later writes do not affect the snapshot
	pokeScore(h, cfg, 9, 9, 9, 9, 9, 9)

	s := ReadState(cfg, snap)
	if s.Score != 1250 || s.Lives != 2 || s.IsGameOver {
		t.Errorf("ReadState(snapshot) actual = %+v", s)
	}
}

func TestRegistry(t *testing.T) {
	defer func(saved map[string]*MemoryConfig) {
		configsMu.Lock()
		configs = saved
		configsMu.Unlock()
	}(configs)
	unregisterAllConfigs()

	Register(testAddressConfig)
	Register(testDirectConfig)

	if actual, expected := IDs(), []string{"addr", "direct"}; !reflect.DeepEqual(actual, expected) {
		t.Errorf("IDs() actual = %v, expected = %v", actual, expected)
	}

	cfg, err := ByID("ADDR")
	if err != nil {
		t.Fatal(err)
	}
	cfg.ScoreAddresses[0] = 0
	again, _ := ByID("addr")
	if again.ScoreAddresses[0] != 0x07DE {
		t.Errorf("ByID returned a shared config")
	}

	if _, err := ByID("tetris"); !errors.Is(err, ErrUnknownGame) {
		t.Errorf("ByID(tetris) error = %v, expected ErrUnknownGame", err)
	}

	if cfg, err := Detect("/play/direct.html"); err != nil || cfg.ID != "direct" {
		t.Errorf("Detect() = %v, %v", cfg, err)
	}

	func() {
		defer func() {
			if recover() == nil {
				t.Errorf("duplicate Register did not panic")
			}
		}()
		Register(testAddressConfig)
	}()
}
