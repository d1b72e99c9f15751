package nes

import (
	"errors"
	"testing"
)

type fakeDriver struct{ heap *Heap }

func (d *fakeDriver) DisplayOrder() int          { return 0 }
func (d *fakeDriver) DisplayName() string        { return "Fake" }
func (d *fakeDriver) DisplayDescription() string { return "fake driver for tests" }
func (d *fakeDriver) Open(address string) (Conn, error) {
	return &fakeConn{Heap: d.heap}, nil
}

type fakeConn struct {
	*Heap
}

func (c *fakeConn) Close() error { return nil }

func TestRegister(t *testing.T) {
	unregisterAllDrivers()
	defer unregisterAllDrivers()

	Register("zeta", &fakeDriver{heap: NewRAM()})
	Register("alpha", &fakeDriver{heap: NewRAM()})

	names := Drivers()
	if actual, expected := len(names), 2; actual != expected {
		t.Fatalf("drivers, actual = %v, expected = %v", actual, expected)
	}
	if names[0] != "alpha" || names[1] != "zeta" {
		t.Errorf("drivers not sorted: %v", names)
	}

	conn, err := Open("alpha", "")
	if err != nil {
		t.Fatal(err)
	}
	if actual, expected := conn.Len(), RAMSize; actual != expected {
		t.Errorf("len, actual = %v, expected = %v", actual, expected)
	}

	if _, err = Open("missing", ""); err == nil {
		t.Errorf("expected error opening unknown driver")
	}

	defer func() {
		if recover() == nil {
			t.Errorf("expected panic on duplicate Register")
		}
	}()
	Register("alpha", &fakeDriver{})
}

func TestReadU8(t *testing.T) {
	h := NewHeap([]byte{0x10, 0x20, 0x30}, KindHeap)

	tests := []struct {
		name   string
		offset int
		value  uint8
		ok     bool
	}{
		{"first", 0, 0x10, true},
		{"last", 2, 0x30, true},
		{"past end", 3, 0, false},
		{"negative", -1, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, ok := ReadU8(h, tt.offset)
			if value != tt.value || ok != tt.ok {
				t.Errorf("ReadU8(%d), actual = (%v, %v), expected = (%v, %v)", tt.offset, value, ok, tt.value, tt.ok)
			}
		})
	}

	if _, ok := ReadU8(nil, 0); ok {
		t.Errorf("ReadU8 on nil view should not be ok")
	}
}

func TestMergeRegions(t *testing.T) {
	merged := MergeRegions([]Region{
		{Offset: 0x7E2, Size: 1},
		{Offset: 0x7DE, Size: 1},
		{Offset: 0x7DF, Size: 3},
		{Offset: 0x75A, Size: 1},
		{Offset: 0x100, Size: 0},
		{Offset: 0x7E3, Size: 1},
	})

	expected := []Region{{Offset: 0x75A, Size: 1}, {Offset: 0x7DE, Size: 6}}
	if len(merged) != len(expected) {
		t.Fatalf("merged, actual = %v, expected = %v", merged, expected)
	}
	for i := range expected {
		if merged[i] != expected[i] {
			t.Errorf("merged[%d], actual = %v, expected = %v", i, merged[i], expected[i])
		}
	}
}

func TestCapture(t *testing.T) {
	ram := NewRAM()
	ram.Poke(0x7DE, 0, 0, 1, 2, 5, 0)
	ram.Poke(0x75A, 2)

	s, err := Capture(ram, []Region{{Offset: 0x7DE, Size: 6}, {Offset: 0x75A, Size: 1}, {Offset: 0x7FF, Size: 10}})
	if err != nil {
		t.Fatal(err)
	}
	if actual, expected := s.Kind(), KindRAM; actual != expected {
		t.Errorf("kind, actual = %v, expected = %v", actual, expected)
	}

	// later writes must not leak into the snapshot:
	ram.Poke(0x7E0, 9)

	if v, ok := ReadU8(s, 0x7E0); !ok || v != 1 {
		t.Errorf("snapshot byte, actual = (%v, %v), expected = (1, true)", v, ok)
	}
	if v, ok := ReadU8(s, 0x75A); !ok || v != 2 {
		t.Errorf("lives byte, actual = (%v, %v), expected = (2, true)", v, ok)
	}
	if _, ok := ReadU8(s, 0x100); ok {
		t.Errorf("uncaptured byte should not be readable")
	}

	var p [4]byte
	if _, err = s.ReadAt(p[:], 0x7E2); !errors.Is(err, ErrNotCaptured) {
		t.Errorf("read spanning past region, actual err = %v, expected = %v", err, ErrNotCaptured)
	}

	if _, err = Capture(nil, nil); !errors.Is(err, ErrMemoryUnavailable) {
		t.Errorf("capture nil, actual err = %v, expected = %v", err, ErrMemoryUnavailable)
	}
}
