package nes

import (
	"fmt"
	"io"
	"sort"
	"sync"
)

// RAMSize is the size of the NES internal work RAM ($0000-$07FF).
const RAMSize = 0x800

// Kind describes what a View's offset 0 corresponds to.
type Kind int

const (
	// KindHeap views expose the emulator host's whole flat memory; NES RAM lives somewhere inside it.
	KindHeap Kind = iota
	// KindRAM views expose only NES RAM; offset 0 is NES address $0000.
	KindRAM
)

func (k Kind) String() string {
	switch k {
	case KindHeap:
		return "heap"
	case KindRAM:
		return "ram"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// View is a read-only, fixed-length, byte-addressable window into emulator memory.
// It is owned by the emulator runtime; readers must not assume it stays valid across emulator restarts.
type View interface {
	io.ReaderAt

	// Len returns the number of addressable bytes.
	Len() int
}

// Kinded is implemented by views that are not KindHeap.
type Kinded interface {
	Kind() Kind
}

// Validator is implemented by views whose underlying reference can go stale.
type Validator interface {
	// Valid reports whether the view still refers to live emulator memory.
	Valid() bool
}

func KindOf(v View) Kind {
	if k, ok := v.(Kinded); ok {
		return k.Kind()
	}
	return KindHeap
}

// IsValid reports whether v is non-nil, non-empty and, if it can tell, not stale.
func IsValid(v View) bool {
	if v == nil || v.Len() <= 0 {
		return false
	}
	if vv, ok := v.(Validator); ok {
		return vv.Valid()
	}
	return true
}

// ReadU8 reads the byte at offset. ok is false for out-of-range offsets or failed reads.
func ReadU8(v View, offset int) (value uint8, ok bool) {
	if v == nil || offset < 0 || offset >= v.Len() {
		return 0, false
	}
	var b [1]byte
	n, err := v.ReadAt(b[:], int64(offset))
	if n != 1 || (err != nil && err != io.EOF) {
		return 0, false
	}
	return b[0], true
}

// Conn is an open driver connection that doubles as a View.
type Conn interface {
	View

	Close() error
}

type Driver interface {
	DisplayOrder() int
	DisplayName() string
	DisplayDescription() string

	// Open connects to the emulator host at address (driver specific; may be empty).
	Open(address string) (Conn, error)
}

var (
	driversMu sync.RWMutex
	drivers   = make(map[string]Driver)
)

// Register makes a memory driver available by the provided name.
// If Register is called twice with the same name or if driver is nil,
// it panics.
func Register(name string, driver Driver) {
	driversMu.Lock()
	defer driversMu.Unlock()
	if driver == nil {
		panic("nes: Register driver is nil")
	}
	if _, dup := drivers[name]; dup {
		panic("nes: Register called twice for driver " + name)
	}
	drivers[name] = driver
}

func unregisterAllDrivers() {
	driversMu.Lock()
	defer driversMu.Unlock()
	// For tests.
	drivers = make(map[string]Driver)
}

// Drivers returns a sorted list of the names of the registered drivers.
func Drivers() []string {
	driversMu.RLock()
	defer driversMu.RUnlock()
	list := make([]string, 0, len(drivers))
	for name := range drivers {
		list = append(list, name)
	}
	sort.Strings(list)
	return list
}

func DriverByName(name string) (Driver, bool) {
	driversMu.RLock()
	defer driversMu.RUnlock()
	d, ok := drivers[name]
	return d, ok
}

func Open(driverName, address string) (Conn, error) {
	driver, ok := DriverByName(driverName)
	if !ok {
		return nil, fmt.Errorf("nes: unknown driver %q (forgotten import?)", driverName)
	}

	return driver.Open(address)
}
