package mock

import (
	"arcadia/nes"
	"sync"
)

const driverName = "mock"

type Driver struct {
	lock  sync.Mutex
	heaps map[string]*attachment
}

type attachment struct {
	heap *nes.Heap
	// incremented on every Attach/Detach so that open conns notice a restart:
	generation uint64
}

var driver = &Driver{heaps: make(map[string]*attachment)}

func (d *Driver) DisplayOrder() int {
	return 1000
}

func (d *Driver) DisplayName() string {
	return "Mock Emulator"
}

func (d *Driver) DisplayDescription() string {
	return "In-process emulator memory for testing"
}

// Open returns a conn to the heap attached at address, or nes.ErrMemoryUnavailable if none is attached yet.
func (d *Driver) Open(address string) (nes.Conn, error) {
	d.lock.Lock()
	defer d.lock.Unlock()

	a, ok := d.heaps[address]
	if !ok || a.heap == nil {
		return nil, nes.ErrMemoryUnavailable
	}

	return &Conn{d: d, address: address, heap: a.heap, generation: a.generation}, nil
}

// Attach makes heap visible at address, replacing (and invalidating) any previously attached heap.
func Attach(address string, heap *nes.Heap) {
	driver.lock.Lock()
	defer driver.lock.Unlock()

	a, ok := driver.heaps[address]
	if !ok {
		a = &attachment{}
		driver.heaps[address] = a
	}
	a.heap = heap
	a.generation++
}

// Detach removes the heap at address, as if the emulator had shut down.
func Detach(address string) {
	driver.lock.Lock()
	defer driver.lock.Unlock()

	if a, ok := driver.heaps[address]; ok {
		a.heap = nil
		a.generation++
	}
}

func (d *Driver) isCurrent(address string, generation uint64) bool {
	d.lock.Lock()
	defer d.lock.Unlock()

	a, ok := d.heaps[address]
	return ok && a.heap != nil && a.generation == generation
}

func init() {
	nes.Register(driverName, driver)
}
