package mock

import (
	"arcadia/nes"
	"sync/atomic"
)

type Conn struct {
	d          *Driver
	address    string
	heap       *nes.Heap
	generation uint64
	closed     atomic.Bool
}

func (c *Conn) Len() int       { return c.heap.Len() }
func (c *Conn) Kind() nes.Kind { return c.heap.Kind() }

func (c *Conn) ReadAt(p []byte, off int64) (int, error) {
	if c.closed.Load() {
		return 0, &nes.TerminalError{Wrapped: nes.ErrConnClosed}
	}
	return c.heap.ReadAt(p, off)
}

// Valid reports false once the conn is closed or a different heap was attached at its address.
func (c *Conn) Valid() bool {
	return !c.closed.Load() && c.d.isCurrent(c.address, c.generation)
}

func (c *Conn) Close() error {
	c.closed.Store(true)
	return nil
}
