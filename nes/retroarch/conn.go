package retroarch

import (
	"arcadia/nes"
	"arcadia/udpclient"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"
)

// Conn reads NES RAM through RetroArch's READ_CORE_MEMORY network command. Offsets are NES addresses.
type Conn struct {
	udpclient.UDPClient

	timeout   time.Duration
	chunkSize int

	lock   sync.Mutex
	failed bool
}

func (c *Conn) Len() int       { return nes.RAMSize }
func (c *Conn) Kind() nes.Kind { return nes.KindRAM }

// Valid reports false after RetroArch stopped answering or unloaded its content.
func (c *Conn) Valid() bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	return !c.failed && c.IsConnected()
}

func (c *Conn) Close() error {
	c.Disconnect()
	return nil
}

func (c *Conn) ReadAt(p []byte, off int64) (n int, err error) {
	if off < 0 || off >= nes.RAMSize {
		return 0, io.EOF
	}
	want := len(p)
	if int(off)+want > nes.RAMSize {
		want = nes.RAMSize - int(off)
	}

	c.lock.Lock()
	defer c.lock.Unlock()

	chunk := c.chunkSize
	if chunk <= 0 {
		chunk = 256
	}

	for n < want {
		size := want - n
		if size > chunk {
			size = chunk
		}

		address := uint32(off) + uint32(n)
		var data []byte
		data, err = c.exchange(address, size)
		if err != nil {
			c.failed = true
			return
		}
		n += copy(p[n:n+size], data)
	}

	if n < len(p) {
		err = io.EOF
	}
	return
}

// exchange sends one READ_CORE_MEMORY command and waits for the matching response,
// discarding stale responses to earlier requests.
func (c *Conn) exchange(address uint32, size int) ([]byte, error) {
	timeout := c.timeout
	if timeout <= 0 {
		timeout = 250 * time.Millisecond
	}

	if err := c.WriteTimeout(formatReadCoreMemory(address, size), timeout); err != nil {
		return nil, &nes.TerminalError{Wrapped: err}
	}

	deadline := time.Now().Add(timeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, &nes.TerminalError{Wrapped: udpclient.ErrTimeout}
		}

		rsp, err := c.ReadTimeout(remaining)
		if err != nil {
			return nil, &nes.TerminalError{Wrapped: err}
		}

		rspAddress, data, err := parseReadCoreMemory(rsp)
		if errors.Is(err, errNoMemoryMap) {
			return nil, fmt.Errorf("%s: %v: %w", c.Name(), err, nes.ErrMemoryUnavailable)
		}
		if err != nil || rspAddress != address {
			continue
		}
		if len(data) < size {
			return nil, fmt.Errorf("%s: short read at $%04x: %d of %d bytes", c.Name(), address, len(data), size)
		}
		return data, nil
	}
}
