package nes

import (
	"io"
	"sync"
)

// Heap is a View over a byte slice. Writes go through Poke so that concurrent readers see whole updates.
type Heap struct {
	lock sync.RWMutex
	data []byte
	kind Kind
}

func NewHeap(data []byte, kind Kind) *Heap {
	return &Heap{data: data, kind: kind}
}

// NewRAM returns a zeroed KindRAM heap the size of NES work RAM.
func NewRAM() *Heap {
	return NewHeap(make([]byte, RAMSize), KindRAM)
}

func (h *Heap) Len() int {
	h.lock.RLock()
	defer h.lock.RUnlock()
	return len(h.data)
}

func (h *Heap) Kind() Kind { return h.kind }

func (h *Heap) ReadAt(p []byte, off int64) (n int, err error) {
	h.lock.RLock()
	defer h.lock.RUnlock()

	if off < 0 || off >= int64(len(h.data)) {
		return 0, io.EOF
	}
	n = copy(p, h.data[off:])
	if n < len(p) {
		err = io.EOF
	}
	return
}

// Poke writes p at offset, clipping at the end of the heap.
func (h *Heap) Poke(offset int, p ...byte) {
	h.lock.Lock()
	defer h.lock.Unlock()

	if offset < 0 || offset >= len(h.data) {
		return
	}
	copy(h.data[offset:], p)
}

// Fill sets every byte of the heap to value.
func (h *Heap) Fill(value byte) {
	h.lock.Lock()
	defer h.lock.Unlock()

	for i := range h.data {
		h.data[i] = value
	}
}
