// Package memory locates the emulator's memory view through an ordered list of discovery paths.
package memory

import (
	"arcadia/nes"
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"
)

const (
	DefaultAttempts = 50
	DefaultDelay    = 100 * time.Millisecond
)

var ErrTimeout = errors.New("memory: timed out waiting for emulator memory")

// Path is one way of reaching the emulator's memory. Locate returns nes.ErrMemoryUnavailable (or a nil/empty
// view) when the memory is not there yet.
type Path struct {
	Name   string
	Locate func() (nes.View, error)
}

// DriverPath opens address through the registered driver.
func DriverPath(driverName, address string) Path {
	return Path{
		Name: driverName + "=" + address,
		Locate: func() (nes.View, error) {
			return nes.Open(driverName, address)
		},
	}
}

// ViewPath always yields view; used for in-process emulators.
func ViewPath(name string, view nes.View) Path {
	return Path{
		Name: name,
		Locate: func() (nes.View, error) {
			if view == nil {
				return nil, nes.ErrMemoryUnavailable
			}
			return view, nil
		},
	}
}

// ParsePaths parses "driver=address,driver=address,driver" into driver paths, in order.
func ParsePaths(list string) ([]Path, error) {
	paths := make([]Path, 0, 4)
	for _, item := range strings.Split(list, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		driverName, address, _ := strings.Cut(item, "=")
		driverName = strings.TrimSpace(driverName)
		if _, ok := nes.DriverByName(driverName); !ok {
			return nil, fmt.Errorf("memory: unknown driver %q in path %q (available: %s)",
				driverName, item, strings.Join(nes.Drivers(), ", "))
		}
		paths = append(paths, DriverPath(driverName, strings.TrimSpace(address)))
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("memory: no paths in %q", list)
	}
	return paths, nil
}

// Accessor finds the emulator memory view. The first view found is cached and re-validated on each
// call so that an emulator restart is not served from a stale reference.
type Accessor struct {
	paths []Path

	lock      sync.Mutex
	view      nes.View
	foundPath string
}

func NewAccessor(paths ...Path) *Accessor {
	return &Accessor{paths: paths}
}

// View returns the current memory view or an error wrapping nes.ErrMemoryUnavailable. It never panics.
func (a *Accessor) View() (nes.View, error) {
	a.lock.Lock()
	defer a.lock.Unlock()

	if a.view != nil {
		if nes.IsValid(a.view) {
			return a.view, nil
		}
		log.Printf("memory: view from '%s' went stale; rediscovering\n", a.foundPath)
		a.dropLocked()
	}

	for _, p := range a.paths {
		view, err := locate(p)
		if err != nil {
			if !errors.Is(err, nes.ErrMemoryUnavailable) {
				log.Printf("memory: path '%s': %v\n", p.Name, err)
			}
			continue
		}
		if !nes.IsValid(view) {
			closeView(view)
			continue
		}

		log.Printf("memory: found %s memory via '%s', size %d bytes\n", nes.KindOf(view), p.Name, view.Len())
		a.view = view
		a.foundPath = p.Name
		return view, nil
	}

	return nil, nes.ErrMemoryUnavailable
}

// Path returns the name of the path the cached view was found on, or "".
func (a *Accessor) Path() string {
	a.lock.Lock()
	defer a.lock.Unlock()
	return a.foundPath
}

// Wait polls View up to attempts times, delay apart, and returns ErrTimeout if memory never shows up.
func (a *Accessor) Wait(ctx context.Context, attempts int, delay time.Duration) (nes.View, error) {
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	if delay <= 0 {
		delay = DefaultDelay
	}

	ticker := time.NewTicker(delay)
	defer ticker.Stop()

	for attempt := 1; ; attempt++ {
		view, err := a.View()
		if err == nil {
			return view, nil
		}
		if attempt >= attempts {
			return nil, fmt.Errorf("%w after %d attempts (%v apart)", ErrTimeout, attempts, delay)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Reset drops the cached view so that the next call rediscovers it.
func (a *Accessor) Reset() {
	a.lock.Lock()
	defer a.lock.Unlock()
	a.dropLocked()
}

func (a *Accessor) Close() error {
	a.Reset()
	return nil
}

func (a *Accessor) dropLocked() {
	closeView(a.view)
	a.view = nil
	a.foundPath = ""
}

// locate calls p.Locate, turning panics from misbehaving hosts into errors.
func locate(p Path) (view nes.View, err error) {
	defer func() {
		if r := recover(); r != nil {
			view, err = nil, fmt.Errorf("memory: path '%s' panicked: %v", p.Name, r)
		}
	}()
	return p.Locate()
}

func closeView(v nes.View) {
	if c, ok := v.(nes.Conn); ok {
		_ = c.Close()
	}
}
