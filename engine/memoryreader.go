package engine

import (
	"arcadia/games"
	"arcadia/memory"
	"arcadia/nes"
	"fmt"
	"sync"
)

// MemoryReader reads a game's state from emulator memory. Each read captures the configured regions
// into an immutable snapshot first so that score and lives come from the same instant.
type MemoryReader struct {
	cfg      *games.MemoryConfig
	accessor *memory.Accessor

	lock     sync.Mutex
	kind     nes.Kind
	kindCfg  *games.MemoryConfig
	snapshot *nes.Snapshot
}

func NewMemoryReader(cfg *games.MemoryConfig, accessor *memory.Accessor) *MemoryReader {
	return &MemoryReader{cfg: cfg, accessor: accessor}
}

func (r *MemoryReader) Config() *games.MemoryConfig { return r.cfg }

func (r *MemoryReader) ReadState() (games.State, error) {
	view, err := r.accessor.View()
	if err != nil {
		return games.State{}, err
	}

	cfg, err := r.configFor(nes.KindOf(view))
	if err != nil {
		return games.State{}, err
	}

	snap, err := nes.Capture(view, cfg.Regions())
	if err != nil {
		if nes.IsTerminal(err) {
			r.accessor.Reset()
		}
		return games.State{}, fmt.Errorf("engine: capture %s memory: %w", cfg.ID, err)
	}

	r.lock.Lock()
	r.snapshot = snap
	r.lock.Unlock()

	return games.ReadState(cfg, snap), nil
}

// Check returns a *games.ConfigError when the config cannot be read from view.
func (r *MemoryReader) Check(view nes.View) error {
	_, err := r.configFor(nes.KindOf(view))
	return err
}

// LastSnapshot returns the snapshot behind the last successful read, or nil.
func (r *MemoryReader) LastSnapshot() *nes.Snapshot {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.snapshot
}

func (r *MemoryReader) configFor(kind nes.Kind) (*games.MemoryConfig, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.kindCfg != nil && r.kind == kind {
		return r.kindCfg, nil
	}
	cfg, err := r.cfg.ForKind(kind)
	if err != nil {
		return nil, err
	}
	r.kind, r.kindCfg = kind, cfg
	return cfg, nil
}
