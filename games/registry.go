package games

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

var ErrUnknownGame = errors.New("games: unknown game")

var (
	configsMu sync.RWMutex
	configs   = make(map[string]*MemoryConfig)
)

// Register makes a game memory configuration available by its ID.
// It panics if the config is invalid or the ID is already registered.
func Register(cfg MemoryConfig) {
	configsMu.Lock()
	defer configsMu.Unlock()
	if err := cfg.Validate(); err != nil {
		panic(err)
	}
	id := strings.ToLower(cfg.ID)
	if _, dup := configs[id]; dup {
		panic("games: Register called twice for game " + cfg.ID)
	}
	configs[id] = cfg.Clone()
}

func unregisterAllConfigs() {
	configsMu.Lock()
	defer configsMu.Unlock()
	// For tests.
	configs = make(map[string]*MemoryConfig)
}

// IDs returns a sorted list of the registered game IDs.
func IDs() []string {
	configsMu.RLock()
	defer configsMu.RUnlock()
	list := make([]string, 0, len(configs))
	for id := range configs {
		list = append(list, id)
	}
	sort.Strings(list)
	return list
}

// ByID returns a copy of the config registered under id (case-insensitive) or an error wrapping ErrUnknownGame.
func ByID(id string) (*MemoryConfig, error) {
	configsMu.RLock()
	defer configsMu.RUnlock()
	cfg, ok := configs[strings.ToLower(strings.TrimSpace(id))]
	if !ok {
		return nil, fmt.Errorf("%w %q (known: %s)", ErrUnknownGame, id, strings.Join(idsLocked(), ", "))
	}
	return cfg.Clone(), nil
}

// Detect picks the game whose ID appears in s (a URL path or ROM file name, say).
func Detect(s string) (*MemoryConfig, error) {
	s = strings.ToLower(s)
	configsMu.RLock()
	ids := idsLocked()
	configsMu.RUnlock()
	for _, id := range ids {
		if strings.Contains(s, id) {
			return ByID(id)
		}
	}
	return nil, fmt.Errorf("%w: nothing matches %q", ErrUnknownGame, s)
}

func idsLocked() []string {
	list := make([]string, 0, len(configs))
	for id := range configs {
		list = append(list, id)
	}
	sort.Strings(list)
	return list
}
