// Package keyring manages a rotating set of credential entries. Each
// entry carries the venue's full credential triple: API key, secret,
// and the server public key issued alongside them.
package keyring

import (
	"fmt"
	"sync"
	"time"
)

// Entry is one credential set.
type Entry struct {
	ID           string
	Key          string
	Secret       string
	ServerPublic string
	Disabled     bool
	LastUsed     time.Time
	ErrorCount   int
}

// RotationStrategy controls when the ring advances to the next entry.
type RotationStrategy int

const (
	// RotationRoundRobin advances only on explicit Rotate calls.
	RotationRoundRobin RotationStrategy = iota
	// RotationOnError advances whenever a request using the current
	// entry fails.
	RotationOnError
)

// KeyRing is a thread-safe rotating credential store.
type KeyRing struct {
	mu       sync.RWMutex
	entries  []*Entry
	current  int
	strategy RotationStrategy
}

// New copies the given entries into a ring with the given strategy.
func New(entries []*Entry, strategy RotationStrategy) *KeyRing {
	copied := make([]*Entry, len(entries))
	for i, e := range entries {
		dup := *e
		copied[i] = &dup
	}
	return &KeyRing{entries: copied, strategy: strategy}
}

// Current returns the active non-disabled entry, or nil when none is
// available.
func (k *KeyRing) Current() *Entry {
	k.mu.RLock()
	defer k.mu.RUnlock()

	if len(k.entries) == 0 {
		return nil
	}

	for i := range k.entries {
		idx := (k.current + i) % len(k.entries)
		if !k.entries[idx].Disabled {
			return k.entries[idx]
		}
	}
	return nil
}

// Rotate advances to the next non-disabled entry.
func (k *KeyRing) Rotate() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.rotateLocked()
}

func (k *KeyRing) rotateLocked() {
	if len(k.entries) == 0 {
		return
	}

	start := k.current
	for {
		k.current = (k.current + 1) % len(k.entries)
		if !k.entries[k.current].Disabled || k.current == start {
			return
		}
	}
}

// OnError records a failure against the current entry and rotates when
// the strategy calls for it.
func (k *KeyRing) OnError(err error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if len(k.entries) == 0 {
		return
	}

	k.entries[k.current].ErrorCount++
	if k.strategy == RotationOnError {
		k.rotateLocked()
	}
}

// MarkUsed stamps the current entry with the present time.
func (k *KeyRing) MarkUsed() {
	k.mu.Lock()
	defer k.mu.Unlock()

	if len(k.entries) == 0 {
		return
	}
	k.entries[k.current].LastUsed = time.Now()
}

// Disable takes an entry out of rotation by id.
func (k *KeyRing) Disable(id string) {
	k.mu.Lock()
	defer k.mu.Unlock()

	for _, e := range k.entries {
		if e.ID == id {
			e.Disabled = true
			return
		}
	}
}

// Enable returns an entry to rotation by id and clears its error count.
func (k *KeyRing) Enable(id string) {
	k.mu.Lock()
	defer k.mu.Unlock()

	for _, e := range k.entries {
		if e.ID == id {
			e.Disabled = false
			e.ErrorCount = 0
			return
		}
	}
}

// Add appends a new entry unless its id already exists.
func (k *KeyRing) Add(entry *Entry) {
	k.mu.Lock()
	defer k.mu.Unlock()

	for _, existing := range k.entries {
		if existing.ID == entry.ID {
			return
		}
	}

	dup := *entry
	k.entries = append(k.entries, &dup)
}

// Remove deletes an entry by id.
func (k *KeyRing) Remove(id string) {
	k.mu.Lock()
	defer k.mu.Unlock()

	for i, e := range k.entries {
		if e.ID == id {
			k.entries = append(k.entries[:i], k.entries[i+1:]...)
			if k.current >= len(k.entries) {
				k.current = 0
			}
			return
		}
	}
}

// String renders the entry with its key masked.
func (e *Entry) String() string {
	return fmt.Sprintf("Entry{ID:%s, Key:%s}", e.ID, maskKey(e.Key))
}

func maskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "****" + key[len(key)-4:]
}
