package service

import (
	"fmt"
	"strings"
	"sync"

	"huginn/internal/core/domain"
	"huginn/internal/core/timeout"
)

type entry struct {
	policy   timeout.Policy
	executor Executor
}

// registry owns the long-lived executor tables. Registration, lookup,
// eviction and the reaper all serialize on one coarse mutex.
type registry struct {
	mu     sync.Mutex
	exact  map[string]*entry
	prefix map[string]*entry
}

func newRegistry() *registry {
	return &registry{
		exact:  make(map[string]*entry),
		prefix: make(map[string]*entry),
	}
}

// register stores an executor under the match segment of customID,
// generating a fresh id when none was supplied, and returns the effective
// custom id.
func (r *registry) register(customID string, executor Executor, policy timeout.Policy, prefixMatch bool) (string, error) {
	match, effectiveID, err := domain.GenerateCustomID(customID)
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.exact[match]; ok {
		return "", fmt.Errorf("%q: %w", match, domain.ErrAlreadyRegistered)
	}
	if _, ok := r.prefix[match]; ok {
		return "", fmt.Errorf("%q: %w", match, domain.ErrAlreadyRegistered)
	}

	e := &entry{policy: policy, executor: executor}
	if prefixMatch {
		r.prefix[match] = e
	} else {
		r.exact[match] = e
	}

	return effectiveID, nil
}

// unregister removes the entry registered under customID's match segment.
func (r *registry) unregister(customID string) error {
	match, _ := domain.SplitCustomID(customID)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.exact[match]; ok {
		delete(r.exact, match)
		return nil
	}

	if _, ok := r.prefix[match]; ok {
		delete(r.prefix, match)
		return nil
	}

	return fmt.Errorf("%q: %w", match, domain.ErrNotFound)
}

// lookup resolves a match segment to its entry without touching usage state.
// Exact matches win over prefixes; among prefixes the longest wins.
func (r *registry) lookup(match string) (timeout.Policy, Executor, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, _ := r.find(match)
	if e == nil {
		return nil, nil, false
	}

	return e.policy, e.executor, true
}

// find must be called with the mutex held. It returns the entry and the key
// it is stored under.
func (r *registry) find(match string) (*entry, string) {
	if e, ok := r.exact[match]; ok {
		return e, match
	}

	var longest string
	var found *entry
	for prefix, e := range r.prefix {
		if strings.HasPrefix(match, prefix) && len(prefix) >= len(longest) {
			longest = prefix
			found = e
		}
	}

	return found, longest
}

// acquire atomically resolves a live entry for match and counts the use,
// evicting the entry when this use exhausts it. The returned key is the
// registry key the entry was stored under, which callers use for later
// eviction. ok is false when no live entry exists.
func (r *registry) acquire(match string) (executor Executor, key string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, key := r.find(match)
	if e == nil {
		return nil, "", false
	}

	if e.policy.HasExpired() {
		r.remove(key)
		return nil, "", false
	}

	exhausted, err := e.policy.IncrementUses()
	if err != nil {
		// Expiry raced between HasExpired and IncrementUses.
		r.remove(key)
		return nil, "", false
	}

	if exhausted {
		r.remove(key)
	}

	return e.executor, key, true
}

// evict drops an entry by its registry key, tolerating entries that are
// already gone.
func (r *registry) evict(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.remove(key)
}

// remove must be called with the mutex held.
func (r *registry) remove(key string) {
	delete(r.exact, key)
	delete(r.prefix, key)
}

// reap evicts every entry whose policy reports expiry and returns how many
// entries were dropped.
func (r *registry) reap() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for _, table := range []map[string]*entry{r.exact, r.prefix} {
		for key, e := range table {
			if e.policy.HasExpired() {
				delete(table, key)
				evicted++
			}
		}
	}

	return evicted
}

func (r *registry) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.exact) + len(r.prefix)
}
