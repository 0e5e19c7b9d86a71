package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"huginn/internal/core/domain"

	"github.com/rs/zerolog/log"
)

// ErrExecutorClosed signals that an executor has finished its work and
// should be removed from its client.
var ErrExecutorClosed = errors.New("executor closed")

type Callback func(ctx context.Context, ictx *Context) error

type Executor interface {
	// CustomIDs returns a snapshot of the exact match keys this executor handles.
	CustomIDs() []string
	// Execute handles one interaction routed to this executor.
	Execute(ctx context.Context, ictx *Context) error
}

// ComponentExecutor routes interactions to callbacks keyed by custom id,
// with a lower priority prefix table for ids carrying per-instance metadata.
type ComponentExecutor struct {
	mu              sync.RWMutex
	callbacks       map[string]Callback
	prefixCallbacks map[string]Callback
}

func NewComponentExecutor() *ComponentExecutor {
	return &ComponentExecutor{
		callbacks:       make(map[string]Callback),
		prefixCallbacks: make(map[string]Callback),
	}
}

// AddCallback registers a callback for the exact match segment of customID.
func (e *ComponentExecutor) AddCallback(customID string, callback Callback) error {
	return e.add(customID, callback, false)
}

// AddPrefixCallback registers a callback matched by custom id prefix.
func (e *ComponentExecutor) AddPrefixCallback(customID string, callback Callback) error {
	return e.add(customID, callback, true)
}

func (e *ComponentExecutor) add(customID string, callback Callback, prefix bool) error {
	match, _ := domain.SplitCustomID(customID)

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.callbacks[match]; ok {
		return fmt.Errorf("%q: %w", match, domain.ErrAlreadyRegistered)
	}
	if _, ok := e.prefixCallbacks[match]; ok {
		return fmt.Errorf("%q: %w", match, domain.ErrAlreadyRegistered)
	}

	if prefix {
		e.prefixCallbacks[match] = callback
	} else {
		e.callbacks[match] = callback
	}

	return nil
}

// RemoveCallback removes a previously registered callback.
func (e *ComponentExecutor) RemoveCallback(customID string) error {
	match, _ := domain.SplitCustomID(customID)

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.callbacks[match]; ok {
		delete(e.callbacks, match)
		return nil
	}

	if _, ok := e.prefixCallbacks[match]; ok {
		delete(e.prefixCallbacks, match)
		return nil
	}

	return fmt.Errorf("%q: %w", match, domain.ErrNotFound)
}

func (e *ComponentExecutor) CustomIDs() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	ids := make([]string, 0, len(e.callbacks))
	for id := range e.callbacks {
		ids = append(ids, id)
	}

	return ids
}

func (e *ComponentExecutor) Execute(ctx context.Context, ictx *Context) error {
	match, _ := domain.SplitCustomID(ictx.Interaction().CustomID)

	e.mu.RLock()
	callback, ok := e.callbacks[match]
	if !ok {
		// Longest prefix wins so overlapping prefixes stay deterministic.
		var longest string
		for prefix, cb := range e.prefixCallbacks {
			if strings.HasPrefix(match, prefix) && len(prefix) >= len(longest) {
				longest = prefix
				callback = cb
				ok = true
			}
		}
	}
	e.mu.RUnlock()

	if !ok {
		// The client only routes here after matching this executor, so a
		// missing callback is an internal inconsistency.
		err := fmt.Errorf("%q: %w", match, domain.ErrNoCallback)
		log.Error().Str("customID", ictx.Interaction().CustomID).Msg("executor has no callback for routed custom id")
		return err
	}

	return callback(ctx, ictx)
}

const notAllowedContent = "You are not allowed to use this message's components."

// WaitForExecutor is a single use executor which hands the next matching
// interaction to a caller blocked on WaitFor.
type WaitForExecutor struct {
	authors []string

	mu   sync.Mutex
	done bool
	ch   chan *Context
}

// NewWaitForExecutor creates a single use executor. When authors is
// non-empty, interactions from other users are rejected with an ephemeral
// notice without consuming the executor.
func NewWaitForExecutor(authors ...string) *WaitForExecutor {
	return &WaitForExecutor{authors: authors, ch: make(chan *Context, 1)}
}

func (e *WaitForExecutor) CustomIDs() []string { return nil }

// WaitFor blocks until an interaction is routed to this executor or ctx is
// done.
func (e *WaitForExecutor) WaitFor(ctx context.Context) (*Context, error) {
	select {
	case ictx := <-e.ch:
		return ictx, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (e *WaitForExecutor) Execute(ctx context.Context, ictx *Context) error {
	if len(e.authors) > 0 && !e.allows(ictx.Interaction().UserID) {
		return ictx.CreateInitialResponse(ctx, &domain.Response{
			Content:   notAllowedContent,
			Ephemeral: true,
		})
	}

	e.mu.Lock()
	if e.done {
		e.mu.Unlock()
		return ErrExecutorClosed
	}
	e.done = true
	e.mu.Unlock()

	e.ch <- ictx
	return nil
}

func (e *WaitForExecutor) allows(userID string) bool {
	for _, author := range e.authors {
		if author == userID {
			return true
		}
	}

	return false
}
