package service

import (
	"context"
	"sync"

	"huginn/internal/core/domain"
	"huginn/internal/core/port"
)

type futureResult struct {
	response *domain.Response
	err      error
}

// responseFuture is the one-shot bridge between a handler producing a
// response and a pull-mode ingress adapter waiting to return it.
type responseFuture struct {
	mu       sync.Mutex
	resolved bool
	ch       chan futureResult
}

func newResponseFuture() *responseFuture {
	return &responseFuture{ch: make(chan futureResult, 1)}
}

func (f *responseFuture) resolve(response *domain.Response) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.resolved {
		return false
	}

	f.resolved = true
	f.ch <- futureResult{response: response}
	return true
}

func (f *responseFuture) fail(err error) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.resolved {
		return false
	}

	f.resolved = true
	f.ch <- futureResult{err: err}
	return true
}

func (f *responseFuture) wait(ctx context.Context) (*domain.Response, error) {
	select {
	case result := <-f.ch:
		return result.response, result.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Context brokers exactly one initial response for a single interaction.
// When constructed with a future the initial response resolves that future
// instead of calling out through the sender; edits and followups always go
// through the sender.
type Context struct {
	interaction *domain.Interaction
	sender      port.InteractionSender
	future      *responseFuture

	mu               sync.Mutex
	hasResponded     bool
	hasBeenDeferred  bool
	ephemeralDefault bool
}

func newContext(interaction *domain.Interaction, sender port.InteractionSender, future *responseFuture) *Context {
	return &Context{interaction: interaction, sender: sender, future: future}
}

func (c *Context) Interaction() *domain.Interaction {
	return c.interaction
}

func (c *Context) HasResponded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasResponded
}

func (c *Context) HasBeenDeferred() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasBeenDeferred
}

// SetEphemeralDefault sets whether responses without an explicit ephemeral
// flag default to being ephemeral.
func (c *Context) SetEphemeralDefault(state bool) *Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ephemeralDefault = state
	return c
}

// Defer commits the interaction to a deferred envelope. The initial response
// must then be set through EditInitialResponse.
func (c *Context) Defer(ctx context.Context, kind domain.ResponseKind) error {
	if !kind.IsDeferral() {
		kind = domain.ResponseDeferredMessageUpdate
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.hasBeenDeferred || c.hasResponded {
		return domain.ErrAlreadyResponded
	}

	response := &domain.Response{Kind: kind, Ephemeral: c.ephemeralDefault}

	if c.future != nil {
		c.hasBeenDeferred = true
		c.future.resolve(response)
		return nil
	}

	if err := c.sender.CreateInitialResponse(ctx, c.interaction.ID, c.interaction.Token, response); err != nil {
		return err
	}

	c.hasBeenDeferred = true
	return nil
}

// CreateInitialResponse produces the first response for the interaction.
// It fails once the interaction has been responded to, and a deferred
// interaction must use EditInitialResponse instead.
func (c *Context) CreateInitialResponse(ctx context.Context, response *domain.Response) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.createInitialResponse(ctx, response)
}

func (c *Context) createInitialResponse(ctx context.Context, response *domain.Response) error {
	if c.hasResponded {
		return domain.ErrAlreadyResponded
	}

	if c.hasBeenDeferred {
		return domain.ErrDeferredNeedsEdit
	}

	prepared := *response
	if prepared.Kind == 0 {
		prepared.Kind = domain.ResponseMessageCreate
	}
	prepared.Ephemeral = prepared.Ephemeral || c.ephemeralDefault

	if c.future != nil {
		c.hasResponded = true
		c.future.resolve(&prepared)
		return nil
	}

	if err := c.sender.CreateInitialResponse(ctx, c.interaction.ID, c.interaction.Token, &prepared); err != nil {
		return err
	}

	c.hasResponded = true
	return nil
}

// EditInitialResponse edits the initial response. This is the only valid way
// to set the first visible response after a deferral.
func (c *Context) EditInitialResponse(ctx context.Context, response *domain.Response) (*domain.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.editInitialResponse(ctx, response)
}

func (c *Context) editInitialResponse(ctx context.Context, response *domain.Response) (*domain.Message, error) {
	if !c.hasResponded && !c.hasBeenDeferred {
		return nil, domain.ErrNotResponded
	}

	message, err := c.sender.EditInitialResponse(ctx, c.interaction.Token, response)
	if err != nil {
		return nil, err
	}

	c.hasResponded = true
	return message, nil
}

// DeleteInitialResponse removes the initial response after it has been
// created or deferred.
func (c *Context) DeleteInitialResponse(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.hasResponded && !c.hasBeenDeferred {
		return domain.ErrNotResponded
	}

	return c.sender.DeleteInitialResponse(ctx, c.interaction.Token)
}

// CreateFollowup sends a followup message. Followups are only reachable once
// the initial response exists.
func (c *Context) CreateFollowup(ctx context.Context, response *domain.Response) (*domain.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.createFollowup(ctx, response)
}

func (c *Context) createFollowup(ctx context.Context, response *domain.Response) (*domain.Message, error) {
	if !c.hasResponded {
		return nil, domain.ErrNotResponded
	}

	prepared := *response
	prepared.Ephemeral = prepared.Ephemeral || c.ephemeralDefault

	return c.sender.CreateFollowup(ctx, c.interaction.Token, &prepared)
}

// Respond collapses the three response paths into one call: a followup when
// already responded, an edit when deferred, otherwise a fresh initial
// response.
func (c *Context) Respond(ctx context.Context, response *domain.Response) (*domain.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case c.hasResponded:
		return c.createFollowup(ctx, response)
	case c.hasBeenDeferred:
		return c.editInitialResponse(ctx, response)
	default:
		return nil, c.createInitialResponse(ctx, response)
	}
}
