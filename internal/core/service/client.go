package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"huginn/internal/core/domain"
	"huginn/internal/core/port"
	"huginn/internal/core/timeout"

	"github.com/rs/zerolog/log"
)

const (
	// DefaultTimeout is the sliding expiry applied when no policy is given.
	DefaultTimeout = 2 * time.Minute

	reapInterval = 5 * time.Second
)

const (
	componentTimedOutContent = "This message has timed-out."
	modalTimedOutContent     = "This modal has timed-out."
)

// client owns the executor registry for one interaction family and exposes
// the push and pull ingress operations on top of it.
type client struct {
	name            string
	timedOutContent string
	reg             *registry
	sender          port.InteractionSender

	mu   sync.Mutex
	stop chan struct{}
}

// ComponentClient dispatches message component interactions.
type ComponentClient struct {
	client
}

func NewComponentClient(sender port.InteractionSender) *ComponentClient {
	return &ComponentClient{client{
		name:            "component",
		timedOutContent: componentTimedOutContent,
		reg:             newRegistry(),
		sender:          sender,
	}}
}

// ModalClient dispatches modal submission interactions.
type ModalClient struct {
	client
}

func NewModalClient(sender port.InteractionSender) *ModalClient {
	return &ModalClient{client{
		name:            "modal",
		timedOutContent: modalTimedOutContent,
		reg:             newRegistry(),
		sender:          sender,
	}}
}

// Open starts the background reaper. Calling it on an open client is a no-op.
func (c *client) Open() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stop != nil {
		return
	}

	log.Info().Str("client", c.name).Msg("opening interaction client")
	c.stop = make(chan struct{})
	go c.reapLoop(c.stop)
}

// Close stops the reaper. Calling it on a closed client is a no-op.
func (c *client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stop == nil {
		return
	}

	log.Info().Str("client", c.name).Msg("closing interaction client")
	close(c.stop)
	c.stop = nil
}

func (c *client) reapLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(reapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if evicted := c.reg.reap(); evicted > 0 {
				log.Debug().Str("client", c.name).Int("evicted", evicted).Msg("reaped expired executors")
				executorsEvicted.WithLabelValues(c.name, "expired").Add(float64(evicted))
			}
			registeredExecutors.WithLabelValues(c.name).Set(float64(c.reg.size()))
		}
	}
}

// Register adds an executor under customID, minting a fresh id when customID
// is empty, and returns the effective custom id. A nil policy defaults to a
// sliding two minute timeout with unlimited uses.
func (c *client) Register(customID string, executor Executor, policy timeout.Policy, prefixMatch bool) (string, error) {
	if policy == nil {
		policy = timeout.NewSliding(DefaultTimeout, timeout.UnlimitedUses)
	}

	effectiveID, err := c.reg.register(customID, executor, policy, prefixMatch)
	if err != nil {
		return "", err
	}

	log.Info().Str("client", c.name).Str("customID", effectiveID).Bool("prefix", prefixMatch).
		Msg("adding executor to registry")
	registeredExecutors.WithLabelValues(c.name).Set(float64(c.reg.size()))

	return effectiveID, nil
}

// Unregister removes the executor registered under customID's match segment.
func (c *client) Unregister(customID string) error {
	if err := c.reg.unregister(customID); err != nil {
		return err
	}

	log.Info().Str("client", c.name).Str("customID", customID).Msg("removing executor from registry")
	registeredExecutors.WithLabelValues(c.name).Set(float64(c.reg.size()))

	return nil
}

// Lookup resolves customID to its registered policy and executor without
// consuming a use.
func (c *client) Lookup(customID string) (timeout.Policy, Executor, bool) {
	match, _ := domain.SplitCustomID(customID)
	return c.reg.lookup(match)
}

// OnGatewayEvent processes a push-delivered interaction. Expired or unknown
// custom ids receive the synthetic timed-out response; errors from the
// executor's callback propagate to the caller.
func (c *client) OnGatewayEvent(ctx context.Context, interaction *domain.Interaction) error {
	match, _ := domain.SplitCustomID(interaction.CustomID)

	executor, key, ok := c.reg.acquire(match)
	if !ok {
		log.Debug().Str("client", c.name).Str("customID", interaction.CustomID).Msg("no live executor for interaction")
		interactionsTimedOut.WithLabelValues(c.name, "gateway").Inc()
		return c.sender.CreateInitialResponse(ctx, interaction.ID, interaction.Token, c.timedOutResponse())
	}

	interactionsDispatched.WithLabelValues(c.name, "gateway").Inc()

	err := executor.Execute(ctx, newContext(interaction, c.sender, nil))
	if errors.Is(err, ErrExecutorClosed) {
		c.evict(key)
		return nil
	}

	return err
}

// OnHTTPRequest processes a pull-delivered interaction and returns the
// response value the transport should serve. The executor runs in the
// background; how long the caller waits for it is bounded by ctx.
func (c *client) OnHTTPRequest(ctx context.Context, interaction *domain.Interaction) (*domain.Response, error) {
	match, _ := domain.SplitCustomID(interaction.CustomID)

	executor, key, ok := c.reg.acquire(match)
	if !ok {
		log.Debug().Str("client", c.name).Str("customID", interaction.CustomID).Msg("no live executor for interaction")
		interactionsTimedOut.WithLabelValues(c.name, "http").Inc()
		return c.timedOutResponse(), nil
	}

	interactionsDispatched.WithLabelValues(c.name, "http").Inc()

	future := newResponseFuture()
	ictx := newContext(interaction, c.sender, future)

	// The executor may outlive the ingress request, e.g. for followups after
	// the initial response has been served.
	execCtx := context.WithoutCancel(ctx)
	go func() {
		err := executor.Execute(execCtx, ictx)
		switch {
		case errors.Is(err, ErrExecutorClosed):
			c.evict(key)
			future.resolve(c.timedOutResponse())
		case err != nil:
			if !future.fail(err) {
				log.Error().Err(err).Str("client", c.name).Str("customID", interaction.CustomID).
					Msg("executor failed after the initial response was produced")
			}
		}
	}()

	return future.wait(ctx)
}

func (c *client) evict(key string) {
	c.reg.evict(key)
	executorsEvicted.WithLabelValues(c.name, "closed").Inc()
	registeredExecutors.WithLabelValues(c.name).Set(float64(c.reg.size()))
}

func (c *client) timedOutResponse() *domain.Response {
	return &domain.Response{
		Kind:      domain.ResponseMessageCreate,
		Content:   c.timedOutContent,
		Ephemeral: true,
	}
}
