package port

import (
	"context"

	"huginn/internal/core/domain"
)

type InteractionSender interface {
	// CreateInitialResponse submits the first response for an interaction to the platform.
	CreateInitialResponse(ctx context.Context, interactionID, token string, response *domain.Response) error
	// EditInitialResponse edits the initial response of an interaction and returns the resulting message.
	EditInitialResponse(ctx context.Context, token string, response *domain.Response) (*domain.Message, error)
	// DeleteInitialResponse removes the initial response of an interaction.
	DeleteInitialResponse(ctx context.Context, token string) error
	// CreateFollowup sends a followup message for an already responded interaction.
	CreateFollowup(ctx context.Context, token string, response *domain.Response) (*domain.Message, error)
}
