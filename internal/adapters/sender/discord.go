package sender

import (
	"context"

	"huginn/internal/core/domain"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

type DiscordSender struct {
	session *discordgo.Session
	appID   string
}

func NewDiscordSender(session *discordgo.Session, appID string) *DiscordSender {
	return &DiscordSender{session: session, appID: appID}
}

func (s *DiscordSender) CreateInitialResponse(ctx context.Context, interactionID, token string, response *domain.Response) error {
	err := s.session.InteractionRespond(
		&discordgo.Interaction{ID: interactionID, Token: token},
		BuildInteractionResponse(response),
		discordgo.WithContext(ctx),
	)
	if err != nil {
		log.Error().Err(err).Str("interactionID", interactionID).Msg("failed to create interaction response")
		return err
	}

	return nil
}

func (s *DiscordSender) EditInitialResponse(ctx context.Context, token string, response *domain.Response) (*domain.Message, error) {
	components := buildComponents(response.Components)
	edit := &discordgo.WebhookEdit{
		Content:    &response.Content,
		Components: &components,
	}

	message, err := s.session.InteractionResponseEdit(
		&discordgo.Interaction{AppID: s.appID, Token: token},
		edit,
		discordgo.WithContext(ctx),
	)
	if err != nil {
		log.Error().Err(err).Msg("failed to edit interaction response")
		return nil, err
	}

	return fromDiscordMessage(message), nil
}

func (s *DiscordSender) DeleteInitialResponse(ctx context.Context, token string) error {
	err := s.session.InteractionResponseDelete(
		&discordgo.Interaction{AppID: s.appID, Token: token},
		discordgo.WithContext(ctx),
	)
	if err != nil {
		log.Error().Err(err).Msg("failed to delete interaction response")
		return err
	}

	return nil
}

func (s *DiscordSender) CreateFollowup(ctx context.Context, token string, response *domain.Response) (*domain.Message, error) {
	params := &discordgo.WebhookParams{
		Content:    response.Content,
		TTS:        response.TTS,
		Components: buildComponents(response.Components),
	}
	if response.Ephemeral {
		params.Flags = discordgo.MessageFlagsEphemeral
	}

	message, err := s.session.FollowupMessageCreate(
		&discordgo.Interaction{AppID: s.appID, Token: token},
		true,
		params,
		discordgo.WithContext(ctx),
	)
	if err != nil {
		log.Error().Err(err).Msg("failed to create followup message")
		return nil, err
	}

	return fromDiscordMessage(message), nil
}

// BuildInteractionResponse converts a domain response into the platform's
// wire representation. It is shared with the HTTP ingress adapter, which
// serves the same payload synchronously.
func BuildInteractionResponse(response *domain.Response) *discordgo.InteractionResponse {
	data := &discordgo.InteractionResponseData{
		Content:    response.Content,
		TTS:        response.TTS,
		Components: buildComponents(response.Components),
		CustomID:   response.CustomID,
		Title:      response.Title,
	}
	if response.Ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}

	return &discordgo.InteractionResponse{
		Type: responseType(response.Kind),
		Data: data,
	}
}

func responseType(kind domain.ResponseKind) discordgo.InteractionResponseType {
	switch kind {
	case domain.ResponseMessageUpdate:
		return discordgo.InteractionResponseUpdateMessage
	case domain.ResponseDeferredMessageCreate:
		return discordgo.InteractionResponseDeferredChannelMessageWithSource
	case domain.ResponseDeferredMessageUpdate:
		return discordgo.InteractionResponseDeferredMessageUpdate
	case domain.ResponseModal:
		return discordgo.InteractionResponseModal
	default:
		return discordgo.InteractionResponseChannelMessageWithSource
	}
}

func buildComponents(rows []domain.ActionRow) []discordgo.MessageComponent {
	if len(rows) == 0 {
		return nil
	}

	components := make([]discordgo.MessageComponent, 0, len(rows))
	for _, row := range rows {
		built := discordgo.ActionsRow{}
		for _, button := range row.Buttons {
			built.Components = append(built.Components, discordgo.Button{
				CustomID: button.CustomID,
				Label:    button.Label,
				Style:    buttonStyle(button.Style),
				Disabled: button.Disabled,
				URL:      button.URL,
			})
		}
		for _, input := range row.TextInputs {
			built.Components = append(built.Components, discordgo.TextInput{
				CustomID:    input.CustomID,
				Label:       input.Label,
				Style:       textInputStyle(input.Style),
				Placeholder: input.Placeholder,
				Value:       input.Value,
				Required:    input.Required,
				MinLength:   input.MinLength,
				MaxLength:   input.MaxLength,
			})
		}
		components = append(components, built)
	}

	return components
}

func buttonStyle(style domain.ButtonStyle) discordgo.ButtonStyle {
	switch style {
	case domain.ButtonSecondary:
		return discordgo.SecondaryButton
	case domain.ButtonSuccess:
		return discordgo.SuccessButton
	case domain.ButtonDanger:
		return discordgo.DangerButton
	case domain.ButtonLink:
		return discordgo.LinkButton
	default:
		return discordgo.PrimaryButton
	}
}

func textInputStyle(style domain.TextInputStyle) discordgo.TextInputStyle {
	if style == domain.TextInputParagraph {
		return discordgo.TextInputParagraph
	}

	return discordgo.TextInputShort
}

func fromDiscordMessage(message *discordgo.Message) *domain.Message {
	if message == nil {
		return nil
	}

	return &domain.Message{
		ID:        message.ID,
		ChannelID: message.ChannelID,
		Content:   message.Content,
	}
}
