package handler

import (
	"context"

	"huginn/internal/core/domain"
	"huginn/internal/core/service"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// Gateway routes push-delivered interaction create events from the platform
// event stream to the component and modal clients.
type Gateway struct {
	components *service.ComponentClient
	modals     *service.ModalClient
}

func NewGateway(components *service.ComponentClient, modals *service.ModalClient) *Gateway {
	return &Gateway{components: components, modals: modals}
}

// Attach subscribes the gateway to a session's interaction events and
// returns the unsubscribe function.
func (g *Gateway) Attach(session *discordgo.Session) func() {
	return session.AddHandler(g.handle)
}

func (g *Gateway) handle(_ *discordgo.Session, event *discordgo.InteractionCreate) {
	interaction, ok := fromDiscordInteraction(event.Interaction)
	if !ok {
		return
	}

	log.Debug().Str("customID", interaction.CustomID).Str("kind", string(interaction.Kind)).
		Msg("received gateway interaction")

	ctx := context.Background()

	var err error
	switch interaction.Kind {
	case domain.KindComponent:
		err = g.components.OnGatewayEvent(ctx, interaction)
	case domain.KindModalSubmit:
		err = g.modals.OnGatewayEvent(ctx, interaction)
	}

	if err != nil {
		log.Err(err).Str("customID", interaction.CustomID).Msg("failed to handle interaction")
	}
}

func fromDiscordInteraction(interaction *discordgo.Interaction) (*domain.Interaction, bool) {
	converted := &domain.Interaction{
		ID:        interaction.ID,
		Token:     interaction.Token,
		ChannelID: interaction.ChannelID,
		GuildID:   interaction.GuildID,
	}

	if interaction.Member != nil && interaction.Member.User != nil {
		converted.UserID = interaction.Member.User.ID
	} else if interaction.User != nil {
		converted.UserID = interaction.User.ID
	}

	if interaction.Message != nil {
		converted.MessageID = interaction.Message.ID
	}

	switch interaction.Type {
	case discordgo.InteractionMessageComponent:
		converted.Kind = domain.KindComponent
		converted.CustomID = interaction.MessageComponentData().CustomID
	case discordgo.InteractionModalSubmit:
		data := interaction.ModalSubmitData()
		converted.Kind = domain.KindModalSubmit
		converted.CustomID = data.CustomID
		converted.Fields = flattenModalFields(data.Components)
	default:
		return nil, false
	}

	return converted, true
}

func flattenModalFields(rows []discordgo.MessageComponent) []domain.Field {
	var fields []domain.Field
	for _, row := range rows {
		actionsRow, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}

		for _, component := range actionsRow.Components {
			input, ok := component.(*discordgo.TextInput)
			if !ok {
				continue
			}

			fields = append(fields, domain.Field{
				CustomID: input.CustomID,
				Type:     domain.FieldTypeText,
				Value:    input.Value,
			})
		}
	}

	return fields
}
