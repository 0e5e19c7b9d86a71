package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"os/signal"

	"huginn/internal/adapters/handler"
	"huginn/internal/adapters/sender"
	"huginn/internal/core/domain"
	"huginn/internal/core/service"
	"huginn/internal/core/timeout"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

func main() {
	log.Info().Msg("starting huginn...")

	viper.AddConfigPath(".")
	viper.SetConfigType("toml")

	log.Info().Msg("reading config file...")
	err := viper.ReadInConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("could not read config file")
	}

	var logLevel zerolog.Level

	switch viper.GetString("bot.log_level") {
	case "info":
		logLevel = zerolog.InfoLevel
	case "debug":
		logLevel = zerolog.DebugLevel
	default:
		logLevel = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(logLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	session, err := discordgo.New("Bot " + viper.GetString("discord.bot_token"))
	if err != nil {
		log.Panic().Err(err).Msg("failed initializing discord session")
	}

	discordSender := sender.NewDiscordSender(session, viper.GetString("discord.app_id"))

	components := service.NewComponentClient(discordSender)
	modals := service.NewModalClient(discordSender)

	if err := registerFeedback(components, modals); err != nil {
		log.Panic().Err(err).Msg("failed registering feedback handlers")
	}

	components.Open()
	modals.Open()
	defer components.Close()
	defer modals.Close()

	gateway := handler.NewGateway(components, modals)
	detach := gateway.Attach(session)
	defer detach()

	if err := session.Open(); err != nil {
		log.Panic().Err(err).Msg("failed opening gateway connection")
	}
	defer session.Close()

	if addr := viper.GetString("server.listen_addr"); addr != "" {
		publicKey, err := hex.DecodeString(viper.GetString("discord.public_key"))
		if err != nil {
			log.Panic().Err(err).Msg("invalid discord public key in config")
		}

		server := handler.NewHTTPServer(components, modals, publicKey)
		go func() {
			log.Info().Str("addr", addr).Msg("interaction server listening")
			if err := http.ListenAndServe(addr, server.Router()); err != nil {
				log.Fatal().Err(err).Msg("interaction server failed")
			}
		}()
	}

	log.Info().Msg("bot listening")
	<-ctx.Done()
}

// registerFeedback wires the sample feedback flow: a permanent button that
// opens a modal whose submission id carries the pressing user as metadata.
func registerFeedback(components *service.ComponentClient, modals *service.ModalClient) error {
	feedbackModal := service.NewModal(
		func(ctx context.Context, ictx *service.Context, fields map[string]string) error {
			_, metadata := domain.SplitCustomID(ictx.Interaction().CustomID)
			log.Info().Str("user", metadata).Str("topic", fields["topic"]).Msg("received feedback")

			_, err := ictx.Respond(ctx, &domain.Response{
				Content:   fmt.Sprintf("Thanks for your feedback on %q!", fields["topic"]),
				Ephemeral: true,
			})
			return err
		},
		service.OptionalTextField("topic", "Topic", "topic", "general"),
		service.TextField("details", "Details", "details"),
	)

	executor := service.NewComponentExecutor()
	err := executor.AddCallback("feedback", func(ctx context.Context, ictx *service.Context) error {
		return ictx.CreateInitialResponse(ctx, feedbackModal.BuildResponse(
			"feedback"+domain.CustomIDSeparator+ictx.Interaction().UserID,
			"Send feedback",
		))
	})
	if err != nil {
		return err
	}

	if _, err := components.Register("feedback", executor, timeout.Never{}, false); err != nil {
		return err
	}

	if _, err := modals.Register("feedback", feedbackModal, timeout.Never{}, true); err != nil {
		return err
	}

	return nil
}
