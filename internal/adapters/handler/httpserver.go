package handler

import (
	"crypto/ed25519"
	"encoding/json"
	"net/http"

	"huginn/internal/adapters/sender"
	"huginn/internal/core/domain"
	"huginn/internal/core/service"

	"github.com/bwmarrin/discordgo"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// HTTPServer is the pull-mode ingress: the platform posts interactions to an
// endpoint and blocks on the response body.
type HTTPServer struct {
	components *service.ComponentClient
	modals     *service.ModalClient
	publicKey  ed25519.PublicKey
}

func NewHTTPServer(components *service.ComponentClient, modals *service.ModalClient, publicKey ed25519.PublicKey) *HTTPServer {
	return &HTTPServer{components: components, modals: modals, publicKey: publicKey}
}

// Router builds the chi router serving the interactions endpoint alongside
// metrics and health.
func (s *HTTPServer) Router() chi.Router {
	r := chi.NewRouter()
	r.Post("/interactions", s.handleInteraction)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return r
}

func (s *HTTPServer) handleInteraction(w http.ResponseWriter, r *http.Request) {
	if !discordgo.VerifyInteraction(r, s.publicKey) {
		log.Warn().Str("remote", r.RemoteAddr).Msg("rejecting interaction with invalid signature")
		http.Error(w, "invalid request signature", http.StatusUnauthorized)
		return
	}

	var interaction discordgo.Interaction
	if err := json.NewDecoder(r.Body).Decode(&interaction); err != nil {
		log.Warn().Err(err).Msg("failed to decode interaction payload")
		http.Error(w, "malformed interaction payload", http.StatusBadRequest)
		return
	}

	if interaction.Type == discordgo.InteractionPing {
		writeResponse(w, &discordgo.InteractionResponse{Type: discordgo.InteractionResponsePong})
		return
	}

	converted, ok := fromDiscordInteraction(&interaction)
	if !ok {
		http.Error(w, "unsupported interaction type", http.StatusBadRequest)
		return
	}

	log.Debug().Str("customID", converted.CustomID).Str("kind", string(converted.Kind)).
		Msg("received http interaction")

	var response *domain.Response
	var err error
	switch converted.Kind {
	case domain.KindComponent:
		response, err = s.components.OnHTTPRequest(r.Context(), converted)
	case domain.KindModalSubmit:
		response, err = s.modals.OnHTTPRequest(r.Context(), converted)
	}

	if err != nil {
		log.Err(err).Str("customID", converted.CustomID).Msg("failed to handle interaction")
		http.Error(w, "failed to handle interaction", http.StatusInternalServerError)
		return
	}

	writeResponse(w, sender.BuildInteractionResponse(response))
}

func writeResponse(w http.ResponseWriter, response *discordgo.InteractionResponse) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Err(err).Msg("failed to write interaction response")
	}
}
