package handler

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"huginn/internal/core/domain"
	"huginn/internal/core/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopSender struct{}

func (nopSender) CreateInitialResponse(context.Context, string, string, *domain.Response) error {
	return nil
}

func (nopSender) EditInitialResponse(context.Context, string, *domain.Response) (*domain.Message, error) {
	return nil, nil
}

func (nopSender) DeleteInitialResponse(context.Context, string) error { return nil }

func (nopSender) CreateFollowup(context.Context, string, *domain.Response) (*domain.Message, error) {
	return nil, nil
}

type wireResponse struct {
	Type int `json:"type"`
	Data struct {
		Content string `json:"content"`
		Flags   int    `json:"flags"`
	} `json:"data"`
}

func newTestServer(t *testing.T) (*HTTPServer, ed25519.PrivateKey) {
	t.Helper()

	publicKey, privateKey, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	components := service.NewComponentClient(nopSender{})
	modals := service.NewModalClient(nopSender{})

	executor := service.NewComponentExecutor()
	require.NoError(t, executor.AddCallback("ping", func(ctx context.Context, ictx *service.Context) error {
		return ictx.CreateInitialResponse(ctx, &domain.Response{Content: "pong"})
	}))
	_, err = components.Register("ping", executor, nil, false)
	require.NoError(t, err)

	modal := service.NewModal(func(ctx context.Context, ictx *service.Context, fields map[string]string) error {
		return ictx.CreateInitialResponse(ctx, &domain.Response{Content: "got " + fields["topic"], Ephemeral: true})
	}, service.OptionalTextField("topic", "Topic", "topic", "general"))
	_, err = modals.Register("form", modal, nil, true)
	require.NoError(t, err)

	return NewHTTPServer(components, modals, publicKey), privateKey
}

func signedRequest(t *testing.T, privateKey ed25519.PrivateKey, body string) *http.Request {
	t.Helper()

	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	signature := ed25519.Sign(privateKey, append([]byte(timestamp), body...))

	req := httptest.NewRequest(http.MethodPost, "/interactions", bytes.NewReader([]byte(body)))
	req.Header.Set("X-Signature-Ed25519", hex.EncodeToString(signature))
	req.Header.Set("X-Signature-Timestamp", timestamp)

	return req
}

func serve(t *testing.T, server *HTTPServer, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()

	recorder := httptest.NewRecorder()
	server.Router().ServeHTTP(recorder, req)
	return recorder
}

func TestHTTPServerRejectsBadSignature(t *testing.T) {
	server, _ := newTestServer(t)

	_, wrongKey, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	recorder := serve(t, server, signedRequest(t, wrongKey, `{"id":"1","type":1}`))
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestHTTPServerPong(t *testing.T) {
	server, privateKey := newTestServer(t)

	recorder := serve(t, server, signedRequest(t, privateKey, `{"id":"1","type":1}`))
	require.Equal(t, http.StatusOK, recorder.Code)

	var response wireResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(t, 1, response.Type)
}

func TestHTTPServerRoutesComponent(t *testing.T) {
	server, privateKey := newTestServer(t)

	body := `{"id":"1","token":"tok","type":3,"data":{"custom_id":"ping:meta","component_type":2}}`
	recorder := serve(t, server, signedRequest(t, privateKey, body))
	require.Equal(t, http.StatusOK, recorder.Code)

	var response wireResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(t, 4, response.Type)
	assert.Equal(t, "pong", response.Data.Content)
}

func TestHTTPServerRoutesModalSubmit(t *testing.T) {
	server, privateKey := newTestServer(t)

	body := `{"id":"1","token":"tok","type":5,"data":{"custom_id":"form-77","components":[` +
		`{"type":1,"components":[{"type":4,"custom_id":"topic","value":"bugs"}]}]}}`
	recorder := serve(t, server, signedRequest(t, privateKey, body))
	require.Equal(t, http.StatusOK, recorder.Code)

	var response wireResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(t, 4, response.Type)
	assert.Equal(t, "got bugs", response.Data.Content)
	assert.Equal(t, 64, response.Data.Flags)
}

func TestHTTPServerUnknownIDTimesOut(t *testing.T) {
	server, privateKey := newTestServer(t)

	body := `{"id":"1","token":"tok","type":3,"data":{"custom_id":"ghost","component_type":2}}`
	recorder := serve(t, server, signedRequest(t, privateKey, body))
	require.Equal(t, http.StatusOK, recorder.Code)

	var response wireResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(t, "This message has timed-out.", response.Data.Content)
	assert.Equal(t, 64, response.Data.Flags)
}

func TestHTTPServerHealthz(t *testing.T) {
	server, _ := newTestServer(t)

	recorder := serve(t, server, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, recorder.Code)
}
