package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/gastos/internal/common"
	"github.com/Veraticus/gastos/internal/service"
)

func TestNewOpenAIClient(t *testing.T) {
	_, err := newOpenAIClient(Config{})
	require.ErrorIs(t, err, common.ErrMissingConfig)

	client, err := newOpenAIClient(Config{APIKey: "test-key", BaseURL: "http://localhost:1234/v1/"})
	require.NoError(t, err)
	c := client.(*openAIClient)
	assert.Equal(t, DefaultOpenAIModel, c.model)
	assert.Equal(t, "http://localhost:1234/v1", c.baseURL)
}

func TestOpenAIClient_Generate(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"[]"},"index":0}]}`))
	}))
	defer server.Close()

	client, err := newOpenAIClient(Config{APIKey: "test-key", BaseURL: server.URL + "/v1", Model: "local-model"})
	require.NoError(t, err)

	text, err := client.Generate(context.Background(), Request{Prompt: "hola"})
	require.NoError(t, err)
	assert.Equal(t, "[]", text)
	assert.Equal(t, "local-model", gotBody["model"])
}

func TestOpenAIClient_StatusErrors(t *testing.T) {
	status := http.StatusInternalServerError
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"error":"boom"}`))
	}))
	defer server.Close()

	client, err := newOpenAIClient(Config{APIKey: "k", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), Request{Prompt: "x"})
	require.Error(t, err)
	assert.True(t, common.IsRetryable(err))

	status = http.StatusUnauthorized
	_, err = client.Generate(context.Background(), Request{Prompt: "x"})
	require.Error(t, err)
	assert.False(t, common.IsRetryable(err))
}

func TestOpenAIClient_RejectsAttachments(t *testing.T) {
	client, err := newOpenAIClient(Config{APIKey: "k"})
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), Request{
		Prompt:     "x",
		Attachment: &service.Document{MIMEType: "application/pdf"},
	})
	require.Error(t, err)
	assert.False(t, common.IsRetryable(err))
}

func TestExtractor_OverOpenAI(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"[{\"date\":\"2024-01-05\",\"concept\":\"Luz\",\"amount\":\"40,10\",\"category\":\"Luz\"}]"}}]}`))
	}))
	defer server.Close()

	cfg := fastRetry()
	cfg.Provider = ProviderOpenAI
	cfg.APIKey = "k"
	cfg.BaseURL = server.URL

	extractor, err := New(context.Background(), cfg)
	require.NoError(t, err)

	records, err := extractor.Extract(context.Background(), statement, []string{"Luz"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, service.RawAmount("40,10"), records[0].Amount)
	assert.Equal(t, 2, calls)
}

func TestNewClient_UnsupportedProvider(t *testing.T) {
	_, err := NewClient(context.Background(), Config{Provider: "anthropic", APIKey: "k"})
	require.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestNewClient_GeminiRequiresKey(t *testing.T) {
	_, err := NewClient(context.Background(), Config{Provider: ProviderGemini})
	require.ErrorIs(t, err, common.ErrMissingConfig)
}
