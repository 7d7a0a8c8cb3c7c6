package ai

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/support-bot/internal/config"
)

func testConfig(baseURL string) config.AIConfig {
	return config.AIConfig{
		APIKey:         "test-key",
		BaseURL:        baseURL,
		Model:          "test-model",
		TimeoutSeconds: 5,
	}
}

func TestNewClientWithoutKeyIsAbsent(t *testing.T) {
	assert.Nil(t, NewClient(config.AIConfig{}, zap.NewNop()))
	assert.Nil(t, NewClient(config.AIConfig{APIKey: "   "}, zap.NewNop()))
}

func TestGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Nokia 1280 - 1100 гр."}}]}`))
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), zap.NewNop())
	require.NotNil(t, client)

	out, err := client.Generate(context.Background(), "system", "user")
	require.NoError(t, err)
	assert.Equal(t, "Nokia 1280 - 1100 гр.", out)
}

func TestGenerateNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), zap.NewNop())

	_, err := client.Generate(context.Background(), "system", "user")
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusTooManyRequests, statusErr.Status)
}

func TestGenerateMalformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), zap.NewNop())

	_, err := client.Generate(context.Background(), "system", "user")
	assert.True(t, errors.Is(err, ErrMalformed))
}

func TestGenerateEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), zap.NewNop())

	_, err := client.Generate(context.Background(), "system", "user")
	assert.True(t, errors.Is(err, ErrMalformed))
}
