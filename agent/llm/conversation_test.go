package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	contractx "github.com/tanpawarit/Chative-Food-Ordering-Assistant/agent/contract"
	openrouterx "github.com/tanpawarit/Chative-Food-Ordering-Assistant/pkg/openrouter"
)

const completionBody = `{
	"id": "gen-1",
	"object": "chat.completion",
	"created": 1760000000,
	"model": "openai/gpt-4o-mini",
	"choices": [{
		"index": 0,
		"finish_reason": "stop",
		"message": {"role": "assistant", "content": " Try the Chicken Biryani! "}
	}],
	"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
}`

func testConfig(baseURL string) Config {
	return Config{
		Config: openrouterx.Config{
			BaseURL:            baseURL,
			APIKey:             "test-key",
			Model:              "openai/gpt-4o-mini",
			MaxCompletionToken: 128,
			Temperature:        0.2,
			MaxRetries:         0,
		},
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	cfg := testConfig("http://localhost")
	require.NoError(t, cfg.Validate())

	noKey := cfg
	noKey.APIKey = " "
	require.ErrorIs(t, noKey.Validate(), contractx.ErrValidation)

	noModel := cfg
	noModel.Model = ""
	require.ErrorIs(t, noModel.Validate(), contractx.ErrValidation)

	_, err := NewConversationGateway(noKey)
	require.ErrorIs(t, err, contractx.ErrValidation)
}

func TestSendUtterance(t *testing.T) {
	t.Parallel()

	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"), "path %s", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, completionBody)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.SystemPrompt = "be brief"
	gw, err := NewConversationGateway(cfg)
	require.NoError(t, err)

	reply, err := gw.SendUtterance(context.Background(), "what's good?")
	require.NoError(t, err)
	require.Equal(t, "Try the Chicken Biryani!", reply.Response)

	require.Equal(t, "openai/gpt-4o-mini", captured["model"])
	require.EqualValues(t, 128, captured["max_completion_tokens"])
	messages, ok := captured["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
	require.Equal(t, "system", messages[0].(map[string]any)["role"])
	require.Equal(t, "be brief", messages[0].(map[string]any)["content"])
	require.Equal(t, "user", messages[1].(map[string]any)["role"])
	require.Equal(t, "what's good?", messages[1].(map[string]any)["content"])
}

func TestSendUtteranceUsesEmbeddedPrompt(t *testing.T) {
	t.Parallel()

	gw, err := NewConversationGateway(testConfig("http://localhost"))
	require.NoError(t, err)
	require.Contains(t, gw.systemPrompt, "OrderBot")
}

func TestSendUtteranceErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
	}{
		{
			name:       "upstream error",
			status:     http.StatusInternalServerError,
			body:       `{"error": {"message": "boom", "type": "server_error"}}`,
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:   "no choices",
			status: http.StatusOK,
			body:   `{"id": "gen-2", "object": "chat.completion", "created": 1, "model": "m", "choices": []}`,
		},
		{
			name:   "blank content",
			status: http.StatusOK,
			body: `{"id": "gen-3", "object": "chat.completion", "created": 1, "model": "m",
				"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "  "}}]}`,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			gw, err := NewConversationGateway(testConfig(srv.URL))
			require.NoError(t, err)

			_, err = gw.SendUtterance(context.Background(), "hello")
			require.ErrorIs(t, err, contractx.ErrGateway)

			var gwErr *contractx.GatewayError
			require.True(t, errors.As(err, &gwErr))
			require.Equal(t, contractx.GatewayConversation, gwErr.Gateway)
			require.Equal(t, tt.wantStatus, gwErr.StatusCode)
		})
	}
}
