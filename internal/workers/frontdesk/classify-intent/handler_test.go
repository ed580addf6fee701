package classifyintent

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"frontdesk-workers/internal/common/config"
	"frontdesk-workers/internal/common/errors"
	"frontdesk-workers/internal/common/llm"
	"frontdesk-workers/internal/common/logger"
	"frontdesk-workers/internal/directory"
	"frontdesk-workers/internal/intent"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func completion(content string) string {
	return fmt.Sprintf(`{"id":"c1","object":"chat.completion","created":1,"model":"test-model",
		"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":%q}}]}`, content)
}

func newLLMServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestHandler(t *testing.T, classifier intent.Classifier) *Handler {
	return NewHandler(
		&Config{Timeout: 5 * time.Second, Mode: config.ClassifierModeLLM},
		classifier,
		logger.NewZapAdapter(zaptest.NewLogger(t)),
	)
}

func llmClassifier(srv *httptest.Server) intent.Classifier {
	client := llm.NewOpenAIClient(llm.OpenAIConfig{
		BaseURL: srv.URL,
		APIKey:  "test-key",
		Model:   "test-model",
	})
	return intent.NewLLMClassifier(client, "")
}

func TestHandler_Execute_LLM(t *testing.T) {
	tests := []struct {
		name       string
		reply      string
		wantIntent string
		wantRoute  string
	}{
		{"employee", "EMPLOYEE", "EMPLOYEE", "employee_specialist"},
		{"company lower case", " company\n", "COMPANY", "company_specialist"},
		{"job", "JOB", "JOB", "job_specialist"},
		{"admin", "ADMIN", "ADMIN", "admin_specialist"},
		{"general", "GENERAL", "GENERAL", "general_receptionist"},
		{"unrecognized label", "SALES", "SALES", "general_receptionist"},
		{"empty label", "", "", "general_receptionist"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newLLMServer(t, http.StatusOK, completion(tt.reply))
			h := newTestHandler(t, llmClassifier(srv))

			out, err := h.Execute(context.Background(), &Input{CallID: "call-1", Utterance: "Can I speak to John?"})
			require.NoError(t, err)
			assert.Equal(t, tt.wantIntent, out.Intent)
			assert.Equal(t, tt.wantRoute, out.Route)
		})
	}
}

func TestHandler_Execute_EmptyUtterance(t *testing.T) {
	h := newTestHandler(t, intent.NewKeywordClassifier(nil))

	_, err := h.Execute(context.Background(), &Input{CallID: "call-1", Utterance: "   "})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeValidationFailed))
}

func TestHandler_Execute_ProviderError(t *testing.T) {
	srv := newLLMServer(t, http.StatusInternalServerError, `{"error":{"message":"upstream down"}}`)
	h := newTestHandler(t, llmClassifier(srv))

	_, err := h.Execute(context.Background(), &Input{CallID: "call-1", Utterance: "hello"})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeIntentClassificationFailed))
}

func TestHandler_Execute_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)
	h := newTestHandler(t, llmClassifier(srv))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := h.Execute(ctx, &Input{CallID: "call-1", Utterance: "hello"})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeLLMTimeout))
}

func TestHandler_Execute_KeywordMode(t *testing.T) {
	h := NewHandler(
		&Config{Timeout: time.Second, Mode: config.ClassifierModeKeyword},
		intent.NewKeywordClassifier(directory.Default()),
		logger.NewNoOpLogger(),
	)

	out, err := h.Execute(context.Background(), &Input{CallID: "call-1", Utterance: "Are there any open positions for developers?"})
	require.NoError(t, err)
	assert.Equal(t, "JOB", out.Intent)
	assert.Equal(t, "job_specialist", out.Route)
}

func TestLoadConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Classifier.Mode = config.ClassifierModeKeyword
	c := LoadConfig(cfg)
	assert.Equal(t, 30*time.Second, c.Timeout)
	assert.Equal(t, config.ClassifierModeKeyword, c.Mode)

	cfg.LLM.Timeout = 1500
	assert.Equal(t, 1500*time.Millisecond, LoadConfig(cfg).Timeout)
}
