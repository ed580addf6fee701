// Package e2e runs whole turns through a real Zeebe gateway. The language model is a local fake, so
// only the gateway is required. Set FRONTDESK_E2E=1 (and ZEEBE_ADDRESS if not localhost:26500).
package e2e

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"frontdesk-workers/internal/common/camunda"
	"frontdesk-workers/internal/common/errors"
	"frontdesk-workers/internal/common/llm"
	"frontdesk-workers/internal/common/logger"
	"frontdesk-workers/internal/common/observability"
	"frontdesk-workers/internal/directory"
	"frontdesk-workers/internal/intent"
	"frontdesk-workers/internal/prompts"
	"frontdesk-workers/internal/tools"
	"frontdesk-workers/internal/workflow"

	classifyintent "frontdesk-workers/internal/workers/frontdesk/classify-intent"
	"frontdesk-workers/internal/workers/frontdesk/specialist"
)

var (
	zeebeClient zbc.Client
	zapLog      *zap.Logger
)

func TestMain(m *testing.M) {
	if os.Getenv("FRONTDESK_E2E") == "" {
		fmt.Println("skipping e2e tests: FRONTDESK_E2E is not set")
		os.Exit(0)
	}

	address := os.Getenv("ZEEBE_ADDRESS")
	if address == "" {
		address = "localhost:26500"
	}

	var err error
	zeebeClient, err = zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         address,
		UsePlaintextConnection: true,
	})
	if err != nil {
		panic(fmt.Sprintf("failed to connect to Zeebe: %v", err))
	}

	zapLog, _ = zap.NewDevelopment()

	code := m.Run()

	zeebeClient.Close()
	os.Exit(code)
}

// fakeModel answers every chat completion with a fixed reply, or with a 503 when failing.
func fakeModel(t *testing.T, failing bool) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failing {
			http.Error(w, `{"error":{"message":"model unavailable"}}`, http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"c1","object":"chat.completion","created":1,"model":"fake",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"Happy to help with that."}}]}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func startFrontDesk(t *testing.T, processID string, model *httptest.Server) *workflow.TurnExecutor {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	log := logger.NewZapAdapter(zapLog)

	graph := workflow.FrontDesk(processID)
	_, err := workflow.Deploy(ctx, zeebeClient, graph)
	require.NoError(t, err, "deploy")

	obs, err := observability.New(observability.Options{ServiceName: "frontdesk-e2e"})
	require.NoError(t, err)
	t.Cleanup(obs.Shutdown)

	dir := directory.Default()
	client := llm.NewOpenAIClient(llm.OpenAIConfig{BaseURL: model.URL, APIKey: "e2e", Model: "fake", MaxToolRounds: 2})
	book, err := prompts.NewBook(prompts.Params{
		CompanyName:   "Brain Station 23",
		AssistantName: "Sabnam",
		Greeting:      "Thank you for calling Brain Station 23.",
		CareersEmail:  "careers@brainstation-23.com",
		Routing: prompts.AdminRouting{
			Finance:    "finance@brainstation-23.com",
			Compliance: "legal@brainstation-23.com",
			General:    "admin@brainstation-23.com",
		},
	})
	require.NoError(t, err)
	registry, err := tools.NewStandardRegistry(tools.NewLookup(dir), tools.NewCommunicator(tools.NewLogMailer(log), log), log)
	require.NoError(t, err)

	workers := camunda.NewRegistry(zeebeClient, obs, log)
	t.Cleanup(workers.Close)

	opts := func(taskType string) camunda.WorkerOptions {
		return camunda.WorkerOptions{TaskType: taskType, MaxJobsActive: 4, Timeout: 10 * time.Second}
	}
	classifier := intent.NewKeywordClassifier(dir)
	require.NoError(t, workers.Start(opts(classifyintent.TaskType),
		classifyintent.NewHandler(&classifyintent.Config{Timeout: 5 * time.Second, Mode: "keyword"}, classifier, log)))

	for _, h := range intent.Handlers() {
		handler, err := specialist.NewHandler(h, &specialist.Config{Timeout: 5 * time.Second, Temperature: 0.2, MaxTokens: 200}, client, book, registry, log)
		require.NoError(t, err)
		require.NoError(t, workers.Start(opts(handler.TaskType()), handler))
	}

	return workflow.NewTurnExecutor(zeebeClient, processID, 30*time.Second, obs.Tracer(), log)
}

func TestTurnRouting(t *testing.T) {
	model := fakeModel(t, false)
	executor := startFrontDesk(t, "frontdesk-e2e-routing", model)

	tests := []struct {
		utterance      string
		wantHandler    string
		wantDepartment string
	}{
		{"What are your office hours?", "company_specialist", ""},
		{"Can I speak to John Doe?", "employee_specialist", ""},
		{"Are you hiring developers?", "job_specialist", ""},
		{"We want a quote for a new project", "project_specialist", ""},
		{"I have a billing question", "admin_specialist", "finance"},
		{"Good morning!", "general_receptionist", ""},
	}

	for _, tt := range tests {
		t.Run(tt.wantHandler, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			result, err := executor.Execute(ctx, workflow.TurnInput{
				CallID:    "e2e-" + strings.ReplaceAll(tt.wantHandler, "_", "-"),
				Utterance: tt.utterance,
				History:   []llm.Message{{Role: llm.RoleUser, Content: tt.utterance}},
			})
			require.NoError(t, err)
			assert.Equal(t, "Happy to help with that.", result.Reply)
			assert.Equal(t, tt.wantHandler, result.HandledBy)
			assert.Equal(t, tt.wantDepartment, result.Department)
		})
	}
}

func TestTurnFailsWhenModelIsDown(t *testing.T) {
	model := fakeModel(t, true)
	executor := startFrontDesk(t, "frontdesk-e2e-failure", model)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, err := executor.Execute(ctx, workflow.TurnInput{CallID: "e2e-failure", Utterance: "What are your office hours?"})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeTurnFailed), err.Error())
}
