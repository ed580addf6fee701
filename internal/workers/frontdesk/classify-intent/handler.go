package classifyintent

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"

	"frontdesk-workers/internal/common/camunda"
	"frontdesk-workers/internal/common/errors"
	"frontdesk-workers/internal/common/logger"
	"frontdesk-workers/internal/common/metrics"
	"frontdesk-workers/internal/intent"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "classify-intent"
)

var (
	ErrEmptyUtterance = stderrors.New("EMPTY_UTTERANCE")
)

type Handler struct {
	config     *Config
	classifier intent.Classifier
	responder  *camunda.Responder
	logger     logger.Logger
}

func NewHandler(config *Config, classifier intent.Classifier, log logger.Logger) *Handler {
	scoped := log.With(map[string]interface{}{
		"taskType": TaskType,
	})
	return &Handler{
		config:     config,
		classifier: classifier,
		responder:  camunda.NewResponder(TaskType, scoped),
		logger:     scoped,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.responder.Fail(context.Background(), client, job, errors.NewInputParsingFailedError(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.responder.Fail(context.Background(), client, job, err)
		return
	}

	h.responder.Complete(context.Background(), client, job, output)
}

// Execute is exported for tests and local runs.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if strings.TrimSpace(input.Utterance) == "" {
		return nil, errors.NewValidationFailedError(ErrEmptyUtterance.Error())
	}

	result, err := h.classifier.Classify(ctx, input.Utterance)
	if err != nil {
		if ctx.Err() != nil || stderrors.Is(err, context.DeadlineExceeded) {
			return nil, errors.NewLLMTimeoutError("classify", err)
		}
		return nil, errors.NewIntentClassificationFailedError(fmt.Errorf("classify utterance: %w", err))
	}

	handler := intent.Route(result.Category)
	metrics.IntentsClassified.WithLabelValues(string(result.Category), string(handler)).Inc()

	h.logger.Info("intent classified", map[string]interface{}{
		"callId":   input.CallID,
		"label":    result.Label,
		"category": result.Category,
		"route":    handler,
		"mode":     h.config.Mode,
	})

	return &Output{
		Intent: result.Label,
		Route:  string(handler),
	}, nil
}
