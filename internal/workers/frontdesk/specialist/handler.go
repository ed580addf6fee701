// Package specialist implements the answering step of a turn. One Handler is registered per
// intent.Handler; the handler picks the instruction template and tool set.
package specialist

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"

	"frontdesk-workers/internal/common/camunda"
	"frontdesk-workers/internal/common/errors"
	"frontdesk-workers/internal/common/llm"
	"frontdesk-workers/internal/common/logger"
	"frontdesk-workers/internal/intent"
	"frontdesk-workers/internal/prompts"
	"frontdesk-workers/internal/tools"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

var (
	ErrEmptyUtterance = stderrors.New("EMPTY_UTTERANCE")
	ErrEmptyReply     = stderrors.New("EMPTY_REPLY")
)

type Handler struct {
	handler   intent.Handler
	config    *Config
	client    llm.Client
	book      *prompts.Book
	tools     *tools.Set
	responder *camunda.Responder
	logger    logger.Logger
}

func NewHandler(
	h intent.Handler,
	config *Config,
	client llm.Client,
	book *prompts.Book,
	registry *tools.Registry,
	log logger.Logger,
) (*Handler, error) {
	set, err := registry.Set(tools.ForHandler(h)...)
	if err != nil {
		return nil, fmt.Errorf("tool set for %s: %w", h, err)
	}

	scoped := log.With(map[string]interface{}{
		"taskType": h.TaskType(),
	})
	return &Handler{
		handler:   h,
		config:    config,
		client:    client,
		book:      book,
		tools:     set,
		responder: camunda.NewResponder(h.TaskType(), scoped),
		logger:    scoped,
	}, nil
}

// TaskType is the job type this handler is registered under.
func (h *Handler) TaskType() string {
	return h.handler.TaskType()
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

	prompt, err := h.book.Instruction(h.handler, input.Utterance)
	if err != nil {
		return nil, errors.NewLLMGenerationFailedError(string(h.handler), err)
	}

	req := llm.Request{
		System:      prompt.Text,
		Messages:    conversation(input.History, input.Utterance),
		Temperature: llm.Float(h.config.Temperature),
		MaxTokens:   h.config.MaxTokens,
	}
	if toolset := h.tools.Tools(); len(toolset) > 0 {
		req.Tools = toolset
		req.Caller = h.tools
	}

	resp, err := h.client.Generate(ctx, req)
	if err != nil {
		if ctx.Err() != nil || stderrors.Is(err, context.DeadlineExceeded) {
			return nil, errors.NewLLMTimeoutError(string(h.handler), err)
		}
		return nil, errors.NewLLMGenerationFailedError(string(h.handler), err)
	}
	if strings.TrimSpace(resp.Text) == "" {
		return nil, errors.NewLLMGenerationFailedError(string(h.handler), ErrEmptyReply)
	}

	h.logger.Info("reply generated", map[string]interface{}{
		"callId":     input.CallID,
		"rounds":     resp.Rounds,
		"toolCalls":  resp.ToolCalls,
		"department": prompt.Department,
	})

	return &Output{
		Reply:      resp.Text,
		HandledBy:  string(h.handler),
		Department: string(prompt.Department),
		RoutedTo:   prompt.RoutedTo,
	}, nil
}

// conversation returns the history with the utterance as the final user turn. The session store
// usually appends the utterance before the turn starts, in which case it is not repeated.
func conversation(history []llm.Message, utterance string) []llm.Message {
	messages := make([]llm.Message, 0, len(history)+1)
	messages = append(messages, history...)
	if n := len(messages); n > 0 && messages[n-1].Role == llm.RoleUser && messages[n-1].Content == utterance {
		return messages
	}
	return append(messages, llm.Message{Role: llm.RoleUser, Content: utterance})
}
