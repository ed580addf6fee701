package workflow

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"frontdesk-workers/internal/common/camunda"
	"frontdesk-workers/internal/common/errors"
	"frontdesk-workers/internal/common/llm"
	"frontdesk-workers/internal/common/logger"
	"frontdesk-workers/internal/common/observability"
	"frontdesk-workers/internal/intent"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// TurnInput becomes the process instance's variables.
type TurnInput struct {
	CallID    string        `json:"callId"`
	Utterance string        `json:"utterance"`
	History   []llm.Message `json:"history"`
}

// TurnResult is read back from the completed instance.
type TurnResult struct {
	Reply      string `json:"reply"`
	Intent     string `json:"intent"`
	Route      string `json:"route"`
	HandledBy  string `json:"handledBy"`
	Department string `json:"department,omitempty"`
	RoutedTo   string `json:"routedTo,omitempty"`

	ErrorCode    string `json:"errorCode,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// ResultVariables are fetched when the instance completes.
var ResultVariables = []string{
	"reply", "intent", "route", "handledBy", "department", "routedTo", "errorCode", "errorMessage",
}

// Executor runs one turn.
type Executor interface {
	Execute(ctx context.Context, in TurnInput) (*TurnResult, error)
}

// TurnExecutor runs a turn as a process instance with result.
type TurnExecutor struct {
	client    zbc.Client
	processID string
	timeout   time.Duration
	tracer    trace.Tracer
	logger    logger.Logger
}

func NewTurnExecutor(client zbc.Client, processID string, timeout time.Duration, tracer trace.Tracer, log logger.Logger) *TurnExecutor {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("")
	}
	return &TurnExecutor{
		client:    client,
		processID: processID,
		timeout:   timeout,
		tracer:    tracer,
		logger:    log,
	}
}

func (e *TurnExecutor) Execute(ctx context.Context, in TurnInput) (result *TurnResult, err error) {
	ctx, span := observability.StartSpan(ctx, e.tracer, "frontdesk.turn", map[string]string{
		"call.id":    in.CallID,
		"process.id": e.processID,
	})
	defer func() { observability.EndSpan(span, err) }()

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	vars, err := EncodeVariables(in)
	if err != nil {
		return nil, err
	}

	cmd, err := e.client.NewCreateInstanceCommand().
		BPMNProcessId(e.processID).
		LatestVersion().
		VariablesFromString(vars)
	if err != nil {
		return nil, errors.NewInputParsingFailedError(err)
	}

	resp, err := cmd.WithResult().FetchVariables(ResultVariables...).Send(ctx)
	if err != nil {
		if stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, errors.NewTimeoutError("zeebe", err)
		}
		return nil, camunda.MapError(err, "create-instance-with-result")
	}

	e.logger.Debug("turn instance completed", map[string]interface{}{
		"callId":               in.CallID,
		"processInstanceKey":   resp.GetProcessInstanceKey(),
		"processDefinitionKey": resp.GetProcessDefinitionKey(),
	})
	return ParseResult(resp.GetVariables())
}

// EncodeVariables renders the instance variables. A nil history is sent as an empty list.
func EncodeVariables(in TurnInput) (string, error) {
	if in.History == nil {
		in.History = []llm.Message{}
	}
	b, err := json.Marshal(in)
	if err != nil {
		return "", errors.NewInputParsingFailedError(err)
	}
	return string(b), nil
}

// ParseResult decodes the fetched variables. An instance that ended without a reply was aborted by
// the error handler and yields TURN_FAILED, as does a reply from a handler outside the known set.
func ParseResult(variables string) (*TurnResult, error) {
	var r TurnResult
	if variables != "" {
		if err := json.Unmarshal([]byte(variables), &r); err != nil {
			return nil, errors.NewInputParsingFailedError(fmt.Errorf("decode turn result: %w", err))
		}
	}
	if r.Reply == "" {
		details := "instance completed without a reply"
		if r.ErrorCode != "" {
			details = fmt.Sprintf("%s: %s", r.ErrorCode, r.ErrorMessage)
		}
		return nil, errors.NewTurnFailedError(details).
			WithMetadata("intent", r.Intent).
			WithMetadata("route", r.Route)
	}
	if r.HandledBy == "" {
		r.HandledBy = r.Route
	}
	if _, ok := intent.ParseHandler(r.HandledBy); !ok {
		return nil, errors.NewTurnFailedError(fmt.Sprintf("reply came from unknown handler %q", r.HandledBy)).
			WithMetadata("intent", r.Intent).
			WithMetadata("route", r.Route)
	}
	return &r, nil
}
