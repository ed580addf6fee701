package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"frontdesk-workers/internal/common/errors"
	"frontdesk-workers/internal/common/llm"
	"frontdesk-workers/internal/common/logger"
	"frontdesk-workers/internal/common/metrics"
	"frontdesk-workers/internal/workflow"

	"github.com/google/uuid"
)

// Runtime drives calls: it owns the history and runs one workflow turn per caller utterance.
type Runtime struct {
	store       Store
	executor    workflow.Executor
	greeting    string
	logger      logger.Logger
	newID       func() string
	now         func() time.Time
	idleTimeout time.Duration

	mu   sync.Mutex
	open map[string]time.Time
}

type RuntimeOption func(*Runtime)

// WithIdleTimeout stops counting a call as open once it has been idle this long. It should match the
// history TTL, after which the store has forgotten the call anyway.
func WithIdleTimeout(d time.Duration) RuntimeOption {
	return func(r *Runtime) { r.idleTimeout = d }
}

func WithRuntimeClock(now func() time.Time) RuntimeOption {
	return func(r *Runtime) { r.now = now }
}

func NewRuntime(store Store, executor workflow.Executor, greeting string, log logger.Logger, opts ...RuntimeOption) *Runtime {
	r := &Runtime{
		store:    store,
		executor: executor,
		greeting: greeting,
		logger:   log,
		newID:    uuid.NewString,
		now:      time.Now,
		open:     make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Greeting is the opening line spoken when a call connects.
func (r *Runtime) Greeting() string {
	return r.greeting
}

// StartCall opens a call and records the greeting as the first assistant turn.
func (r *Runtime) StartCall(ctx context.Context) (string, error) {
	callID := r.newID()
	if err := r.store.Create(ctx, callID, llm.Message{Role: llm.RoleAssistant, Content: r.greeting}); err != nil {
		return "", err
	}
	r.touch(callID)
	r.logger.Info("call started", map[string]interface{}{
		"callId": callID,
	})
	return callID, nil
}

// HandleUtterance runs one turn. The caller's text is kept in the history even when the turn fails,
// so the next turn sees what was asked.
func (r *Runtime) HandleUtterance(ctx context.Context, callID, text string) (*workflow.TurnResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.NewValidationFailedError("text is required")
	}

	start := time.Now()
	result, err := r.turn(ctx, callID, text)
	if errors.HasCode(err, errors.ErrCodeSessionNotFound) {
		r.forget(callID)
	} else {
		r.refresh(callID)
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.TurnDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())

	if err != nil {
		r.logger.Error("turn failed", map[string]interface{}{
			"callId": callID,
			"error":  err.Error(),
		})
		return nil, err
	}

	r.logger.Info("turn completed", map[string]interface{}{
		"callId":    callID,
		"intent":    result.Intent,
		"handledBy": result.HandledBy,
		"duration":  time.Since(start).String(),
	})
	return result, nil
}

func (r *Runtime) turn(ctx context.Context, callID, text string) (*workflow.TurnResult, error) {
	user := llm.Message{Role: llm.RoleUser, Content: text}
	if err := r.store.Append(ctx, callID, user); err != nil {
		return nil, err
	}
	history, err := r.store.History(ctx, callID)
	if err != nil {
		return nil, err
	}

	result, err := r.executor.Execute(ctx, workflow.TurnInput{
		CallID:    callID,
		Utterance: text,
		History:   history,
	})
	if err != nil {
		return nil, err
	}

	if err := r.store.Append(ctx, callID, llm.Message{Role: llm.RoleAssistant, Content: result.Reply}); err != nil {
		return nil, err
	}
	return result, nil
}

// EndCall drops the call's history.
func (r *Runtime) EndCall(ctx context.Context, callID string) error {
	err := r.store.Delete(ctx, callID)
	if err != nil && !errors.HasCode(err, errors.ErrCodeSessionNotFound) {
		return err
	}
	r.forget(callID)
	if err != nil {
		return err
	}
	r.logger.Info("call ended", map[string]interface{}{
		"callId": callID,
	})
	return nil
}

// OpenCalls reports the calls this instance started that have neither ended nor gone idle.
func (r *Runtime) OpenCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pruneLocked()
	return len(r.open)
}

// touch counts a call started on this instance as open.
func (r *Runtime) touch(callID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.open[callID] = r.now()
	r.pruneLocked()
}

// refresh extends an open call's idle window. Calls started elsewhere are left uncounted.
func (r *Runtime) refresh(callID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.open[callID]; ok {
		r.open[callID] = r.now()
	}
	r.pruneLocked()
}

func (r *Runtime) forget(callID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.open, callID)
	r.pruneLocked()
}

func (r *Runtime) pruneLocked() {
	if r.idleTimeout > 0 {
		cutoff := r.now().Add(-r.idleTimeout)
		for id, seen := range r.open {
			if seen.Before(cutoff) {
				delete(r.open, id)
			}
		}
	}
	metrics.ActiveCalls.Set(float64(len(r.open)))
}
