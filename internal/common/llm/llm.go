// Package llm talks to the hosted text-generation provider. Both implementations run the same
// tool-call loop: the model may request tools, the results are appended to the exchange, and the
// model is asked again until it answers in text or the round budget is spent.
package llm

import (
	"context"
	"errors"
	"fmt"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one conversation turn.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Tool describes a function the model may call. Parameters is a JSON schema object.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]interface{}
}

// ToolCaller executes a tool call requested by the model. arguments is the raw JSON object text.
type ToolCaller interface {
	Call(ctx context.Context, name, arguments string) (string, error)
}

// Request is one generation. Model, Temperature and MaxTokens fall back to client defaults.
type Request struct {
	System      string
	Messages    []Message
	Tools       []Tool
	Caller      ToolCaller
	Model       string
	Temperature *float64
	MaxTokens   int
}

// Response is the model's final text.
type Response struct {
	Text      string
	Rounds    int
	ToolCalls int
}

// Client is implemented by OpenAIClient and GeminiClient.
type Client interface {
	Generate(ctx context.Context, req Request) (*Response, error)
}

var ErrEmptyResponse = errors.New("provider returned no choices")

// Float returns a pointer to v, for Request.Temperature.
func Float(v float64) *float64 {
	return &v
}

// toolsEnabled reports whether tools are offered on the given round.
func toolsEnabled(req Request, round, maxRounds int) bool {
	return len(req.Tools) > 0 && req.Caller != nil && round < maxRounds
}

// invokeTool runs a tool and folds failures into the result text the model sees.
func invokeTool(ctx context.Context, caller ToolCaller, name, arguments string) string {
	out, err := caller.Call(ctx, name, arguments)
	if err != nil {
		return fmt.Sprintf("Error: %s", err.Error())
	}
	return out
}
