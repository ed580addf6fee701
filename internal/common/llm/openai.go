package llm

import (
	"context"
	"net/http"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIConfig configures an OpenAI-compatible chat completions endpoint (OpenAI, Groq, ...).
type OpenAIConfig struct {
	BaseURL       string
	APIKey        string
	Model         string
	Temperature   float64
	MaxTokens     int
	MaxToolRounds int
	Timeout       time.Duration
	HTTPClient    *http.Client
}

type OpenAIClient struct {
	client openai.Client
	cfg    OpenAIConfig
}

// NewOpenAIClient builds a client with SDK retries disabled; a failed call fails the turn.
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	return &OpenAIClient{
		client: openai.NewClient(opts...),
		cfg:    cfg,
	}
}

func (c *OpenAIClient) Generate(ctx context.Context, req Request) (*Response, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	for _, m := range req.Messages {
		if m.Role == RoleAssistant {
			messages = append(messages, openai.AssistantMessage(m.Content))
		} else {
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}

	model := req.Model
	if model == "" {
		model = c.cfg.Model
	}
	params := openai.ChatCompletionNewParams{
		Messages: messages,
		Model:    openai.ChatModel(model),
	}

	temperature := c.cfg.Temperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	params.Temperature = openai.Float(temperature)

	maxTokens := c.cfg.MaxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}
	if maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(maxTokens))
	}

	tools := openAITools(req.Tools)
	resp := &Response{}

	for round := 0; ; round++ {
		if toolsEnabled(req, round, c.cfg.MaxToolRounds) {
			params.Tools = tools
		} else {
			params.Tools = nil
		}

		completion, err := c.client.Chat.Completions.New(ctx, params)
		if err != nil {
			return nil, err
		}
		resp.Rounds++

		if len(completion.Choices) == 0 {
			return nil, ErrEmptyResponse
		}
		msg := completion.Choices[0].Message

		if len(msg.ToolCalls) == 0 || params.Tools == nil {
			resp.Text = msg.Content
			return resp, nil
		}

		params.Messages = append(params.Messages, msg.ToParam())
		for _, call := range msg.ToolCalls {
			result := invokeTool(ctx, req.Caller, call.Function.Name, call.Function.Arguments)
			params.Messages = append(params.Messages, openai.ToolMessage(result, call.ID))
			resp.ToolCalls++
		}
	}
}

func openAITools(tools []Tool) []openai.ChatCompletionToolUnionParam {
	if len(tools) == 0 {
		return nil
	}
	out := make([]openai.ChatCompletionToolUnionParam, 0, len(tools))
	for _, t := range tools {
		out = append(out, openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
			Name:        t.Name,
			Description: openai.String(t.Description),
			Parameters:  openai.FunctionParameters(t.Parameters),
		}))
	}
	return out
}
