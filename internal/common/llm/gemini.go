package llm

import (
	"context"
	"encoding/json"
	"time"

	"google.golang.org/genai"
)

// GeminiConfig configures the Gemini API backend.
type GeminiConfig struct {
	BaseURL       string
	APIKey        string
	Model         string
	Temperature   float64
	MaxTokens     int
	MaxToolRounds int
	Timeout       time.Duration
}

type GeminiClient struct {
	client *genai.Client
	cfg    GeminiConfig
}

func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	httpOptions := genai.HTTPOptions{BaseURL: cfg.BaseURL}
	if cfg.Timeout > 0 {
		httpOptions.Timeout = genai.Ptr(cfg.Timeout)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: httpOptions,
	})
	if err != nil {
		return nil, err
	}
	return &GeminiClient{client: client, cfg: cfg}, nil
}

func (c *GeminiClient) Generate(ctx context.Context, req Request) (*Response, error) {
	contents := geminiContents(req.Messages)

	model := req.Model
	if model == "" {
		model = c.cfg.Model
	}

	temperature := c.cfg.Temperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	maxTokens := c.cfg.MaxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(temperature)),
		MaxOutputTokens: int32(maxTokens),
	}
	if req.System != "" {
		config.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	tools := geminiTools(req.Tools)

	resp := &Response{}
	for round := 0; ; round++ {
		if toolsEnabled(req, round, c.cfg.MaxToolRounds) {
			config.Tools = tools
		} else {
			config.Tools = nil
		}

		result, err := c.client.Models.GenerateContent(ctx, model, contents, config)
		if err != nil {
			return nil, err
		}
		resp.Rounds++

		if len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
			return nil, ErrEmptyResponse
		}

		calls := result.FunctionCalls()
		if len(calls) == 0 || config.Tools == nil {
			resp.Text = result.Text()
			return resp, nil
		}

		contents = append(contents, result.Candidates[0].Content)
		parts := make([]*genai.Part, 0, len(calls))
		for _, call := range calls {
			args, err := json.Marshal(call.Args)
			if err != nil {
				args = []byte("{}")
			}
			output := invokeTool(ctx, req.Caller, call.Name, string(args))
			parts = append(parts, genai.NewPartFromFunctionResponse(call.Name, map[string]any{"output": output}))
			resp.ToolCalls++
		}
		contents = append(contents, genai.NewContentFromParts(parts, genai.RoleUser))
	}
}

func geminiContents(messages []Message) []*genai.Content {
	out := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		role := genai.Role(genai.RoleUser)
		if m.Role == RoleAssistant {
			role = genai.RoleModel
		}
		out = append(out, genai.NewContentFromText(m.Content, role))
	}
	return out
}

func geminiTools(tools []Tool) []*genai.Tool {
	if len(tools) == 0 {
		return nil
	}
	decls := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, t := range tools {
		decls = append(decls, &genai.FunctionDeclaration{
			Name:                 t.Name,
			Description:          t.Description,
			ParametersJsonSchema: t.Parameters,
		})
	}
	return []*genai.Tool{{FunctionDeclarations: decls}}
}
