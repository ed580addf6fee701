package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"frontdesk-workers/internal/common/errors"
	"frontdesk-workers/internal/common/llm"
	"frontdesk-workers/internal/common/logger"
	"frontdesk-workers/internal/common/metrics"

	"github.com/xeipuuv/gojsonschema"
)

// Definition binds a tool name and JSON schema to its implementation. Invoke only sees arguments
// that passed schema validation.
type Definition struct {
	Name        string
	Description string
	Parameters  map[string]interface{}
	Invoke      func(ctx context.Context, args map[string]interface{}) string
}

type compiledTool struct {
	def    Definition
	schema *gojsonschema.Schema
}

type Registry struct {
	tools  map[string]*compiledTool
	order  []string
	logger logger.Logger
}

func NewRegistry(log logger.Logger, defs ...Definition) (*Registry, error) {
	r := &Registry{
		tools:  make(map[string]*compiledTool, len(defs)),
		logger: log,
	}
	for _, def := range defs {
		if _, exists := r.tools[def.Name]; exists {
			return nil, fmt.Errorf("tool %s registered twice", def.Name)
		}
		schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(def.Parameters))
		if err != nil {
			return nil, fmt.Errorf("compile schema for %s: %w", def.Name, err)
		}
		r.tools[def.Name] = &compiledTool{def: def, schema: schema}
		r.order = append(r.order, def.Name)
	}
	return r, nil
}

// Names lists registered tools in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Set restricts the registry to the named tools.
func (r *Registry) Set(names ...string) (*Set, error) {
	s := &Set{registry: r, allowed: make(map[string]bool, len(names))}
	for _, name := range names {
		if _, ok := r.tools[name]; !ok {
			return nil, errors.NewUnknownToolError(name)
		}
		s.names = append(s.names, name)
		s.allowed[name] = true
	}
	return s, nil
}

// Set is the tool set bound to one specialist. It implements llm.ToolCaller.
type Set struct {
	registry *Registry
	names    []string
	allowed  map[string]bool
}

// Tools describes the set to the model.
func (s *Set) Tools() []llm.Tool {
	out := make([]llm.Tool, 0, len(s.names))
	for _, name := range s.names {
		def := s.registry.tools[name].def
		out = append(out, llm.Tool{
			Name:        def.Name,
			Description: def.Description,
			Parameters:  def.Parameters,
		})
	}
	return out
}

func (s *Set) Names() []string {
	return append([]string(nil), s.names...)
}

// Call validates arguments and runs the tool. Unknown tools and invalid arguments are returned as
// errors, which the LLM client hands back to the model as the tool result.
func (s *Set) Call(ctx context.Context, name, arguments string) (string, error) {
	tool, ok := s.registry.tools[name]
	if !ok || !s.allowed[name] {
		metrics.ToolInvocations.WithLabelValues(name, "unknown_tool").Inc()
		return "", errors.NewUnknownToolError(name)
	}

	if strings.TrimSpace(arguments) == "" {
		arguments = "{}"
	}

	result, err := tool.schema.Validate(gojsonschema.NewStringLoader(arguments))
	if err != nil {
		metrics.ToolInvocations.WithLabelValues(name, "invalid_arguments").Inc()
		return "", errors.NewToolArgumentsInvalidError(name, err.Error())
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			details = append(details, e.String())
		}
		metrics.ToolInvocations.WithLabelValues(name, "invalid_arguments").Inc()
		s.registry.logger.Warn("tool arguments rejected", map[string]interface{}{
			"tool":   name,
			"errors": details,
		})
		return "", errors.NewToolArgumentsInvalidError(name, strings.Join(details, "; "))
	}

	var args map[string]interface{}
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		metrics.ToolInvocations.WithLabelValues(name, "invalid_arguments").Inc()
		return "", errors.NewToolArgumentsInvalidError(name, err.Error())
	}

	out := tool.def.Invoke(ctx, args)
	metrics.ToolInvocations.WithLabelValues(name, "ok").Inc()
	s.registry.logger.Debug("tool invoked", map[string]interface{}{
		"tool":   name,
		"result": out,
	})
	return out, nil
}

func stringArg(args map[string]interface{}, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}
