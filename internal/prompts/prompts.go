// Package prompts renders the instruction each specialist sends ahead of the conversation history.
package prompts

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"frontdesk-workers/internal/intent"
)

type Department string

const (
	DepartmentFinance    Department = "finance"
	DepartmentCompliance Department = "compliance"
	DepartmentGeneral    Department = "general_admin"
)

var departmentLabels = map[Department]string{
	DepartmentFinance:    "Finance/Billing",
	DepartmentCompliance: "Compliance/Legal",
	DepartmentGeneral:    "General Admin",
}

// AdminRouting holds the destination address per admin department.
type AdminRouting struct {
	Finance    string
	Compliance string
	General    string
}

// RouteAdmin picks the department by keyword: finance/billing first, then compliance/legal.
func RouteAdmin(utterance string, routing AdminRouting) (Department, string) {
	text := strings.ToLower(utterance)
	switch {
	case strings.Contains(text, "finance") || strings.Contains(text, "billing"):
		return DepartmentFinance, routing.Finance
	case strings.Contains(text, "compliance") || strings.Contains(text, "legal"):
		return DepartmentCompliance, routing.Compliance
	default:
		return DepartmentGeneral, routing.General
	}
}

type Params struct {
	CompanyName   string
	AssistantName string
	Greeting      string
	CareersEmail  string
	Routing       AdminRouting
}

// Prompt is a rendered instruction. Department and RoutedTo are set for the admin specialist only.
type Prompt struct {
	Text       string
	Department Department
	RoutedTo   string
}

type templateData struct {
	Params
	DepartmentLabel string
	RoutedTo        string
}

// Book renders instructions from the parsed template table.
type Book struct {
	params    Params
	templates map[intent.Handler]*template.Template
}

func NewBook(params Params) (*Book, error) {
	b := &Book{
		params:    params,
		templates: make(map[intent.Handler]*template.Template, len(templates)),
	}
	for _, h := range intent.Handlers() {
		src, ok := templates[string(h)]
		if !ok {
			return nil, fmt.Errorf("no instruction template for %s", h)
		}
		tmpl, err := template.New(string(h)).Option("missingkey=error").Parse(src)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", h, err)
		}
		b.templates[h] = tmpl
	}
	return b, nil
}

// Instruction renders the handler's instruction. utterance is only consulted by the admin specialist.
func (b *Book) Instruction(h intent.Handler, utterance string) (Prompt, error) {
	tmpl, ok := b.templates[h]
	if !ok {
		return Prompt{}, fmt.Errorf("unknown handler %q", h)
	}

	data := templateData{Params: b.params}
	var prompt Prompt
	if h == intent.HandlerAdmin {
		prompt.Department, prompt.RoutedTo = RouteAdmin(utterance, b.params.Routing)
		data.DepartmentLabel = departmentLabels[prompt.Department]
		data.RoutedTo = prompt.RoutedTo
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return Prompt{}, fmt.Errorf("render %s: %w", h, err)
	}
	prompt.Text = buf.String()
	return prompt, nil
}
