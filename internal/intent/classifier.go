package intent

import (
	"context"
	"strings"

	"frontdesk-workers/internal/common/llm"
	"frontdesk-workers/internal/directory"
)

// Result is a classification. Label is the raw label before parsing.
type Result struct {
	Label    string
	Category Category
}

type Classifier interface {
	Classify(ctx context.Context, utterance string) (Result, error)
}

const classificationInstruction = `You are the call router for the Brain Station 23 front desk.
Classify the caller's latest request into exactly one category and reply with the category name only.

EMPLOYEE - wants to reach, contact or ask about a specific employee
COMPANY - asks about the company's services, location, contact details or working hours
PROJECT - wants to discuss a new project, a quote or a partnership
JOB - asks about careers, open positions or how to apply
ADMIN - finance, billing, invoices, compliance, legal or other administrative matters
GENERAL - greetings, small talk or anything else`

// LLMClassifier asks the language model for the label.
type LLMClassifier struct {
	client    llm.Client
	model     string
	maxTokens int
}

func NewLLMClassifier(client llm.Client, model string) *LLMClassifier {
	return &LLMClassifier{client: client, model: model, maxTokens: 10}
}

// Classify returns the trimmed, upper-cased model output as the label. Provider errors are returned
// unchanged.
func (c *LLMClassifier) Classify(ctx context.Context, utterance string) (Result, error) {
	resp, err := c.client.Generate(ctx, llm.Request{
		System:      classificationInstruction,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: utterance}},
		Model:       c.model,
		Temperature: llm.Float(0),
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return Result{}, err
	}

	label := strings.ToUpper(strings.TrimSpace(resp.Text))
	return Result{Label: label, Category: ParseCategory(label)}, nil
}

type keywordRule struct {
	category Category
	keywords []string
}

// Checked in order; the first rule with a matching keyword wins.
var keywordRules = []keywordRule{
	{CategoryAdmin, []string{"finance", "billing", "invoice", "payment", "refund", "compliance", "legal", "contract", "admin"}},
	{CategoryJob, []string{"job", "career", "position", "vacanc", "hiring", "opening", "apply", "internship", "resume", " cv"}},
	{CategoryEmployee, []string{"speak to", "speak with", "talk to", "talk with", "connect me", "transfer me", "employee", "extension"}},
	{CategoryProject, []string{"project", "quote", "proposal", "build an", "build a", "develop an", "develop a", "outsourc", "partnership", "estimate"}},
	{CategoryCompany, []string{"service", "located", "location", "address", "office", "hours", "open", "phone number", "contact", "about your company", "what do you do"}},
}

// KeywordClassifier classifies with ordered keyword-membership checks. Employee names from the
// directory count as employee keywords so "Can I get John Doe's contact?" is not read as a company
// question.
type KeywordClassifier struct {
	names []string
}

func NewKeywordClassifier(dir *directory.Directory) *KeywordClassifier {
	k := &KeywordClassifier{}
	if dir != nil {
		for _, e := range dir.Employees() {
			k.names = append(k.names, e.Key)
		}
	}
	return k
}

func (k *KeywordClassifier) Classify(ctx context.Context, utterance string) (Result, error) {
	c := k.category(strings.ToLower(utterance))
	return Result{Label: string(c), Category: c}, nil
}

func (k *KeywordClassifier) category(text string) Category {
	for _, rule := range keywordRules {
		if rule.category == CategoryEmployee && k.mentionsEmployee(text) {
			return CategoryEmployee
		}
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				return rule.category
			}
		}
	}
	return CategoryGeneral
}

func (k *KeywordClassifier) mentionsEmployee(text string) bool {
	for _, name := range k.names {
		if strings.Contains(text, name) {
			return true
		}
	}
	return false
}
