package specialist

import "frontdesk-workers/internal/common/llm"

type Input struct {
	CallID    string        `json:"callId"`
	Utterance string        `json:"utterance"`
	History   []llm.Message `json:"history"`
	Intent    string        `json:"intent"`
}

type Output struct {
	Reply      string `json:"reply"`
	HandledBy  string `json:"handledBy"`
	Department string `json:"department,omitempty"`
	RoutedTo   string `json:"routedTo,omitempty"`
}
