package classifyintent

type Input struct {
	CallID    string `json:"callId"`
	Utterance string `json:"utterance"`
}

type Output struct {
	Intent string `json:"intent"`
	Route  string `json:"route"`
}
