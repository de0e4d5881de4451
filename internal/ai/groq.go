package ai

import (
	"context"
	"net/http"
)

const (
	groqDefaultModel = "mixtral-8x7b-32768"
	groqAPIURL       = "https://api.groq.com/openai/v1/chat/completions"
)

// Groq talks to Groq's OpenAI-compatible chat API.
type Groq struct {
	client  *http.Client
	apiKey  string
	model   string
	baseURL string
}

func NewGroq(client *http.Client, apiKey, model string) *Groq {
	if model == "" {
		model = groqDefaultModel
	}
	return &Groq{client: client, apiKey: apiKey, model: model, baseURL: groqAPIURL}
}

func (g *Groq) Name() string { return string(KindGroq) }

func (g *Groq) Complete(ctx context.Context, prompt Prompt) (string, error) {
	return chatComplete(ctx, g.client, g.baseURL, g.apiKey, g.model, prompt)
}
