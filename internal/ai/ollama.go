package ai

import (
	"context"
	"net/http"
)

const ollamaAPIURL = "http://localhost:11434/api/generate"

// Ollama talks to a local Ollama server. There is no default model; the
// configuration must name one.
type Ollama struct {
	client  *http.Client
	model   string
	baseURL string
}

func NewOllama(client *http.Client, model string) *Ollama {
	return &Ollama{client: client, model: model, baseURL: ollamaAPIURL}
}

func (o *Ollama) Name() string { return string(KindOllama) }

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaResponse struct {
	Response string `json:"response"`
}

func (o *Ollama) Complete(ctx context.Context, prompt Prompt) (string, error) {
	// The generate endpoint takes one flat prompt, so the system prompt is
	// folded in above the user prompt.
	payload := ollamaRequest{
		Model:  o.model,
		Prompt: prompt.System + "\n\n" + prompt.User,
		Stream: false,
	}

	var resp ollamaResponse
	if err := postJSON(ctx, o.client, o.baseURL, nil, payload, &resp); err != nil {
		return "", err
	}
	if resp.Response == "" {
		return "", ErrNoCompletion
	}
	return resp.Response, nil
}
