package ai

import (
	"context"
	"net/http"
)

const (
	openAIDefaultModel = "gpt-4o-mini"
	openAIAPIURL       = "https://api.openai.com/v1/chat/completions"
)

// OpenAI talks to the chat completions API.
type OpenAI struct {
	client  *http.Client
	apiKey  string
	model   string
	baseURL string
}

func NewOpenAI(client *http.Client, apiKey, model string) *OpenAI {
	if model == "" {
		model = openAIDefaultModel
	}
	return &OpenAI{client: client, apiKey: apiKey, model: model, baseURL: openAIAPIURL}
}

func (o *OpenAI) Name() string { return string(KindOpenAI) }

func (o *OpenAI) Complete(ctx context.Context, prompt Prompt) (string, error) {
	return chatComplete(ctx, o.client, o.baseURL, o.apiKey, o.model, prompt)
}

// The OpenAI chat completions shape, shared with Groq's compatible API.
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func chatComplete(ctx context.Context, client *http.Client, url, apiKey, model string, prompt Prompt) (string, error) {
	payload := chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: prompt.System},
			{Role: "user", Content: prompt.User},
		},
	}
	headers := map[string]string{"Authorization": "Bearer " + apiKey}

	var resp chatResponse
	if err := postJSON(ctx, client, url, headers, payload, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoCompletion
	}
	return resp.Choices[0].Message.Content, nil
}
