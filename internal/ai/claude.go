package ai

import (
	"context"
	"net/http"
)

const (
	claudeDefaultModel = "claude-3-5-sonnet-20241022"
	claudeAPIURL       = "https://api.anthropic.com/v1/messages"
	claudeAPIVersion   = "2023-06-01"
	claudeMaxTokens    = 4096
)

// Claude talks to the Anthropic messages API.
type Claude struct {
	client  *http.Client
	apiKey  string
	model   string
	baseURL string
}

func NewClaude(client *http.Client, apiKey, model string) *Claude {
	if model == "" {
		model = claudeDefaultModel
	}
	return &Claude{client: client, apiKey: apiKey, model: model, baseURL: claudeAPIURL}
}

func (c *Claude) Name() string { return string(KindClaude) }

type claudeRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	System    string        `json:"system"`
	Messages  []chatMessage `json:"messages"`
}

type claudeResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

func (c *Claude) Complete(ctx context.Context, prompt Prompt) (string, error) {
	payload := claudeRequest{
		Model:     c.model,
		MaxTokens: claudeMaxTokens,
		System:    prompt.System,
		Messages:  []chatMessage{{Role: "user", Content: prompt.User}},
	}
	headers := map[string]string{
		"x-api-key":         c.apiKey,
		"anthropic-version": claudeAPIVersion,
	}

	var resp claudeResponse
	if err := postJSON(ctx, c.client, c.baseURL, headers, payload, &resp); err != nil {
		return "", err
	}
	if len(resp.Content) == 0 {
		return "", ErrNoCompletion
	}
	return resp.Content[0].Text, nil
}
