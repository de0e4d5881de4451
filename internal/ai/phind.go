package ai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

const (
	phindDefaultModel = "Phind-70B"
	phindAPIURL       = "https://https.extension.phind.com/agent/"
)

// Phind talks to the Phind extension endpoint, the only provider that
// needs no API key.
type Phind struct {
	client  *http.Client
	model   string
	baseURL string
}

func NewPhind(client *http.Client, model string) *Phind {
	if model == "" {
		model = phindDefaultModel
	}
	return &Phind{client: client, model: model, baseURL: phindAPIURL}
}

func (p *Phind) Name() string { return string(KindPhind) }

type phindRequest struct {
	AdditionalExtensionContext string        `json:"additional_extension_context"`
	AllowMagicButtons          bool          `json:"allow_magic_buttons"`
	IsVSCodeExtension          bool          `json:"is_vscode_extension"`
	MessageHistory             []chatMessage `json:"message_history"`
	RequestedModel             string        `json:"requested_model"`
	UserInput                  string        `json:"user_input"`
}

type phindResponse struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

func (p *Phind) Complete(ctx context.Context, prompt Prompt) (string, error) {
	// The endpoint takes no system prompt; only the user prompt is sent.
	payload := phindRequest{
		AllowMagicButtons: true,
		IsVSCodeExtension: true,
		MessageHistory:    []chatMessage{{Role: "user", Content: prompt.User}},
		RequestedModel:    p.model,
		UserInput:         prompt.User,
	}
	// The endpoint rejects default client user agents.
	headers := map[string]string{
		"User-Agent":      "",
		"Accept":          "*/*",
		"Accept-Encoding": "Identity",
	}

	body, err := post(ctx, p.client, p.baseURL, headers, payload)
	if err != nil {
		return "", err
	}
	text := collectStreamText(body)
	if text == "" {
		return "", ErrNoCompletion
	}
	return text, nil
}

// collectStreamText reassembles the completion from an event-stream body,
// concatenating each data line's first choice delta. Lines that are not
// well-formed JSON (like the trailing [DONE] marker) are skipped.
func collectStreamText(body []byte) string {
	var b strings.Builder
	scanner := bufio.NewScanner(bytes.NewReader(body))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		data, ok := strings.CutPrefix(scanner.Text(), "data: ")
		if !ok {
			continue
		}
		var resp phindResponse
		if err := json.Unmarshal([]byte(data), &resp); err != nil {
			continue
		}
		if len(resp.Choices) > 0 {
			b.WriteString(resp.Choices[0].Delta.Content)
		}
	}
	return b.String()
}
