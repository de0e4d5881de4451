// Package ai generates explanations and commit messages from review
// subjects through pluggable model providers.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Kind names a supported provider.
type Kind string

const (
	KindClaude Kind = "claude"
	KindGroq   Kind = "groq"
	KindOllama Kind = "ollama"
	KindOpenAI Kind = "openai"
	KindPhind  Kind = "phind"
)

// ParseKind maps a configured provider name to its Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindClaude, KindGroq, KindOllama, KindOpenAI, KindPhind:
		return k, nil
	}
	return "", fmt.Errorf("unknown provider %q (valid: claude, groq, ollama, openai, phind)", s)
}

// Provider is one model API that can complete a prompt.
type Provider interface {
	Name() string
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// ErrNoCompletion is returned when a provider response carries no usable
// text.
var ErrNoCompletion = errors.New("no completion in provider response")

// APIError is a non-success HTTP response from a provider.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("provider returned status %d: %s", e.Status, e.Body)
}

// Options configure provider construction. Model defaults per provider
// when empty; Ollama has no default and requires one.
type Options struct {
	APIKey     string
	Model      string
	HTTPClient *http.Client
}

// Completions can take a while on large diffs.
var defaultHTTPClient = &http.Client{Timeout: 2 * time.Minute}

// New constructs the provider for kind. Hosted providers except Phind
// require an API key.
func New(kind Kind, opts Options) (Provider, error) {
	client := opts.HTTPClient
	if client == nil {
		client = defaultHTTPClient
	}
	switch kind {
	case KindClaude:
		if opts.APIKey == "" {
			return nil, missingAPIKey(kind)
		}
		return NewClaude(client, opts.APIKey, opts.Model), nil
	case KindGroq:
		if opts.APIKey == "" {
			return nil, missingAPIKey(kind)
		}
		return NewGroq(client, opts.APIKey, opts.Model), nil
	case KindOpenAI:
		if opts.APIKey == "" {
			return nil, missingAPIKey(kind)
		}
		return NewOpenAI(client, opts.APIKey, opts.Model), nil
	case KindOllama:
		if opts.Model == "" {
			return nil, fmt.Errorf("provider %s requires a model", kind)
		}
		return NewOllama(client, opts.Model), nil
	case KindPhind:
		return NewPhind(client, opts.Model), nil
	}
	return nil, fmt.Errorf("unknown provider %q", kind)
}

func missingAPIKey(kind Kind) error {
	return fmt.Errorf("provider %s requires an api key", kind)
}

// chatMessage is the role/content pair most provider payloads share.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const apiErrorBodyLimit = 500

// post sends a JSON payload and returns the raw response body. Non-2xx
// responses become an *APIError carrying a body excerpt; rate limits and
// server errors are retried with backoff.
func post(ctx context.Context, client *http.Client, url string, headers map[string]string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	var data []byte
	err = withRetry(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("send request: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		data, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}
		if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
			return &APIError{Status: resp.StatusCode, Body: bodyExcerpt(data)}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

func postJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, payload, out any) error {
	data, err := post(ctx, client, url, headers, payload)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func bodyExcerpt(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > apiErrorBodyLimit {
		return s[:apiErrorBodyLimit] + "..."
	}
	return s
}
