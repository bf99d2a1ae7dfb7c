// Package gemini provides a client for the Gemini generateContent API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/danielolaszy/planbot/internal/config"
	"github.com/danielolaszy/planbot/internal/logging"
)

var (
	// ErrModelUnavailable indicates the model endpoint could not be reached.
	ErrModelUnavailable = errors.New("gemini endpoint unavailable")

	// ErrEmptyResponse indicates the model returned no usable text.
	ErrEmptyResponse = errors.New("gemini returned an empty response")
)

// Client calls the Gemini REST API. One request, one response; no
// streaming and no retries at this layer.
type Client struct {
	apiKey   string
	model    string
	endpoint string
	timeout  time.Duration
	http     *http.Client
}

// NewClient creates a Gemini client from configuration.
func NewClient(cfg config.GeminiConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key not found in configuration")
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	logging.Info("gemini configuration",
		"model", cfg.Model,
		"endpoint", cfg.Endpoint,
		"api_key", logging.MaskSensitive(cfg.APIKey))

	return &Client{
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		endpoint: cfg.Endpoint,
		timeout:  timeout,
		http:     &http.Client{},
	}, nil
}

// generateRequest is the JSON body sent to models/{model}:generateContent.
type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

// generateResponse is the subset of the response body we consume.
type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Generate sends the prompt to the model and returns the raw text of the
// first candidate.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.endpoint, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: %v", ErrModelUnavailable, ctx.Err())
		}
		return "", fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed generateResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	text := firstCandidateText(parsed)
	if text == "" {
		return "", ErrEmptyResponse
	}

	logging.Debug("gemini call complete",
		"model", c.model,
		"latency_ms", time.Since(start).Milliseconds(),
		"response_length", len(text))

	return text, nil
}

// TestConnection performs a trivial generation to verify the API key and
// model are usable.
func (c *Client) TestConnection(ctx context.Context) error {
	text, err := c.Generate(ctx, "Hello, this is a connection test. Reply with one word.")
	if err != nil {
		return err
	}
	if text == "" {
		return ErrEmptyResponse
	}
	return nil
}

func firstCandidateText(resp generateResponse) string {
	for _, candidate := range resp.Candidates {
		for _, p := range candidate.Content.Parts {
			if p.Text != "" {
				return p.Text
			}
		}
	}
	return ""
}
