// Package gemini is a minimal HTTP client for the Generative Language
// API: model listing and text generation, nothing else.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the public v1beta endpoint.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	defaultTimeout = 25 * time.Second
	listPageSize   = 200
)

type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

func NewClient(cfg Config) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: base,
		http:    &http.Client{Timeout: timeout},
	}
}

// Model is one entry of the capability listing. Name comes back in the
// "models/<id>" form.
type Model struct {
	Name                       string   `json:"name"`
	DisplayName                string   `json:"displayName"`
	SupportedGenerationMethods []string `json:"supportedGenerationMethods"`
}

// Supports reports whether the model declares the given generation
// method (e.g. "generateContent").
func (m Model) Supports(method string) bool {
	for _, op := range m.SupportedGenerationMethods {
		if op == method {
			return true
		}
	}
	return false
}

type listModelsResponse struct {
	Models []Model `json:"models"`
}

// ListModels fetches the capability listing.
func (c *Client) ListModels(ctx context.Context) ([]Model, error) {
	u := fmt.Sprintf("%s/models?key=%s&pageSize=%d", c.baseURL, url.QueryEscape(c.apiKey), listPageSize)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("list models: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp.StatusCode, body)
	}

	var out listModelsResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("list models: decode: %w", err)
	}
	return out.Models, nil
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// GenerateContent asks one model for a completion and returns the first
// candidate's first text part. The model name is accepted with or
// without the "models/" prefix; this is the one place an identifier is
// mapped onto the wire path.
func (c *Client) GenerateContent(ctx context.Context, model, prompt string) (string, error) {
	name := strings.TrimPrefix(model, "models/")

	reqBody, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	u := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, name, url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(reqBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("generate %s: %w", name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("generate %s: read body: %w", name, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("generate %s: %w", name, apiError(resp.StatusCode, body))
	}

	var out generateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("generate %s: decode: %w", name, err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("generate %s: empty response", name)
	}

	text := strings.TrimSpace(out.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return "", fmt.Errorf("generate %s: empty text part", name)
	}
	return text, nil
}
