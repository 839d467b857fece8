package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bnema/life-assistant/internal/config"
	"github.com/spf13/viper"
)

const (
	generatePath        = "/api/generate"
	maxGenerateBytes    = 8 << 20
	defaultRequestLimit = 120 * time.Second
)

type Client struct {
	BaseURL        string
	HTTPClient     *http.Client
	RequestTimeout time.Duration
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error"`
}

func NewClient(cfg *viper.Viper) Client {
	return Client{
		BaseURL:        cfg.GetString(config.KeyReasoningBaseURL),
		RequestTimeout: config.Duration(cfg, config.KeyReasoningTimeout, defaultRequestLimit),
	}
}

func (c Client) Generate(ctx context.Context, model string, prompt string) (string, error) {
	if strings.TrimSpace(model) == "" {
		return "", errors.New("model is required")
	}

	endpoint, err := buildAPIURL(c.BaseURL, generatePath)
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(generateRequest{Model: model, Prompt: prompt, Stream: false})
	if err != nil {
		return "", fmt.Errorf("encode generate request: %w", err)
	}

	requestCtx, cancel := c.requestContext(ctx)
	defer cancel()
	req, err := http.NewRequestWithContext(requestCtx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return "", fmt.Errorf("query model %s: %w", model, err)
	}
	defer func() { _ = resp.Body.Close() }()

	var payload generateResponse
	decodeErr := json.NewDecoder(io.LimitReader(resp.Body, maxGenerateBytes)).Decode(&payload)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		if decodeErr == nil && payload.Error != "" {
			return "", fmt.Errorf("query model %s: %s", model, payload.Error)
		}
		return "", fmt.Errorf("query model %s: status %d", model, resp.StatusCode)
	}
	if decodeErr != nil {
		return "", fmt.Errorf("decode generate response: %w", decodeErr)
	}
	if strings.TrimSpace(payload.Response) == "" {
		return "", fmt.Errorf("query model %s: empty response", model)
	}

	return payload.Response, nil
}

func (c Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c Client) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}

	requestTimeout := c.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = defaultRequestLimit
	}

	return context.WithTimeout(ctx, requestTimeout)
}

func buildAPIURL(baseURL string, path string) (string, error) {
	if baseURL == "" {
		return "", errors.New("model base url is required")
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse model base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", errors.New("model base url must use http or https")
	}
	if parsed.Host == "" {
		return "", errors.New("model base url host is required")
	}

	endpoint, err := parsed.Parse(path)
	if err != nil {
		return "", fmt.Errorf("parse api path: %w", err)
	}
	return endpoint.String(), nil
}
