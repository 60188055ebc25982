package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// DefaultOllamaHost is where a local Ollama listens out of the box.
const DefaultOllamaHost = "http://127.0.0.1:11434"

// OllamaClient is a minimal HTTP client for a local Ollama runtime.
type OllamaClient struct {
	httpClient       *http.Client
	host             string
	retryMaxAttempts int
	retryBaseDelay   time.Duration
	retryMaxDelay    time.Duration
}

// NewOllamaClient creates a new client targeting the given host (e.g., http://127.0.0.1:11434).
func NewOllamaClient(host string, httpTimeout time.Duration, retryMax int, baseDelay, maxDelay time.Duration) *OllamaClient {
	if host == "" {
		host = DefaultOllamaHost
	}
	if httpTimeout <= 0 {
		httpTimeout = 60 * time.Second
	}
	if retryMax <= 0 {
		retryMax = 2
	}
	if baseDelay <= 0 {
		baseDelay = 200 * time.Millisecond
	}
	if maxDelay <= 0 {
		maxDelay = 1 * time.Second
	}
	return &OllamaClient{
		httpClient:       &http.Client{Timeout: httpTimeout},
		host:             strings.TrimRight(host, "/"),
		retryMaxAttempts: retryMax,
		retryBaseDelay:   baseDelay,
		retryMaxDelay:    maxDelay,
	}
}

// Structures aligned with Ollama /api/chat
type ollamaChatRequest struct {
	Model    string         `json:"model"`
	Messages []Message      `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  map[string]any `json:"options,omitempty"`
}

type ollamaChatResponse struct {
	Message Message `json:"message"`
	Done    bool    `json:"done"`
}

func (c *OllamaClient) encode(req GenerateRequest, stream bool) ([]byte, error) {
	if req.Model == "" {
		return nil, errors.New("model cannot be empty")
	}
	if len(req.Messages) == 0 {
		return nil, errors.New("messages cannot be empty")
	}
	oreq := ollamaChatRequest{
		Model:    req.Model,
		Messages: req.Messages,
		Stream:   stream,
		Options:  map[string]any{},
	}
	if req.Temperature > 0 {
		oreq.Options["temperature"] = req.Temperature
	}
	if req.MaxTokens > 0 {
		oreq.Options["num_predict"] = req.MaxTokens
	}
	payload, err := json.Marshal(oreq)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	return payload, nil
}

func (c *OllamaClient) post(ctx context.Context, payload []byte) (*http.Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	return c.httpClient.Do(httpReq)
}

func classifyOllamaError(resp *http.Response) error {
	apiErr := decodeAPIError(resp)
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return &ModelNotFoundError{APIError: apiErr}
	case resp.StatusCode >= 500:
		return &ServerError{APIError: apiErr}
	case resp.StatusCode == http.StatusBadRequest:
		return &BadRequestError{APIError: apiErr}
	}
	return apiErr
}

// Generate sends a chat request to Ollama and maps the response to GenerateResponse.
func (c *OllamaClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	payload, err := c.encode(req, false)
	if err != nil {
		return nil, err
	}
	backoff := c.retryBaseDelay
	var lastErr error
	for attempt := 1; attempt <= c.retryMaxAttempts; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		resp, err := c.post(ctx, payload)
		if err != nil {
			if isRetryableNetErr(err) && attempt < c.retryMaxAttempts {
				time.Sleep(c.wait(backoff))
				backoff *= 2
				continue
			}
			return nil, &UnreachableError{Host: c.host, Err: err}
		}
		out, err := c.read(resp)
		if err == nil {
			return out, nil
		}
		lastErr = err
		var br *BadRequestError
		var nf *ModelNotFoundError
		if errors.As(err, &br) || errors.As(err, &nf) {
			break
		}
		if attempt < c.retryMaxAttempts {
			time.Sleep(c.wait(backoff))
			backoff *= 2
		}
	}
	return nil, lastErr
}

func (c *OllamaClient) wait(backoff time.Duration) time.Duration {
	if d := withJitter(backoff); d < c.retryMaxDelay {
		return d
	}
	return c.retryMaxDelay
}

func (c *OllamaClient) read(resp *http.Response) (*GenerateResponse, error) {
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, classifyOllamaError(resp)
	}
	var oresp ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&oresp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &GenerateResponse{
		Choices: []Choice{{Message: Message{Role: RoleAssistant, Content: oresp.Message.Content}}},
		// Ollama has no request id; synthesize one for log correlation.
		RequestID: fmt.Sprintf("ollama_%d", time.Now().UnixNano()),
	}, nil
}

// GenerateStream streams partial deltas from Ollama's newline-delimited JSON.
func (c *OllamaClient) GenerateStream(ctx context.Context, req GenerateRequest, onDelta func(string)) error {
	payload, err := c.encode(req, true)
	if err != nil {
		return err
	}
	resp, err := c.post(ctx, payload)
	if err != nil {
		return &UnreachableError{Host: c.host, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return classifyOllamaError(resp)
	}
	dec := json.NewDecoder(resp.Body)
	for dec.More() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		var oresp ollamaChatResponse
		if err := dec.Decode(&oresp); err != nil {
			return fmt.Errorf("decode stream: %w", err)
		}
		if msg := oresp.Message.Content; msg != "" {
			onDelta(msg)
		}
		if oresp.Done {
			break
		}
	}
	return nil
}
