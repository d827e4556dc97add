package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	defaultTemperature = 0.7
	defaultMaxTokens   = 600
	defaultTopP        = 0.9
)

type Client struct {
	baseURL    string
	apiKey     string
	referer    string
	appTitle   string
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewClient(baseURL, apiKey, referer, appTitle string, logger *logrus.Logger) *Client {
	return &Client{
		baseURL:  baseURL,
		apiKey:   apiKey,
		referer:  referer,
		appTitle: appTitle,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// Complete sends a chat completion request for the given model and returns
// the text of the first choice. An empty completion is an error so callers
// can treat any nil-error return as usable text.
func (c *Client) Complete(ctx context.Context, messages []Message, model string) (string, error) {
	payload := CompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: defaultTemperature,
		MaxTokens:   defaultMaxTokens,
		TopP:        defaultTopP,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}

	url := c.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	if c.referer != "" {
		req.Header.Set("HTTP-Referer", c.referer)
	}
	if c.appTitle != "" {
		req.Header.Set("X-Title", c.appTitle)
	}

	c.logger.WithFields(logrus.Fields{
		"model":        model,
		"url":          url,
		"payload_size": len(jsonData),
		"messages":     len(messages),
	}).Debug("Making completion API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"status_code":   resp.StatusCode,
		"model":         model,
		"response_size": len(responseBody),
	}).Debug("Completion API response received")

	if len(responseBody) < 500 || resp.StatusCode >= 400 {
		c.logger.WithFields(logrus.Fields{
			"status_code":   resp.StatusCode,
			"model":         model,
			"response_body": string(responseBody),
		}).Debug("Response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("completion API failed with status %d: %s", resp.StatusCode, string(responseBody))
	}

	var completion CompletionResponse
	if err := json.Unmarshal(responseBody, &completion); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if completion.Error != nil {
		return "", fmt.Errorf("completion API error %d: %s", completion.Error.Code, completion.Error.Message)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("completion API returned no choices")
	}

	text := completion.Choices[0].Message.Content
	if text == "" {
		return "", fmt.Errorf("completion API returned empty content")
	}
	return text, nil
}
