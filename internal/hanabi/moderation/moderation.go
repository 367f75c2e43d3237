// Package moderation wraps the OpenAI content-classification endpoint.
//
// The front-ends check every inbound user message before it reaches the
// agent. The policy is fail-open: when the moderation endpoint is down or
// misbehaving, content is treated as not flagged, so a moderation outage
// does not lock users out of the assistant.
package moderation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Available moderation models.
const (
	// ModelOmni is the newer model with more categories and multi-modal support.
	ModelOmni = "omni-moderation-latest"
	// ModelText is the legacy text-only model.
	ModelText = "text-moderation-latest"
)

const defaultModerationBase = "https://api.openai.com/v1"

// Config configures the moderation client.
type Config struct {
	// APIKey is the bearer token. Usually the same key as the LLM provider.
	APIKey string
	// BaseURL overrides the API endpoint.
	BaseURL string
	// Model selects the moderation model. Defaults to ModelOmni.
	Model string
	// Timeout is the HTTP request timeout. Defaults to 15s.
	Timeout time.Duration
}

// Client talks to the moderation endpoint.
type Client struct {
	cfg    Config
	client *http.Client
	logger *slog.Logger
}

// New creates a moderation client. If logger is nil, the default slog
// logger is used.
func New(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultModerationBase
	}
	if cfg.Model == "" {
		cfg.Model = ModelOmni
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// Result is the classification of one input string.
type Result struct {
	Flagged        bool               `json:"flagged"`
	Categories     map[string]bool    `json:"categories"`
	CategoryScores map[string]float64 `json:"category_scores"`
}

type moderationRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type moderationResponse struct {
	Results []Result `json:"results"`
	Error   *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Check classifies the given inputs. Unlike the convenience helpers below,
// it surfaces transport and API errors to the caller.
func (c *Client) Check(ctx context.Context, inputs ...string) ([]Result, error) {
	if len(inputs) == 0 {
		return nil, nil
	}

	data, err := json.Marshal(moderationRequest{Model: c.cfg.Model, Input: inputs})
	if err != nil {
		return nil, fmt.Errorf("moderation: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/moderations", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("moderation: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("moderation: http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("moderation: read response: %w", err)
	}

	var modResp moderationResponse
	if err := json.Unmarshal(body, &modResp); err != nil {
		return nil, fmt.Errorf("moderation: decode response: %w", err)
	}
	if modResp.Error != nil {
		return nil, fmt.Errorf("moderation: API error (%s): %s", modResp.Error.Type, modResp.Error.Message)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("moderation: unexpected HTTP status %d", resp.StatusCode)
	}
	if len(modResp.Results) != len(inputs) {
		return nil, fmt.Errorf("moderation: got %d results for %d inputs", len(modResp.Results), len(inputs))
	}

	return modResp.Results, nil
}

// IsFlagged reports whether text violates the content policy. Errors degrade
// to false (fail-open) and are logged.
func (c *Client) IsFlagged(ctx context.Context, text string) bool {
	results, err := c.Check(ctx, text)
	if err != nil {
		c.logger.Warn("moderation check failed, failing open", "err", err)
		return false
	}
	return len(results) > 0 && results[0].Flagged
}

// FlaggedCategories maps each flagged input to the list of categories it
// tripped. Unflagged inputs are omitted. Errors degrade to an empty map.
func (c *Client) FlaggedCategories(ctx context.Context, texts ...string) map[string][]string {
	results, err := c.Check(ctx, texts...)
	if err != nil {
		c.logger.Warn("moderation categories lookup failed, failing open", "err", err)
		return map[string][]string{}
	}

	flagged := make(map[string][]string)
	for i, r := range results {
		if !r.Flagged {
			continue
		}
		var categories []string
		for category, hit := range r.Categories {
			if hit {
				categories = append(categories, category)
			}
		}
		flagged[texts[i]] = categories
	}
	return flagged
}

// categoryDescriptions documents each moderation category. Keys cover both
// the slash-style API names and underscore variants seen in older responses.
var categoryDescriptions = map[string]string{
	"harassment":             "Content that expresses, incites, or promotes harassing language towards any target.",
	"harassment/threatening": "Harassment content that also includes violence or serious harm towards any target.",
	"hate":                   "Content that expresses, incites, or promotes hate based on race, gender, ethnicity, religion, nationality, sexual orientation, disability status, or caste.",
	"hate/threatening":       "Hateful content that also includes violence or serious harm towards the targeted group.",
	"illicit":                "Content that gives advice or instruction on how to commit illicit acts.",
	"illicit/violent":        "Content about illicit acts that also includes references to violence or procuring a weapon.",
	"self-harm":              "Content that promotes, encourages, or depicts acts of self-harm, such as suicide, cutting, and eating disorders.",
	"self-harm/intent":       "Content where the speaker expresses that they are engaging or intend to engage in acts of self-harm.",
	"self-harm/instructions": "Content that encourages performing acts of self-harm or gives instructions on how to commit such acts.",
	"sexual":                 "Content meant to arouse sexual excitement, such as the description of sexual activity.",
	"sexual/minors":          "Sexual content that includes an individual who is under 18 years old.",
	"violence":               "Content that depicts death, violence, or physical injury.",
	"violence/graphic":       "Content that depicts death, violence, or physical injury in graphic detail.",
}

// CategoryDescription returns the human-readable description of a
// moderation category. Underscore variants are normalized to the canonical
// slash-style names.
func CategoryDescription(category string) string {
	if desc, ok := categoryDescriptions[category]; ok {
		return desc
	}
	if desc, ok := categoryDescriptions[normalizeCategory(category)]; ok {
		return desc
	}
	return fmt.Sprintf("Unknown category: %s", category)
}

// normalizeCategory maps underscore variants ("self_harm_intent",
// "harassment_threatening") onto the slash-style API names.
func normalizeCategory(category string) string {
	switch category {
	case "harassment_threatening":
		return "harassment/threatening"
	case "hate_threatening":
		return "hate/threatening"
	case "illicit_violent":
		return "illicit/violent"
	case "self_harm":
		return "self-harm"
	case "self_harm_intent":
		return "self-harm/intent"
	case "self_harm_instructions":
		return "self-harm/instructions"
	case "sexual_minors":
		return "sexual/minors"
	case "violence_graphic":
		return "violence/graphic"
	}
	return category
}
