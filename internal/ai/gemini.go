package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	DefaultModel     = "gemini-1.5-flash"
	DefaultMaxTokens = 2048

	userPreamble = "Analyze this product and respond with ONLY valid JSON (no markdown, no explanation):\n\nProduct Data:\n"
)

type GeminiConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int32
	Temperature float32
}

// GeminiClient completes enrichment prompts with Google Gemini.
type GeminiClient struct {
	client *genai.Client
	cfg    GeminiConfig
	logger *slog.Logger
}

func NewGeminiClient(ctx context.Context, cfg GeminiConfig, logger *slog.Logger) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, &GatewayError{Message: "gemini API key not provided"}
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if logger == nil {
		logger = slog.Default()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, &GatewayError{Message: "failed to create Gemini client", Err: err}
	}

	return &GeminiClient{
		client: client,
		cfg:    cfg,
		logger: logger.With("component", "gemini", "model", cfg.Model),
	}, nil
}

func (c *GeminiClient) ModelName() string {
	return c.cfg.Model
}

// Complete sends prompt as the system instruction and payload as the user
// message, and returns the reply as a JSON object.
func (c *GeminiClient) Complete(ctx context.Context, prompt string, payload map[string]any) (map[string]any, error) {
	message, err := BuildUserMessage(payload)
	if err != nil {
		return nil, &GatewayError{Message: "failed to encode product data", Err: err}
	}

	model := c.client.GenerativeModel(c.cfg.Model)
	model.SetMaxOutputTokens(c.cfg.MaxTokens)
	if c.cfg.Temperature > 0 {
		model.SetTemperature(c.cfg.Temperature)
	}
	model.ResponseMIMEType = "application/json"
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(prompt)},
	}

	resp, err := model.GenerateContent(ctx, genai.Text(message))
	if err != nil {
		return nil, &GatewayError{Message: "gemini API error", Err: err}
	}

	text := ResponseText(resp)
	c.logger.Debug("completion received", "chars", len(text))

	obj, err := NormalizeJSON(text)
	if err != nil {
		return nil, &GatewayError{Message: "failed to parse Gemini response as JSON", Err: err}
	}
	return obj, nil
}

func (c *GeminiClient) Close() error {
	return c.client.Close()
}

// BuildUserMessage renders the payload as indented JSON after the fixed
// instruction preamble. Non-ASCII text is kept as is.
func BuildUserMessage(payload map[string]any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}
	return userPreamble + strings.TrimRight(buf.String(), "\n"), nil
}

// ResponseText joins the text parts of the first candidate.
func ResponseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String()
}
