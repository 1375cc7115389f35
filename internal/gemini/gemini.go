// Package gemini analyzes images and drafts planning content with Google's
// Gemini models.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/mrlokans/weddingplanner/internal/config"
	"github.com/mrlokans/weddingplanner/internal/entities"
)

var (
	ErrNotConfigured = errors.New("AI analysis is not configured")
	ErrEmptyResponse = errors.New("model returned an empty response")
	ErrUnknownKind   = errors.New("unknown content kind")
)

// ImageAnalysis is the structured description of an inspiration image.
type ImageAnalysis = entities.VisionAnalysis

type ImageAnalyzer interface {
	AnalyzeImage(ctx context.Context, data []byte, mimeType, prompt string) (*ImageAnalysis, error)
}

type ContentGenerator interface {
	GenerateContent(ctx context.Context, kind ContentKind, prompt string) (string, error)
}

// generateFunc sends contents to the model and returns its text.
type generateFunc func(ctx context.Context, contents []*genai.Content, cfg *genai.GenerateContentConfig) (string, error)

// Client implements ImageAnalyzer and ContentGenerator.
type Client struct {
	model    string
	generate generateFunc
}

// NewClient returns ErrNotConfigured when no API key is set.
func NewClient(ctx context.Context, cfg config.Gemini) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}
	model := cfg.Model
	if model == "" {
		model = config.DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	c := &Client{model: model}
	c.generate = func(ctx context.Context, contents []*genai.Content, gc *genai.GenerateContentConfig) (string, error) {
		resp, err := client.Models.GenerateContent(ctx, c.model, contents, gc)
		if err != nil {
			return "", err
		}
		return resp.Text(), nil
	}
	return c, nil
}

func (c *Client) Model() string {
	return c.model
}

func (c *Client) AnalyzeImage(ctx context.Context, data []byte, mimeType, prompt string) (*ImageAnalysis, error) {
	if c == nil || c.generate == nil {
		return nil, ErrNotConfigured
	}
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(data, mimeType),
			genai.NewPartFromText(prompt),
		}, genai.RoleUser),
	}
	temperature := float32(0.2)
	text, err := c.generate(ctx, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      &temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("GenAI analyze failed: %w", err)
	}
	return ParseAnalysis(text)
}

func (c *Client) GenerateContent(ctx context.Context, kind ContentKind, prompt string) (string, error) {
	if c == nil || c.generate == nil {
		return "", ErrNotConfigured
	}
	instruction, ok := instructions[kind]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	temperature := float32(0.7)
	text, err := c.generate(ctx, []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(instruction, genai.RoleUser),
		Temperature:       &temperature,
	})
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// ParseAnalysis decodes the model's JSON answer. Markdown code fences and
// text around the JSON object are tolerated.
func ParseAnalysis(text string) (*ImageAnalysis, error) {
	body := strings.TrimSpace(text)
	if body == "" {
		return nil, ErrEmptyResponse
	}
	if start := strings.IndexByte(body, '{'); start >= 0 {
		if end := strings.LastIndexByte(body, '}'); end > start {
			body = body[start : end+1]
		}
	}

	var analysis ImageAnalysis
	if err := json.Unmarshal([]byte(body), &analysis); err != nil {
		return nil, fmt.Errorf("failed to parse analysis: %w", err)
	}
	analysis.Description = strings.TrimSpace(analysis.Description)
	analysis.Style = strings.TrimSpace(analysis.Style)
	analysis.Colors = compact(analysis.Colors)
	analysis.Tags = compact(analysis.Tags)
	analysis.Suggestions = compact(analysis.Suggestions)
	if analysis.Description == "" && len(analysis.Tags) == 0 {
		return nil, ErrEmptyResponse
	}
	return &analysis, nil
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
