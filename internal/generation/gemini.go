// Package generation produces answers from composed prompts via Google's
// Gemini API.
package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"infraguard/internal/domain"
)

const defaultModel = "gemini-2.5-flash"

// Gemini implements domain.Generator. Temperature is pinned to zero so
// answers stay grounded in the retrieved context.
type Gemini struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// Config configures the Gemini generation client.
type Config struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// NewGemini creates a Gemini generation client.
func NewGemini(ctx context.Context, cfg Config) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 2 * time.Minute
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &Gemini{client: client, model: cfg.Model, timeout: cfg.Timeout}, nil
}

// Generate sends the composed prompt and returns the answer text. The
// timeout bounds a single request; hitting it is a recoverable per-request
// failure, not a process-fatal one.
func (g *Gemini) Generate(ctx context.Context, p domain.Prompt) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	contents := make([]*genai.Content, 0, len(p.Messages))
	for _, m := range p.Messages {
		role := genai.Role(genai.RoleUser)
		if m.Role == domain.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}

	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0),
	}
	if p.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(p.System, genai.RoleUser)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("gemini returned no candidates")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	answer := strings.TrimSpace(b.String())
	if answer == "" {
		return "", errors.New("gemini returned an empty answer")
	}
	return answer, nil
}

// Name identifies the generation backend.
func (g *Gemini) Name() string {
	return fmt.Sprintf("gemini:%s", g.model)
}
