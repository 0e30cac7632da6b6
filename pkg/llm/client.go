// Package llm wraps the Gemini generation API behind a small interface.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/barribox/barribox-backend/pkg/config"
	pkgerrors "github.com/barribox/barribox-backend/pkg/errors"
	"github.com/barribox/barribox-backend/pkg/logger"
	"google.golang.org/genai"
)

// ErrDisabled is returned when no API key is configured.
var ErrDisabled = errors.New("generation api not configured")

// Request is one generation call.
type Request struct {
	System string
	Prompt string
	// Schema switches the call to JSON output constrained by the schema.
	Schema *genai.Schema
}

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

type modelsAPI interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client calls Gemini through google.golang.org/genai.
type Client struct {
	models  modelsAPI
	model   string
	timeout time.Duration
	logg    *logger.Logger
}

// New returns a disabled generator when the config carries no API key.
func New(ctx context.Context, cfg config.GenAIConfig, logg *logger.Logger) (Generator, error) {
	if !cfg.Enabled() {
		return Disabled{}, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return newClient(client.Models, cfg, logg), nil
}

func newClient(models modelsAPI, cfg config.GenAIConfig, logg *logger.Logger) *Client {
	if logg == nil {
		logg = logger.Nop()
	}
	return &Client{
		models:  models,
		model:   cfg.Model,
		timeout: cfg.Timeout,
		logg:    logg,
	}
}

func (c *Client) Generate(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "prompt required")
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	cfg := &genai.GenerateContentConfig{}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.Schema != nil {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = req.Schema
	}

	start := time.Now()
	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "generate content")
	}
	text := strings.TrimSpace(resp.Text())
	c.logg.Debug(c.logg.WithFields(ctx, map[string]any{
		"model":      c.model,
		"structured": req.Schema != nil,
		"elapsed_ms": time.Since(start).Milliseconds(),
		"chars":      len(text),
	}), "llm.generated")
	return text, nil
}

// Disabled always fails, which sends every assistant surface to its
// fallback reply.
type Disabled struct{}

func (Disabled) Generate(context.Context, Request) (string, error) {
	return "", ErrDisabled
}
