package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"github.com/joseph-ayodele/rental-ledger/internal/llm"
)

// Config for the Gemini client.
type Config struct {
	APIKey      string
	Model       string // default gemini-1.5-flash
	Temperature float32
}

// Client implements llm.ReservationExtractor on the Gemini generateContent API.
type Client struct {
	cfg    Config
	client *genai.Client
	log    *slog.Logger
}

var _ llm.ReservationExtractor = (*Client)(nil)

func NewClient(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.Model == "" {
		cfg.Model = "gemini-1.5-flash"
	}
	if logger == nil {
		logger = slog.Default()
	}
	gc, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Client{cfg: cfg, client: gc, log: logger}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

// Extract returns the text of the first candidate. Gemini often wraps JSON in
// a markdown fence; that is left for the sanitizer.
func (c *Client) Extract(ctx context.Context, text string, contract llm.Contract) (any, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.log.Info("llm.extract.start",
		"req_id", rid,
		"provider", "gemini",
		"model", c.cfg.Model,
		"text_len", len(text),
		"property_hint", contract.PropertyName,
	)

	model := c.client.GenerativeModel(c.cfg.Model)
	model.SetTemperature(c.cfg.Temperature)
	model.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx, promptParts(contract, text)...)
	if err != nil {
		c.log.Error("llm.extract.http_error", "req_id", rid, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, fmt.Errorf("gemini: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		c.log.Error("llm.extract.no_choices", "req_id", rid, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, fmt.Errorf("no candidates in gemini response")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	if b.Len() == 0 {
		return nil, fmt.Errorf("gemini response has no text part")
	}

	c.log.Info("llm.extract.ok", "req_id", rid, "content_len", b.Len(), "elapsed_ms", time.Since(start).Milliseconds())
	return b.String(), nil
}

// promptParts carries the schema as text; genai.Schema has no type unions.
func promptParts(contract llm.Contract, text string) []genai.Part {
	parts := []genai.Part{genai.Text(llm.BuildSystemPrompt(contract))}
	if contract.Schema != nil {
		b, _ := json.MarshalIndent(contract.Schema, "", "  ")
		parts = append(parts, genai.Text("JSON Schema:\n"+string(b)))
	}
	return append(parts, genai.Text(llm.BuildUserPrompt(contract, text)))
}
