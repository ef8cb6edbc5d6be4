// Package salience provides an enhancement provider backed by a salience
// extraction HTTP service. The service returns a plain extraction and a
// context-aware one; the pipeline blends their quality signals into the
// final confidence score.
package salience

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/clarita-labs/clarita-cli/internal/core/domain"
	"github.com/clarita-labs/clarita-cli/internal/core/ports/driven"
)

// Ensure Provider implements the interface.
var _ driven.EnhancementProvider = (*Provider)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "http://localhost:8710"
	DefaultTimeout = 15 * time.Second

	// DefaultRate throttles requests to the extraction service.
	DefaultRate = 5.0
)

// Config holds configuration for the salience provider.
type Config struct {
	// BaseURL is the extraction service base URL.
	BaseURL string

	// Timeout is the request timeout (default: 15s).
	Timeout time.Duration

	// RequestsPerSecond caps the request rate (default: 5).
	RequestsPerSecond float64
}

// Provider calls the salience extraction service.
type Provider struct {
	client  *http.Client
	baseURL string
	limiter *rate.Limiter
}

// extractRequest is the service request format.
type extractRequest struct {
	Text     string `json:"text"`
	MaxUnits int    `json:"max_units"`
	Context  string `json:"context,omitempty"`
}

// extractResponse is the service response format. Base is the plain
// extraction; enhanced is recomputed with the context hint.
type extractResponse struct {
	Base     extractionPayload  `json:"base"`
	Enhanced *extractionPayload `json:"enhanced,omitempty"`
}

type extractionPayload struct {
	Units   []string  `json:"units"`
	Scores  []float64 `json:"scores"`
	Quality float64   `json:"quality"`
}

// NewProvider creates a salience provider.
func NewProvider(cfg Config) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultRate
	}

	return &Provider{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
	}
}

// Extract requests a base and an enhanced extraction for the text.
func (p *Provider) Extract(ctx context.Context, text string, maxUnits int, contextHint string) (*driven.ExtractionResult, *driven.ExtractionResult, error) {
	if text == "" {
		return nil, nil, fmt.Errorf("%w: empty text", domain.ErrInvalidInput)
	}
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, nil, err
	}

	jsonBody, err := json.Marshal(extractRequest{
		Text:     text,
		MaxUnits: maxUnits,
		Context:  contextHint,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		p.baseURL+"/v1/extract",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", domain.ErrEnhancementUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, nil, fmt.Errorf("%w: status %d: %s",
			domain.ErrEnhancementUnavailable, resp.StatusCode, string(body))
	}

	var payload extractResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, nil, fmt.Errorf("decode response: %w", err)
	}

	base := toResult(payload.Base)
	var enhanced *driven.ExtractionResult
	if payload.Enhanced != nil {
		enhanced = toResult(*payload.Enhanced)
	}
	return base, enhanced, nil
}

// Compare measures how much the enhanced extraction improves on the base.
// Overlap is the Jaccard similarity of the unit sets.
func (p *Provider) Compare(base, enhanced *driven.ExtractionResult) driven.Comparison {
	if base == nil || enhanced == nil {
		return driven.Comparison{}
	}

	baseSet := make(map[string]bool, len(base.Units))
	for _, u := range base.Units {
		baseSet[u] = true
	}
	shared := 0
	for _, u := range enhanced.Units {
		if baseSet[u] {
			shared++
		}
	}
	union := len(baseSet) + len(enhanced.Units) - shared

	overlap := 0.0
	if union > 0 {
		overlap = float64(shared) / float64(union)
	}

	return driven.Comparison{
		QualityImprovement: enhanced.Quality - base.Quality,
		Overlap:            overlap,
	}
}

// Name identifies the provider in logs and evidence summaries.
func (p *Provider) Name() string {
	return "salience"
}

func toResult(payload extractionPayload) *driven.ExtractionResult {
	return &driven.ExtractionResult{
		Units:   payload.Units,
		Scores:  payload.Scores,
		Quality: payload.Quality,
	}
}
