package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/clarita-labs/clarita-cli/internal/core/domain"
	"github.com/clarita-labs/clarita-cli/internal/core/ports/driven"
	"github.com/clarita-labs/clarita-cli/internal/logger"
)

// DefaultBlendDelta is the quality improvement above which the blend
// shifts toward the enhancement provider's score.
const DefaultBlendDelta = 0.1

// DefaultMaxUnits bounds the salient units requested per extraction.
const DefaultMaxUnits = 5

// ConfidenceEngine converts strategy evidence into calibrated confidence
// scores. An optional enhancement provider refines scores for codes it is
// enabled for; provider failures degrade silently to the base score.
type ConfidenceEngine struct {
	cascade  *EvidenceCascade
	provider driven.EnhancementProvider
	enabled  map[domain.StrategyCode]bool
	maxUnits int

	// blendDelta may change at runtime via SetBlendDelta.
	mu         sync.RWMutex
	blendDelta float64
}

// ConfidenceOption configures the confidence engine.
type ConfidenceOption func(*ConfidenceEngine)

// WithEnhancement wires an enhancement provider, enabled for the given codes.
func WithEnhancement(provider driven.EnhancementProvider, codes ...domain.StrategyCode) ConfidenceOption {
	return func(e *ConfidenceEngine) {
		e.provider = provider
		e.enabled = make(map[domain.StrategyCode]bool, len(codes))
		for _, c := range codes {
			e.enabled[c] = true
		}
	}
}

// WithBlendDelta sets the quality delta above which blending favours the
// enhanced score.
func WithBlendDelta(delta float64) ConfidenceOption {
	return func(e *ConfidenceEngine) {
		if delta > 0 {
			e.blendDelta = delta
		}
	}
}

// SetBlendDelta adjusts the blend delta at runtime, typically after a
// configuration reload. Non-positive values restore the default.
func (e *ConfidenceEngine) SetBlendDelta(delta float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if delta > 0 {
		e.blendDelta = delta
	} else {
		e.blendDelta = DefaultBlendDelta
	}
}

func (e *ConfidenceEngine) currentBlendDelta() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.blendDelta
}

// NewConfidenceEngine creates a confidence engine over the cascade's rule
// table. The enhancement provider is optional.
func NewConfidenceEngine(cascade *EvidenceCascade, opts ...ConfidenceOption) *ConfidenceEngine {
	e := &ConfidenceEngine{
		cascade:    cascade,
		blendDelta: DefaultBlendDelta,
		maxUnits:   DefaultMaxUnits,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Score computes the calibrated confidence for one piece of evidence,
// together with a human-readable evidence summary.
func (e *ConfidenceEngine) Score(ctx context.Context, ev domain.StrategyEvidence, targetText string) (float64, string) {
	rule, ok := e.cascade.Rule(ev.RuleID)
	if !ok {
		logger.Warn("Confidence: unknown rule %s, scoring zero", ev.RuleID)
		return 0, fmt.Sprintf("rule %s (unknown)", ev.RuleID)
	}

	base := baseConfidence(rule, ev.Features)
	summary := summarize(rule, ev.Features)

	if e.provider == nil || !e.enabled[ev.Code] {
		return base, summary
	}

	blended, usedEnhancement := e.blend(ctx, ev, base, targetText)
	if usedEnhancement {
		summary += fmt.Sprintf("; enhanced by %s", e.provider.Name())
	}
	return blended, summary
}

// blend requests an enhanced extraction and mixes the two confidences.
// The returned bool is false when the provider could not contribute.
func (e *ConfidenceEngine) blend(
	ctx context.Context, ev domain.StrategyEvidence, base float64, targetText string,
) (float64, bool) {
	baseResult, enhanced, err := e.provider.Extract(ctx, targetText, e.maxUnits, ev.Code.Description())
	if err != nil {
		logger.Warn("Enhancement: provider %s failed for code %s: %v (using base score)",
			e.provider.Name(), ev.Code, err)
		return base, false
	}
	if enhanced == nil {
		logger.Debug("Enhancement: no enhanced result for code %s, using base score", ev.Code)
		return base, false
	}

	cmp := e.provider.Compare(baseResult, enhanced)
	enhancedScore := clip01(enhanced.Quality)

	var blended float64
	if cmp.QualityImprovement > e.currentBlendDelta() {
		blended = 0.3*base + 0.7*enhancedScore
	} else {
		blended = 0.7*base + 0.3*enhancedScore
	}
	blended = clip01(blended)

	logger.Info("Enhancement: code=%s base=%.3f enhanced=%.3f delta=%.3f blended=%.3f",
		ev.Code, base, enhancedScore, cmp.QualityImprovement, blended)

	return blended, true
}

// baseConfidence is a weighted combination of the features that triggered
// the rule. Positive weights reward high values; negative weights reward
// low values. The result is clipped to [0,1].
func baseConfidence(rule Rule, features domain.FeatureVector) float64 {
	score := 0.0
	for name, weight := range rule.Weights {
		value := features.Get(name)
		if weight >= 0 {
			score += weight * value
		} else {
			score += -weight * (1 - clip01(value))
		}
	}
	return clip01(score)
}

// summarize names the matched rule and the features its weights draw on.
func summarize(rule Rule, features domain.FeatureVector) string {
	names := make([]string, 0, len(rule.Weights))
	for name := range rule.Weights {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%.2f", name, features.Get(name)))
	}
	return fmt.Sprintf("rule %s: %s", rule.ID, strings.Join(parts, ", "))
}

func clip01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
