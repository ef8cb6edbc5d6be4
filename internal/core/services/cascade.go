package services

import (
	"sort"

	"github.com/clarita-labs/clarita-cli/internal/core/domain"
	"github.com/clarita-labs/clarita-cli/internal/logger"
)

// Rule is one entry in the evidence cascade: a predicate over the feature
// vector plus the weights used later for confidence scoring.
type Rule struct {
	// ID uniquely identifies the rule within the table.
	ID string

	// Code is the strategy the rule emits evidence for.
	Code domain.StrategyCode

	// Priority orders evaluation; lower runs first.
	Priority int

	// Predicate decides whether the rule matches a feature vector.
	Predicate func(domain.FeatureVector) bool

	// Weights maps feature names to their contribution in the base
	// confidence score for evidence emitted by this rule.
	Weights map[string]float64
}

// EvidenceCascade evaluates an ordered rule table per aligned pair.
// First match wins per code; distinct codes stack independently, since one
// pair may exhibit several simultaneous strategies.
type EvidenceCascade struct {
	rules []Rule
}

// NewEvidenceCascade creates a cascade over the given table, sorted by
// priority. With no rules the default table is used.
func NewEvidenceCascade(rules []Rule) *EvidenceCascade {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	sorted := make([]Rule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority < sorted[j].Priority
	})
	return &EvidenceCascade{rules: sorted}
}

// Evaluate runs the cascade for one pair. Evidence is emitted in rule
// priority order, at most one per strategy code.
func (c *EvidenceCascade) Evaluate(pair domain.AlignedPair, features domain.FeatureVector) []domain.StrategyEvidence {
	var evidence []domain.StrategyEvidence
	matched := make(map[domain.StrategyCode]bool)

	for _, rule := range c.rules {
		if matched[rule.Code] {
			// First match wins per code; coarser rules are skipped.
			continue
		}
		if !rule.Predicate(features) {
			continue
		}
		matched[rule.Code] = true
		evidence = append(evidence, domain.StrategyEvidence{
			Code:     rule.Code,
			RuleID:   rule.ID,
			Pair:     pair,
			Features: features.Clone(),
		})
		logger.Debug("Cascade: rule %s matched code %s on pair %d→%d",
			rule.ID, rule.Code, pair.SourceIndex, pair.TargetIndex)
	}

	return evidence
}

// Rule returns the rule with the given ID, if present.
func (c *EvidenceCascade) Rule(id string) (Rule, bool) {
	for _, r := range c.rules {
		if r.ID == id {
			return r, true
		}
	}
	return Rule{}, false
}

// DefaultRules is the built-in rule table encoding the domain thresholds.
func DefaultRules() []Rule {
	return []Rule{
		{
			ID:       "sl-substitution",
			Code:     domain.CodeLexicalSimplification,
			Priority: 10,
			Predicate: func(f domain.FeatureVector) bool {
				return f.Get(domain.FeatureVocabularyOverlap) < 0.5 &&
					f.Get(domain.FeatureSemanticSimilarity) > 0.7
			},
			Weights: map[string]float64{
				domain.FeatureSemanticSimilarity: 0.55,
				domain.FeatureVocabularyOverlap:  -0.45,
			},
		},
		{
			ID:       "sl-complexity",
			Code:     domain.CodeLexicalSimplification,
			Priority: 20,
			Predicate: func(f domain.FeatureVector) bool {
				return f.Get(domain.FeatureWordComplexityReduction) > 0.15 &&
					f.Get(domain.FeatureSemanticSimilarity) > 0.7
			},
			Weights: map[string]float64{
				domain.FeatureSemanticSimilarity:      0.5,
				domain.FeatureWordComplexityReduction: 0.5,
			},
		},
		{
			ID:       "sp-split",
			Code:     domain.CodeSentenceSplitting,
			Priority: 10,
			Predicate: func(f domain.FeatureVector) bool {
				return f.Get(domain.FeatureSentenceCountRatio) >= 1.5 &&
					f.Get(domain.FeatureSemanticSimilarity) > 0.6
			},
			Weights: map[string]float64{
				domain.FeatureSemanticSimilarity: 0.6,
				domain.FeatureSentenceCountRatio: 0.15,
			},
		},
		{
			ID:       "mg-merge",
			Code:     domain.CodeSentenceMerging,
			Priority: 10,
			Predicate: func(f domain.FeatureVector) bool {
				ratio := f.Get(domain.FeatureSentenceCountRatio)
				return ratio > 0 && ratio <= 0.67 &&
					f.Get(domain.FeatureSemanticSimilarity) > 0.6
			},
			Weights: map[string]float64{
				domain.FeatureSemanticSimilarity: 0.7,
				domain.FeatureSentenceCountRatio: 0.3,
			},
		},
		{
			ID:       "cp-reduction",
			Code:     domain.CodeCompression,
			Priority: 10,
			Predicate: func(f domain.FeatureVector) bool {
				ratio := f.Get(domain.FeatureCompressionRatio)
				return ratio > 0 && ratio < 0.7 &&
					f.Get(domain.FeatureSemanticSimilarity) > 0.6
			},
			Weights: map[string]float64{
				domain.FeatureSemanticSimilarity: 0.6,
				domain.FeatureCompressionRatio:   -0.4,
			},
		},
		{
			ID:       "ex-expansion",
			Code:     domain.CodeExplicitation,
			Priority: 10,
			Predicate: func(f domain.FeatureVector) bool {
				return f.Get(domain.FeatureCompressionRatio) > 1.3 &&
					f.Get(domain.FeatureSemanticSimilarity) > 0.6
			},
			Weights: map[string]float64{
				domain.FeatureSemanticSimilarity: 0.6,
				domain.FeatureCompressionRatio:   0.2,
			},
		},
		{
			ID:       "ro-reorder",
			Code:     domain.CodeReordering,
			Priority: 10,
			Predicate: func(f domain.FeatureVector) bool {
				return f.Get(domain.FeatureWordOrderDivergence) > 0.3 &&
					f.Get(domain.FeatureVocabularyOverlap) > 0.6 &&
					f.Get(domain.FeatureSemanticSimilarity) > 0.8
			},
			Weights: map[string]float64{
				domain.FeatureSemanticSimilarity:  0.5,
				domain.FeatureWordOrderDivergence: 0.5,
			},
		},
		// Guardrailed codes: the rules exist so the cascade is complete,
		// but the guardrail policy strips their evidence unconditionally.
		{
			ID:       "om-drop",
			Code:     domain.CodeSelectiveOmission,
			Priority: 10,
			Predicate: func(f domain.FeatureVector) bool {
				ratio := f.Get(domain.FeatureCompressionRatio)
				return ratio > 0 && ratio < 0.4
			},
			Weights: map[string]float64{
				domain.FeatureCompressionRatio: -1.0,
			},
		},
		{
			ID:       "sd-deviation",
			Code:     domain.CodeSemanticDeviation,
			Priority: 10,
			Predicate: func(f domain.FeatureVector) bool {
				return f.Get(domain.FeatureSemanticSimilarity) < 0.35 &&
					f.Get(domain.FeatureVocabularyOverlap) < 0.2
			},
			Weights: map[string]float64{
				domain.FeatureSemanticSimilarity: -1.0,
			},
		},
	}
}

// GuardrailPolicy is a static allow-list keyed by origin: restricted codes
// may only ever exist with human origin. It is applied between cascade
// output and the confidence engine, guaranteeing the invariant by
// construction rather than by downstream validation.
type GuardrailPolicy struct {
	restricted map[domain.StrategyCode]bool
}

// NewGuardrailPolicy creates the default policy restricting selective
// omission and semantic deviation to human origin.
func NewGuardrailPolicy() *GuardrailPolicy {
	return &GuardrailPolicy{
		restricted: map[domain.StrategyCode]bool{
			domain.CodeSelectiveOmission: true,
			domain.CodeSemanticDeviation: true,
		},
	}
}

// Restricted returns true if the code may not be machine-emitted.
func (p *GuardrailPolicy) Restricted(code domain.StrategyCode) bool {
	return p.restricted[code]
}

// AllowedOrigin checks whether a code may exist with the given origin.
func (p *GuardrailPolicy) AllowedOrigin(code domain.StrategyCode, origin domain.AnnotationOrigin) bool {
	if origin == domain.OriginHuman {
		return true
	}
	return !p.restricted[code]
}

// Filter strips evidence for restricted codes. Dropping is silent: it is
// an expected filtering outcome, not a failure.
func (p *GuardrailPolicy) Filter(evidence []domain.StrategyEvidence) []domain.StrategyEvidence {
	filtered := evidence[:0:0]
	for _, ev := range evidence {
		if p.restricted[ev.Code] {
			logger.Debug("Guardrail: dropped machine evidence for restricted code %s", ev.Code)
			continue
		}
		filtered = append(filtered, ev)
	}
	return filtered
}
