package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/clarita-labs/clarita-cli/internal/core/domain"
	"github.com/clarita-labs/clarita-cli/internal/core/ports/driven"
	"github.com/clarita-labs/clarita-cli/internal/core/ports/driving"
	"github.com/clarita-labs/clarita-cli/internal/logger"
)

// degradedConfidenceFactor scales confidences when the pipeline falls back
// to lexical-only similarity.
const degradedConfidenceFactor = 0.6

// AnalysisPipeline runs segmentation, alignment, classification and scoring
// over a source/target text pair. Each run is all-or-nothing: any error
// returns without partial results.
type AnalysisPipeline struct {
	embedding  driven.EmbeddingService
	aligner    *Aligner
	extractor  *FeatureExtractor
	cascade    *EvidenceCascade
	guardrail  *GuardrailPolicy
	confidence *ConfidenceEngine
	resolver   *OffsetResolver
}

var _ driving.AnalysisService = (*AnalysisPipeline)(nil)

// NewAnalysisPipeline wires the pipeline stages. The embedding service may
// be nil, in which case every run is degraded.
func NewAnalysisPipeline(embedding driven.EmbeddingService, confidence *ConfidenceEngine) *AnalysisPipeline {
	cascade := NewEvidenceCascade(DefaultRules())
	if confidence == nil {
		confidence = NewConfidenceEngine(cascade)
	}
	return &AnalysisPipeline{
		embedding:  embedding,
		aligner:    NewAligner(embedding),
		extractor:  NewFeatureExtractor(),
		cascade:    cascade,
		guardrail:  NewGuardrailPolicy(),
		confidence: confidence,
		resolver:   NewOffsetResolver(),
	}
}

// Analyze implements driving.AnalysisService.
func (p *AnalysisPipeline) Analyze(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, error) {
	if strings.TrimSpace(req.SourceText) == "" {
		return nil, fmt.Errorf("%w: source %s", domain.ErrInvalidInput, domain.ErrEmptyText)
	}
	if strings.TrimSpace(req.TargetText) == "" {
		return nil, fmt.Errorf("%w: target %s", domain.ErrInvalidInput, domain.ErrEmptyText)
	}

	logger.Section("Strategy Analysis")

	segmenter := NewSegmenter()
	segmenter.Paragraphs = req.Options.SegmentParagraphs
	source := segmenter.Segment(req.SourceText, domain.RoleSource)
	target := segmenter.Segment(req.TargetText, domain.RoleTarget)
	logger.Debug("Segmented %d source and %d target segments", len(source), len(target))

	alignment, degraded, err := p.aligner.Align(ctx, source, target, req.Options.Threshold)
	if err != nil {
		return nil, fmt.Errorf("alignment failed: %w", err)
	}

	strategies := make([]domain.Strategy, 0, len(alignment.Pairs))
	for _, pair := range alignment.Pairs {
		src := source[pair.SourceIndex]
		tgt := target[pair.TargetIndex]

		features := p.extractor.Extract(src, tgt, pair.Similarity)
		evidence := p.guardrail.Filter(p.cascade.Evaluate(pair, features))

		for _, ev := range evidence {
			conf, summary := p.confidence.Score(ctx, ev, tgt.Text)
			if degraded {
				conf *= degradedConfidenceFactor
			}
			strategies = append(strategies, p.resolver.Resolve(ev, conf, summary, source, target))
		}
	}

	metadata := domain.AnalysisMetadata{
		SourceSegments: len(source),
		TargetSegments: len(target),
		AlignedPairs:   len(alignment.Pairs),
		Degraded:       degraded,
	}
	if p.embedding != nil && !degraded {
		metadata.EmbeddingModel = p.embedding.ModelName()
	}
	if req.Options.EnableOmissionDetection {
		metadata.OmissionCandidates = omissionCandidates(source, alignment.UnalignedSource)
	}

	logger.Info("Analysis complete: %d strategies from %d aligned pairs (degraded=%v)",
		len(strategies), len(alignment.Pairs), degraded)

	return &domain.AnalysisResult{
		Strategies:     strategies,
		Alignment:      *alignment,
		SourceSegments: source,
		TargetSegments: target,
		Metadata:       metadata,
	}, nil
}

// omissionCandidates maps unaligned source segments into review hints.
// Candidates never become machine annotations.
func omissionCandidates(source []domain.Segment, unaligned []int) []domain.OmissionCandidate {
	if len(unaligned) == 0 {
		return nil
	}
	candidates := make([]domain.OmissionCandidate, 0, len(unaligned))
	for _, idx := range unaligned {
		if idx < 0 || idx >= len(source) {
			continue
		}
		seg := source[idx]
		candidates = append(candidates, domain.OmissionCandidate{
			SourceIndex: idx,
			Text:        seg.Text,
			Offsets:     domain.Offset{Start: seg.CharStart, End: seg.CharEnd},
		})
	}
	return candidates
}
