package services

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/clarita-labs/clarita-cli/internal/core/domain"
)

// OffsetResolver maps evidence onto character offsets in the session texts.
// Segments carrying byte-accurate spans get precise offsets; anything else
// falls back to an approximation derived from segment ordering.
type OffsetResolver struct{}

// NewOffsetResolver creates an offset resolver.
func NewOffsetResolver() *OffsetResolver {
	return &OffsetResolver{}
}

// Resolve builds a Strategy from scored evidence, attaching offsets for the
// matched source and target segments.
func (r *OffsetResolver) Resolve(
	ev domain.StrategyEvidence,
	confidence float64,
	summary string,
	source, target []domain.Segment,
) domain.Strategy {
	srcOff, srcPrecise := segmentOffsets(source, ev.Pair.SourceIndex)
	tgtOff, tgtPrecise := segmentOffsets(target, ev.Pair.TargetIndex)

	var tgt domain.Offset
	if tgtOff != nil {
		tgt = *tgtOff
	}

	return domain.Strategy{
		ID:                 StrategyID(ev.Code, ev.Pair.SourceIndex, ev.Pair.TargetIndex, ev.RuleID),
		Code:               ev.Code,
		Confidence:         confidence,
		SourceOffsets:      srcOff,
		TargetOffsets:      tgt,
		ApproximateOffsets: !srcPrecise || !tgtPrecise,
		EvidenceSummary:    summary,
	}
}

// segmentOffsets returns the span for the segment at index, and whether the
// span is byte-accurate. Out-of-range indexes yield no offsets.
func segmentOffsets(segments []domain.Segment, index int) (*domain.Offset, bool) {
	if index < 0 || index >= len(segments) {
		return nil, false
	}
	seg := segments[index]
	if seg.HasPreciseOffsets() {
		return &domain.Offset{Start: seg.CharStart, End: seg.CharEnd}, true
	}

	// Approximate: prior segment lengths plus one separator each.
	start := 0
	for i := 0; i < index; i++ {
		start += len(segments[i].Text) + 1
	}
	return &domain.Offset{Start: start, End: start + len(seg.Text)}, false
}

// StrategyID derives a stable identifier from the strategy's defining
// coordinates. Re-running the same analysis yields the same id, which lets
// the reconciler match predictions against existing annotations.
func StrategyID(code domain.StrategyCode, sourceIndex, targetIndex int, ruleID string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%d|%d|%s", code, sourceIndex, targetIndex, ruleID)))
	return "st-" + hex.EncodeToString(sum[:])[:12]
}
