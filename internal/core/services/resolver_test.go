package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clarita-labs/clarita-cli/internal/core/domain"
)

func TestResolver_PreciseOffsetsFromSegments(t *testing.T) {
	resolver := NewOffsetResolver()
	source := NewSegmenter().Segment("O gato subiu. O cão dormiu.", domain.RoleSource)
	target := NewSegmenter().Segment("O felino subiu.", domain.RoleTarget)
	require.Len(t, source, 2)

	ev := substitutionEvidence(0.85, 0.1)
	strategy := resolver.Resolve(ev, 0.88, "rule sl-substitution", source, target)

	require.NotNil(t, strategy.SourceOffsets)
	assert.False(t, strategy.ApproximateOffsets)
	assert.Equal(t, "O gato subiu.", "O gato subiu. O cão dormiu."[strategy.SourceOffsets.Start:strategy.SourceOffsets.End])
	assert.Equal(t, "O felino subiu.", "O felino subiu."[strategy.TargetOffsets.Start:strategy.TargetOffsets.End])
	assert.Equal(t, 0.88, strategy.Confidence)
	assert.Equal(t, domain.CodeLexicalSimplification, strategy.Code)
}

func TestResolver_ApproximateWhenSpansMissing(t *testing.T) {
	resolver := NewOffsetResolver()
	source := []domain.Segment{
		{Role: domain.RoleSource, Index: 0, Text: "first"},
		{Role: domain.RoleSource, Index: 1, Text: "second"},
	}
	target := []domain.Segment{{Role: domain.RoleTarget, Index: 0, Text: "alvo"}}

	ev := substitutionEvidence(0.9, 0.1)
	ev.Pair.SourceIndex = 1
	strategy := resolver.Resolve(ev, 0.8, "", source, target)

	require.NotNil(t, strategy.SourceOffsets)
	assert.True(t, strategy.ApproximateOffsets)
	// "first" plus one separator
	assert.Equal(t, 6, strategy.SourceOffsets.Start)
	assert.Equal(t, 6+len("second"), strategy.SourceOffsets.End)
}

func TestResolver_OutOfRangeIndexYieldsNoOffsets(t *testing.T) {
	resolver := NewOffsetResolver()
	target := []domain.Segment{{Role: domain.RoleTarget, Index: 0, Text: "alvo", CharStart: 0, CharEnd: 4}}

	ev := substitutionEvidence(0.9, 0.1)
	ev.Pair.SourceIndex = 5
	strategy := resolver.Resolve(ev, 0.8, "", nil, target)

	assert.Nil(t, strategy.SourceOffsets)
	assert.True(t, strategy.ApproximateOffsets)
}

func TestStrategyID_Deterministic(t *testing.T) {
	a := StrategyID(domain.CodeLexicalSimplification, 0, 0, "sl-substitution")
	b := StrategyID(domain.CodeLexicalSimplification, 0, 0, "sl-substitution")

	assert.Equal(t, a, b)
	assert.True(t, strings.HasPrefix(a, "st-"))
	assert.Len(t, a, len("st-")+12)
}

func TestStrategyID_DistinguishesCoordinates(t *testing.T) {
	base := StrategyID(domain.CodeLexicalSimplification, 0, 0, "sl-substitution")

	assert.NotEqual(t, base, StrategyID(domain.CodeCompression, 0, 0, "sl-substitution"))
	assert.NotEqual(t, base, StrategyID(domain.CodeLexicalSimplification, 1, 0, "sl-substitution"))
	assert.NotEqual(t, base, StrategyID(domain.CodeLexicalSimplification, 0, 1, "sl-substitution"))
	assert.NotEqual(t, base, StrategyID(domain.CodeLexicalSimplification, 0, 0, "sl-complexity"))
}
