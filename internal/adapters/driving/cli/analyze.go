package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/clarita-labs/clarita-cli/internal/core/domain"
)

var (
	analyzeThreshold  float64
	analyzeParagraphs bool
	analyzeOmissions  bool
	analyzeJSON       bool
	analyzeSession    string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [source-file] [target-file]",
	Short: "Detect simplification strategies in a text pair",
	Long: `Segments the source and target texts, aligns segments by semantic
similarity and classifies each aligned pair against the strategy taxonomy.

With --session, the detected strategies are committed to an existing
annotation session as pending machine predictions.`,
	Args: cobra.ExactArgs(2),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().Float64VarP(&analyzeThreshold, "threshold", "t", 0, "alignment similarity threshold (0 = configured default)")
	analyzeCmd.Flags().BoolVar(&analyzeParagraphs, "paragraphs", false, "segment on blank lines instead of sentences")
	analyzeCmd.Flags().BoolVar(&analyzeOmissions, "omissions", false, "report unaligned source segments as omission candidates")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "output results as JSON")
	analyzeCmd.Flags().StringVar(&analyzeSession, "session", "", "commit predictions to this annotation session")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if analysisService == nil {
		return errors.New("analysis service not configured")
	}

	sourceText, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading source: %w", err)
	}
	targetText, err := os.ReadFile(args[1])
	if err != nil {
		return fmt.Errorf("reading target: %w", err)
	}

	threshold := analyzeThreshold
	if threshold == 0 && configStore != nil {
		threshold = configStore.GetFloat("alignment.threshold")
	}

	req := domain.AnalysisRequest{
		SourceText: string(sourceText),
		TargetText: string(targetText),
		Options: domain.AnalysisOptions{
			Threshold:               threshold,
			EnableOmissionDetection: analyzeOmissions,
			SegmentParagraphs:       analyzeParagraphs,
		},
	}

	result, err := analysisService.Analyze(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if analyzeSession != "" {
		if annotationService == nil {
			return errors.New("annotation service not configured")
		}
		committed, err := annotationService.CommitPredictions(cmd.Context(), analyzeSession, result.Strategies)
		if err != nil {
			return fmt.Errorf("committing predictions: %w", err)
		}
		cmd.Printf("Committed %d predictions to session %s\n", len(committed), analyzeSession)
	}

	if analyzeJSON {
		return outputAnalysisJSON(cmd, result)
	}
	return outputAnalysisTable(cmd, result)
}

func outputAnalysisJSON(cmd *cobra.Command, result *domain.AnalysisResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputAnalysisTable(cmd *cobra.Command, result *domain.AnalysisResult) error {
	meta := result.Metadata
	cmd.Printf("Segments: %d source, %d target, %d aligned\n",
		meta.SourceSegments, meta.TargetSegments, meta.AlignedPairs)
	if meta.Degraded {
		cmd.Println("Warning: embedding provider unavailable, similarity is lexical-only")
	}
	cmd.Println()

	if len(result.Strategies) == 0 {
		cmd.Println("No strategies detected.")
	} else {
		cmd.Println("Strategies:")
		for i := range result.Strategies {
			s := &result.Strategies[i]
			cmd.Printf("  [%s] %s (%.2f)\n", s.Code, s.Code.Description(), s.Confidence)
			cmd.Printf("      target %d-%d", s.TargetOffsets.Start, s.TargetOffsets.End)
			if s.SourceOffsets != nil {
				cmd.Printf(", source %d-%d", s.SourceOffsets.Start, s.SourceOffsets.End)
			}
			if s.ApproximateOffsets {
				cmd.Print(" (approximate)")
			}
			cmd.Println()
			if s.EvidenceSummary != "" {
				cmd.Printf("      %s\n", s.EvidenceSummary)
			}
		}
	}

	if len(meta.OmissionCandidates) > 0 {
		cmd.Println()
		cmd.Println("Omission candidates (review manually):")
		for _, c := range meta.OmissionCandidates {
			cmd.Printf("  source segment %d (%d-%d): %s\n",
				c.SourceIndex, c.Offsets.Start, c.Offsets.End, c.Text)
		}
	}

	return nil
}
