// Package cli implements the command-line driving adapter.
// Commands are thin: they parse flags, call driving port services and
// format output. All behaviour lives in the core services.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/clarita-labs/clarita-cli/internal/core/ports/driven"
	"github.com/clarita-labs/clarita-cli/internal/core/ports/driving"
	"github.com/clarita-labs/clarita-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services injected by main before Execute.
var (
	analysisService   driving.AnalysisService
	annotationService driving.AnnotationService
	configStore       driven.ConfigStore
)

var rootCmd = &cobra.Command{
	Use:   "clarita",
	Short: "Detect and annotate text simplification strategies",
	Long: `Clarita analyses a complex text against its simplified version,
detects the simplification strategies applied (lexical substitution,
splitting, merging, compression, explicitation, reordering) and manages
the human review lifecycle of the resulting annotations.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
}

var verboseFlag bool

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "print pipeline progress to stderr")
}

// Services bundles everything the CLI commands need.
type Services struct {
	Analysis   driving.AnalysisService
	Annotation driving.AnnotationService
	Config     driven.ConfigStore
}

// SetServices injects service implementations. Must be called before Execute.
func SetServices(s *Services) {
	analysisService = s.Analysis
	annotationService = s.Annotation
	configStore = s.Config
}

// SetVersion overrides the build version string.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
