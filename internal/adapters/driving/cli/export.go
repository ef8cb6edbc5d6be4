package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/clarita-labs/clarita-cli/internal/core/ports/driving"
)

var (
	exportFormat   string
	exportOutput   string
	exportRejected bool
	importFormat   string
	importInput    string
)

var exportCmd = &cobra.Command{
	Use:   "export [session-id]",
	Short: "Export a session's annotations",
	Long: `Writes the session's active annotations to a file or stdout.
Formats: jsonl (one annotation per line) or csv.

Rejected annotations are left out by default; pass --include-rejected
for a lossless backup.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

var importCmd = &cobra.Command{
	Use:   "import [session-id]",
	Short: "Import annotations from an export file",
	Long: `Restores annotations into a session from a previous export.
The import is all-or-nothing: a malformed record aborts the whole run.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "jsonl", "export format (jsonl, csv)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default stdout)")
	exportCmd.Flags().BoolVar(&exportRejected, "include-rejected", false, "include rejected annotations (lossless backup)")
	importCmd.Flags().StringVarP(&importFormat, "format", "f", "jsonl", "import format (jsonl, csv)")
	importCmd.Flags().StringVarP(&importInput, "input", "i", "", "input file (default stdin)")
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	if annotationService == nil {
		return errors.New("annotation service not configured")
	}

	format := driving.ExportFormat(exportFormat)
	if !format.IsValid() {
		return fmt.Errorf("unknown export format %q", exportFormat)
	}

	var w io.Writer = cmd.OutOrStdout()
	if exportOutput != "" {
		f, err := os.Create(exportOutput)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	opts := driving.ExportOptions{IncludeRejected: exportRejected}
	if err := annotationService.Export(cmd.Context(), args[0], format, opts, w); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if exportOutput != "" {
		cmd.Printf("Exported session %s to %s\n", args[0], exportOutput)
	}
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	if annotationService == nil {
		return errors.New("annotation service not configured")
	}

	format := driving.ExportFormat(importFormat)
	if !format.IsValid() {
		return fmt.Errorf("unknown import format %q", importFormat)
	}

	var r io.Reader = cmd.InOrStdin()
	if importInput != "" {
		f, err := os.Open(importInput)
		if err != nil {
			return fmt.Errorf("opening input file: %w", err)
		}
		defer f.Close()
		r = f
	}

	count, err := annotationService.Import(cmd.Context(), args[0], format, r)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	cmd.Printf("Imported %d annotations into session %s\n", count, args[0])
	return nil
}
