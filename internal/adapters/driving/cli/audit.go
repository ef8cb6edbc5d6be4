package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var auditAnnotation string

var auditCmd = &cobra.Command{
	Use:   "audit [session-id]",
	Short: "Show the audit trail for a session",
	Long: `Prints the append-only audit trail recording every annotation
mutation in the session. Use --annotation to narrow to one annotation.`,
	Args: cobra.ExactArgs(1),
	RunE: runAudit,
}

func init() {
	auditCmd.Flags().StringVarP(&auditAnnotation, "annotation", "a", "", "restrict to one annotation ID")
	rootCmd.AddCommand(auditCmd)
}

func runAudit(cmd *cobra.Command, args []string) error {
	if annotationService == nil {
		return errors.New("annotation service not configured")
	}

	events, err := annotationService.Audit(cmd.Context(), args[0], auditAnnotation)
	if err != nil {
		return fmt.Errorf("reading audit trail: %w", err)
	}

	if len(events) == 0 {
		cmd.Println("No audit events.")
		return nil
	}

	cmd.Printf("Audit trail (%d events):\n", len(events))
	for _, e := range events {
		transition := string(e.ToStatus)
		if e.FromStatus != "" {
			transition = fmt.Sprintf("%s -> %s", e.FromStatus, e.ToStatus)
		}
		cmd.Printf("  %s %-11s %s (%s) by %s\n",
			e.Timestamp.Format("2006-01-02 15:04:05"),
			e.Action, e.AnnotationID, transition, e.Actor)
	}
	return nil
}
