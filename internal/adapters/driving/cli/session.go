package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var sessionName string

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage annotation sessions",
	Long:  `Create and inspect annotation sessions over source/target text pairs.`,
}

var sessionCreateCmd = &cobra.Command{
	Use:   "create [source-file] [target-file]",
	Short: "Create an annotation session",
	Args:  cobra.ExactArgs(2),
	RunE:  runSessionCreate,
}

var sessionShowCmd = &cobra.Command{
	Use:   "show [session-id]",
	Short: "Show session info",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionShow,
}

func init() {
	sessionCreateCmd.Flags().StringVar(&sessionName, "name", "", "human-readable session label")
	sessionCmd.AddCommand(sessionCreateCmd)
	sessionCmd.AddCommand(sessionShowCmd)
	rootCmd.AddCommand(sessionCmd)
}

func runSessionCreate(cmd *cobra.Command, args []string) error {
	if annotationService == nil {
		return errors.New("annotation service not configured")
	}

	sourceText, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading source: %w", err)
	}
	targetText, err := os.ReadFile(args[1])
	if err != nil {
		return fmt.Errorf("reading target: %w", err)
	}

	session, err := annotationService.CreateSession(cmd.Context(), sessionName, string(sourceText), string(targetText))
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}

	cmd.Printf("Created session: %s\n", session.ID)
	if session.Name != "" {
		cmd.Printf("  Name: %s\n", session.Name)
	}
	return nil
}

func runSessionShow(cmd *cobra.Command, args []string) error {
	if annotationService == nil {
		return errors.New("annotation service not configured")
	}

	session, err := annotationService.GetSession(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("getting session: %w", err)
	}

	cmd.Printf("Session: %s\n", session.ID)
	if session.Name != "" {
		cmd.Printf("  Name: %s\n", session.Name)
	}
	cmd.Printf("  Source: %d bytes\n", len(session.SourceText))
	cmd.Printf("  Target: %d bytes\n", len(session.TargetText))
	cmd.Printf("  Created: %s\n", session.CreatedAt.Format("2006-01-02 15:04:05"))
	cmd.Printf("  Updated: %s\n", session.UpdatedAt.Format("2006-01-02 15:04:05"))
	return nil
}
