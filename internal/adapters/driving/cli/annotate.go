package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clarita-labs/clarita-cli/internal/core/domain"
	"github.com/clarita-labs/clarita-cli/internal/core/ports/driving"
)

var (
	annotateCode        string
	annotateStart       int
	annotateEnd         int
	annotateSourceStart int
	annotateSourceEnd   int
	annotateComment     string

	listStatus    string
	listCode      string
	listOrigin    string
	listValidated bool
	listRejected  bool

	modifyCode    string
	modifyStart   int
	modifyEnd     int
	modifyComment string

	spanStart   int
	spanEnd     int
	spanComment string
)

var annotateCmd = &cobra.Command{
	Use:   "annotate",
	Short: "Review and manage annotations",
	Long: `Create human annotations and apply review actions to machine
predictions. Every mutation is recorded in the session audit trail.`,
}

var annotateAddCmd = &cobra.Command{
	Use:   "add [session-id]",
	Short: "Add a human annotation",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnnotateAdd,
}

var annotateListCmd = &cobra.Command{
	Use:   "list [session-id]",
	Short: "List annotations in a session",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnnotateList,
}

var annotateAcceptCmd = &cobra.Command{
	Use:   "accept [annotation-id]",
	Short: "Accept an annotation",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnnotateAccept,
}

var annotateRejectCmd = &cobra.Command{
	Use:   "reject [annotation-id]",
	Short: "Reject an annotation",
	Long:  `Excludes the annotation from the active set. The audit trail is retained.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runAnnotateReject,
}

var annotateModifyCmd = &cobra.Command{
	Use:   "modify [annotation-id]",
	Short: "Change an annotation's code or offsets",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnnotateModify,
}

var annotateSpanCmd = &cobra.Command{
	Use:   "span [annotation-id]",
	Short: "Adjust an annotation's target offsets",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnnotateSpan,
}

func init() {
	annotateAddCmd.Flags().StringVarP(&annotateCode, "code", "c", "", "strategy code (required)")
	annotateAddCmd.Flags().IntVar(&annotateStart, "start", 0, "target span start (byte offset)")
	annotateAddCmd.Flags().IntVar(&annotateEnd, "end", 0, "target span end (byte offset)")
	annotateAddCmd.Flags().IntVar(&annotateSourceStart, "source-start", -1, "source span start (optional)")
	annotateAddCmd.Flags().IntVar(&annotateSourceEnd, "source-end", -1, "source span end (optional)")
	annotateAddCmd.Flags().StringVar(&annotateComment, "comment", "", "reviewer note")
	_ = annotateAddCmd.MarkFlagRequired("code")

	annotateListCmd.Flags().StringVar(&listStatus, "status", "", "filter by status (pending, accepted, rejected, modified, created)")
	annotateListCmd.Flags().StringVar(&listCode, "code", "", "filter by strategy code")
	annotateListCmd.Flags().StringVar(&listOrigin, "origin", "", "filter by origin (machine, human)")
	annotateListCmd.Flags().BoolVar(&listValidated, "gold", false, "only validated annotations")
	annotateListCmd.Flags().BoolVar(&listRejected, "include-rejected", false, "include rejected annotations")

	annotateModifyCmd.Flags().StringVarP(&modifyCode, "code", "c", "", "new strategy code")
	annotateModifyCmd.Flags().IntVar(&modifyStart, "start", -1, "new target span start")
	annotateModifyCmd.Flags().IntVar(&modifyEnd, "end", -1, "new target span end")
	annotateModifyCmd.Flags().StringVar(&modifyComment, "comment", "", "reviewer note")

	annotateSpanCmd.Flags().IntVar(&spanStart, "start", 0, "new target span start")
	annotateSpanCmd.Flags().IntVar(&spanEnd, "end", 0, "new target span end")
	annotateSpanCmd.Flags().StringVar(&spanComment, "comment", "", "reviewer note")
	_ = annotateSpanCmd.MarkFlagRequired("start")
	_ = annotateSpanCmd.MarkFlagRequired("end")

	annotateCmd.AddCommand(annotateAddCmd)
	annotateCmd.AddCommand(annotateListCmd)
	annotateCmd.AddCommand(annotateAcceptCmd)
	annotateCmd.AddCommand(annotateRejectCmd)
	annotateCmd.AddCommand(annotateModifyCmd)
	annotateCmd.AddCommand(annotateSpanCmd)
	rootCmd.AddCommand(annotateCmd)
}

func runAnnotateAdd(cmd *cobra.Command, args []string) error {
	if annotationService == nil {
		return errors.New("annotation service not configured")
	}

	req := driving.CreateRequest{
		Code:          domain.StrategyCode(annotateCode),
		TargetOffsets: domain.Offset{Start: annotateStart, End: annotateEnd},
		Comment:       annotateComment,
	}
	if annotateSourceStart >= 0 && annotateSourceEnd >= 0 {
		req.SourceOffsets = &domain.Offset{Start: annotateSourceStart, End: annotateSourceEnd}
	}

	annotation, err := annotationService.Create(cmd.Context(), args[0], req)
	if err != nil {
		return fmt.Errorf("creating annotation: %w", err)
	}

	cmd.Printf("Created annotation: %s [%s]\n", annotation.ID, annotation.Code)
	return nil
}

func runAnnotateList(cmd *cobra.Command, args []string) error {
	if annotationService == nil {
		return errors.New("annotation service not configured")
	}

	filter := domain.AnnotationFilter{
		Status:          domain.AnnotationStatus(listStatus),
		Code:            domain.StrategyCode(listCode),
		Origin:          domain.AnnotationOrigin(listOrigin),
		Validated:       listValidated,
		IncludeRejected: listRejected,
	}

	annotations, err := annotationService.Search(cmd.Context(), args[0], filter)
	if err != nil {
		return fmt.Errorf("listing annotations: %w", err)
	}

	if len(annotations) == 0 {
		cmd.Println("No annotations found.")
		return nil
	}

	cmd.Printf("Annotations (%d):\n", len(annotations))
	for i := range annotations {
		printAnnotation(cmd, &annotations[i])
	}
	return nil
}

func printAnnotation(cmd *cobra.Command, a *domain.Annotation) {
	marker := " "
	if a.Validated {
		marker = "*"
	}
	cmd.Printf("  %s %s [%s] %s/%s", marker, a.ID, a.Code, a.Origin, a.Status)
	if a.Origin == domain.OriginMachine {
		cmd.Printf(" (%.2f)", a.Confidence)
	}
	cmd.Println()
	cmd.Printf("      target %d-%d", a.TargetOffsets.Start, a.TargetOffsets.End)
	if a.SourceOffsets != nil {
		cmd.Printf(", source %d-%d", a.SourceOffsets.Start, a.SourceOffsets.End)
	}
	if a.OriginalCode != "" && a.OriginalCode != a.Code {
		cmd.Printf(" (originally %s)", a.OriginalCode)
	}
	cmd.Println()
	if a.Comment != "" {
		cmd.Printf("      %s\n", a.Comment)
	}
}

func runAnnotateAccept(cmd *cobra.Command, args []string) error {
	if annotationService == nil {
		return errors.New("annotation service not configured")
	}

	annotation, err := annotationService.Accept(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("accepting annotation: %w", err)
	}

	cmd.Printf("Accepted annotation: %s [%s]\n", annotation.ID, annotation.Code)
	return nil
}

func runAnnotateReject(cmd *cobra.Command, args []string) error {
	if annotationService == nil {
		return errors.New("annotation service not configured")
	}

	if err := annotationService.Reject(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("rejecting annotation: %w", err)
	}

	cmd.Printf("Rejected annotation: %s\n", args[0])
	return nil
}

func runAnnotateModify(cmd *cobra.Command, args []string) error {
	if annotationService == nil {
		return errors.New("annotation service not configured")
	}

	req := driving.PatchRequest{
		Action:  driving.PatchModify,
		NewCode: domain.StrategyCode(modifyCode),
		Comment: modifyComment,
	}
	if modifyStart >= 0 && modifyEnd >= 0 {
		req.NewOffsets = &domain.Offset{Start: modifyStart, End: modifyEnd}
	}

	annotation, err := annotationService.Patch(cmd.Context(), args[0], req)
	if err != nil {
		return fmt.Errorf("modifying annotation: %w", err)
	}

	cmd.Printf("Modified annotation: %s [%s]\n", annotation.ID, annotation.Code)
	return nil
}

func runAnnotateSpan(cmd *cobra.Command, args []string) error {
	if annotationService == nil {
		return errors.New("annotation service not configured")
	}

	req := driving.PatchRequest{
		Action:     driving.PatchModifySpan,
		NewOffsets: &domain.Offset{Start: spanStart, End: spanEnd},
		Comment:    spanComment,
	}

	annotation, err := annotationService.Patch(cmd.Context(), args[0], req)
	if err != nil {
		return fmt.Errorf("adjusting span: %w", err)
	}

	cmd.Printf("Adjusted annotation: %s (target %d-%d)\n",
		annotation.ID, annotation.TargetOffsets.Start, annotation.TargetOffsets.End)
	return nil
}
