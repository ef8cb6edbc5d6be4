package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/clarita-labs/clarita-cli/internal/adapters/driven/embedding/hashing"
	"github.com/clarita-labs/clarita-cli/internal/adapters/driven/storage/memory"
	"github.com/clarita-labs/clarita-cli/internal/core/domain"
	"github.com/clarita-labs/clarita-cli/internal/core/services"
)

// setupTestServices wires real services backed by in-memory stores and the
// deterministic hashing embedder. Returns a cleanup that restores the
// previous service vars.
func setupTestServices() func() {
	oldAnalysis := analysisService
	oldAnnotation := annotationService
	oldConfig := configStore

	sessions := memory.NewSessionStore()
	annotations := memory.NewAnnotationStore()

	analysisService = services.NewAnalysisPipeline(hashing.NewEmbeddingService(), nil)
	annotationService = services.NewAnnotationReconciler(sessions, annotations)
	configStore = nil

	return func() {
		analysisService = oldAnalysis
		annotationService = oldAnnotation
		configStore = oldConfig
	}
}

// writeTextPair writes source and target fixture files into a temp dir.
func writeTextPair(t *testing.T, source, target string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	sourcePath := filepath.Join(dir, "source.txt")
	targetPath := filepath.Join(dir, "target.txt")
	require.NoError(t, os.WriteFile(sourcePath, []byte(source), 0600))
	require.NoError(t, os.WriteFile(targetPath, []byte(target), 0600))
	return sourcePath, targetPath
}

// createTestSession creates a session through the wired annotation service.
func createTestSession(t *testing.T, source, target string) *domain.Session {
	t.Helper()
	session, err := annotationService.CreateSession(context.Background(), "test", source, target)
	require.NoError(t, err)
	return session
}
