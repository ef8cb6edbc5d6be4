package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clarita-labs/clarita-cli/internal/core/domain"
)

func TestExportCmd_Use(t *testing.T) {
	assert.Equal(t, "export [session-id]", exportCmd.Use)
}

func TestExportCmd_DefaultFormatIsJSONL(t *testing.T) {
	flag := exportCmd.Flags().Lookup("format")
	require.NotNil(t, flag)
	assert.Equal(t, "jsonl", flag.DefValue)
}

func TestExportCmd_WritesToStdout(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	session := createTestSession(t, "complex text", "simple text")
	addTestAnnotation(t, session.ID, domain.CodeExplicitation)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"export", session.ID})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), `"code":"EX+"`)
}

func TestExportCmd_SkipsRejectedByDefault(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	session := createTestSession(t, "complex text", "simple text")
	addTestAnnotation(t, session.ID, domain.CodeExplicitation)
	rejected := addTestAnnotation(t, session.ID, domain.CodeCompression)
	require.NoError(t, annotationService.Reject(context.Background(), rejected.ID))

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"export", session.ID})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), `"code":"EX+"`)
	assert.NotContains(t, buf.String(), `"status":"rejected"`)

	buf.Reset()
	rootCmd.SetArgs([]string{"export", "--include-rejected", session.ID})
	defer func() {
		exportRejected = false
	}()

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), `"status":"rejected"`)
}

func TestExportCmd_RejectsUnknownFormat(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"export", "--format", "xml", "ses-1"})
	defer func() {
		rootCmd.SetArgs(nil)
		exportFormat = "jsonl"
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown export format")
}

func TestExportImportCmd_FileRoundTrip(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	session := createTestSession(t, "complex text", "simple text")
	addTestAnnotation(t, session.ID, domain.CodeExplicitation)

	exportPath := filepath.Join(t.TempDir(), "annotations.jsonl")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"export", "--output", exportPath, session.ID})
	defer func() {
		rootCmd.SetArgs(nil)
		exportOutput = ""
	}()

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "Exported session")

	data, err := os.ReadFile(exportPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"code":"EX+"`)

	// Import into a fresh session
	other := createTestSession(t, "complex text", "simple text")

	buf.Reset()
	rootCmd.SetArgs([]string{"import", "--input", exportPath, other.ID})
	defer func() {
		importInput = ""
	}()

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "Imported 1 annotations")
}

func TestImportCmd_Use(t *testing.T) {
	assert.Equal(t, "import [session-id]", importCmd.Use)
}
