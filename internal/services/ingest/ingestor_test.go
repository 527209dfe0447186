package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/sanitas/internal/common"
	"github.com/ternarybob/sanitas/internal/interfaces"
	"github.com/ternarybob/sanitas/internal/models"
)

// mockPDFExtractor implements interfaces.PDFExtractor for testing
type mockPDFExtractor struct {
	text string
	err  error
}

func (m *mockPDFExtractor) ExtractText(ctx context.Context, path string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.text, nil
}

func (m *mockPDFExtractor) ExtractPages(ctx context.Context, path string) ([]interfaces.PDFPageContent, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []interfaces.PDFPageContent{{PageNumber: 1, Text: m.text}}, nil
}

// mockDocStorage implements interfaces.DocumentStorage for testing
type mockDocStorage struct {
	saved   []*models.Document
	deleted []string
}

func (m *mockDocStorage) SaveDocument(doc *models.Document) error {
	m.saved = append(m.saved, doc)
	return nil
}

func (m *mockDocStorage) GetDocumentBySource(source string) (*models.Document, error) {
	for _, doc := range m.saved {
		if doc.Source == source {
			return doc, nil
		}
	}
	return nil, nil
}

func (m *mockDocStorage) DeleteDocumentBySource(source string) error {
	m.deleted = append(m.deleted, source)
	return nil
}

func (m *mockDocStorage) ListDocuments() ([]*models.Document, error) {
	return m.saved, nil
}

func (m *mockDocStorage) CountDocuments() (int, error) {
	return len(m.saved), nil
}

func testIngestConfig(dir string) *common.Config {
	cfg := common.NewDefaultConfig()
	cfg.Guidelines.Dir = dir
	cfg.Guidelines.Extensions = []string{".pdf", ".md", ".html", ".txt"}
	cfg.Chunking.MaxChars = 200
	cfg.Chunking.OverlapChars = 40
	return cfg
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestIngestDirectoryMixedSources(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "fever.md", "# Fever Management\n\nFever above 39C in infants requires same-day referral.")
	writeFile(t, dir, "burns.txt", "Minor burns should be cooled under running water for twenty minutes.")
	writeFile(t, dir, "notes.json", `{"ignored": true}`)

	storage := &mockDocStorage{}
	service := NewService(testIngestConfig(dir), &mockPDFExtractor{text: "pdf text"}, storage, common.GetLogger())

	result, err := service.IngestDirectory(context.Background())
	require.NoError(t, err)

	assert.Len(t, result.Documents, 2, "json file is not a configured extension")
	assert.Empty(t, result.Failures)
	assert.NotEmpty(t, result.Chunks)

	// Markdown title comes from the first heading
	var feverDoc *models.Document
	for _, doc := range result.Documents {
		if filepath.Base(doc.Source) == "fever.md" {
			feverDoc = doc
		}
	}
	require.NotNil(t, feverDoc)
	assert.Equal(t, "Fever Management", feverDoc.Title)
	assert.NotContains(t, feverDoc.Text, "#", "markup is stripped")

	// Every chunk's document exists and IDs carry the doc ID
	assert.Len(t, storage.saved, 2)
	for _, chunk := range result.Chunks {
		assert.Contains(t, chunk.ID, chunk.DocumentID)
	}
}

func TestIngestDirectoryMissingDirIsNotFatal(t *testing.T) {
	service := NewService(testIngestConfig("/nonexistent/guidelines"), &mockPDFExtractor{}, &mockDocStorage{}, common.GetLogger())

	result, err := service.IngestDirectory(context.Background())
	require.NoError(t, err)
	assert.Empty(t, result.Documents)
	assert.Empty(t, result.Chunks)
}

func TestIngestDirectorySkipsFailedFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.pdf", "%PDF-garbage")
	writeFile(t, dir, "good.txt", "Oral rehydration solution after each loose stool.")

	service := NewService(testIngestConfig(dir), &mockPDFExtractor{err: errors.New("corrupt file")}, &mockDocStorage{}, common.GetLogger())

	result, err := service.IngestDirectory(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Failures, 1)
	assert.Contains(t, result.Failures[0].Source, "broken.pdf")
	require.Len(t, result.Documents, 1)
	assert.Contains(t, result.Documents[0].Source, "good.txt")
}

func TestIngestFileEmptyTextFails(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "empty.txt", "   \n\n  ")

	service := NewService(testIngestConfig(dir), &mockPDFExtractor{}, &mockDocStorage{}, common.GetLogger())

	result, err := service.IngestDirectory(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Failures, 1)
	assert.Contains(t, result.Failures[0].Reason, "no text extracted")
}

func TestReingestReplacesBySource(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "fever.txt", "Original fever guidance text for the clinic.")

	storage := &mockDocStorage{}
	service := NewService(testIngestConfig(dir), &mockPDFExtractor{}, storage, common.GetLogger())

	_, err := service.IngestDirectory(context.Background())
	require.NoError(t, err)
	require.Len(t, storage.saved, 1)
	firstID := storage.saved[0].ID

	// Second pass over the same file deletes the prior document
	_, err = service.IngestDirectory(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{path}, storage.deleted)
	require.Len(t, storage.saved, 2)
	assert.NotEqual(t, firstID, storage.saved[1].ID, "replacement gets a fresh document ID")
}
