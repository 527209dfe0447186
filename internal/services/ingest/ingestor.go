package ingest

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/sanitas/internal/common"
	"github.com/ternarybob/sanitas/internal/interfaces"
	"github.com/ternarybob/sanitas/internal/models"
)

// Service ingests guideline source files: extracts text, persists
// Document records, and splits text into chunks for embedding.
// Unreadable or unparseable files are skipped with a recorded reason;
// one corrupt file never aborts ingestion.
type Service struct {
	config       *common.GuidelinesConfig
	pdfExtractor interfaces.PDFExtractor
	docStorage   interfaces.DocumentStorage
	chunker      *Chunker
	logger       arbor.ILogger
}

// NewService creates a new guideline ingestion service
func NewService(
	config *common.Config,
	pdfExtractor interfaces.PDFExtractor,
	docStorage interfaces.DocumentStorage,
	logger arbor.ILogger,
) *Service {
	return &Service{
		config:       &config.Guidelines,
		pdfExtractor: pdfExtractor,
		docStorage:   docStorage,
		chunker:      NewChunker(config.Chunking.MaxChars, config.Chunking.OverlapChars),
		logger:       logger,
	}
}

// IngestDirectory walks the guidelines directory and ingests every file
// with a configured extension. A missing or empty directory is not an
// error: the result simply carries zero chunks and the retrieval path
// falls back to ungrounded answers.
func (s *Service) IngestDirectory(ctx context.Context) (*models.IngestResult, error) {
	start := time.Now()
	result := &models.IngestResult{}

	info, err := os.Stat(s.config.Dir)
	if err != nil || !info.IsDir() {
		s.logger.Warn().
			Str("dir", s.config.Dir).
			Msg("Guidelines directory not found, continuing without guidelines")
		result.Duration = time.Since(start)
		return result, nil
	}

	var paths []string
	err = filepath.WalkDir(s.config.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			result.Failures = append(result.Failures, models.IngestFailure{
				Source: path,
				Reason: err.Error(),
			})
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if s.extensionAllowed(filepath.Ext(path)) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk guidelines directory: %w", err)
	}

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		doc, chunks, err := s.ingestFile(ctx, path)
		if err != nil {
			s.logger.Warn().
				Err(err).
				Str("source", path).
				Msg("Skipping guideline file")
			result.Failures = append(result.Failures, models.IngestFailure{
				Source: path,
				Reason: err.Error(),
			})
			continue
		}

		result.Documents = append(result.Documents, doc)
		result.Chunks = append(result.Chunks, chunks...)
	}

	result.Duration = time.Since(start)

	s.logger.Info().
		Int("documents", len(result.Documents)).
		Int("chunks", len(result.Chunks)).
		Int("failures", len(result.Failures)).
		Dur("duration", result.Duration).
		Msg("Guideline ingestion completed")

	return result, nil
}

// ingestFile extracts text from one source file, replaces any prior
// document from the same source, and returns the document with its chunks.
func (s *Service) ingestFile(ctx context.Context, path string) (*models.Document, []models.Chunk, error) {
	text, title, err := s.extractText(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil, fmt.Errorf("no text extracted")
	}
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	doc := &models.Document{
		ID:         common.NewDocumentID(),
		Source:     path,
		Title:      title,
		Text:       text,
		IngestedAt: time.Now(),
	}

	chunks := s.chunker.Chunk(doc.ID, doc.Source, doc.Text)
	doc.ChunkCount = len(chunks)

	// Replace-by-source: a re-ingested file supersedes its prior document
	if s.docStorage != nil {
		if existing, _ := s.docStorage.GetDocumentBySource(path); existing != nil {
			if err := s.docStorage.DeleteDocumentBySource(path); err != nil {
				s.logger.Warn().Err(err).Str("source", path).Msg("Failed to delete superseded document")
			}
		}
		if err := s.docStorage.SaveDocument(doc); err != nil {
			s.logger.Warn().Err(err).Str("source", path).Msg("Failed to persist document record")
		}
	}

	s.logger.Debug().
		Str("source", path).
		Int("text_length", len(text)).
		Int("chunks", len(chunks)).
		Msg("Ingested guideline file")

	return doc, chunks, nil
}

// extractText dispatches on file extension
func (s *Service) extractText(ctx context.Context, path string) (string, string, error) {
	ext := strings.ToLower(filepath.Ext(path))

	if ext == ".pdf" {
		text, err := s.pdfExtractor.ExtractText(ctx, path)
		if err != nil {
			return "", "", fmt.Errorf("pdf extraction failed: %w", err)
		}
		return normalizeText(text), "", nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("read failed: %w", err)
	}

	switch ext {
	case ".md", ".markdown":
		text, title := markdownToText(data)
		return text, title, nil
	case ".html", ".htm":
		return htmlToText(data)
	case ".txt", ".text":
		return normalizeText(string(data)), "", nil
	default:
		return "", "", fmt.Errorf("unsupported file type: %s", ext)
	}
}

func (s *Service) extensionAllowed(ext string) bool {
	ext = strings.ToLower(ext)
	extensions := s.config.Extensions
	if len(extensions) == 0 {
		extensions = []string{".pdf", ".md", ".html", ".txt"}
	}
	for _, allowed := range extensions {
		if strings.EqualFold(allowed, ext) {
			return true
		}
	}
	return false
}
