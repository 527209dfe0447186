// -----------------------------------------------------------------------
// PDF Extractor Service - Extract text content from PDF documents
// Uses pdfcpu for Go-native PDF processing
// -----------------------------------------------------------------------

package pdf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/sanitas/internal/interfaces"
)

// Extractor implements the PDFExtractor interface using pdfcpu
type Extractor struct {
	logger  arbor.ILogger
	tempDir string
}

// Compile-time interface assertion
var _ interfaces.PDFExtractor = (*Extractor)(nil)

// NewExtractor creates a new PDF extractor service
func NewExtractor(logger arbor.ILogger) *Extractor {
	tempDir := filepath.Join(os.TempDir(), "sanitas-pdf")
	os.MkdirAll(tempDir, 0755)

	return &Extractor{
		logger:  logger,
		tempDir: tempDir,
	}
}

// ExtractText extracts all text content from the PDF at path
func (e *Extractor) ExtractText(ctx context.Context, path string) (string, error) {
	pages, err := e.ExtractPages(ctx, path)
	if err != nil {
		return "", err
	}

	var builder strings.Builder
	for i, page := range pages {
		if i > 0 {
			builder.WriteString("\n\n")
		}
		builder.WriteString(page.Text)
	}

	return builder.String(), nil
}

// ExtractPages extracts text content by page from the PDF at path
func (e *Extractor) ExtractPages(ctx context.Context, path string) ([]interfaces.PDFPageContent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pdfCtx, err := api.ReadContextFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}
	pageCount := pdfCtx.PageCount

	outDir := filepath.Join(e.tempDir, fmt.Sprintf("pages_%d", os.Getpid()))
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create extraction directory: %w", err)
	}
	defer os.RemoveAll(outDir)

	conf := model.NewDefaultConfiguration()
	pages := make([]interfaces.PDFPageContent, 0, pageCount)

	// pdfcpu extracts page content streams to files in outDir
	if err := api.ExtractContentFile(path, outDir, nil, conf); err != nil {
		e.logger.Warn().Err(err).Str("path", path).Msg("Failed to extract PDF content")
		for pageNum := 1; pageNum <= pageCount; pageNum++ {
			pages = append(pages, interfaces.PDFPageContent{PageNumber: pageNum})
		}
		return pages, nil
	}

	files, _ := os.ReadDir(outDir)
	pageTexts := make(map[int]string)
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		content, err := os.ReadFile(filepath.Join(outDir, file.Name()))
		if err != nil {
			continue
		}
		var pageNum int
		if _, err := fmt.Sscanf(file.Name(), "page_%d", &pageNum); err == nil {
			pageTexts[pageNum] = string(content)
		} else if _, err := fmt.Sscanf(file.Name(), "Content_page_%d", &pageNum); err == nil {
			pageTexts[pageNum] = string(content)
		}
	}

	for pageNum := 1; pageNum <= pageCount; pageNum++ {
		pages = append(pages, interfaces.PDFPageContent{
			PageNumber: pageNum,
			Text:       pageTexts[pageNum],
		})
	}

	return pages, nil
}
