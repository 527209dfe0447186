// -----------------------------------------------------------------------
// PDF Extractor Interface - Extract text content from PDF documents
// -----------------------------------------------------------------------

package interfaces

import (
	"context"
)

// PDFPageContent represents extracted content from a single PDF page
type PDFPageContent struct {
	PageNumber int    `json:"page_number"`
	Text       string `json:"text"`
}

// PDFExtractor defines the interface for extracting text from PDF files.
// This abstracts the extraction implementation so different backends
// (pdfcpu, external services) can be used interchangeably.
type PDFExtractor interface {
	// ExtractText extracts all text content from the PDF at path.
	// Returns the full text concatenated from all pages.
	ExtractText(ctx context.Context, path string) (string, error)

	// ExtractPages extracts text content by page from the PDF at path
	ExtractPages(ctx context.Context, path string) ([]PDFPageContent, error)
}
