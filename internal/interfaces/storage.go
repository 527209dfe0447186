package interfaces

import (
	"github.com/ternarybob/sanitas/internal/models"
)

// DocumentStorage persists ingested guideline documents
type DocumentStorage interface {
	// SaveDocument upserts a document keyed by ID
	SaveDocument(doc *models.Document) error

	// GetDocumentBySource returns the document ingested from the given
	// source path, or nil if none exists
	GetDocumentBySource(source string) (*models.Document, error)

	// DeleteDocumentBySource removes the document for a source path.
	// Used to implement replace-by-source on re-ingestion.
	DeleteDocumentBySource(source string) error

	// ListDocuments returns all ingested documents
	ListDocuments() ([]*models.Document, error)

	// CountDocuments returns the number of ingested documents
	CountDocuments() (int, error)
}

// QueryLogStorage is the append-only query/response log
type QueryLogStorage interface {
	// AppendQuery persists one query record
	AppendQuery(record *models.QueryRecord) error

	// RecentQueries returns up to limit records, newest first
	RecentQueries(limit int) ([]*models.QueryRecord, error)

	// CountQueries returns the number of logged queries
	CountQueries() (int, error)
}

// StorageManager provides access to all storage interfaces
type StorageManager interface {
	DocumentStorage() DocumentStorage
	QueryLogStorage() QueryLogStorage
	Close() error
}
