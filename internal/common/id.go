package common

import (
	"github.com/google/uuid"
)

// NewDocumentID generates a unique document ID with the "doc_" prefix
// Format: doc_<uuid>
func NewDocumentID() string {
	return "doc_" + uuid.New().String()
}

// NewQueryID generates a unique query record ID with the "qry_" prefix
// Format: qry_<uuid>
func NewQueryID() string {
	return "qry_" + uuid.New().String()
}
