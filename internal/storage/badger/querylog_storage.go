package badger

import (
	"fmt"
	"sort"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/sanitas/internal/interfaces"
	"github.com/ternarybob/sanitas/internal/models"
)

// QueryLogStorage implements the QueryLogStorage interface for Badger.
// Records are append-only; nothing updates or deletes them.
type QueryLogStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewQueryLogStorage creates a new QueryLogStorage instance
func NewQueryLogStorage(db *BadgerDB, logger arbor.ILogger) interfaces.QueryLogStorage {
	return &QueryLogStorage{
		db:     db,
		logger: logger,
	}
}

func (s *QueryLogStorage) AppendQuery(record *models.QueryRecord) error {
	if record.ID == "" {
		return fmt.Errorf("query record ID is required")
	}

	if err := s.db.Store().Insert(record.ID, record); err != nil {
		return fmt.Errorf("failed to append query record: %w", err)
	}
	return nil
}

func (s *QueryLogStorage) RecentQueries(limit int) ([]*models.QueryRecord, error) {
	var records []models.QueryRecord
	if err := s.db.Store().Find(&records, nil); err != nil {
		return nil, fmt.Errorf("failed to list query records: %w", err)
	}

	sort.Slice(records, func(a, b int) bool {
		return records[a].CreatedAt.After(records[b].CreatedAt)
	})

	if limit > 0 && limit < len(records) {
		records = records[:limit]
	}

	result := make([]*models.QueryRecord, len(records))
	for i := range records {
		result[i] = &records[i]
	}
	return result, nil
}

func (s *QueryLogStorage) CountQueries() (int, error) {
	count, err := s.db.Store().Count(&models.QueryRecord{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count query records: %w", err)
	}
	return int(count), nil
}
