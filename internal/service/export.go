package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/makna-id/makna-api/internal/domain"
	"github.com/makna-id/makna-api/internal/repo"
)

// ExportService assembles a flat export of one user's visit history.
type ExportService struct {
	store repo.Store
}

// NewExportService constructs an ExportService backed by the provided store.
func NewExportService(store repo.Store) *ExportService {
	return &ExportService{store: store}
}

// Export returns one ExportRow per recorded visit across the user's trips.
// Trips with no visits contribute one row with empty visit fields.
// Always returns a non-nil slice.
func (s *ExportService) Export(ctx context.Context, userID uuid.UUID) ([]domain.ExportRow, error) {
	rows, err := s.store.Exports().Rows(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}
	if rows == nil {
		rows = []domain.ExportRow{}
	}
	return rows, nil
}
