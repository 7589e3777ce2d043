package services

import (
	"context"
	"fmt"

	"github.com/yukikurage/society-committee-api/internal/models"
	"github.com/yukikurage/society-committee-api/internal/repository"
)

// DesignationService reads the designation catalog.
type DesignationService struct {
	store repository.Store
}

func NewDesignationService(store repository.Store) *DesignationService {
	return &DesignationService{store: store}
}

// ListActive returns active designations by sort_order.
func (s *DesignationService) ListActive(ctx context.Context) ([]models.Designation, error) {
	designations, err := s.store.Designations().ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list designations: %w", err)
	}
	return designations, nil
}
