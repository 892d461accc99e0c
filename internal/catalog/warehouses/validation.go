package warehouses

import (
	"fmt"
	"strings"

	"github.com/stockpilot/stockpilot/internal/shared"
)

func (s *Service) validate(w Warehouse) error {
	if strings.TrimSpace(w.Name) == "" {
		return fmt.Errorf("warehouses: name is required: %w", shared.ErrValidation)
	}
	if strings.TrimSpace(w.Location) == "" {
		return fmt.Errorf("warehouses: location is required: %w", shared.ErrValidation)
	}
	if w.Capacity <= 0 {
		return fmt.Errorf("warehouses: capacity must be positive: %w", shared.ErrValidation)
	}
	return nil
}
