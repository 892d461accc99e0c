package suppliers

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/stockpilot/stockpilot/internal/shared"
)

func (s *Service) validate(supplier Supplier) error {
	if strings.TrimSpace(supplier.Name) == "" {
		return fmt.Errorf("suppliers: name is required: %w", shared.ErrValidation)
	}
	if _, err := mail.ParseAddress(supplier.Email); err != nil {
		return fmt.Errorf("suppliers: valid email is required: %w", shared.ErrValidation)
	}
	if strings.TrimSpace(supplier.Phone) == "" {
		return fmt.Errorf("suppliers: phone is required: %w", shared.ErrValidation)
	}
	if strings.TrimSpace(supplier.Address) == "" {
		return fmt.Errorf("suppliers: address is required: %w", shared.ErrValidation)
	}
	return nil
}
