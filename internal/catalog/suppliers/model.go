package suppliers

import (
	"time"

	"github.com/google/uuid"
)

// Supplier represents a supplier entity.
type Supplier struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// ProductCount is populated by list queries only.
	ProductCount int64 `json:"product_count"`
}
