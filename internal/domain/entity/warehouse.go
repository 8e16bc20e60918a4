package entity

import "time"

// Warehouse representa una bodega del molino (trigo, producto terminado o ambos).
type Warehouse struct {
	ID        string
	Name      string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
