package repository

import (
	"context"

	"github.com/jhoicas/molino-api/internal/domain/entity"
)

// BuyerRepository puerto de compradores con límite de crédito.
type BuyerRepository interface {
	Create(ctx context.Context, buyer *entity.Buyer) error
	GetByID(ctx context.Context, id string) (*entity.Buyer, error)
	// GetForUpdate bloquea la fila del comprador; serializa las verificaciones de crédito.
	GetForUpdate(ctx context.Context, id string) (*entity.Buyer, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Buyer, error)
}
