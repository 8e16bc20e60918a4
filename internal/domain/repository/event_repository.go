package repository

import (
	"context"

	"github.com/jhoicas/molino-api/internal/domain/entity"
)

// EventRepository registra claves de idempotencia de eventos de negocio.
type EventRepository interface {
	// Claim reserva la clave; devuelve false si ya había sido usada.
	Claim(ctx context.Context, event *entity.LedgerEvent) (bool, error)
}
