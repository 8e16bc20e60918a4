package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/molino-api/internal/domain/entity"
	"github.com/jhoicas/molino-api/internal/domain/repository"
)

var _ repository.EventRepository = (*EventRepo)(nil)

// EventRepo claves de idempotencia en ledger_events.
type EventRepo struct {
	q Querier
}

// NewEventRepository construye el adaptador.
func NewEventRepository(q Querier) *EventRepo {
	return &EventRepo{q: q}
}

// Claim inserta la clave con ON CONFLICT DO NOTHING. Si otra transacción la insertó y aún no
// confirma, el INSERT espera su Commit o Rollback.
func (r *EventRepo) Claim(ctx context.Context, e *entity.LedgerEvent) (bool, error) {
	cmd, err := r.q.Exec(ctx, `
		INSERT INTO ledger_events (event_key, kind, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (event_key) DO NOTHING`, e.Key, e.Kind, e.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("claim event: %w", err)
	}
	return cmd.RowsAffected() == 1, nil
}
