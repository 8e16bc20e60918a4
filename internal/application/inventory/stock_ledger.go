package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/molino-api/internal/application/ports"
	"github.com/jhoicas/molino-api/internal/domain"
	"github.com/jhoicas/molino-api/internal/domain/entity"
	domledger "github.com/jhoicas/molino-api/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

// AdjustInput ajuste con signo sobre (bodega, ítem, tipo, subtipo).
type AdjustInput struct {
	WarehouseID string
	ItemName    string
	ItemType    string
	SubType     string
	Delta       decimal.Decimal
	Reason      string
	Reference   string
	CreatedBy   string
}

// StockLedger mantiene las cantidades físicas por bodega. Cada ajuste es una única operación
// condicional en la BD: nunca recorta a cero, rechaza con domain.ErrInsufficientStock.
type StockLedger struct {
	txRunner         ports.TxRunner
	defaultThreshold decimal.Decimal
}

// NewStockLedger construye el caso de uso. lowStockThreshold se usa cuando la consulta de
// stock bajo no indica umbral.
func NewStockLedger(txRunner ports.TxRunner, lowStockThreshold decimal.Decimal) *StockLedger {
	return &StockLedger{txRunner: txRunner, defaultThreshold: lowStockThreshold}
}

// AdjustStock aplica un ajuste manual (motivo ADJUSTMENT por defecto) en su propia transacción.
func (l *StockLedger) AdjustStock(ctx context.Context, in AdjustInput) (*entity.StockEntry, error) {
	if in.Reason == "" {
		in.Reason = entity.MovementReasonAdjustment
	}
	var out *entity.StockEntry
	err := l.txRunner.Run(ctx, func(repos ports.Repos) error {
		entry, err := l.AdjustInTx(ctx, repos, in)
		if err != nil {
			return err
		}
		out = entry
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AdjustInTx aplica el ajuste con los repositorios de la transacción del caller y deja el
// movimiento en el registro de auditoría.
func (l *StockLedger) AdjustInTx(ctx context.Context, repos ports.Repos, in AdjustInput) (*entity.StockEntry, error) {
	key := entity.StockKey{
		WarehouseID: in.WarehouseID,
		ItemName:    in.ItemName,
		ItemType:    in.ItemType,
		SubType:     in.SubType,
	}.Normalize()
	if key.WarehouseID == "" || key.ItemName == "" {
		return nil, fmt.Errorf("%w: bodega e ítem requeridos", domain.ErrInvalidInput)
	}
	if !entity.ValidItemType(key.ItemType) {
		return nil, fmt.Errorf("%w: tipo de ítem %q", domain.ErrInvalidInput, key.ItemType)
	}
	if in.Delta.IsZero() {
		return nil, fmt.Errorf("%w: delta no puede ser cero", domain.ErrInvalidInput)
	}
	if err := domledger.ValidateQuantityScale(in.Delta); err != nil {
		return nil, err
	}

	entry, err := repos.Stock.Adjust(ctx, key, in.Delta, entity.UnitFor(key.ItemType))
	if err != nil {
		return nil, err
	}

	mov := &entity.StockMovement{
		ID:            uuid.New().String(),
		StockKey:      key,
		Delta:         in.Delta,
		QuantityAfter: entry.Quantity,
		Reason:        in.Reason,
		Reference:     in.Reference,
		CreatedBy:     in.CreatedBy,
		CreatedAt:     time.Now(),
	}
	if err := repos.Movements.Create(ctx, mov); err != nil {
		return nil, err
	}
	return entry, nil
}

// GetEntry devuelve la entrada de stock o domain.ErrNotFound si nunca se creó.
func (l *StockLedger) GetEntry(ctx context.Context, key entity.StockKey) (*entity.StockEntry, error) {
	var out *entity.StockEntry
	err := l.txRunner.Run(ctx, func(repos ports.Repos) error {
		entry, err := repos.Stock.Get(ctx, key.Normalize())
		if err != nil {
			return err
		}
		if entry == nil {
			return domain.ErrNotFound
		}
		out = entry
		return nil
	})
	return out, err
}

// ListStock lista las entradas de una bodega.
func (l *StockLedger) ListStock(ctx context.Context, warehouseID string) ([]*entity.StockEntry, error) {
	var out []*entity.StockEntry
	err := l.txRunner.Run(ctx, func(repos ports.Repos) error {
		list, err := repos.Stock.ListByWarehouse(ctx, warehouseID)
		out = list
		return err
	})
	return out, err
}

// ListMovements historial de ajustes de una bodega, más reciente primero.
func (l *StockLedger) ListMovements(ctx context.Context, warehouseID string, limit, offset int) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	err := l.txRunner.Run(ctx, func(repos ports.Repos) error {
		list, err := repos.Movements.ListByWarehouse(ctx, warehouseID, limit, offset)
		out = list
		return err
	})
	return out, err
}
