package accounts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/molino-api/internal/application/ports"
	"github.com/jhoicas/molino-api/internal/domain"
	"github.com/jhoicas/molino-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// AccountInput datos para obtener o crear una cuenta.
type AccountInput struct {
	Category       string
	Type           string
	Name           string
	WarehouseID    *string
	OpeningBalance decimal.Decimal
}

// AccountRegistry plan de cuentas: obtiene o crea cuentas por (categoría, tipo, bodega).
type AccountRegistry struct {
	txRunner ports.TxRunner
}

// NewAccountRegistry construye el caso de uso.
func NewAccountRegistry(txRunner ports.TxRunner) *AccountRegistry {
	return &AccountRegistry{txRunner: txRunner}
}

// GetOrCreateAccount devuelve la cuenta activa del alcance o la crea. Llamadas concurrentes con la
// misma clave obtienen la misma cuenta.
func (r *AccountRegistry) GetOrCreateAccount(ctx context.Context, in AccountInput) (*entity.Account, error) {
	var out *entity.Account
	err := r.txRunner.Run(ctx, func(repos ports.Repos) error {
		acc, err := r.GetOrCreateInTx(ctx, repos, in)
		if err != nil {
			return err
		}
		out = acc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetOrCreateInTx igual que GetOrCreateAccount pero con los repositorios de la transacción del caller.
func (r *AccountRegistry) GetOrCreateInTx(ctx context.Context, repos ports.Repos, in AccountInput) (*entity.Account, error) {
	if !entity.ValidCategoryType(in.Category, in.Type) {
		return nil, fmt.Errorf("%w: categoría %q no corresponde al tipo %q", domain.ErrInvalidInput, in.Category, in.Type)
	}
	if in.OpeningBalance.IsNegative() {
		return nil, fmt.Errorf("%w: saldo inicial negativo", domain.ErrInvalidInput)
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = in.Category
	}
	var warehouseID *string
	if in.WarehouseID != nil && strings.TrimSpace(*in.WarehouseID) != "" {
		id := strings.TrimSpace(*in.WarehouseID)
		wh, err := repos.Warehouses.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if wh == nil {
			return nil, fmt.Errorf("%w: bodega %s", domain.ErrNotFound, id)
		}
		warehouseID = &id
	}

	now := time.Now()
	candidate := &entity.Account{
		ID:             uuid.New().String(),
		Name:           name,
		Type:           in.Type,
		Category:       in.Category,
		WarehouseID:    warehouseID,
		OpeningBalance: in.OpeningBalance,
		CurrentBalance: in.OpeningBalance,
		Status:         entity.AccountStatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	acc, _, err := repos.Accounts.GetOrCreate(ctx, candidate)
	if err != nil {
		return nil, fmt.Errorf("get or create account: %w", err)
	}
	return acc, nil
}

// EnsureCategory obtiene o crea la cuenta de una categoría en el alcance de la bodega,
// derivando el tipo contable y el nombre.
func (r *AccountRegistry) EnsureCategory(ctx context.Context, repos ports.Repos, category string, warehouse *entity.Warehouse) (*entity.Account, error) {
	in := AccountInput{Category: category, Type: entity.TypeForCategory(category), Name: category}
	if warehouse != nil {
		in.WarehouseID = &warehouse.ID
		in.Name = category + " - " + warehouse.Name
	}
	return r.GetOrCreateInTx(ctx, repos, in)
}

// GetAccount obtiene una cuenta por ID.
func (r *AccountRegistry) GetAccount(ctx context.Context, id string) (*entity.Account, error) {
	var out *entity.Account
	err := r.txRunner.Run(ctx, func(repos ports.Repos) error {
		acc, err := repos.Accounts.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if acc == nil {
			return domain.ErrNotFound
		}
		out = acc
		return nil
	})
	return out, err
}

// ListAccounts lista cuentas, opcionalmente filtradas por bodega.
func (r *AccountRegistry) ListAccounts(ctx context.Context, warehouseID *string, limit, offset int) ([]*entity.Account, error) {
	var out []*entity.Account
	err := r.txRunner.Run(ctx, func(repos ports.Repos) error {
		list, err := repos.Accounts.List(ctx, warehouseID, limit, offset)
		out = list
		return err
	})
	return out, err
}
