package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/molino-api/internal/domain"
	"github.com/jhoicas/molino-api/internal/domain/entity"
	"github.com/jhoicas/molino-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.AccountRepository = (*AccountRepo)(nil)

const accountColumns = `id, account_number, name, account_type, category, warehouse_id,
	opening_balance, current_balance, status, created_at, updated_at`

// AccountRepo implementación de AccountRepository sobre PostgreSQL (usable con pool o tx).
type AccountRepo struct {
	q Querier
}

// NewAccountRepository construye el adaptador del plan de cuentas.
func NewAccountRepository(q Querier) *AccountRepo {
	return &AccountRepo{q: q}
}

func scanAccount(row pgx.Row) (*entity.Account, error) {
	var a entity.Account
	err := row.Scan(&a.ID, &a.Number, &a.Name, &a.Type, &a.Category, &a.WarehouseID,
		&a.OpeningBalance, &a.CurrentBalance, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetOrCreate usa el índice único parcial (category, account_type, scope_key) WHERE status = 'Active':
// INSERT ... ON CONFLICT DO NOTHING y, si hubo conflicto, relee la fila ganadora.
func (r *AccountRepo) GetOrCreate(ctx context.Context, a *entity.Account) (*entity.Account, bool, error) {
	insert := `
		INSERT INTO accounts (id, account_number, name, account_type, category, warehouse_id, scope_key,
			opening_balance, current_balance, status, created_at, updated_at)
		VALUES ($1, 'ACC-' || lpad(nextval('account_number_seq')::text, 6, '0'), $2, $3, $4, $5, $6,
			$7, $7, $8, $9, $9)
		ON CONFLICT (category, account_type, scope_key) WHERE status = 'Active' DO NOTHING
		RETURNING ` + accountColumns
	stored, err := scanAccount(r.q.QueryRow(ctx, insert,
		a.ID, a.Name, a.Type, a.Category, a.WarehouseID, a.ScopeKey(),
		a.OpeningBalance, a.Status, a.CreatedAt,
	))
	if err == nil {
		return stored, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("insert account: %w", err)
	}

	query := `SELECT ` + accountColumns + `
		FROM accounts
		WHERE category = $1 AND account_type = $2 AND scope_key = $3 AND status = 'Active'`
	stored, err = scanAccount(r.q.QueryRow(ctx, query, a.Category, a.Type, a.ScopeKey()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// la fila en conflicto se desactivó entre el INSERT y la lectura
			return nil, false, fmt.Errorf("%w: cuenta %s cambió de estado", domain.ErrConflict, a.Category)
		}
		return nil, false, fmt.Errorf("get account by scope: %w", err)
	}
	return stored, false, nil
}

// GetByID obtiene una cuenta por ID.
func (r *AccountRepo) GetByID(ctx context.Context, id string) (*entity.Account, error) {
	a, err := scanAccount(r.q.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError(fmt.Errorf("get account: %w", err))
	}
	return a, nil
}

// GetForUpdate obtiene la cuenta y bloquea la fila (SELECT FOR UPDATE).
func (r *AccountRepo) GetForUpdate(ctx context.Context, id string) (*entity.Account, error) {
	a, err := scanAccount(r.q.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError(fmt.Errorf("get account for update: %w", err))
	}
	return a, nil
}

// AddToBalance incrementa current_balance en delta (con signo) de forma atómica.
func (r *AccountRepo) AddToBalance(ctx context.Context, id string, delta decimal.Decimal) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE accounts SET current_balance = current_balance + $2, updated_at = now()
		WHERE id = $1`, id, delta)
	if err != nil {
		return fmt.Errorf("update account balance: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: cuenta %s", domain.ErrNotFound, id)
	}
	return nil
}

// List lista cuentas por número; warehouseID nil lista todas.
func (r *AccountRepo) List(ctx context.Context, warehouseID *string, limit, offset int) ([]*entity.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts
		WHERE ($1::uuid IS NULL OR warehouse_id = $1::uuid)
		ORDER BY account_number LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, warehouseID, limit, offset)
	if err != nil {
		return nil, mapError(fmt.Errorf("list accounts: %w", err))
	}
	defer rows.Close()
	var list []*entity.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}
