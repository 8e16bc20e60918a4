package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/molino-api/internal/domain"
	"github.com/jhoicas/molino-api/internal/domain/entity"
	"github.com/jhoicas/molino-api/internal/domain/repository"
)

var _ repository.BuyerRepository = (*BuyerRepo)(nil)

// BuyerRepo implementación de BuyerRepository sobre PostgreSQL (usable con pool o tx).
type BuyerRepo struct {
	q Querier
}

// NewBuyerRepository construye el adaptador de compradores.
func NewBuyerRepository(q Querier) *BuyerRepo {
	return &BuyerRepo{q: q}
}

// Create persiste un comprador.
func (r *BuyerRepo) Create(ctx context.Context, b *entity.Buyer) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO buyers (id, name, phone, credit_limit, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		b.ID, b.Name, b.Phone, b.CreditLimit, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert buyer: %w", err)
	}
	return nil
}

// GetByID obtiene un comprador; nil si no existe.
func (r *BuyerRepo) GetByID(ctx context.Context, id string) (*entity.Buyer, error) {
	return r.get(ctx, `SELECT id, name, phone, credit_limit, created_at, updated_at FROM buyers WHERE id = $1`, id)
}

// GetForUpdate obtiene el comprador y bloquea su fila hasta el fin de la transacción.
func (r *BuyerRepo) GetForUpdate(ctx context.Context, id string) (*entity.Buyer, error) {
	return r.get(ctx, `SELECT id, name, phone, credit_limit, created_at, updated_at FROM buyers WHERE id = $1 FOR UPDATE`, id)
}

func (r *BuyerRepo) get(ctx context.Context, query, id string) (*entity.Buyer, error) {
	var b entity.Buyer
	err := r.q.QueryRow(ctx, query, id).Scan(&b.ID, &b.Name, &b.Phone, &b.CreditLimit, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError(fmt.Errorf("get buyer: %w", err))
	}
	return &b, nil
}

// List lista compradores por nombre con paginación.
func (r *BuyerRepo) List(ctx context.Context, limit, offset int) ([]*entity.Buyer, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, name, phone, credit_limit, created_at, updated_at
		FROM buyers ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list buyers: %w", err)
	}
	defer rows.Close()
	var list []*entity.Buyer
	for rows.Next() {
		var b entity.Buyer
		if err := rows.Scan(&b.ID, &b.Name, &b.Phone, &b.CreditLimit, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan buyer: %w", err)
		}
		list = append(list, &b)
	}
	return list, rows.Err()
}
