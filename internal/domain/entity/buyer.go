package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Buyer comprador a crédito. CreditLimit en cero significa sin límite configurado.
type Buyer struct {
	ID          string
	Name        string
	Phone       string
	CreditLimit decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasCreditLimit indica si el comprador tiene límite de crédito.
func (b *Buyer) HasCreditLimit() bool {
	return b.CreditLimit.GreaterThan(decimal.Zero)
}
