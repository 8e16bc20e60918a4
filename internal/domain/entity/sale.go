package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeLine línea de mercancía de una venta o compra (bolsas o trigo).
type TradeLine struct {
	ItemName  string
	ItemType  string
	SubType   string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal // opcional; si se indica, Σ cantidad×precio debe igualar el total
}

// Sale venta a un comprador. PaidThrough es el medio (Cash/Bank) del abono inicial en ventas a crédito.
type Sale struct {
	InvoiceNumber string
	BuyerID       string
	PaymentMethod string
	PaidThrough   string
	TotalAmount   decimal.Decimal
	PaidAmount    decimal.Decimal
	DueDate       *time.Time
	Lines         []TradeLine
}

// RemainingAmount saldo que queda por cobrar.
func (s *Sale) RemainingAmount() decimal.Decimal {
	return s.TotalAmount.Sub(s.PaidAmount)
}

// IsCredit indica si la venta genera cuenta por cobrar.
func (s *Sale) IsCredit() bool {
	return s.PaymentMethod == PaymentMethodCredit || s.RemainingAmount().GreaterThan(decimal.Zero)
}

// Purchase compra a un proveedor (espejo de Sale).
type Purchase struct {
	InvoiceNumber string
	SupplierID    string
	PaymentMethod string
	PaidThrough   string
	TotalAmount   decimal.Decimal
	PaidAmount    decimal.Decimal
	DueDate       *time.Time
	Lines         []TradeLine
}

// RemainingAmount saldo que queda por pagar.
func (p *Purchase) RemainingAmount() decimal.Decimal {
	return p.TotalAmount.Sub(p.PaidAmount)
}

// IsCredit indica si la compra genera cuenta por pagar.
func (p *Purchase) IsCredit() bool {
	return p.PaymentMethod == PaymentMethodCredit || p.RemainingAmount().GreaterThan(decimal.Zero)
}
