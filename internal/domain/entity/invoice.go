package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de factura.
const (
	InvoiceKindSale     = "sale"
	InvoiceKindPurchase = "purchase"
)

// Estados de factura.
const (
	InvoiceStatusPending   = "pending"
	InvoiceStatusOverdue   = "overdue"
	InvoiceStatusPaid      = "paid"
	InvoiceStatusCancelled = "cancelled"
)

// Invoice factura de venta (cuenta por cobrar a un comprador) o de compra (cuenta por pagar a un
// proveedor). RemainingAmount = TotalAmount - PaidAmount.
type Invoice struct {
	ID              string
	Number          string
	Kind            string
	PartyID         string // comprador (venta) o proveedor (compra)
	WarehouseID     string
	TotalAmount     decimal.Decimal
	PaidAmount      decimal.Decimal
	RemainingAmount decimal.Decimal
	Status          string
	DueDate         *time.Time
	CreatedBy       string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsOutstanding indica si la factura suma al saldo pendiente del comprador.
func (i *Invoice) IsOutstanding() bool {
	return i.Status == InvoiceStatusPending || i.Status == InvoiceStatusOverdue
}

// ApplyPayment descuenta un abono. Devuelve false si el abono excede el saldo.
func (i *Invoice) ApplyPayment(amount decimal.Decimal, now time.Time) bool {
	if amount.GreaterThan(i.RemainingAmount) {
		return false
	}
	i.PaidAmount = i.PaidAmount.Add(amount)
	i.RemainingAmount = i.RemainingAmount.Sub(amount)
	if i.RemainingAmount.IsZero() {
		i.Status = InvoiceStatusPaid
	}
	i.UpdatedAt = now
	return true
}
