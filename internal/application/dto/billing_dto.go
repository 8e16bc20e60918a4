package dto

import (
	"time"

	"github.com/jhoicas/molino-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// CreateBuyerRequest body para POST /api/buyers.
type CreateBuyerRequest struct {
	Name        string          `json:"name" validate:"required,max=200"`
	Phone       string          `json:"phone,omitempty" validate:"max=30"`
	CreditLimit decimal.Decimal `json:"credit_limit"`
}

// BuyerResponse comprador en respuestas.
type BuyerResponse struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Phone       string           `json:"phone,omitempty"`
	CreditLimit decimal.Decimal  `json:"credit_limit"`
	Outstanding *decimal.Decimal `json:"outstanding,omitempty"`
}

// TradeLineRequest línea de mercancía de una venta o compra.
type TradeLineRequest struct {
	ItemName  string          `json:"item_name" validate:"required,max=100"`
	ItemType  string          `json:"item_type" validate:"required,oneof=wheat bags"`
	SubType   string          `json:"sub_type" validate:"max=50"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// TradeRequest body para POST /api/sales y POST /api/purchases. PartyID es el comprador en
// ventas y el proveedor en compras. Si paid_amount no viene y el medio no es Credit, se asume
// pagado el total. Sin warehouse_id se usa la bodega del token.
type TradeRequest struct {
	InvoiceNumber string             `json:"invoice_number" validate:"required,max=50"`
	WarehouseID   string             `json:"warehouse_id"`
	PartyID       string             `json:"party_id"`
	PaymentMethod string             `json:"payment_method" validate:"required,oneof=Cash Bank Cheque Credit"`
	PaidThrough   string             `json:"paid_through,omitempty" validate:"omitempty,oneof=Cash Bank Cheque"`
	TotalAmount   decimal.Decimal    `json:"total_amount"`
	PaidAmount    *decimal.Decimal   `json:"paid_amount,omitempty"`
	DueDate       *time.Time         `json:"due_date,omitempty"`
	Lines         []TradeLineRequest `json:"lines" validate:"dive"`
}

// Paid monto pagado efectivo según la regla de paid_amount por defecto.
func (r TradeRequest) Paid() decimal.Decimal {
	if r.PaidAmount != nil {
		return *r.PaidAmount
	}
	if r.PaymentMethod == entity.PaymentMethodCredit {
		return decimal.Zero
	}
	return r.TotalAmount
}

// TradeLines convierte las líneas del request.
func (r TradeRequest) TradeLines() []entity.TradeLine {
	lines := make([]entity.TradeLine, 0, len(r.Lines))
	for _, l := range r.Lines {
		lines = append(lines, entity.TradeLine{
			ItemName:  l.ItemName,
			ItemType:  l.ItemType,
			SubType:   l.SubType,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}
	return lines
}

// SettleInvoiceRequest body para POST /api/invoices/:kind/:number/payments.
type SettleInvoiceRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method" validate:"omitempty,oneof=Cash Bank Cheque"`
	Reference string          `json:"reference,omitempty" validate:"max=100"`
}

// InvoiceResponse factura en respuestas.
type InvoiceResponse struct {
	ID              string          `json:"id"`
	Number          string          `json:"number"`
	Kind            string          `json:"kind"`
	PartyID         string          `json:"party_id,omitempty"`
	WarehouseID     string          `json:"warehouse_id"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	PaidAmount      decimal.Decimal `json:"paid_amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	Status          string          `json:"status"`
	DueDate         *time.Time      `json:"due_date,omitempty"`
}

// EventResponse resultado de una venta, compra o abono.
type EventResponse struct {
	EventKey     string                `json:"event_key,omitempty"`
	Invoice      *InvoiceResponse      `json:"invoice,omitempty"`
	Transactions []TransactionResponse `json:"transactions"`
	Stock        []StockEntryResponse  `json:"stock,omitempty"`
	Outstanding  *decimal.Decimal      `json:"outstanding,omitempty"`
	Replayed     bool                  `json:"replayed"`
}

// ToBuyerResponse mapea un comprador.
func ToBuyerResponse(b *entity.Buyer) BuyerResponse {
	return BuyerResponse{ID: b.ID, Name: b.Name, Phone: b.Phone, CreditLimit: b.CreditLimit}
}

// ToInvoiceResponse mapea una factura.
func ToInvoiceResponse(i *entity.Invoice) *InvoiceResponse {
	if i == nil {
		return nil
	}
	return &InvoiceResponse{
		ID:              i.ID,
		Number:          i.Number,
		Kind:            i.Kind,
		PartyID:         i.PartyID,
		WarehouseID:     i.WarehouseID,
		TotalAmount:     i.TotalAmount,
		PaidAmount:      i.PaidAmount,
		RemainingAmount: i.RemainingAmount,
		Status:          i.Status,
		DueDate:         i.DueDate,
	}
}
