package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de transacción.
const (
	TransactionTypeSale       = "Sale"
	TransactionTypePurchase   = "Purchase"
	TransactionTypePayment    = "Payment"
	TransactionTypeReceipt    = "Receipt"
	TransactionTypeSalary     = "Salary"
	TransactionTypeTransfer   = "Transfer"
	TransactionTypeAdjustment = "Adjustment"
	TransactionTypeOther      = "Other"
)

// Estados de pago.
const (
	PaymentStatusPending   = "Pending"
	PaymentStatusCompleted = "Completed"
	PaymentStatusFailed    = "Failed"
	PaymentStatusCancelled = "Cancelled"
)

// Medios de pago.
const (
	PaymentMethodCash   = "Cash"
	PaymentMethodBank   = "Bank"
	PaymentMethodCheque = "Cheque"
	PaymentMethodCredit = "Credit"
)

var transactionTypes = map[string]bool{
	TransactionTypeSale: true, TransactionTypePurchase: true, TransactionTypePayment: true,
	TransactionTypeReceipt: true, TransactionTypeSalary: true, TransactionTypeTransfer: true,
	TransactionTypeAdjustment: true, TransactionTypeOther: true,
}

// ValidTransactionType indica si t es un tipo de transacción conocido.
func ValidTransactionType(t string) bool {
	return transactionTypes[t]
}

// ValidPaymentMethod indica si m es un medio de pago conocido.
func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBank, PaymentMethodCheque, PaymentMethodCredit:
		return true
	}
	return false
}

// Transaction es un asiento de partida doble: una cuenta débito, una crédito y un monto.
// Es de solo inserción; después de creado sólo cambia PaymentStatus (Pending -> Completed).
type Transaction struct {
	ID              string
	Number          string
	Date            time.Time
	Type            string
	DebitAccountID  string
	CreditAccountID string
	Amount          decimal.Decimal
	Currency        string
	Description     string
	WarehouseID     *string
	CreatedBy       string
	PaymentMethod   string
	PaymentStatus   string
	IsPayable       bool
	IsReceivable    bool
	DueDate         *time.Time
	SaleRef         *string
	PurchaseRef     *string
	InvoiceID       *string
	EventKey        *string
	CreatedAt       time.Time
}

// CanTransitionTo valida la máquina de estados: sólo Pending -> Completed.
func (t *Transaction) CanTransitionTo(status string) bool {
	return t.PaymentStatus == PaymentStatusPending && status == PaymentStatusCompleted
}
