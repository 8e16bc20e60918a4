package dto

import (
	"time"

	"github.com/jhoicas/molino-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// GetOrCreateAccountRequest body para POST /api/accounts.
type GetOrCreateAccountRequest struct {
	Category       string          `json:"category" validate:"required"`
	Type           string          `json:"type" validate:"required,oneof=Asset Liability Revenue Expense"`
	Name           string          `json:"name" validate:"max=200"`
	WarehouseID    *string         `json:"warehouse_id,omitempty"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
}

// AccountResponse cuenta en respuestas.
type AccountResponse struct {
	ID             string          `json:"id"`
	Number         string          `json:"number"`
	Name           string          `json:"name"`
	Type           string          `json:"type"`
	Category       string          `json:"category"`
	WarehouseID    *string         `json:"warehouse_id,omitempty"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	Status         string          `json:"status"`
}

// PostTransactionRequest body para POST /api/transactions (asientos manuales).
type PostTransactionRequest struct {
	Type            string          `json:"type" validate:"required,oneof=Sale Purchase Payment Receipt Salary Transfer Adjustment Other"`
	DebitAccountID  string          `json:"debit_account_id" validate:"required"`
	CreditAccountID string          `json:"credit_account_id" validate:"required,nefield=DebitAccountID"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description" validate:"max=500"`
	WarehouseID     *string         `json:"warehouse_id,omitempty"`
	PaymentMethod   string          `json:"payment_method,omitempty" validate:"omitempty,oneof=Cash Bank Cheque Credit"`
	PaymentStatus   string          `json:"payment_status,omitempty" validate:"omitempty,oneof=Pending Completed"`
	Date            *time.Time      `json:"date,omitempty"`
	DueDate         *time.Time      `json:"due_date,omitempty"`
}

// TransactionResponse asiento en respuestas.
type TransactionResponse struct {
	ID              string          `json:"id"`
	Number          string          `json:"number"`
	Date            time.Time       `json:"date"`
	Type            string          `json:"type"`
	DebitAccountID  string          `json:"debit_account_id"`
	CreditAccountID string          `json:"credit_account_id"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	Description     string          `json:"description,omitempty"`
	WarehouseID     *string         `json:"warehouse_id,omitempty"`
	CreatedBy       string          `json:"created_by,omitempty"`
	PaymentMethod   string          `json:"payment_method,omitempty"`
	PaymentStatus   string          `json:"payment_status"`
	IsPayable       bool            `json:"is_payable"`
	IsReceivable    bool            `json:"is_receivable"`
	DueDate         *time.Time      `json:"due_date,omitempty"`
	SaleRef         *string         `json:"sale_ref,omitempty"`
	PurchaseRef     *string         `json:"purchase_ref,omitempty"`
}

// StatementResponse extracto de una cuenta.
type StatementResponse struct {
	Account      AccountResponse       `json:"account"`
	Transactions []TransactionResponse `json:"transactions"`
	Page         PageResponse          `json:"page"`
}

// ToAccountResponse mapea una cuenta.
func ToAccountResponse(a *entity.Account) AccountResponse {
	return AccountResponse{
		ID:             a.ID,
		Number:         a.Number,
		Name:           a.Name,
		Type:           a.Type,
		Category:       a.Category,
		WarehouseID:    a.WarehouseID,
		OpeningBalance: a.OpeningBalance,
		CurrentBalance: a.CurrentBalance,
		Status:         a.Status,
	}
}

// ToTransactionResponse mapea un asiento.
func ToTransactionResponse(t *entity.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:              t.ID,
		Number:          t.Number,
		Date:            t.Date,
		Type:            t.Type,
		DebitAccountID:  t.DebitAccountID,
		CreditAccountID: t.CreditAccountID,
		Amount:          t.Amount,
		Currency:        t.Currency,
		Description:     t.Description,
		WarehouseID:     t.WarehouseID,
		CreatedBy:       t.CreatedBy,
		PaymentMethod:   t.PaymentMethod,
		PaymentStatus:   t.PaymentStatus,
		IsPayable:       t.IsPayable,
		IsReceivable:    t.IsReceivable,
		DueDate:         t.DueDate,
		SaleRef:         t.SaleRef,
		PurchaseRef:     t.PurchaseRef,
	}
}

// ToTransactionResponses mapea una lista de asientos.
func ToTransactionResponses(list []*entity.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(list))
	for _, t := range list {
		out = append(out, ToTransactionResponse(t))
	}
	return out
}
