package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/molino-api/internal/application/ledger"
	"github.com/jhoicas/molino-api/internal/application/ports"
	"github.com/jhoicas/molino-api/internal/domain"
	"github.com/jhoicas/molino-api/internal/domain/entity"
	domledger "github.com/jhoicas/molino-api/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

// Settlement abono a una factura pendiente. Reference (opcional) hace el abono idempotente.
type Settlement struct {
	InvoiceKind   string
	InvoiceNumber string
	Amount        decimal.Decimal
	Method        string
	Reference     string
	CreatedBy     string
}

// SettleInvoice aplica un abono: en ventas Caja-o-Banco/Cuentas por Cobrar (Receipt), en compras
// Cuentas por Pagar/Caja-o-Banco (Payment). Si la factura queda en cero pasa a paid y sus asientos
// Pending pasan a Completed.
func (o *Orchestrator) SettleInvoice(ctx context.Context, in Settlement) (*Result, error) {
	if in.InvoiceKind != entity.InvoiceKindSale && in.InvoiceKind != entity.InvoiceKindPurchase {
		return nil, fmt.Errorf("%w: tipo de factura %q", domain.ErrInvalidInput, in.InvoiceKind)
	}
	if strings.TrimSpace(in.InvoiceNumber) == "" {
		return nil, fmt.Errorf("%w: número de factura requerido", domain.ErrInvalidInput)
	}
	if err := domledger.ValidateAmount(in.Amount); err != nil {
		return nil, err
	}
	method := in.Method
	if method == "" {
		method = entity.PaymentMethodCash
	}
	if method == entity.PaymentMethodCredit || !entity.ValidPaymentMethod(method) {
		return nil, fmt.Errorf("%w: medio de pago %q", domain.ErrInvalidInput, in.Method)
	}

	key := ""
	if ref := strings.TrimSpace(in.Reference); ref != "" {
		key = eventKey(entity.EventKindSettlement, in.InvoiceKind+":"+in.InvoiceNumber+":"+ref)
	}
	res := &Result{EventKey: key}
	err := o.runEvent(ctx, key, entity.EventKindSettlement, func(repos ports.Repos) error {
		out, err := o.settleInTx(ctx, repos, in, method, key)
		if err != nil {
			return err
		}
		*res = *out
		return nil
	})
	if errors.Is(err, errReplayed) {
		return o.replay(ctx, key, in.InvoiceKind, in.InvoiceNumber)
	}
	if err != nil {
		o.log.Warn().Err(err).Str("invoice", in.InvoiceNumber).Msg("abono rechazado")
		return nil, err
	}
	o.log.Info().
		Str("invoice", in.InvoiceNumber).
		Str("amount", in.Amount.StringFixed(2)).
		Str("status", res.Invoice.Status).
		Msg("abono registrado")
	return res, nil
}

func (o *Orchestrator) settleInTx(ctx context.Context, repos ports.Repos, in Settlement, method, key string) (*Result, error) {
	inv, err := repos.Invoices.GetByNumberForUpdate(ctx, in.InvoiceKind, strings.TrimSpace(in.InvoiceNumber))
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, fmt.Errorf("%w: factura %s", domain.ErrNotFound, in.InvoiceNumber)
	}
	if !inv.IsOutstanding() {
		return nil, fmt.Errorf("%w: la factura %s no tiene saldo pendiente", domain.ErrInvalidInput, inv.Number)
	}
	now := time.Now()
	if !inv.ApplyPayment(in.Amount, now) {
		return nil, fmt.Errorf("%w: abono %s mayor al saldo %s", domain.ErrInvalidInput,
			in.Amount.StringFixed(2), inv.RemainingAmount.StringFixed(2))
	}
	if err := repos.Invoices.UpdatePayment(ctx, inv); err != nil {
		return nil, err
	}

	wh, err := loadWarehouse(ctx, repos, inv.WarehouseID)
	if err != nil {
		return nil, err
	}
	cash, err := o.registry.EnsureCategory(ctx, repos, cashCategory(method), wh)
	if err != nil {
		return nil, err
	}
	meta := ledger.Metadata{
		Date:          now,
		WarehouseID:   &wh.ID,
		CreatedBy:     in.CreatedBy,
		PaymentMethod: method,
		PaymentStatus: entity.PaymentStatusCompleted,
		InvoiceID:     &inv.ID,
	}
	if key != "" {
		meta.EventKey = strPtr(key)
	}
	posting := ledger.PostingInput{Amount: in.Amount}
	if inv.Kind == entity.InvoiceKindSale {
		receivable, err := o.registry.EnsureCategory(ctx, repos, entity.CategoryAccountsReceivable, wh)
		if err != nil {
			return nil, err
		}
		meta.Description = "Cobro factura " + inv.Number
		meta.SaleRef = strPtr(inv.Number)
		posting.Type = entity.TransactionTypeReceipt
		posting.DebitAccountID = cash.ID
		posting.CreditAccountID = receivable.ID
	} else {
		payable, err := o.registry.EnsureCategory(ctx, repos, entity.CategoryAccountsPayable, wh)
		if err != nil {
			return nil, err
		}
		meta.Description = "Pago factura " + inv.Number
		meta.PurchaseRef = strPtr(inv.Number)
		posting.Type = entity.TransactionTypePayment
		posting.DebitAccountID = payable.ID
		posting.CreditAccountID = cash.ID
	}
	posting.Metadata = meta
	t, err := o.engine.PostInTx(ctx, repos, posting)
	if err != nil {
		return nil, err
	}
	res := &Result{EventKey: key, Invoice: inv, Transactions: []*entity.Transaction{t}}

	if inv.Status == entity.InvoiceStatusPaid {
		linked, err := repos.Transactions.ListByInvoice(ctx, inv.ID)
		if err != nil {
			return nil, err
		}
		if err := o.completePending(ctx, repos, linked); err != nil {
			return nil, err
		}
	}
	if inv.Kind == entity.InvoiceKindSale && inv.PartyID != "" {
		res.Outstanding, err = repos.Invoices.SumOutstanding(ctx, inv.PartyID)
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}
