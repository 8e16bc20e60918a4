package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/molino-api/internal/application/inventory"
	"github.com/jhoicas/molino-api/internal/application/ledger"
	"github.com/jhoicas/molino-api/internal/application/ports"
	"github.com/jhoicas/molino-api/internal/domain"
	"github.com/jhoicas/molino-api/internal/domain/entity"
)

// RecordPurchase registra una compra, espejo de RecordSale: a crédito asienta Gastos de
// Compra/Cuentas por Pagar en Pending y el abono como Cuentas por Pagar/Caja-o-Banco; de contado
// Gastos de Compra/Caja-o-Banco. Las líneas suman stock. No aplica límite de crédito.
func (o *Orchestrator) RecordPurchase(ctx context.Context, purchase entity.Purchase, warehouseID, createdBy string) (*Result, error) {
	if err := validateTrade(purchase.InvoiceNumber, purchase.PaymentMethod, purchase.PaidThrough, purchase.TotalAmount, purchase.PaidAmount, purchase.Lines); err != nil {
		return nil, err
	}
	if strings.TrimSpace(warehouseID) == "" {
		return nil, fmt.Errorf("%w: bodega requerida", domain.ErrInvalidInput)
	}

	key := eventKey(entity.EventKindPurchase, purchase.InvoiceNumber)
	res := &Result{EventKey: key}
	err := o.runEvent(ctx, key, entity.EventKindPurchase, func(repos ports.Repos) error {
		out, err := o.recordPurchaseInTx(ctx, repos, purchase, warehouseID, createdBy, key)
		if err != nil {
			return err
		}
		*res = *out
		return nil
	})
	if errors.Is(err, errReplayed) {
		return o.replay(ctx, key, entity.InvoiceKindPurchase, purchase.InvoiceNumber)
	}
	if err != nil {
		o.log.Warn().Err(err).Str("invoice", purchase.InvoiceNumber).Msg("compra rechazada")
		return nil, err
	}
	o.log.Info().
		Str("invoice", purchase.InvoiceNumber).
		Str("total", purchase.TotalAmount.StringFixed(2)).
		Bool("credit", purchase.IsCredit()).
		Msg("compra registrada")
	return res, nil
}

func (o *Orchestrator) recordPurchaseInTx(ctx context.Context, repos ports.Repos, purchase entity.Purchase, warehouseID, createdBy, key string) (*Result, error) {
	wh, err := loadWarehouse(ctx, repos, warehouseID)
	if err != nil {
		return nil, err
	}
	remaining := purchase.RemainingAmount()
	now := time.Now()
	inv := &entity.Invoice{
		ID:              uuid.New().String(),
		Number:          strings.TrimSpace(purchase.InvoiceNumber),
		Kind:            entity.InvoiceKindPurchase,
		PartyID:         strings.TrimSpace(purchase.SupplierID),
		WarehouseID:     wh.ID,
		TotalAmount:     purchase.TotalAmount,
		PaidAmount:      purchase.PaidAmount,
		RemainingAmount: remaining,
		Status:          entity.InvoiceStatusPending,
		DueDate:         purchase.DueDate,
		CreatedBy:       createdBy,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if !remaining.IsPositive() {
		inv.Status = entity.InvoiceStatusPaid
	}
	if err := repos.Invoices.Create(ctx, inv); err != nil {
		return nil, err
	}
	res := &Result{EventKey: key, Invoice: inv}

	expense, err := o.registry.EnsureCategory(ctx, repos, entity.CategoryPurchaseExpense, wh)
	if err != nil {
		return nil, err
	}
	meta := ledger.Metadata{
		Date:        now,
		WarehouseID: &wh.ID,
		CreatedBy:   createdBy,
		PurchaseRef: strPtr(inv.Number),
		InvoiceID:   &inv.ID,
		EventKey:    strPtr(key),
	}

	if purchase.IsCredit() {
		payable, err := o.registry.EnsureCategory(ctx, repos, entity.CategoryAccountsPayable, wh)
		if err != nil {
			return nil, err
		}
		m := meta
		m.Description = "Compra a crédito " + inv.Number
		m.PaymentMethod = entity.PaymentMethodCredit
		m.PaymentStatus = entity.PaymentStatusPending
		m.IsPayable = true
		m.DueDate = purchase.DueDate
		t, err := o.engine.PostInTx(ctx, repos, ledger.PostingInput{
			Type:            entity.TransactionTypePurchase,
			DebitAccountID:  expense.ID,
			CreditAccountID: payable.ID,
			Amount:          purchase.TotalAmount,
			Metadata:        m,
		})
		if err != nil {
			return nil, err
		}
		res.Transactions = append(res.Transactions, t)

		if purchase.PaidAmount.IsPositive() {
			paidThrough := paidThroughOrCash(purchase.PaidThrough)
			cash, err := o.registry.EnsureCategory(ctx, repos, cashCategory(paidThrough), wh)
			if err != nil {
				return nil, err
			}
			m := meta
			m.Description = "Pago inicial " + inv.Number
			m.PaymentMethod = paidThrough
			m.PaymentStatus = entity.PaymentStatusCompleted
			t, err := o.engine.PostInTx(ctx, repos, ledger.PostingInput{
				Type:            entity.TransactionTypePayment,
				DebitAccountID:  payable.ID,
				CreditAccountID: cash.ID,
				Amount:          purchase.PaidAmount,
				Metadata:        m,
			})
			if err != nil {
				return nil, err
			}
			res.Transactions = append(res.Transactions, t)
		}
		if inv.Status == entity.InvoiceStatusPaid {
			if err := o.completePending(ctx, repos, res.Transactions); err != nil {
				return nil, err
			}
		}
	} else {
		cash, err := o.registry.EnsureCategory(ctx, repos, cashCategory(purchase.PaymentMethod), wh)
		if err != nil {
			return nil, err
		}
		m := meta
		m.Description = "Compra de contado " + inv.Number
		m.PaymentMethod = purchase.PaymentMethod
		m.PaymentStatus = entity.PaymentStatusCompleted
		t, err := o.engine.PostInTx(ctx, repos, ledger.PostingInput{
			Type:            entity.TransactionTypePurchase,
			DebitAccountID:  expense.ID,
			CreditAccountID: cash.ID,
			Amount:          purchase.TotalAmount,
			Metadata:        m,
		})
		if err != nil {
			return nil, err
		}
		res.Transactions = append(res.Transactions, t)
	}

	for _, line := range purchase.Lines {
		entry, err := o.stock.AdjustInTx(ctx, repos, inventory.AdjustInput{
			WarehouseID: wh.ID,
			ItemName:    line.ItemName,
			ItemType:    line.ItemType,
			SubType:     line.SubType,
			Delta:       line.Quantity,
			Reason:      entity.MovementReasonPurchase,
			Reference:   inv.Number,
			CreatedBy:   createdBy,
		})
		if err != nil {
			return nil, err
		}
		res.Stock = append(res.Stock, entry)
	}
	return res, nil
}
