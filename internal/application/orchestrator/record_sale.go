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
	domledger "github.com/jhoicas/molino-api/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

// RecordSale registra una venta. A crédito (medio Credit o saldo pendiente): verifica el límite
// del comprador, asienta Cuentas por Cobrar/Ventas por el total en Pending y, si hubo abono,
// Caja-o-Banco/Cuentas por Cobrar por lo pagado en Completed. De contado: Caja-o-Banco/Ventas en
// Completed. Las líneas descuentan stock de la bodega.
func (o *Orchestrator) RecordSale(ctx context.Context, sale entity.Sale, warehouseID, createdBy string) (*Result, error) {
	if err := validateTrade(sale.InvoiceNumber, sale.PaymentMethod, sale.PaidThrough, sale.TotalAmount, sale.PaidAmount, sale.Lines); err != nil {
		return nil, err
	}
	if strings.TrimSpace(warehouseID) == "" {
		return nil, fmt.Errorf("%w: bodega requerida", domain.ErrInvalidInput)
	}
	if sale.IsCredit() && strings.TrimSpace(sale.BuyerID) == "" {
		return nil, fmt.Errorf("%w: venta a crédito sin comprador", domain.ErrInvalidInput)
	}

	key := eventKey(entity.EventKindSale, sale.InvoiceNumber)
	res := &Result{EventKey: key}
	err := o.runEvent(ctx, key, entity.EventKindSale, func(repos ports.Repos) error {
		out, err := o.recordSaleInTx(ctx, repos, sale, warehouseID, createdBy, key)
		if err != nil {
			return err
		}
		*res = *out
		return nil
	})
	if errors.Is(err, errReplayed) {
		return o.replay(ctx, key, entity.InvoiceKindSale, sale.InvoiceNumber)
	}
	if err != nil {
		o.log.Warn().Err(err).Str("invoice", sale.InvoiceNumber).Msg("venta rechazada")
		return nil, err
	}
	o.log.Info().
		Str("invoice", sale.InvoiceNumber).
		Str("total", sale.TotalAmount.StringFixed(2)).
		Bool("credit", sale.IsCredit()).
		Int("transactions", len(res.Transactions)).
		Msg("venta registrada")
	return res, nil
}

func (o *Orchestrator) recordSaleInTx(ctx context.Context, repos ports.Repos, sale entity.Sale, warehouseID, createdBy, key string) (*Result, error) {
	wh, err := loadWarehouse(ctx, repos, warehouseID)
	if err != nil {
		return nil, err
	}
	remaining := sale.RemainingAmount()
	res := &Result{EventKey: key}

	if sale.IsCredit() {
		outstanding, err := o.credit.CheckInTx(ctx, repos, sale.BuyerID, remaining)
		if err != nil {
			return nil, err
		}
		res.Outstanding = outstanding.Add(remaining)
	}

	now := time.Now()
	inv := &entity.Invoice{
		ID:              uuid.New().String(),
		Number:          strings.TrimSpace(sale.InvoiceNumber),
		Kind:            entity.InvoiceKindSale,
		PartyID:         strings.TrimSpace(sale.BuyerID),
		WarehouseID:     wh.ID,
		TotalAmount:     sale.TotalAmount,
		PaidAmount:      sale.PaidAmount,
		RemainingAmount: remaining,
		Status:          entity.InvoiceStatusPending,
		DueDate:         sale.DueDate,
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
	res.Invoice = inv

	revenue, err := o.registry.EnsureCategory(ctx, repos, entity.CategorySalesRevenue, wh)
	if err != nil {
		return nil, err
	}
	meta := ledger.Metadata{
		Date:        now,
		WarehouseID: &wh.ID,
		CreatedBy:   createdBy,
		SaleRef:     strPtr(inv.Number),
		InvoiceID:   &inv.ID,
		EventKey:    strPtr(key),
	}

	if sale.IsCredit() {
		receivable, err := o.registry.EnsureCategory(ctx, repos, entity.CategoryAccountsReceivable, wh)
		if err != nil {
			return nil, err
		}
		m := meta
		m.Description = "Venta a crédito " + inv.Number
		m.PaymentMethod = entity.PaymentMethodCredit
		m.PaymentStatus = entity.PaymentStatusPending
		m.IsReceivable = true
		m.DueDate = sale.DueDate
		t, err := o.engine.PostInTx(ctx, repos, ledger.PostingInput{
			Type:            entity.TransactionTypeSale,
			DebitAccountID:  receivable.ID,
			CreditAccountID: revenue.ID,
			Amount:          sale.TotalAmount,
			Metadata:        m,
		})
		if err != nil {
			return nil, err
		}
		res.Transactions = append(res.Transactions, t)

		if sale.PaidAmount.IsPositive() {
			paidThrough := paidThroughOrCash(sale.PaidThrough)
			cash, err := o.registry.EnsureCategory(ctx, repos, cashCategory(paidThrough), wh)
			if err != nil {
				return nil, err
			}
			m := meta
			m.Description = "Abono inicial " + inv.Number
			m.PaymentMethod = paidThrough
			m.PaymentStatus = entity.PaymentStatusCompleted
			t, err := o.engine.PostInTx(ctx, repos, ledger.PostingInput{
				Type:            entity.TransactionTypeReceipt,
				DebitAccountID:  cash.ID,
				CreditAccountID: receivable.ID,
				Amount:          sale.PaidAmount,
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
		cash, err := o.registry.EnsureCategory(ctx, repos, cashCategory(sale.PaymentMethod), wh)
		if err != nil {
			return nil, err
		}
		m := meta
		m.Description = "Venta de contado " + inv.Number
		m.PaymentMethod = sale.PaymentMethod
		m.PaymentStatus = entity.PaymentStatusCompleted
		t, err := o.engine.PostInTx(ctx, repos, ledger.PostingInput{
			Type:            entity.TransactionTypeSale,
			DebitAccountID:  cash.ID,
			CreditAccountID: revenue.ID,
			Amount:          sale.TotalAmount,
			Metadata:        m,
		})
		if err != nil {
			return nil, err
		}
		res.Transactions = append(res.Transactions, t)
	}

	for _, line := range sale.Lines {
		entry, err := o.stock.AdjustInTx(ctx, repos, inventory.AdjustInput{
			WarehouseID: wh.ID,
			ItemName:    line.ItemName,
			ItemType:    line.ItemType,
			SubType:     line.SubType,
			Delta:       line.Quantity.Neg(),
			Reason:      entity.MovementReasonSale,
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

// completePending pasa a Completed los asientos Pending de la lista.
func (o *Orchestrator) completePending(ctx context.Context, repos ports.Repos, list []*entity.Transaction) error {
	for _, t := range list {
		if t.PaymentStatus != entity.PaymentStatusPending {
			continue
		}
		done, err := o.engine.CompleteInTx(ctx, repos, t.ID)
		if err != nil {
			return err
		}
		t.PaymentStatus = done.PaymentStatus
	}
	return nil
}

func paidThroughOrCash(method string) string {
	if method == "" || method == entity.PaymentMethodCredit {
		return entity.PaymentMethodCash
	}
	return method
}

// validateTrade validaciones comunes de venta y compra.
func validateTrade(invoiceNumber, method, paidThrough string, total, paid decimal.Decimal, lines []entity.TradeLine) error {
	if strings.TrimSpace(invoiceNumber) == "" {
		return fmt.Errorf("%w: número de factura requerido", domain.ErrInvalidInput)
	}
	if !entity.ValidPaymentMethod(method) {
		return fmt.Errorf("%w: medio de pago %q", domain.ErrInvalidInput, method)
	}
	if paidThrough != "" && (paidThrough == entity.PaymentMethodCredit || !entity.ValidPaymentMethod(paidThrough)) {
		return fmt.Errorf("%w: medio del abono %q", domain.ErrInvalidInput, paidThrough)
	}
	if err := domledger.ValidateAmount(total); err != nil {
		return err
	}
	if paid.IsNegative() || paid.GreaterThan(total) {
		return fmt.Errorf("%w: monto pagado fuera de rango", domain.ErrInvalidInput)
	}
	if !paid.IsZero() {
		if err := domledger.ValidateAmount(paid); err != nil {
			return err
		}
	}
	priced := 0
	linesTotal := decimal.Zero
	for _, l := range lines {
		if strings.TrimSpace(l.ItemName) == "" || !entity.ValidItemType(l.ItemType) {
			return fmt.Errorf("%w: línea con ítem inválido", domain.ErrInvalidInput)
		}
		if !l.Quantity.IsPositive() {
			return fmt.Errorf("%w: cantidad de %s debe ser mayor a cero", domain.ErrInvalidInput, l.ItemName)
		}
		if err := domledger.ValidateQuantityScale(l.Quantity); err != nil {
			return err
		}
		if l.UnitPrice.IsNegative() {
			return fmt.Errorf("%w: precio de %s negativo", domain.ErrInvalidInput, l.ItemName)
		}
		if l.UnitPrice.IsPositive() {
			priced++
			linesTotal = linesTotal.Add(l.Quantity.Mul(l.UnitPrice))
		}
	}
	// Precios opcionales: si alguna línea trae precio, todas deben traerlo y cuadrar con el total.
	if priced > 0 {
		if priced != len(lines) {
			return fmt.Errorf("%w: todas las líneas deben indicar precio", domain.ErrInvalidInput)
		}
		if !linesTotal.Round(domledger.MoneyScale).Equal(total) {
			return fmt.Errorf("%w: las líneas suman %s y el total es %s", domain.ErrInvalidInput,
				linesTotal.StringFixed(domledger.MoneyScale), total.StringFixed(domledger.MoneyScale))
		}
	}
	return nil
}
