package ledger

import (
	"fmt"

	"github.com/jhoicas/molino-api/internal/domain"
	"github.com/jhoicas/molino-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// MoneyScale decimales permitidos en montos.
const MoneyScale = 2

// ValidateAmount exige un monto positivo con a lo sumo dos decimales.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: el monto debe ser mayor a cero", domain.ErrInvalidInput)
	}
	if !amount.Equal(amount.Truncate(MoneyScale)) {
		return fmt.Errorf("%w: el monto admite máximo %d decimales", domain.ErrInvalidInput, MoneyScale)
	}
	return nil
}

// QuantityScale decimales permitidos en cantidades de stock (columna NUMERIC(18,3)).
const QuantityScale = 3

// ValidateQuantityScale rechaza cantidades con más de QuantityScale decimales; el signo no se valida.
func ValidateQuantityScale(qty decimal.Decimal) error {
	if !qty.Equal(qty.Truncate(QuantityScale)) {
		return fmt.Errorf("%w: la cantidad admite máximo %d decimales", domain.ErrInvalidInput, QuantityScale)
	}
	return nil
}

// ValidatePosting verifica que un asiento pueda aplicarse sobre las dos cuentas.
func ValidatePosting(debit, credit *entity.Account, amount decimal.Decimal) error {
	if err := ValidateAmount(amount); err != nil {
		return err
	}
	if debit.ID == credit.ID {
		return fmt.Errorf("%w: cuenta débito y crédito iguales", domain.ErrInvalidInput)
	}
	if !debit.IsActive() {
		return fmt.Errorf("%w: cuenta %s inactiva", domain.ErrInvalidInput, debit.Number)
	}
	if !credit.IsActive() {
		return fmt.Errorf("%w: cuenta %s inactiva", domain.ErrInvalidInput, credit.Number)
	}
	return nil
}
