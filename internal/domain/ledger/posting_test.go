package ledger

import (
	"testing"

	"github.com/jhoicas/molino-api/internal/domain"
	"github.com/jhoicas/molino-api/internal/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestValidateAmount(t *testing.T) {
	cases := []struct {
		name  string
		value string
		ok    bool
	}{
		{"entero", "50000", true},
		{"dos decimales", "0.01", true},
		{"cero", "0", false},
		{"negativo", "-10", false},
		{"tres decimales", "10.005", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateAmount(decimal.RequireFromString(tc.value))
			if tc.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestValidatePosting_CuentaInactivaRechazada(t *testing.T) {
	debit := &entity.Account{ID: "a", Number: "ACC-000001", Status: entity.AccountStatusActive}
	credit := &entity.Account{ID: "b", Number: "ACC-000002", Status: entity.AccountStatusInactive}

	err := ValidatePosting(debit, credit, decimal.NewFromInt(10))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "ACC-000002")
}

func TestValidatePosting_MismaCuentaRechazada(t *testing.T) {
	acc := &entity.Account{ID: "a", Status: entity.AccountStatusActive}
	assert.ErrorIs(t, ValidatePosting(acc, acc, decimal.NewFromInt(10)), domain.ErrInvalidInput)
}

func TestValidatePosting_Valido(t *testing.T) {
	debit := &entity.Account{ID: "a", Status: entity.AccountStatusActive}
	credit := &entity.Account{ID: "b", Status: entity.AccountStatusActive}
	assert.NoError(t, ValidatePosting(debit, credit, decimal.RequireFromString("1250.50")))
}
