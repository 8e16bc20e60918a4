package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos contables de cuenta.
const (
	AccountTypeAsset     = "Asset"
	AccountTypeLiability = "Liability"
	AccountTypeRevenue   = "Revenue"
	AccountTypeExpense   = "Expense"
)

// Categorías del plan de cuentas.
const (
	CategoryCash               = "Cash"
	CategoryBank               = "Bank"
	CategoryAccountsReceivable = "Accounts Receivable"
	CategoryAccountsPayable    = "Accounts Payable"
	CategorySalesRevenue       = "Sales Revenue"
	CategoryPurchaseExpense    = "Purchase Expense"
	CategoryInventory          = "Inventory"
	CategorySalaryExpense      = "Salary Expense"
	CategoryOtherIncome        = "Other Income"
	CategoryOtherExpense       = "Other Expense"
)

// Estados de cuenta.
const (
	AccountStatusActive   = "Active"
	AccountStatusInactive = "Inactive"
)

// GlobalScope clave de alcance para cuentas sin bodega.
const GlobalScope = "global"

// categoryTypes tipo contable obligatorio para cada categoría.
var categoryTypes = map[string]string{
	CategoryCash:               AccountTypeAsset,
	CategoryBank:               AccountTypeAsset,
	CategoryAccountsReceivable: AccountTypeAsset,
	CategoryInventory:          AccountTypeAsset,
	CategoryAccountsPayable:    AccountTypeLiability,
	CategorySalesRevenue:       AccountTypeRevenue,
	CategoryOtherIncome:        AccountTypeRevenue,
	CategoryPurchaseExpense:    AccountTypeExpense,
	CategorySalaryExpense:      AccountTypeExpense,
	CategoryOtherExpense:       AccountTypeExpense,
}

// ValidCategoryType indica si la combinación categoría/tipo pertenece al plan de cuentas.
func ValidCategoryType(category, accountType string) bool {
	t, ok := categoryTypes[category]
	return ok && t == accountType
}

// TypeForCategory devuelve el tipo contable de una categoría ("" si no existe).
func TypeForCategory(category string) string {
	return categoryTypes[category]
}

// Account representa una cuenta del libro mayor. Hay como máximo una cuenta activa
// por (categoría, tipo, alcance de bodega).
type Account struct {
	ID             string
	Number         string
	Name           string
	Type           string
	Category       string
	WarehouseID    *string
	OpeningBalance decimal.Decimal
	CurrentBalance decimal.Decimal
	Status         string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ScopeKey clave de unicidad del alcance: ID de bodega o GlobalScope.
func (a *Account) ScopeKey() string {
	return ScopeKeyFor(a.WarehouseID)
}

// IsActive indica si la cuenta acepta asientos.
func (a *Account) IsActive() bool {
	return a.Status == AccountStatusActive
}

// ScopeKeyFor calcula la clave de alcance para un ID de bodega opcional.
func ScopeKeyFor(warehouseID *string) string {
	if warehouseID == nil || *warehouseID == "" {
		return GlobalScope
	}
	return *warehouseID
}
