package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de ítem de inventario.
const (
	ItemTypeWheat = "wheat"
	ItemTypeBags  = "bags"
)

// Unidades de cantidad.
const (
	UnitKg   = "kg"
	UnitBags = "bags"
)

// WheatItemName nombre del ítem de materia prima.
const WheatItemName = "Wheat"

// ValidItemType indica si t es un tipo de ítem conocido.
func ValidItemType(t string) bool {
	return t == ItemTypeWheat || t == ItemTypeBags
}

// UnitFor devuelve la unidad de medida de un tipo de ítem.
func UnitFor(itemType string) string {
	if itemType == ItemTypeWheat {
		return UnitKg
	}
	return UnitBags
}

// StockKey identifica una entrada de stock: (bodega, ítem, tipo, subtipo).
type StockKey struct {
	WarehouseID string
	ItemName    string
	ItemType    string
	SubType     string
}

// Normalize recorta espacios; el subtipo vacío es válido (sin subtipo).
func (k StockKey) Normalize() StockKey {
	return StockKey{
		WarehouseID: strings.TrimSpace(k.WarehouseID),
		ItemName:    strings.TrimSpace(k.ItemName),
		ItemType:    strings.TrimSpace(k.ItemType),
		SubType:     strings.TrimSpace(k.SubType),
	}
}

// StockEntry cantidad física actual de un ítem en una bodega. Quantity nunca es negativa.
type StockEntry struct {
	StockKey
	Quantity  decimal.Decimal
	Unit      string
	UpdatedAt time.Time
}
