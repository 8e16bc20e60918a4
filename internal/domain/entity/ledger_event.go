package entity

import "time"

// Tipos de evento de negocio.
const (
	EventKindSale       = "sale"
	EventKindPurchase   = "purchase"
	EventKindProduction = "production"
	EventKindSettlement = "settlement"
)

// LedgerEvent marca de idempotencia: un evento con Key sólo se aplica una vez.
type LedgerEvent struct {
	Key       string
	Kind      string
	CreatedAt time.Time
}
