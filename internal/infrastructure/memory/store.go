// Package memory implementa los puertos de persistencia en memoria (desarrollo y tests).
// Un único mutex serializa las unidades de trabajo; Run restaura una copia del estado si fn falla.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/molino-api/internal/application/ports"
	"github.com/jhoicas/molino-api/internal/domain/entity"
	"github.com/jhoicas/molino-api/internal/domain/repository"
)

var _ ports.TxRunner = (*Store)(nil)

type state struct {
	warehouses   map[string]entity.Warehouse
	accounts     map[string]entity.Account
	activeScope  map[string]string // categoría|tipo|alcance -> id de cuenta
	accountSeq   int64
	transactions map[string]entity.Transaction
	txSeq        int64
	stock        map[entity.StockKey]entity.StockEntry
	movements    []entity.StockMovement
	invoices     map[string]entity.Invoice // tipo|número
	buyers       map[string]entity.Buyer
	events       map[string]entity.LedgerEvent
}

func newState() *state {
	return &state{
		warehouses:   map[string]entity.Warehouse{},
		accounts:     map[string]entity.Account{},
		activeScope:  map[string]string{},
		transactions: map[string]entity.Transaction{},
		stock:        map[entity.StockKey]entity.StockEntry{},
		invoices:     map[string]entity.Invoice{},
		buyers:       map[string]entity.Buyer{},
		events:       map[string]entity.LedgerEvent{},
	}
}

// clone copia superficial de mapas y slices. Los campos puntero de las entidades no se mutan
// en sitio, así que compartirlos entre copias es seguro.
func (s *state) clone() *state {
	c := &state{
		warehouses:   make(map[string]entity.Warehouse, len(s.warehouses)),
		accounts:     make(map[string]entity.Account, len(s.accounts)),
		activeScope:  make(map[string]string, len(s.activeScope)),
		accountSeq:   s.accountSeq,
		transactions: make(map[string]entity.Transaction, len(s.transactions)),
		txSeq:        s.txSeq,
		stock:        make(map[entity.StockKey]entity.StockEntry, len(s.stock)),
		movements:    append([]entity.StockMovement(nil), s.movements...),
		invoices:     make(map[string]entity.Invoice, len(s.invoices)),
		buyers:       make(map[string]entity.Buyer, len(s.buyers)),
		events:       make(map[string]entity.LedgerEvent, len(s.events)),
	}
	for k, v := range s.warehouses {
		c.warehouses[k] = v
	}
	for k, v := range s.accounts {
		c.accounts[k] = v
	}
	for k, v := range s.activeScope {
		c.activeScope[k] = v
	}
	for k, v := range s.transactions {
		c.transactions[k] = v
	}
	for k, v := range s.stock {
		c.stock[k] = v
	}
	for k, v := range s.invoices {
		c.invoices[k] = v
	}
	for k, v := range s.buyers {
		c.buyers[k] = v
	}
	for k, v := range s.events {
		c.events[k] = v
	}
	return c
}

// Store almacenamiento en memoria; implementa ports.TxRunner.
type Store struct {
	mu  sync.Mutex
	st  *state
	now func() time.Time
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{st: newState(), now: func() time.Time { return time.Now().UTC() }}
}

// Run ejecuta fn en exclusión mutua. Si fn devuelve error el estado vuelve al de antes de la llamada.
func (s *Store) Run(ctx context.Context, fn func(repos ports.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	if err := fn(s.repos()); err != nil {
		s.st = snapshot
		return err
	}
	if err := ctx.Err(); err != nil {
		s.st = snapshot
		return fmt.Errorf("commit cancelado: %w", err)
	}
	return nil
}

func (s *Store) repos() ports.Repos {
	return ports.Repos{
		Accounts:     &accountRepo{s: s},
		Transactions: &transactionRepo{s: s},
		Stock:        &stockRepo{s: s},
		Movements:    &movementRepo{s: s},
		Invoices:     &invoiceRepo{s: s},
		Buyers:       &buyerRepo{s: s},
		Warehouses:   &warehouseRepo{s: s},
		Events:       &eventRepo{s: s},
	}
}

// Warehouses repositorio de bodegas fuera de Run; cada llamada toma el mutex.
func (s *Store) Warehouses() repository.WarehouseRepository {
	return &lockedWarehouses{inner: &warehouseRepo{s: s}, mu: &s.mu}
}

func page[T any](list []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(list) {
		return nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}

func sortedValues[K comparable, V any](m map[K]V, less func(a, b *V) bool) []*V {
	out := make([]*V, 0, len(m))
	for _, v := range m {
		v := v
		out = append(out, &v)
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}
