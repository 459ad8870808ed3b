// Package memory es una implementación en proceso de todos los puertos de repositorio. Aplica las mismas
// reglas de unicidad y referencias que el esquema de PostgreSQL y se usa en tests y demos locales.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/jhoicas/printshop-api/internal/application/ports"
	"github.com/jhoicas/printshop-api/internal/domain/entity"
	"github.com/jhoicas/printshop-api/internal/domain/specification"
)

var _ ports.TxRunner = (*Store)(nil)

type state struct {
	counters   map[string]int64
	customers  map[string]entity.Customer
	estimates  map[string]entity.Estimate
	jobs       map[string]entity.Job
	invoices   map[string]entity.Invoice
	lines      []entity.InvoiceLineItem
	payments   []entity.Payment
	files      []entity.FileRecord
	services   map[string]entity.Service
	finishes   map[string]entity.FinishOption
	paperTypes map[string]int
	weights    map[int]bool
	presets    map[string]presetRow
}

type presetRow struct {
	preset specification.SizePreset
	order  int
}

func newState() *state {
	return &state{
		counters:   map[string]int64{},
		customers:  map[string]entity.Customer{},
		estimates:  map[string]entity.Estimate{},
		jobs:       map[string]entity.Job{},
		invoices:   map[string]entity.Invoice{},
		services:   map[string]entity.Service{},
		finishes:   map[string]entity.FinishOption{},
		paperTypes: map[string]int{},
		weights:    map[int]bool{},
		presets:    map[string]presetRow{},
	}
}

func (s *state) clone() *state {
	return &state{
		counters:   maps.Clone(s.counters),
		customers:  maps.Clone(s.customers),
		estimates:  maps.Clone(s.estimates),
		jobs:       maps.Clone(s.jobs),
		invoices:   maps.Clone(s.invoices),
		lines:      slices.Clone(s.lines),
		payments:   slices.Clone(s.payments),
		files:      slices.Clone(s.files),
		services:   maps.Clone(s.services),
		finishes:   maps.Clone(s.finishes),
		paperTypes: maps.Clone(s.paperTypes),
		weights:    maps.Clone(s.weights),
		presets:    maps.Clone(s.presets),
	}
}

// Store guarda los datos. Las transacciones se serializan y se aplican reemplazando una copia modificada.
type Store struct {
	mu    sync.Mutex
	data  *state
	fail  map[string]error
	calls map[string]int
}

// NewStore devuelve un store vacío.
func NewStore() *Store {
	return &Store{data: newState(), fail: map[string]error{}, calls: map[string]int{}}
}

// FailOn hace que la siguiente llamada de op devuelva err. Las ops se llaman "<tabla>.<método>", p. ej. "jobs.create".
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[op] = err
}

// Calls informa cuántas veces se ejecutó op, incluidas las llamadas fallidas.
func (s *Store) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// session ata los repositorios al estado vivo (con bloqueo por llamada) o a la copia de una transacción.
type session struct {
	store *Store
	tx    *state
}

func (ss *session) do(op string, fn func(st *state) error) error {
	if ss.tx == nil {
		ss.store.mu.Lock()
		defer ss.store.mu.Unlock()
	}
	ss.store.calls[op]++
	if err, ok := ss.store.fail[op]; ok {
		delete(ss.store.fail, op)
		return err
	}
	st := ss.tx
	if st == nil {
		st = ss.store.data
	}
	return fn(st)
}

// Repos devuelve repositorios que operan fuera de cualquier transacción.
func (s *Store) Repos() ports.Repos {
	return reposFor(&session{store: s})
}

// Catalog devuelve el repositorio de catálogo.
func (s *Store) Catalog() *CatalogRepo {
	return &CatalogRepo{s: &session{store: s}}
}

// Reports devuelve el repositorio de reportes.
func (s *Store) Reports() *ReportRepo {
	return &ReportRepo{s: &session{store: s}}
}

func reposFor(ss *session) ports.Repos {
	return ports.Repos{
		Customers: &CustomerRepo{s: ss},
		Counters:  &CounterRepo{s: ss},
		Estimates: &EstimateRepo{s: ss},
		Jobs:      &JobRepo{s: ss},
		Invoices:  &InvoiceRepo{s: ss},
		Files:     &FileRepo{s: ss},
	}
}

// RunInTx ejecuta fn sobre una copia de los datos y conserva la copia solo si fn termina bien.
func (s *Store) RunInTx(ctx context.Context, fn func(repos ports.Repos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	tx := s.data.clone()
	if err := fn(reposFor(&session{store: s, tx: tx})); err != nil {
		return err
	}
	s.data = tx
	return nil
}
