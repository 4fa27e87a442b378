package incidents

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/bissquit/statuspage/internal/domain"
	"github.com/jackc/pgx/v5"
)

var errUnknownService = domain.NewError(domain.ErrNotFound, "service not found")

// memTx buffers writes until Commit. Only Commit and Rollback are implemented.
type memTx struct {
	pgx.Tx
	ops        []func()
	committed  bool
	rolledBack bool
	commitErr  error
}

func (t *memTx) Commit(_ context.Context) error {
	if t.committed || t.rolledBack {
		return pgx.ErrTxClosed
	}
	if t.commitErr != nil {
		t.rolledBack = true
		t.ops = nil
		return t.commitErr
	}
	for _, op := range t.ops {
		op()
	}
	t.committed = true
	return nil
}

func (t *memTx) Rollback(_ context.Context) error {
	if t.committed || t.rolledBack {
		return pgx.ErrTxClosed
	}
	t.rolledBack = true
	t.ops = nil
	return nil
}

// memStore is an in-memory Repository and CatalogService.
type memStore struct {
	services  map[string]*domain.Service
	incidents []domain.Incident

	txs   []*memTx
	clock time.Time
	seq   int

	beginErr  error
	createErr error
	updateErr error
	commitErr error
}

func newMemStore() *memStore {
	return &memStore{
		services: make(map[string]*domain.Service),
		clock:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (m *memStore) addService(id, name string, status domain.Status) {
	m.services[id] = &domain.Service{
		ID:        id,
		Name:      name,
		Status:    status,
		CreatedAt: m.clock,
		UpdatedAt: m.clock,
	}
}

func (m *memStore) lastTx() *memTx {
	if len(m.txs) == 0 {
		return nil
	}
	return m.txs[len(m.txs)-1]
}

func (m *memStore) BeginTx(_ context.Context) (pgx.Tx, error) {
	if m.beginErr != nil {
		return nil, m.beginErr
	}
	tx := &memTx{commitErr: m.commitErr}
	m.txs = append(m.txs, tx)
	return tx, nil
}

func (m *memStore) CreateIncidentTx(_ context.Context, tx pgx.Tx, incident *domain.Incident) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.seq++
	m.clock = m.clock.Add(time.Second)
	incident.ID = fmt.Sprintf("00000000-0000-4000-8000-%012d", m.seq)
	incident.CreatedAt = m.clock

	stored := *incident
	mt := tx.(*memTx)
	mt.ops = append(mt.ops, func() { m.incidents = append(m.incidents, stored) })
	return nil
}

func (m *memStore) ListIncidentViews(_ context.Context) ([]domain.IncidentView, error) {
	sorted := make([]domain.Incident, len(m.incidents))
	copy(sorted, m.incidents)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].ID > sorted[j].ID
		}
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	views := make([]domain.IncidentView, 0, len(sorted))
	for _, i := range sorted {
		views = append(views, domain.NewIncidentView(i, *m.services[i.ServiceID]))
	}
	return views, nil
}

func (m *memStore) ListServiceIncidents(ctx context.Context, serviceID string) ([]domain.Incident, error) {
	views, err := m.ListIncidentViews(ctx)
	if err != nil {
		return nil, err
	}
	incidents := make([]domain.Incident, 0)
	for _, v := range views {
		if v.ServiceID == serviceID {
			incidents = append(incidents, v.Incident)
		}
	}
	return incidents, nil
}

func (m *memStore) GetService(_ context.Context, id string) (*domain.ServiceView, error) {
	s, ok := m.services[id]
	if !ok {
		return nil, errUnknownService
	}
	view := domain.NewServiceView(*s, nil)
	return &view, nil
}

func (m *memStore) GetServiceForUpdateTx(_ context.Context, _ pgx.Tx, id string) (*domain.Service, error) {
	s, ok := m.services[id]
	if !ok {
		return nil, errUnknownService
	}
	copied := *s
	return &copied, nil
}

func (m *memStore) UpdateServiceStatusTx(_ context.Context, tx pgx.Tx, id string, status domain.Status, changedAt time.Time) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	s, ok := m.services[id]
	if !ok {
		return errUnknownService
	}
	mt := tx.(*memTx)
	mt.ops = append(mt.ops, func() {
		s.Status = status
		s.UpdatedAt = changedAt
	})
	return nil
}
