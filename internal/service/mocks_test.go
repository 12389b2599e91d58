package service_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	appErrors "github.com/unclebandit/smsleopard-activation/internal/errors"
	"github.com/unclebandit/smsleopard-activation/internal/model"
)

// MockEventRepo keeps events in memory per tenant.
type MockEventRepo struct {
	mu         sync.Mutex
	events     map[int]*model.Event
	setErr     error
	lastOffset int
}

func NewMockEventRepo(events ...model.Event) *MockEventRepo {
	m := &MockEventRepo{events: map[int]*model.Event{}}
	for i := range events {
		e := events[i]
		m.events[e.ID] = &e
	}
	return m
}

func (m *MockEventRepo) GetByID(_ context.Context, tenantID, id int) (*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[id]
	if !ok || e.TenantID != tenantID {
		return nil, appErrors.NewEventNotFound(tenantID, id)
	}
	c := *e
	return &c, nil
}

func (m *MockEventRepo) ListByIDs(ctx context.Context, tenantID int, ids []int) ([]model.Event, error) {
	out := []model.Event{}
	for _, id := range ids {
		e, err := m.GetByID(ctx, tenantID, id)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, nil
}

func (m *MockEventRepo) ListByTenant(_ context.Context, tenantID int, kind string, offset, limit int) ([]model.Event, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastOffset = offset

	var filtered []model.Event
	for _, e := range m.events {
		if e.TenantID != tenantID || (kind != "" && e.Kind != kind) {
			continue
		}
		filtered = append(filtered, *e)
	}
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].ID > filtered[j].ID })

	total := len(filtered)
	if offset >= total {
		return []model.Event{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return filtered[offset:end], total, nil
}

func (m *MockEventRepo) SetActive(_ context.Context, tenantID int, ids []int, active bool) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return 0, m.setErr
	}
	n := 0
	for _, id := range ids {
		if e, ok := m.events[id]; ok && e.TenantID == tenantID && e.IsActive != active {
			e.IsActive = active
			n++
		}
	}
	return n, nil
}

func (m *MockEventRepo) IsActive(id int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.events[id].IsActive
}

type MockClientRepo struct {
	stats   model.ClientPopulationStats
	clients []model.Client
	calls   int
}

func (m *MockClientRepo) PopulationStats(_ context.Context, _ int) (*model.ClientPopulationStats, error) {
	m.calls++
	s := m.stats
	return &s, nil
}

func (m *MockClientRepo) GetByID(_ context.Context, tenantID, id int) (*model.Client, error) {
	for _, c := range m.clients {
		if c.ID == id && c.TenantID == tenantID {
			return &c, nil
		}
	}
	return nil, appErrors.NewClientNotFound(tenantID, id)
}

func (m *MockClientRepo) ListByTenant(_ context.Context, tenantID, offset, limit int) ([]model.Client, int, error) {
	var filtered []model.Client
	for _, c := range m.clients {
		if c.TenantID == tenantID {
			filtered = append(filtered, c)
		}
	}
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].ID > filtered[j].ID })

	total := len(filtered)
	if offset >= total {
		return []model.Client{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return filtered[offset:end], total, nil
}

type MockSubscriptionRepo struct {
	subs map[int]*model.Subscription
}

func (m *MockSubscriptionRepo) GetByTenant(_ context.Context, tenantID int) (*model.Subscription, error) {
	s, ok := m.subs[tenantID]
	if !ok {
		return nil, appErrors.NewSubscriptionNotFound(tenantID)
	}
	return s, nil
}

func (m *MockSubscriptionRepo) ListTenantIDs(_ context.Context) ([]int, error) {
	ids := []int{}
	for id := range m.subs {
		ids = append(ids, id)
	}
	return ids, nil
}

// MockQueue records published payloads.
type MockQueue struct {
	mu        sync.Mutex
	published []any
	err       error
}

func (m *MockQueue) Publish(topic string, payload any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, payload)
	return nil
}

func (m *MockQueue) Subscribe(topic string, handler func(payload any) error) error {
	return nil
}

type MockStatsCache struct {
	entries map[int]*model.ClientPopulationStats
	getErr  error
}

func (m *MockStatsCache) Get(_ context.Context, tenantID int) (*model.ClientPopulationStats, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.entries[tenantID], nil
}

func (m *MockStatsCache) Set(_ context.Context, tenantID int, stats *model.ClientPopulationStats) error {
	m.entries[tenantID] = stats
	return nil
}

func (m *MockStatsCache) Invalidate(_ context.Context, tenantID int) error {
	delete(m.entries, tenantID)
	return nil
}

var errBoom = errors.New("boom")

var fixedNow = time.Now().UTC().Truncate(time.Second)

func standardSubscription(tenantID int) *model.Subscription {
	return &model.Subscription{
		TenantID:    tenantID,
		Plan:        "starter",
		SMSTotal:    1000,
		SMSUsed:     950,
		PeriodStart: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
	}
}
