package pipeline

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhenliu/marketbrief/internal/basis"
	"github.com/zhenliu/marketbrief/internal/calendar"
	"github.com/zhenliu/marketbrief/internal/collect"
	"github.com/zhenliu/marketbrief/internal/contracts"
	"github.com/zhenliu/marketbrief/internal/quality"
	"github.com/zhenliu/marketbrief/internal/snapshot"
	"github.com/zhenliu/marketbrief/pkg/logger"
)

type stubAdapter struct {
	category contracts.Category
	payload  contracts.Payload
	err      error
}

func (s *stubAdapter) Category() contracts.Category { return s.category }

func (s *stubAdapter) Fetch(ctx context.Context) (contracts.Payload, error) {
	return s.payload, s.err
}

type memoryStore struct {
	mu    sync.Mutex
	saved map[string]contracts.MarketSnapshot
}

func newMemoryStore() *memoryStore {
	return &memoryStore{saved: make(map[string]contracts.MarketSnapshot)}
}

func (m *memoryStore) Save(ctx context.Context, snap contracts.MarketSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved[snap.Date] = snap
	return nil
}

func (m *memoryStore) Load(ctx context.Context, date string) (contracts.MarketSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.saved[date]
	if !ok {
		return contracts.MarketSnapshot{}, fmt.Errorf("not found: %s", date)
	}
	return snap, nil
}

func (m *memoryStore) ListDates(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var dates []string
	for d := range m.saved {
		dates = append(dates, d)
	}
	return dates, nil
}

type recordingReporter struct {
	mu        sync.Mutex
	published []string
	err       error
}

func (r *recordingReporter) Publish(ctx context.Context, snap contracts.MarketSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.published = append(r.published, snap.Date)
	return nil
}

func healthyAdapters(now time.Time) []contracts.Adapter {
	freshNews := []contracts.NewsItem{{Title: "央行宣布降准", Importance: "high", Timestamp: now}}
	return []contracts.Adapter{
		&stubAdapter{category: contracts.CategoryIndex, payload: contracts.Payload{Indices: []contracts.IndexQuote{
			{Code: "sh000300", Name: "沪深300", Price: 4100, ChangePercent: 0.5},
		}}},
		&stubAdapter{category: contracts.CategoryCommodity, payload: contracts.Payload{Commodities: []contracts.CommodityQuote{
			{Name: "伦敦金", Price: 2015.2, Unit: "美元/盎司", Currency: "USD"},
		}}},
		&stubAdapter{category: contracts.CategoryCurrency, payload: contracts.Payload{Currencies: []contracts.CurrencyQuote{
			{Pair: "USD/CNY", Rate: 7.12},
		}}},
		&stubAdapter{category: contracts.CategoryBond, payload: contracts.Payload{Bonds: []contracts.BondYield{
			{Name: "国债10年", TermYears: 10, Yield: 2.15},
		}}},
		&stubAdapter{category: contracts.CategoryFutures, payload: contracts.Payload{Futures: []contracts.FuturesQuote{
			{Product: "IF", Name: "沪深300", Contract: "IF2609", Month: calendar.MonthNext, Price: 4182, Expiry: "2026-09-18"},
		}}},
		&stubAdapter{category: contracts.CategoryNews, payload: contracts.Payload{News: freshNews}},
	}
}

func newRunner(t *testing.T, store contracts.Store, reporters []contracts.Reporter, adapters []contracts.Adapter) *Runner {
	t.Helper()
	log := logger.Nop()
	cal := calendar.New()

	orchestrator := collect.NewOrchestrator(cal, log, adapters...).
		WithPolicies(func(contracts.Category) collect.Policy {
			return collect.Policy{PerAttemptTimeout: time.Second, MaxAttempts: 1}
		})

	return NewRunner(
		cal,
		orchestrator,
		quality.NewScorer(log),
		basis.NewAnalyzer(cal, log),
		snapshot.NewAssembler(log),
		store,
		log,
		reporters...,
	)
}

func TestRunPersistsAndPublishes(t *testing.T) {
	runDate := time.Date(2026, time.August, 20, 0, 0, 0, 0, time.UTC)
	store := newMemoryStore()
	reporter := &recordingReporter{}

	runner := newRunner(t, store, []contracts.Reporter{reporter}, healthyAdapters(time.Now()))
	snap, err := runner.Run(context.Background(), runDate)
	require.NoError(t, err)

	assert.Equal(t, "2026-08-20", snap.Date)
	assert.Equal(t, 100, snap.QualityScore)
	assert.True(t, snap.MeetsQualityBar())

	require.Len(t, snap.Basis, 1)
	assert.Equal(t, "IF2609", snap.Basis[0].Contract)
	assert.Equal(t, 21, snap.Basis[0].TradingDaysToExpiry)
	assert.InDelta(t, 0.24, snap.Basis[0].AnnualizedBasisRate, 1e-2)

	saved, err := store.Load(context.Background(), "2026-08-20")
	require.NoError(t, err)
	assert.Equal(t, snap.QualityScore, saved.QualityScore)
	assert.Equal(t, []string{"2026-08-20"}, reporter.published)
}

func TestRunPersistsDegradedSnapshot(t *testing.T) {
	runDate := time.Date(2026, time.August, 20, 0, 0, 0, 0, time.UTC)
	adapters := healthyAdapters(time.Now())
	// Knock out commodity, bond, and futures.
	for i, a := range adapters {
		stub := a.(*stubAdapter)
		switch stub.category {
		case contracts.CategoryCommodity, contracts.CategoryBond, contracts.CategoryFutures:
			adapters[i] = &stubAdapter{category: stub.category, err: &contracts.TransientFetchError{Source: "test", Err: fmt.Errorf("down")}}
		}
	}

	store := newMemoryStore()
	runner := newRunner(t, store, nil, adapters)

	snap, err := runner.Run(context.Background(), runDate)
	require.NoError(t, err)

	assert.Equal(t, 50, snap.QualityScore)
	assert.False(t, snap.MeetsQualityBar())

	// Degraded or not, the snapshot must land in the store.
	saved, err := store.Load(context.Background(), "2026-08-20")
	require.NoError(t, err)
	assert.Equal(t, 50, saved.QualityScore)
	assert.Empty(t, saved.Basis)
}

func TestRunAbortsOnUnresolvableDate(t *testing.T) {
	store := newMemoryStore()
	runner := newRunner(t, store, nil, healthyAdapters(time.Now()))

	_, err := runner.Run(context.Background(), time.Date(2030, time.March, 3, 0, 0, 0, 0, time.UTC))

	var orchErr *contracts.OrchestratorError
	require.ErrorAs(t, err, &orchErr)

	dates, err := store.ListDates(context.Background())
	require.NoError(t, err)
	assert.Empty(t, dates, "nothing may be persisted for an unresolvable date")
}

func TestRunReporterFailureIsNotFatal(t *testing.T) {
	runDate := time.Date(2026, time.August, 20, 0, 0, 0, 0, time.UTC)
	store := newMemoryStore()
	failing := &recordingReporter{err: fmt.Errorf("webhook down")}
	ok := &recordingReporter{}

	runner := newRunner(t, store, []contracts.Reporter{failing, ok}, healthyAdapters(time.Now()))
	_, err := runner.Run(context.Background(), runDate)
	require.NoError(t, err)

	assert.Equal(t, []string{"2026-08-20"}, ok.published)
}

func TestResolveRunDate(t *testing.T) {
	runner := newRunner(t, newMemoryStore(), nil, nil)

	cases := []struct {
		name string
		at   time.Time
		want string
	}{
		{"trading day maps to itself", time.Date(2026, time.August, 20, 9, 0, 0, 0, time.UTC), "2026-08-20"},
		{"saturday maps to friday", time.Date(2026, time.August, 22, 9, 0, 0, 0, time.UTC), "2026-08-21"},
		{"holiday maps to prior trading day", time.Date(2026, time.October, 1, 9, 0, 0, 0, time.UTC), "2026-09-30"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := runner.ResolveRunDate(tc.at)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.Format("2006-01-02"))
		})
	}

	_, err := runner.ResolveRunDate(time.Date(2030, time.March, 3, 0, 0, 0, 0, time.UTC))
	var orchErr *contracts.OrchestratorError
	assert.ErrorAs(t, err, &orchErr)
}
