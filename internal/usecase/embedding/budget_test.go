package embedding

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/chatdesk/internal/domain"
)

var testNow = time.Date(2026, time.January, 31, 22, 0, 0, 0, time.UTC)

// newTracker returns a tracker whose clock is driven by *clock.
func newTracker(daily, monthly int64, action BudgetAction, clock *time.Time) *BudgetTracker {
	bt := NewBudgetTracker("openai", daily, monthly, action, zap.NewNop())
	bt.now = func() time.Time { return *clock }
	bt.day, bt.month = startOfDay(*clock), startOfMonth(*clock)
	return bt
}

func TestParseBudgetAction(t *testing.T) {
	tests := []struct {
		in      string
		want    BudgetAction
		wantErr bool
	}{
		{"", BudgetActionWarn, false},
		{"warn", BudgetActionWarn, false},
		{"reject", BudgetActionReject, false},
		{"block", "", true},
	}
	for _, tt := range tests {
		got, err := ParseBudgetAction(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseBudgetAction(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestBudgetTracker_Check(t *testing.T) {
	tests := []struct {
		name           string
		daily, monthly int64
		action         BudgetAction
		record         int64
		wantQuotaErr   bool
	}{
		{"daily reject", 100, 0, BudgetActionReject, 100, true},
		{"monthly reject", 0, 500, BudgetActionReject, 500, true},
		{"warn lets through", 100, 0, BudgetActionWarn, 200, false},
		{"unlimited", 0, 0, BudgetActionReject, 999999999, false},
		{"below limit", 1000, 10000, BudgetActionReject, 500, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := testNow
			bt := newTracker(tt.daily, tt.monthly, tt.action, &clock)
			bt.Record(tt.record)

			err := bt.Check(context.Background())
			if got := errors.Is(err, domain.ErrQuotaExceeded); got != tt.wantQuotaErr {
				t.Fatalf("Check() = %v, want quota error %v", err, tt.wantQuotaErr)
			}
		})
	}
}

func TestBudgetTracker_Remaining(t *testing.T) {
	clock := testNow
	bt := newTracker(1000, 10000, BudgetActionWarn, &clock)
	bt.Record(300)

	if got := bt.RemainingDaily(); got != 700 {
		t.Errorf("daily remaining = %d, want 700", got)
	}
	if got := bt.RemainingMonthly(); got != 9700 {
		t.Errorf("monthly remaining = %d, want 9700", got)
	}

	bt.Record(5000)
	if got := bt.RemainingDaily(); got != 0 {
		t.Errorf("daily remaining after overrun = %d, want 0", got)
	}

	unlimited := newTracker(0, 0, BudgetActionWarn, &clock)
	if unlimited.RemainingDaily() != -1 || unlimited.RemainingMonthly() != -1 {
		t.Error("expected -1 for unlimited windows")
	}
}

func TestBudgetTracker_Rollover(t *testing.T) {
	clock := testNow
	bt := newTracker(100, 1000, BudgetActionReject, &clock)
	bt.Record(100)

	if err := bt.Check(context.Background()); !errors.Is(err, domain.ErrQuotaExceeded) {
		t.Fatalf("expected quota error before midnight, got %v", err)
	}

	// Past midnight into February: both windows roll over.
	clock = testNow.Add(3 * time.Hour)

	if err := bt.Check(context.Background()); err != nil {
		t.Fatalf("expected budget reset, got %v", err)
	}
	if bt.DailyUsed() != 0 || bt.MonthlyUsed() != 0 {
		t.Errorf("used after rollover = %d/%d, want 0/0", bt.DailyUsed(), bt.MonthlyUsed())
	}
}

func TestBudgetTracker_DailyRolloverKeepsMonth(t *testing.T) {
	clock := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	bt := newTracker(100, 1000, BudgetActionWarn, &clock)
	bt.Record(80)

	clock = clock.Add(24 * time.Hour)

	if bt.DailyUsed() != 0 {
		t.Errorf("daily used = %d, want 0", bt.DailyUsed())
	}
	if bt.MonthlyUsed() != 80 {
		t.Errorf("monthly used = %d, want 80", bt.MonthlyUsed())
	}
}

// --- Mock BudgetStore ---

type mockBudgetStore struct {
	mu     sync.Mutex
	data   map[string]int64
	getErr error
	setErr error
}

func newMockBudgetStore() *mockBudgetStore {
	return &mockBudgetStore{data: make(map[string]int64)}
}

func (m *mockBudgetStore) IncrBy(_ context.Context, key string, val int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] += val
	return nil
}

func (m *mockBudgetStore) Get(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return 0, m.getErr
	}
	return m.data[key], nil
}

func (m *mockBudgetStore) value(key string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key]
}

// --- Persistence tests ---

func TestBudgetTracker_Keys(t *testing.T) {
	clock := testNow
	bt := newTracker(0, 0, BudgetActionWarn, &clock)

	if got := bt.dailyKey(clock); got != "chatdesk:budget:openai:daily:2026-01-31" {
		t.Errorf("daily key = %q", got)
	}
	if got := bt.monthlyKey(clock); got != "chatdesk:budget:openai:monthly:2026-01" {
		t.Errorf("monthly key = %q", got)
	}
}

func TestBudgetTracker_WithStore_LoadsValues(t *testing.T) {
	clock := testNow
	store := newMockBudgetStore()
	store.data["chatdesk:budget:openai:daily:2026-01-31"] = 300
	store.data["chatdesk:budget:openai:monthly:2026-01"] = 5000

	bt := newTracker(1000, 10000, BudgetActionReject, &clock).WithStore(context.Background(), store)

	if bt.DailyUsed() != 300 {
		t.Errorf("daily used = %d, want 300", bt.DailyUsed())
	}
	if bt.MonthlyUsed() != 5000 {
		t.Errorf("monthly used = %d, want 5000", bt.MonthlyUsed())
	}
}

func TestBudgetTracker_Record_PersistsToStore(t *testing.T) {
	clock := testNow
	store := newMockBudgetStore()
	bt := newTracker(10000, 100000, BudgetActionWarn, &clock).WithStore(context.Background(), store)

	bt.Record(100)
	bt.Record(200)

	if got := store.value("chatdesk:budget:openai:daily:2026-01-31"); got != 300 {
		t.Errorf("stored daily = %d, want 300", got)
	}
	if got := store.value("chatdesk:budget:openai:monthly:2026-01"); got != 300 {
		t.Errorf("stored monthly = %d, want 300", got)
	}
}

func TestBudgetTracker_WithStore_LoadError(t *testing.T) {
	clock := testNow
	store := newMockBudgetStore()
	store.getErr = errors.New("connection refused")

	bt := newTracker(1000, 10000, BudgetActionReject, &clock).WithStore(context.Background(), store)

	if bt.DailyUsed() != 0 || bt.MonthlyUsed() != 0 {
		t.Errorf("used = %d/%d, want 0/0", bt.DailyUsed(), bt.MonthlyUsed())
	}
}

func TestBudgetTracker_Record_StoreWriteError(t *testing.T) {
	clock := testNow
	store := newMockBudgetStore()
	bt := newTracker(100, 0, BudgetActionReject, &clock).WithStore(context.Background(), store)
	store.setErr = errors.New("write timeout")

	bt.Record(100)

	if bt.DailyUsed() != 100 {
		t.Errorf("daily used = %d, want 100", bt.DailyUsed())
	}
	if err := bt.Check(context.Background()); !errors.Is(err, domain.ErrQuotaExceeded) {
		t.Fatalf("expected quota error, got %v", err)
	}
}
