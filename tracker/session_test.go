package tracker

import (
	"context"
	"errors"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fadhlanhapp/paytracker-backend/handlers"
	"github.com/fadhlanhapp/paytracker-backend/models"
	"github.com/fadhlanhapp/paytracker-backend/repository"
	"github.com/fadhlanhapp/paytracker-backend/routes"
	"github.com/fadhlanhapp/paytracker-backend/services"
	"github.com/fadhlanhapp/paytracker-backend/utils"
)

var roster = []string{"Ali", "Nasir"}

func newCalculator() *services.Calculator {
	return services.NewCalculator(decimal.NewFromInt(250), utils.ClockShared)
}

func startBackend(t *testing.T, store repository.LedgerStore) *HTTPClient {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ledger := services.NewLedgerService(store, newCalculator(), roster)
	router := gin.New()
	routes.SetupRoutes(router, handlers.NewPaymentHandler(ledger, services.NewExcelService(ledger)), false)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return NewHTTPClient(server.URL + "/")
}

// gatedClient inserts straight into a store and holds the response until released
type gatedClient struct {
	store   repository.LedgerStore
	release chan struct{}

	mu       sync.Mutex
	failures int
}

func (g *gatedClient) ListPayments(ctx context.Context) ([]models.Payment, error) {
	return g.store.ListAll(ctx)
}

// heldListClient takes its list snapshot immediately but returns it only when released
type heldListClient struct {
	*gatedClient
	taken       chan struct{}
	releaseList chan struct{}
}

func (h *heldListClient) ListPayments(ctx context.Context) ([]models.Payment, error) {
	payments, err := h.store.ListAll(ctx)
	close(h.taken)
	<-h.releaseList
	return payments, err
}

func (g *gatedClient) CreatePayment(ctx context.Context, req *models.PaymentRequest) (*models.Payment, error) {
	g.mu.Lock()
	if g.failures > 0 {
		g.failures--
		g.mu.Unlock()
		return nil, errors.New("network unreachable")
	}
	g.mu.Unlock()

	payment := &models.Payment{Name: req.Name, Amount: *req.Amount, Reason: req.Reason, Date: req.Date}
	if err := g.store.Insert(ctx, payment); err != nil {
		return nil, err
	}
	if g.release != nil {
		<-g.release
	}
	return payment, nil
}

func TestSession_AppendThenListContainsRecordOnce(t *testing.T) {
	client := startBackend(t, repository.NewMemoryRepository())
	session := NewSession(client, newCalculator(), roster)
	ctx := context.Background()

	require.NoError(t, session.Load(ctx))
	assert.Empty(t, session.Entries())

	token, err := session.Append(ctx, "Ali", "250", "daily")
	require.NoError(t, err)

	// visible immediately, before the backend answers
	entry, ok := session.Entry(token)
	require.True(t, ok)
	assert.Equal(t, "Ali", entry.Payment.Name)

	session.Wait()

	entry, ok = session.Entry(token)
	require.True(t, ok)
	assert.Equal(t, StatusConfirmed, entry.Status)
	assert.Equal(t, int64(1), entry.Payment.ID)
	assert.Len(t, session.Entries(), 1)

	require.NoError(t, session.Load(ctx))
	entries := session.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(1), entries[0].Payment.ID)
	assert.Equal(t, token, entries[0].Token)

	payments, err := client.ListPayments(ctx)
	require.NoError(t, err)
	assert.Len(t, payments, 1)
}

func TestSession_ReloadDuringPendingAppend(t *testing.T) {
	store := repository.NewMemoryRepository()
	client := &gatedClient{store: store, release: make(chan struct{})}
	session := NewSession(client, newCalculator(), roster)
	ctx := context.Background()

	token, err := session.Append(ctx, "Nasir", "100", "")
	require.NoError(t, err)

	// Wait until the write has landed in the store
	require.Eventually(t, func() bool {
		payments, _ := store.ListAll(ctx)
		return len(payments) == 1
	}, time.Second, 5*time.Millisecond)

	// The reload sees the stored record while the local entry is still pending
	require.NoError(t, session.Load(ctx))
	assert.Len(t, session.Entries(), 2)

	close(client.release)
	session.Wait()

	entries := session.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, StatusConfirmed, entries[0].Status)
	assert.Equal(t, int64(1), entries[0].Payment.ID)
	assert.Equal(t, token, entries[0].Token)
}

func TestSession_FailedAppendStaysVisibleAndRetries(t *testing.T) {
	client := &gatedClient{store: repository.NewMemoryRepository(), failures: 1}
	session := NewSession(client, newCalculator(), roster)
	ctx := context.Background()

	token, err := session.Append(ctx, "Ali", "250", "")
	require.NoError(t, err)
	session.Wait()

	entry, ok := session.Entry(token)
	require.True(t, ok)
	assert.Equal(t, StatusFailed, entry.Status)
	assert.Contains(t, entry.Err, "network unreachable")
	assert.Equal(t, int64(0), entry.Payment.ID)

	require.NoError(t, session.Retry(ctx, token))
	session.Wait()

	entry, ok = session.Entry(token)
	require.True(t, ok)
	assert.Equal(t, StatusConfirmed, entry.Status)
	assert.Equal(t, int64(1), entry.Payment.ID)
	assert.Len(t, session.Entries(), 1)

	assert.ErrorIs(t, session.Retry(ctx, token), ErrNotRetryable)
	assert.ErrorIs(t, session.Retry(ctx, "nope"), ErrUnknownToken)
}

func TestSession_RejectedByBackend(t *testing.T) {
	client := startBackend(t, repository.NewMemoryRepository())
	// The local roster knows a payer the backend does not
	session := NewSession(client, newCalculator(), []string{"Ali", "Nasir", "Karim"})

	token, err := session.Append(context.Background(), "Karim", "50", "")
	require.NoError(t, err)
	session.Wait()

	entry, ok := session.Entry(token)
	require.True(t, ok)
	assert.Equal(t, StatusFailed, entry.Status)
	assert.Contains(t, entry.Err, "status 400")
	assert.Contains(t, entry.Err, "Unknown payer")
}

func TestSession_AppendValidatesAmount(t *testing.T) {
	session := NewSession(&gatedClient{store: repository.NewMemoryRepository()}, newCalculator(), roster)

	_, err := session.Append(context.Background(), "Ali", "  ", "")
	assert.ErrorIs(t, err, ErrEmptyAmount)

	_, err = session.Append(context.Background(), "Ali", "12abc", "")
	assert.ErrorIs(t, err, ErrInvalidAmount)

	session.Wait()
	assert.Empty(t, session.Entries())
}

func TestSession_SummaryIgnoresFailedEntries(t *testing.T) {
	client := &gatedClient{store: repository.NewMemoryRepository(), failures: 1}
	session := NewSession(client, newCalculator(), roster)
	day0 := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	session.now = func() time.Time { return day0 }
	ctx := context.Background()

	_, err := session.Append(ctx, "Ali", "250", "")
	require.NoError(t, err)
	session.Wait()
	_, err = session.Append(ctx, "Nasir", "100", "")
	require.NoError(t, err)
	session.Wait()

	people, err := session.Summary(day0.Add(24 * time.Hour))
	require.NoError(t, err)
	require.Len(t, people, 2)

	// Ali's payment failed, so only Nasir's counts: 2 days * 250 = 500 expected
	assert.True(t, decimal.Zero.Equal(people[0].TotalPaid))
	assert.True(t, decimal.NewFromInt(500).Equal(people[0].AmountDue))
	assert.True(t, decimal.NewFromInt(400).Equal(people[1].AmountDue))
	assert.Equal(t, int64(1), people[1].MissedDays)
}

func TestHTTPClient_ContextDeadline(t *testing.T) {
	client := startBackend(t, repository.NewMemoryRepository())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	amount := decimal.NewFromInt(75)
	stored, err := client.CreatePayment(ctx, &models.PaymentRequest{Name: "ali", Amount: &amount})
	require.NoError(t, err)
	assert.Equal(t, "Ali", stored.Name)

	cancelled, cancelNow := context.WithCancel(context.Background())
	cancelNow()
	_, err = client.ListPayments(cancelled)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSession_ReloadWithStaleListKeepsConfirmedAppend(t *testing.T) {
	store := repository.NewMemoryRepository()
	client := &heldListClient{
		gatedClient: &gatedClient{store: store},
		taken:       make(chan struct{}),
		releaseList: make(chan struct{}),
	}
	session := NewSession(client, newCalculator(), roster)
	ctx := context.Background()

	loaded := make(chan error, 1)
	go func() { loaded <- session.Load(ctx) }()
	<-client.taken

	// The list snapshot is empty; this append lands and confirms after it
	token, err := session.Append(ctx, "Ali", "250", "")
	require.NoError(t, err)
	session.Wait()

	entry, ok := session.Entry(token)
	require.True(t, ok)
	require.Equal(t, StatusConfirmed, entry.Status)

	close(client.releaseList)
	require.NoError(t, <-loaded)

	entries := session.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(1), entries[0].Payment.ID)
	assert.Equal(t, token, entries[0].Token)

	// The next reload lists it from the store, still exactly once
	session.client = client.gatedClient
	require.NoError(t, session.Load(ctx))
	entries = session.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, token, entries[0].Token)
}

func TestSession_AppendResolvesRosterName(t *testing.T) {
	client := &gatedClient{store: repository.NewMemoryRepository(), release: make(chan struct{})}
	session := NewSession(client, newCalculator(), roster)
	day0 := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	session.now = func() time.Time { return day0 }
	ctx := context.Background()

	token, err := session.Append(ctx, "  ali ", "250", "")
	require.NoError(t, err)

	// still pending, but already counted under the roster spelling
	entry, ok := session.Entry(token)
	require.True(t, ok)
	assert.Equal(t, StatusPending, entry.Status)
	assert.Equal(t, "Ali", entry.Payment.Name)

	people, err := session.Summary(day0)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(250).Equal(people[0].TotalPaid))

	_, err = session.Append(ctx, "Karim", "50", "")
	assert.ErrorIs(t, err, ErrUnknownPayer)

	close(client.release)
	session.Wait()
	assert.Len(t, session.Entries(), 1)
}
