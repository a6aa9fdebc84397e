package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dimitrije/internal-ops/internal/access"
	"github.com/dimitrije/internal-ops/internal/models"
	"github.com/dimitrije/internal-ops/internal/queue"
	"github.com/dimitrije/internal-ops/internal/services"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockUsers struct {
	mock.Mock
}

func (m *mockUsers) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) GenerateInvoice(ctx context.Context, actor access.Actor, clientID uuid.UUID, start, end time.Time) (*models.Invoice, error) {
	args := m.Called(ctx, actor, clientID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

type mockDeduper struct {
	mock.Mock
}

func (m *mockDeduper) Acquire(ctx context.Context, scope, id string) (bool, error) {
	args := m.Called(ctx, scope, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockDeduper) Complete(ctx context.Context, scope, id string) {
	m.Called(ctx, scope, id)
}

func (m *mockDeduper) Release(ctx context.Context, scope, id string) {
	m.Called(ctx, scope, id)
}

type mockEvents struct {
	mock.Mock
}

func (m *mockEvents) Publish(ctx context.Context, routingKey, messageID string, payload any) error {
	return m.Called(ctx, routingKey, messageID, payload).Error(0)
}

type billingFixture struct {
	users   *mockUsers
	billing *mockGenerator
	deduper *mockDeduper
	events  *mockEvents
	handler *BillingHandler

	admin *models.User
	job   queue.GenerateInvoiceJob
	start time.Time
	end   time.Time
}

func newBillingFixture(t *testing.T) *billingFixture {
	t.Helper()
	f := &billingFixture{
		users:   new(mockUsers),
		billing: new(mockGenerator),
		deduper: new(mockDeduper),
		events:  new(mockEvents),
		admin:   &models.User{ID: uuid.New(), Email: "admin@example.com", Role: models.RoleAdmin},
		start:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		end:     time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
	}
	f.job = queue.NewGenerateInvoiceJob(uuid.New(), f.start, f.end, f.admin.ID)
	f.handler = NewBillingHandler(f.users, f.billing, f.deduper, f.events, zap.NewNop())
	t.Cleanup(func() {
		f.users.AssertExpectations(t)
		f.billing.AssertExpectations(t)
		f.deduper.AssertExpectations(t)
		f.events.AssertExpectations(t)
	})
	return f
}

func (f *billingFixture) payload(t *testing.T) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(f.job)
	require.NoError(t, err)
	return raw
}

func (f *billingFixture) adminActor() access.Actor {
	return access.NewActor(f.admin.ID, access.Admin{})
}

func TestBillingHandler_GeneratesInvoice(t *testing.T) {
	f := newBillingFixture(t)
	ctx := context.Background()
	jobKey := f.job.JobID.String()

	inv := &models.Invoice{
		ID:        uuid.New(),
		Amount:    decimal.RequireFromString("240.5"),
		LineItems: []models.LineItem{{Position: 1}, {Position: 2}},
	}

	f.deduper.On("Acquire", ctx, queue.DedupScopeBilling, jobKey).Return(true, nil)
	f.users.On("GetByID", ctx, f.admin.ID).Return(f.admin, nil)
	f.billing.On("GenerateInvoice", ctx, f.adminActor(), f.job.ClientID, f.start, f.end).Return(inv, nil)
	f.deduper.On("Complete", ctx, queue.DedupScopeBilling, jobKey).Return()
	f.events.On("Publish", ctx, queue.RoutingKeyInvoiceGenerated, jobKey, mock.MatchedBy(func(e queue.BillingEvent) bool {
		return e.InvoiceID != nil && *e.InvoiceID == inv.ID &&
			e.Amount == "240.50" && e.LineItems == 2 && e.Error == ""
	})).Return(nil)

	require.NoError(t, f.handler.Handle(ctx, f.payload(t)))
}

func TestBillingHandler_DuplicateJobSkipped(t *testing.T) {
	f := newBillingFixture(t)
	ctx := context.Background()

	f.deduper.On("Acquire", ctx, queue.DedupScopeBilling, f.job.JobID.String()).Return(false, nil)

	require.NoError(t, f.handler.Handle(ctx, f.payload(t)))
	f.billing.AssertNotCalled(t, "GenerateInvoice", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBillingHandler_LockedJobRequeued(t *testing.T) {
	f := newBillingFixture(t)
	ctx := context.Background()
	inFlight := fmt.Errorf("billing job: %w", queue.ErrInFlight)

	f.deduper.On("Acquire", ctx, queue.DedupScopeBilling, f.job.JobID.String()).Return(false, inFlight)

	err := f.handler.Handle(ctx, f.payload(t))
	require.ErrorIs(t, err, queue.ErrInFlight)
	assert.False(t, queue.IsPermanent(err))
	f.billing.AssertNotCalled(t, "GenerateInvoice", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBillingHandler_RejectedRunIsPermanent(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"forbidden", access.ErrForbidden},
		{"missing rate", fmt.Errorf("price log: %w", services.ErrRateNotFound)},
		{"validation", &services.ValidationError{Field: "client_id", Message: "must reference a client"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBillingFixture(t)
			ctx := context.Background()
			jobKey := f.job.JobID.String()

			f.deduper.On("Acquire", ctx, queue.DedupScopeBilling, jobKey).Return(true, nil)
			f.deduper.On("Release", ctx, queue.DedupScopeBilling, jobKey).Return()
			f.users.On("GetByID", ctx, f.admin.ID).Return(f.admin, nil)
			f.billing.On("GenerateInvoice", ctx, f.adminActor(), f.job.ClientID, f.start, f.end).Return(nil, tt.err)
			f.events.On("Publish", ctx, queue.RoutingKeyBillingFailed, jobKey, mock.MatchedBy(func(e queue.BillingEvent) bool {
				return e.InvoiceID == nil && e.Error == tt.err.Error()
			})).Return(nil)

			err := f.handler.Handle(ctx, f.payload(t))
			require.Error(t, err)
			assert.True(t, queue.IsPermanent(err))
			assert.True(t, errors.Is(err, tt.err) || errors.As(err, new(*services.ValidationError)))
		})
	}
}

func TestBillingHandler_TransientErrorIsRetried(t *testing.T) {
	f := newBillingFixture(t)
	ctx := context.Background()
	jobKey := f.job.JobID.String()
	boom := fmt.Errorf("render invoice: %w", services.ErrRenderFailed)

	f.deduper.On("Acquire", ctx, queue.DedupScopeBilling, jobKey).Return(true, nil)
	f.deduper.On("Release", ctx, queue.DedupScopeBilling, jobKey).Return()
	f.users.On("GetByID", ctx, f.admin.ID).Return(f.admin, nil)
	f.billing.On("GenerateInvoice", ctx, f.adminActor(), f.job.ClientID, f.start, f.end).Return(nil, boom)

	err := f.handler.Handle(ctx, f.payload(t))
	require.ErrorIs(t, err, services.ErrRenderFailed)
	assert.False(t, queue.IsPermanent(err))
	f.events.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBillingHandler_RequesterRoleRechecked(t *testing.T) {
	f := newBillingFixture(t)
	ctx := context.Background()
	jobKey := f.job.JobID.String()

	demoted := &models.User{ID: f.admin.ID, Role: models.RoleSalesManager}
	manager := access.NewActor(demoted.ID, access.SalesManager{})

	f.deduper.On("Acquire", ctx, queue.DedupScopeBilling, jobKey).Return(true, nil)
	f.deduper.On("Release", ctx, queue.DedupScopeBilling, jobKey).Return()
	f.users.On("GetByID", ctx, f.admin.ID).Return(demoted, nil)
	f.billing.On("GenerateInvoice", ctx, manager, f.job.ClientID, f.start, f.end).Return(nil, access.ErrForbidden)
	f.events.On("Publish", ctx, queue.RoutingKeyBillingFailed, jobKey, mock.Anything).Return(nil)

	err := f.handler.Handle(ctx, f.payload(t))
	require.ErrorIs(t, err, access.ErrForbidden)
	assert.True(t, queue.IsPermanent(err))
}

func TestBillingHandler_UnknownRequester(t *testing.T) {
	f := newBillingFixture(t)
	ctx := context.Background()
	jobKey := f.job.JobID.String()

	f.deduper.On("Acquire", ctx, queue.DedupScopeBilling, jobKey).Return(true, nil)
	f.deduper.On("Release", ctx, queue.DedupScopeBilling, jobKey).Return()
	f.users.On("GetByID", ctx, f.admin.ID).Return(nil, services.ErrNotFound)
	f.events.On("Publish", ctx, queue.RoutingKeyBillingFailed, jobKey, mock.Anything).Return(nil)

	err := f.handler.Handle(ctx, f.payload(t))
	require.ErrorIs(t, err, services.ErrNotFound)
	assert.True(t, queue.IsPermanent(err))
}

func TestBillingHandler_BadPayload(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", `{"job_id":`},
		{"missing client", `{"job_id":"` + uuid.NewString() + `","requested_by":"` + uuid.NewString() + `","start_date":"2024-03-01","end_date":"2024-03-31"}`},
		{"bad date", `{"job_id":"` + uuid.NewString() + `","client_id":"` + uuid.NewString() + `","requested_by":"` + uuid.NewString() + `","start_date":"03/01/2024","end_date":"2024-03-31"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBillingFixture(t)

			err := f.handler.Handle(context.Background(), json.RawMessage(tt.raw))
			require.Error(t, err)
			assert.True(t, queue.IsPermanent(err))
		})
	}
}

func TestBillingHandler_CancelledRunIsRedelivered(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	f := newBillingFixture(t)
	f.handler = NewBillingHandler(f.users, f.billing, queue.NewDeduper(rdb, time.Hour, time.Minute, zap.NewNop()), f.events, zap.NewNop())

	ctx, shutdown := context.WithCancel(context.Background())
	inv := &models.Invoice{ID: uuid.New(), Amount: decimal.RequireFromString("80")}

	f.users.On("GetByID", mock.Anything, f.admin.ID).Return(f.admin, nil)
	f.billing.On("GenerateInvoice", mock.Anything, f.adminActor(), f.job.ClientID, f.start, f.end).
		Run(func(mock.Arguments) { shutdown() }).
		Return(nil, context.Canceled).Once()
	f.billing.On("GenerateInvoice", mock.Anything, f.adminActor(), f.job.ClientID, f.start, f.end).
		Return(inv, nil).Once()
	f.events.On("Publish", mock.Anything, queue.RoutingKeyInvoiceGenerated, f.job.JobID.String(), mock.Anything).Return(nil).Once()

	err := f.handler.Handle(ctx, f.payload(t))
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, queue.IsPermanent(err))

	require.NoError(t, f.handler.Handle(context.Background(), f.payload(t)))
	f.billing.AssertNumberOfCalls(t, "GenerateInvoice", 2)

	require.NoError(t, f.handler.Handle(context.Background(), f.payload(t)))
	f.billing.AssertNumberOfCalls(t, "GenerateInvoice", 2)
}
