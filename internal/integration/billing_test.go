package integration

import (
	"context"
	"io"
	"testing"

	"github.com/dimitrije/internal-ops/internal/access"
	"github.com/dimitrije/internal-ops/internal/models"
	"github.com/dimitrije/internal-ops/internal/render"
	"github.com/dimitrije/internal-ops/internal/services"
	"github.com/dimitrije/internal-ops/internal/storage"
	"github.com/dimitrije/internal-ops/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type billingSetup struct {
	fx       *testutil.Fixtures
	billing  *services.BillingService
	invoices *services.InvoiceService
	store    *storage.MemoryStore
	admin    *models.User
	client   *models.User
	dev      *models.User
	fn       *models.Function
	project  *models.Project
}

func newBillingSetup(t *testing.T) *billingSetup {
	t.Helper()
	tdb, fx := setupTest(t)

	renderer, err := render.NewHTMLRenderer()
	require.NoError(t, err)
	store := storage.NewMemoryStore()

	s := &billingSetup{
		fx:       fx,
		billing:  services.NewBillingService(tdb.DB, renderer, store, "Internal Ops"),
		invoices: services.NewInvoiceService(tdb.DB, store),
		store:    store,
		admin:    fx.CreateUser(t, models.RoleAdmin),
		client:   fx.CreateUser(t, models.RoleClient),
		dev:      fx.CreateUser(t, models.RoleDeveloper, testutil.WithSkills("go")),
	}
	s.project = fx.CreateProject(t, s.client, s.dev)
	s.fn = fx.CreateFunction(t, fx.CreateFeature(t, s.project), s.dev, "40")
	return s
}

func TestBilling_Integration_GenerateInvoice(t *testing.T) {
	s := newBillingSetup(t)
	ctx := context.Background()
	s.fx.SetRate(t, s.project, s.dev, "50.00")

	first := s.fx.CreateWorkLog(t, s.fn, day(4), "2", models.WorkLogStatusApproved)
	second := s.fx.CreateWorkLog(t, s.fn, day(5), "1.5", models.WorkLogStatusApproved)
	inReview := s.fx.CreateWorkLog(t, s.fn, day(6), "3", models.WorkLogStatusReview)
	outside := s.fx.CreateWorkLog(t, s.fn, day(20), "1", models.WorkLogStatusApproved)

	inv, err := s.billing.GenerateInvoice(ctx, actorOf(t, s.admin), s.client.ID, day(1), day(10))

	require.NoError(t, err)
	assert.Equal(t, "175.00", inv.Amount.StringFixed(2))
	require.Len(t, inv.LineItems, 2)
	assert.Equal(t, first.ID, *inv.LineItems[0].WorkLogID)
	assert.Equal(t, "100.00", inv.LineItems[0].Cost.StringFixed(2))
	assert.Equal(t, "75.00", inv.LineItems[1].Cost.StringFixed(2))

	for _, w := range []*models.WorkLog{first, second} {
		status, invoiceID := s.fx.BilledStatusOf(t, w.ID)
		assert.Equal(t, models.BilledStatusBilled, status)
		require.NotNil(t, invoiceID)
		assert.Equal(t, inv.ID, *invoiceID)
	}
	for _, w := range []*models.WorkLog{inReview, outside} {
		status, invoiceID := s.fx.BilledStatusOf(t, w.ID)
		assert.Equal(t, models.BilledStatusUnbilled, status)
		assert.Nil(t, invoiceID)
	}

	stored, err := s.invoices.Get(ctx, actorOf(t, s.client), inv.ID)
	require.NoError(t, err)
	assert.True(t, inv.Amount.Equal(stored.Amount))
	assert.Len(t, stored.LineItems, 2)

	body, _, err := s.invoices.Document(ctx, actorOf(t, s.client), inv.ID)
	require.NoError(t, err)
	defer body.Close()
	html, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Contains(t, string(html), s.client.Name)
	assert.Contains(t, string(html), s.project.Title)
}

func TestBilling_Integration_SecondRunBillsNothing(t *testing.T) {
	s := newBillingSetup(t)
	ctx := context.Background()
	admin := actorOf(t, s.admin)
	s.fx.SetRate(t, s.project, s.dev, "80")
	s.fx.CreateWorkLog(t, s.fn, day(4), "1", models.WorkLogStatusApproved)

	first, err := s.billing.GenerateInvoice(ctx, admin, s.client.ID, day(1), day(31))
	require.NoError(t, err)
	assert.Equal(t, "80.00", first.Amount.StringFixed(2))

	second, err := s.billing.GenerateInvoice(ctx, admin, s.client.ID, day(1), day(31))
	require.NoError(t, err)
	assert.True(t, second.Amount.IsZero())
	assert.Empty(t, second.LineItems)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestBilling_Integration_MissingRateRollsBack(t *testing.T) {
	s := newBillingSetup(t)
	ctx := context.Background()
	w := s.fx.CreateWorkLog(t, s.fn, day(4), "2", models.WorkLogStatusApproved)

	_, err := s.billing.GenerateInvoice(ctx, actorOf(t, s.admin), s.client.ID, day(1), day(10))

	assert.ErrorIs(t, err, services.ErrRateNotFound)
	status, invoiceID := s.fx.BilledStatusOf(t, w.ID)
	assert.Equal(t, models.BilledStatusUnbilled, status)
	assert.Nil(t, invoiceID)
	assert.Empty(t, s.store.Keys())

	list, err := s.invoices.List(ctx, actorOf(t, s.admin), services.InvoiceFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestBilling_Integration_ClientCannotGenerate(t *testing.T) {
	s := newBillingSetup(t)

	_, err := s.billing.GenerateInvoice(context.Background(), actorOf(t, s.client), s.client.ID, day(1), day(10))

	assert.ErrorIs(t, err, access.ErrForbidden)
}

func TestBilling_Integration_InvoicesScopedToClient(t *testing.T) {
	s := newBillingSetup(t)
	ctx := context.Background()
	other := s.fx.CreateUser(t, models.RoleClient)

	inv, err := s.billing.GenerateInvoice(ctx, actorOf(t, s.admin), s.client.ID, day(1), day(10))
	require.NoError(t, err)

	_, err = s.invoices.Get(ctx, actorOf(t, other), inv.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)

	list, err := s.invoices.List(ctx, actorOf(t, other), services.InvoiceFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}
