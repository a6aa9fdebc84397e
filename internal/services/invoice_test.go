package services

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/dimitrije/internal-ops/internal/models"
	"github.com/dimitrije/internal-ops/internal/storage"
	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupInvoiceService(t *testing.T) (*InvoiceService, *storage.MemoryStore, pgxmock.PgxPoolIface) {
	t.Helper()
	db, mock := setupDB(t)
	store := storage.NewMemoryStore()
	return NewInvoiceService(db, store), store, mock
}

func invoiceRow(id, clientID uuid.UUID, ref *string) *pgxmock.Rows {
	from, to := date(2026, time.March, 1), date(2026, time.March, 31)
	return pgxmock.NewRows(invoiceColumns).AddRow(
		id, &clientID, dec("220.00"), models.InvoiceStatusPending, &from, &to,
		date(2026, time.April, 1), ref, time.Now(),
	)
}

func expectLineItems(mock pgxmock.PgxPoolIface, invoiceID uuid.UUID) {
	logID, projectID := uuid.New(), uuid.New()
	mock.ExpectQuery(`FROM invoice_line_items li`).
		WithArgs(invoiceID).
		WillReturnRows(pgxmock.NewRows(lineItemColumns).
			AddRow(uuid.New(), invoiceID, &logID, &projectID, "Storefront", "Login", dec("5"), dec("20.00"), dec("100.00"), 1).
			AddRow(uuid.New(), invoiceID, &logID, &projectID, "Storefront", "Checkout", dec("6"), dec("20.00"), dec("120.00"), 2))
}

func TestInvoiceService_Get_WithLineItems(t *testing.T) {
	svc, _, mock := setupInvoiceService(t)
	client := clientActor()
	id := uuid.New()

	mock.ExpectQuery(`FROM invoices i WHERE i.id = \$1 AND i.client_id = \$2`).
		WithArgs(id, client.ID).
		WillReturnRows(invoiceRow(id, client.ID, nil))
	expectLineItems(mock, id)

	inv, err := svc.Get(context.Background(), client, id)

	require.NoError(t, err)
	assert.Equal(t, "220.00", inv.Amount.StringFixed(2))
	require.Len(t, inv.LineItems, 2)
	assert.Equal(t, 1, inv.LineItems[0].Position)
	assert.Equal(t, "Checkout", inv.LineItems[1].Description)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceService_Get_DeveloperScope(t *testing.T) {
	svc, _, mock := setupInvoiceService(t)
	dev := developerActor()
	id := uuid.New()

	mock.ExpectQuery(`FROM invoices i WHERE i.id = \$1 AND EXISTS \(SELECT 1 FROM invoice_line_items li`).
		WithArgs(id, dev.ID).
		WillReturnRows(pgxmock.NewRows(invoiceColumns))

	_, err := svc.Get(context.Background(), dev, id)

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceService_List_SalesManagerSeesNothing(t *testing.T) {
	svc, _, mock := setupInvoiceService(t)

	mock.ExpectQuery(`FROM invoices i WHERE FALSE`).
		WillReturnRows(pgxmock.NewRows(invoiceColumns))

	invoices, err := svc.List(context.Background(), salesActor(), InvoiceFilter{})

	require.NoError(t, err)
	assert.Empty(t, invoices)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceService_Document(t *testing.T) {
	svc, store, mock := setupInvoiceService(t)
	id := uuid.New()
	ref := "invoices/" + id.String() + ".html"
	require.NoError(t, store.Put(context.Background(), ref, []byte("<html>invoice</html>"), "text/html"))

	mock.ExpectQuery(`FROM invoices i WHERE i.id = \$1`).
		WithArgs(id).
		WillReturnRows(invoiceRow(id, uuid.New(), &ref))
	expectLineItems(mock, id)

	body, inv, err := svc.Document(context.Background(), adminActor(), id)
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "<html>invoice</html>", string(data))
	assert.Equal(t, id, inv.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceService_Document_NotRendered(t *testing.T) {
	svc, _, mock := setupInvoiceService(t)
	id := uuid.New()

	mock.ExpectQuery(`FROM invoices i WHERE i.id = \$1`).
		WithArgs(id).
		WillReturnRows(invoiceRow(id, uuid.New(), nil))
	expectLineItems(mock, id)

	_, _, err := svc.Document(context.Background(), adminActor(), id)

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceService_Document_MissingObject(t *testing.T) {
	svc, _, mock := setupInvoiceService(t)
	id := uuid.New()
	ref := "invoices/" + id.String() + ".html"

	mock.ExpectQuery(`FROM invoices i WHERE i.id = \$1`).
		WithArgs(id).
		WillReturnRows(invoiceRow(id, uuid.New(), &ref))
	expectLineItems(mock, id)

	_, _, err := svc.Document(context.Background(), adminActor(), id)

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
