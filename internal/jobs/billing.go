package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dimitrije/internal-ops/internal/access"
	"github.com/dimitrije/internal-ops/internal/metrics"
	"github.com/dimitrije/internal-ops/internal/models"
	"github.com/dimitrije/internal-ops/internal/queue"
	"github.com/dimitrije/internal-ops/internal/services"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type InvoiceGenerator interface {
	GenerateInvoice(ctx context.Context, actor access.Actor, clientID uuid.UUID, start, end time.Time) (*models.Invoice, error)
}

type UserLoader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type Deduper interface {
	Acquire(ctx context.Context, scope, id string) (bool, error)
	Complete(ctx context.Context, scope, id string)
	Release(ctx context.Context, scope, id string)
}

type EventPublisher interface {
	Publish(ctx context.Context, routingKey, messageID string, payload any) error
}

// BillingHandler runs generate_invoice jobs.
type BillingHandler struct {
	users   UserLoader
	billing InvoiceGenerator
	deduper Deduper
	events  EventPublisher
	logger  *zap.Logger
}

func NewBillingHandler(users UserLoader, billing InvoiceGenerator, deduper Deduper, events EventPublisher, logger *zap.Logger) *BillingHandler {
	return &BillingHandler{
		users:   users,
		billing: billing,
		deduper: deduper,
		events:  events,
		logger:  logger,
	}
}

// Handle is a queue.MessageHandler. Errors that a retry cannot fix are
// returned as queue.Permanent so the message is dead-lettered.
func (h *BillingHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	var job queue.GenerateInvoiceJob
	if err := json.Unmarshal(raw, &job); err != nil {
		return queue.Permanent(fmt.Errorf("decode job: %w", err))
	}
	if err := job.Validate(); err != nil {
		return queue.Permanent(err)
	}

	log := h.logger.With(
		zap.String("job_id", job.JobID.String()),
		zap.String("client_id", job.ClientID.String()),
		zap.String("start_date", job.StartDate),
		zap.String("end_date", job.EndDate),
	)

	jobKey := job.JobID.String()
	first, err := h.deduper.Acquire(ctx, queue.DedupScopeBilling, jobKey)
	if err != nil {
		log.Info("Billing job locked by another attempt", zap.Error(err))
		return err
	}
	if !first {
		metrics.RecordBillingRun(metrics.OutcomeSkipped, 0, 0)
		return nil
	}

	started := time.Now()
	inv, err := h.run(ctx, job)
	if err != nil {
		h.deduper.Release(ctx, queue.DedupScopeBilling, jobKey)
		metrics.RecordBillingRun(metrics.OutcomeFailed, time.Since(started), 0)

		if !isPermanent(err) {
			log.Warn("Billing run failed", zap.Error(err))
			return err
		}
		log.Error("Billing run rejected", zap.Error(err))
		h.publish(ctx, log, queue.RoutingKeyBillingFailed, queue.BillingEvent{
			JobID:    job.JobID,
			ClientID: job.ClientID,
			Error:    err.Error(),
		})
		return queue.Permanent(err)
	}

	h.deduper.Complete(ctx, queue.DedupScopeBilling, jobKey)
	metrics.RecordBillingRun(metrics.OutcomeSuccess, time.Since(started), len(inv.LineItems))
	log.Info("Invoice generated",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("amount", inv.Amount.StringFixed(2)),
		zap.Int("line_items", len(inv.LineItems)),
	)

	invoiceID := inv.ID
	h.publish(ctx, log, queue.RoutingKeyInvoiceGenerated, queue.BillingEvent{
		JobID:     job.JobID,
		ClientID:  job.ClientID,
		InvoiceID: &invoiceID,
		Amount:    inv.Amount.StringFixed(2),
		LineItems: len(inv.LineItems),
	})
	return nil
}

// run rebuilds the requester's actor so the generate check is repeated
// against the requester's current role.
func (h *BillingHandler) run(ctx context.Context, job queue.GenerateInvoiceJob) (*models.Invoice, error) {
	start, end, err := job.Range()
	if err != nil {
		return nil, err
	}

	requester, err := h.users.GetByID(ctx, job.RequestedBy)
	if err != nil {
		return nil, fmt.Errorf("load requester: %w", err)
	}
	role, err := access.ParseRole(string(requester.Role))
	if err != nil {
		return nil, fmt.Errorf("requester: %w", access.ErrForbidden)
	}

	return h.billing.GenerateInvoice(ctx, access.NewActor(requester.ID, role), job.ClientID, start, end)
}

func (h *BillingHandler) publish(ctx context.Context, log *zap.Logger, routingKey string, event queue.BillingEvent) {
	if h.events == nil {
		return
	}
	if err := h.events.Publish(ctx, routingKey, event.JobID.String(), event); err != nil {
		log.Warn("Failed to publish billing event", zap.String("routing_key", routingKey), zap.Error(err))
	}
}

func isPermanent(err error) bool {
	var verr *services.ValidationError
	return errors.Is(err, access.ErrForbidden) ||
		errors.Is(err, services.ErrNotFound) ||
		errors.Is(err, services.ErrRateNotFound) ||
		errors.As(err, &verr)
}
