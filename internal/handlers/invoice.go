package handlers

import (
	"io"
	"path"

	"github.com/dimitrije/internal-ops/internal/access"
	"github.com/dimitrije/internal-ops/internal/models"
	"github.com/dimitrije/internal-ops/internal/queue"
	"github.com/dimitrije/internal-ops/internal/services"
	"github.com/dimitrije/internal-ops/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"go.uber.org/zap"
)

type InvoiceHandler struct {
	invoiceService InvoiceServiceInterface
	billingService BillingServiceInterface
	jobs           JobPublisher
	logger         *zap.Logger
}

func NewInvoiceHandler(
	invoiceService InvoiceServiceInterface,
	billingService BillingServiceInterface,
	jobs JobPublisher,
	logger *zap.Logger,
) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		billingService: billingService,
		jobs:           jobs,
		logger:         logger,
	}
}

func (h *InvoiceHandler) List(c *drift.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var filter services.InvoiceFilter
	if filter.ClientID, ok = queryUUID(c, "client"); !ok {
		return
	}
	if filter.Status, ok = queryEnum(c, "status", func(s models.InvoiceStatus) bool {
		return s == models.InvoiceStatusPending || s == models.InvoiceStatusPaid || s == models.InvoiceStatusDisputed
	}); !ok {
		return
	}

	invoices, err := h.invoiceService.List(c.Request.Context(), actor, filter)
	if err != nil {
		respondError(c, h.logger, err, "invoice", "list invoices")
		return
	}

	_ = c.JSON(200, invoices)
}

func (h *InvoiceHandler) Get(c *drift.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "invoice")
	if !ok {
		return
	}

	invoice, err := h.invoiceService.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, h.logger, err, "invoice", "get invoice")
		return
	}

	_ = c.JSON(200, invoice)
}

// Document streams the rendered invoice from the document store.
func (h *InvoiceHandler) Document(c *drift.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "invoice")
	if !ok {
		return
	}

	body, invoice, err := h.invoiceService.Document(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, h.logger, err, "invoice document", "get invoice document")
		return
	}
	defer body.Close()

	c.Response.Header().Set("Content-Type", "text/html; charset=utf-8")
	c.Response.Header().Set("Content-Disposition", `inline; filename="`+path.Base(*invoice.DocumentRef)+`"`)
	c.Response.WriteHeader(200)
	if _, err := io.Copy(c.Response, body); err != nil {
		h.logger.Warn("Failed to stream invoice document",
			zap.String("invoice_id", invoice.ID.String()),
			zap.Error(err),
		)
	}
	c.Abort()
}

// Generate validates a billing request and queues it for the worker.
func (h *InvoiceHandler) Generate(c *drift.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	if err := access.Authorize(actor, access.ActionGenerate, access.Target{Resource: access.ResourceInvoice}).Permit(); err != nil {
		respondError(c, h.logger, err, "invoice", "generate invoices")
		return
	}

	var req dto.GenerateInvoiceRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	clientID, err := uuid.Parse(req.Client)
	if err != nil {
		c.BadRequest("client: must be a user id")
		return
	}

	start, err := dto.ParseDate(req.StartDate)
	if err != nil {
		c.BadRequest("start_date: " + err.Error())
		return
	}
	end, err := dto.ParseDate(req.EndDate)
	if err != nil {
		c.BadRequest("end_date: " + err.Error())
		return
	}

	ctx := c.Request.Context()

	if err := h.billingService.ValidateRequest(ctx, clientID, start.Time, end.Time); err != nil {
		respondError(c, h.logger, err, "client", "generate invoices")
		return
	}

	job := queue.NewGenerateInvoiceJob(clientID, start.Time, end.Time, actor.ID)
	if err := h.jobs.Publish(ctx, queue.RoutingKeyGenerateInvoice, job.JobID.String(), job); err != nil {
		h.logger.Error("Failed to queue billing job", zap.String("job_id", job.JobID.String()), zap.Error(err))
		c.InternalServerError("failed to queue billing job")
		return
	}

	h.logger.Info("Billing job queued",
		zap.String("job_id", job.JobID.String()),
		zap.String("client_id", clientID.String()),
		zap.String("requested_by", actor.ID.String()),
	)

	_ = c.JSON(201, dto.GenerateInvoiceResponse{
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Client:    req.Client,
		JobID:     job.JobID,
	})
}
