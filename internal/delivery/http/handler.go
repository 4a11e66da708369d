package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/precifica/backend/internal/domain"
	"github.com/precifica/backend/internal/export"
	"github.com/precifica/backend/internal/infrastructure/queue"
	"github.com/precifica/backend/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	invoices *usecase.InvoiceService
	queue    domain.IngestionQueue
}

// NewHandler creates a new HTTP handler
func NewHandler(invoices *usecase.InvoiceService, queue domain.IngestionQueue) *Handler {
	return &Handler{invoices: invoices, queue: queue}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "precifica-backend",
	})
}

// ImportInvoice ingests one NFE XML document synchronously: parse, price,
// persist, return the priced rows. Pricing parameters may be overridden per
// request via query string.
func (h *Handler) ImportInvoice(c *gin.Context) {
	xmlData, err := io.ReadAll(c.Request.Body)
	if err != nil || len(xmlData) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be the raw invoice XML"})
		return
	}

	params, err := pricingParamsFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	invoice, priced, err := h.invoices.ImportXML(c.Request.Context(), xmlData, params)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"invoice":  invoice,
		"products": priced,
	})
}

// EnqueueInvoice pushes one NFE XML document onto the ingestion queue and
// returns the job id. The worker performs the actual import.
func (h *Handler) EnqueueInvoice(c *gin.Context) {
	xmlData, err := io.ReadAll(c.Request.Body)
	if err != nil || len(xmlData) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be the raw invoice XML"})
		return
	}

	job := queue.NewJob(string(xmlData))
	if err := h.queue.Enqueue(c.Request.Context(), job); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"jobId": job.ID})
}

// GetInvoice returns an invoice with its priced rows
func (h *Handler) GetInvoice(c *gin.Context) {
	invoice, priced, err := h.invoices.GetInvoice(c.Request.Context(), c.Param("key"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"invoice":  invoice,
		"products": priced,
	})
}

// ListInvoices returns recently imported invoice headers
func (h *Handler) ListInvoices(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	invoices, err := h.invoices.ListInvoices(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"invoices": invoices})
}

// ReviewColumns returns the promotional-scenario profit columns for the
// stored rows of an invoice
func (h *Handler) ReviewColumns(c *gin.Context) {
	params, err := pricingParamsFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	columns, err := h.invoices.ReviewColumns(c.Request.Context(), c.Param("key"), params)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"columns": columns})
}

// ExportReview streams the review table of an invoice as an XLSX workbook
func (h *Handler) ExportReview(c *gin.Context) {
	key := c.Param("key")

	invoice, priced, err := h.invoices.GetInvoice(c.Request.Context(), key)
	if err != nil {
		respondError(c, err)
		return
	}
	columns, err := h.invoices.ReviewColumns(c.Request.Context(), key, nil)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=revisao-%s.xlsx", invoice.Number))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := export.WriteReviewTable(c.Writer, invoice, priced, columns); err != nil {
		respondError(c, err)
	}
}

// previewRequest is the body of POST /pricing/preview.
type previewRequest struct {
	Products []domain.RawProduct       `json:"products" binding:"required"`
	Params   *domain.PricingParameters `json:"params"`
}

// PreviewPricing prices a set of raw products without persisting anything
func (h *Handler) PreviewPricing(c *gin.Context) {
	var req previewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	priced, err := h.invoices.Preview(req.Products, req.Params)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": priced})
}

// traceSizeRequest is the body of POST /tools/size-trace.
type traceSizeRequest struct {
	Description string `json:"description" binding:"required"`
}

// TraceSize runs the diagnostic size extractor and returns the ordered rule
// trace. Debug tooling only; pricing never reads the trace.
func (h *Handler) TraceSize(c *gin.Context) {
	var req traceSizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	size, trace := usecase.ExtractSizeFromDescriptionTrace(req.Description)
	c.JSON(http.StatusOK, gin.H{
		"size":  size,
		"color": usecase.ExtractColor(req.Description),
		"trace": trace,
	})
}

// pricingParamsFromQuery builds pricing parameters from query-string
// overrides. Returns nil when no override is present, so the service applies
// its configured defaults.
func pricingParamsFromQuery(c *gin.Context) (*domain.PricingParameters, error) {
	keys := []string{"entry_tax", "markup_xapuri", "markup_epita", "rounding", "freight_share"}
	present := false
	for _, k := range keys {
		if _, ok := c.GetQuery(k); ok {
			present = true
			break
		}
	}
	if !present {
		return nil, nil
	}

	var params domain.PricingParameters
	var err error

	if params.EntryTaxPercent, err = decimalQuery(c, "entry_tax"); err != nil {
		return nil, err
	}
	if params.MarkupXapuri, err = decimalQuery(c, "markup_xapuri"); err != nil {
		return nil, err
	}
	if params.MarkupEpita, err = decimalQuery(c, "markup_epita"); err != nil {
		return nil, err
	}
	if params.FreightShare, err = decimalQuery(c, "freight_share"); err != nil {
		return nil, err
	}
	if params.Rounding, err = domain.ParseRoundingPolicy(c.Query("rounding")); err != nil {
		return nil, err
	}

	return &params, nil
}

func decimalQuery(c *gin.Context, key string) (decimal.Decimal, error) {
	raw := c.Query(key)
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("query parameter %s is not a number: %q", key, raw)
	}
	return d, nil
}

// respondError maps domain errors to HTTP status codes
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrMalformedInvoice):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidParameters):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvoiceNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrQueueUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
