package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/event-invoicer/invoicing"
	"github.com/yourusername/event-invoicer/models"
	"github.com/yourusername/event-invoicer/render"
	"github.com/yourusername/event-invoicer/store"
)

type InvoiceService interface {
	Save(ctx context.Context, draft *invoicing.Draft) (*models.Invoice, string, error)
	Regenerate(ctx context.Context, id uint) (*models.Invoice, string, error)
	Get(ctx context.Context, id uint) (*models.Invoice, error)
	List(ctx context.Context) ([]models.Invoice, error)
}

type InvoiceHandler struct {
	service InvoiceService
}

func NewInvoiceHandler(service InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{service: service}
}

// Preview returns the running totals for a form without saving it.
func (h *InvoiceHandler) Preview(c *gin.Context) {
	draft, ok := bindDraft(c)
	if !ok {
		return
	}

	summary, err := draft.Summary()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	draft, ok := bindDraft(c)
	if !ok {
		return
	}

	invoice, path, err := h.service.Save(c.Request.Context(), draft)
	switch {
	case isFormError(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, invoicing.ErrPDFNotWritten):
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invoice saved but the PDF could not be generated", "invoice_id": invoice.ID})
		return
	case err != nil && invoice != nil:
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invoice saved but could not be reloaded", "invoice_id": invoice.ID})
		return
	case err != nil:
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save invoice"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"invoice":  invoice,
		"pdf_path": path,
	})
}

func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	invoices, err := h.service.List(c.Request.Context())
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch invoices"})
		return
	}
	c.JSON(http.StatusOK, invoices)
}

func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	id, ok := invoiceID(c)
	if !ok {
		return
	}

	invoice, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		respondLookupError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

// DownloadDuplicate regenerates the duplicate copy of an invoice and sends it.
func (h *InvoiceHandler) DownloadDuplicate(c *gin.Context) {
	id, ok := invoiceID(c)
	if !ok {
		return
	}

	_, path, err := h.service.Regenerate(c.Request.Context(), id)
	if err != nil {
		respondLookupError(c, err)
		return
	}
	c.FileAttachment(path, render.FileName(id))
}

func bindDraft(c *gin.Context) (*invoicing.Draft, bool) {
	var form InvoiceForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}

	draft, err := form.Draft()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	return draft, true
}

func invoiceID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid invoice id"})
		return 0, false
	}
	return uint(id), true
}

func respondLookupError(c *gin.Context, err error) {
	if errors.Is(err, store.ErrInvoiceNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invoice not found"})
		return
	}
	c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load invoice"})
}

func isFormError(err error) bool {
	return errors.Is(err, invoicing.ErrInvalidNumber) ||
		errors.Is(err, invoicing.ErrMissingFields) ||
		errors.Is(err, invoicing.ErrNoItems)
}
