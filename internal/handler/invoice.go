package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flicky/aqua-storefront/internal/dto"
	"github.com/flicky/aqua-storefront/internal/service"
)

type InvoiceHandler struct {
	invoiceService *service.InvoiceService
}

func NewInvoiceHandler(invoiceService *service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// ForOrder serves a stored order's invoice. ?action=print renders it inline
// for the browser's print dialog, the default downloads it.
func (h *InvoiceHandler) ForOrder(c *gin.Context) {
	var action dto.InvoiceAction
	if err := c.ShouldBindQuery(&action); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doc, err := h.invoiceService.ForOrder(c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	writeDocument(c, action.Action, doc)
}

func (h *InvoiceHandler) Draft(c *gin.Context) {
	var action dto.InvoiceAction
	if err := c.ShouldBindQuery(&action); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var req dto.DraftInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doc, err := h.invoiceService.DraftDocument(req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidDraft) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	writeDocument(c, action.Action, doc)
}

func writeDocument(c *gin.Context, action string, doc *service.Document) {
	disposition := "attachment"
	if action == "print" {
		disposition = "inline"
	}
	c.Header("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, doc.FileName))
	c.Data(http.StatusOK, "application/pdf", doc.Data)
}
