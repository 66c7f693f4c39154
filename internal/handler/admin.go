package handler

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flicky/aqua-storefront/internal/dto"
	"github.com/flicky/aqua-storefront/internal/export"
	"github.com/flicky/aqua-storefront/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AdminHandler struct {
	products  *service.ProductService
	analytics *service.AnalyticsService
}

func NewAdminHandler(products *service.ProductService, analytics *service.AnalyticsService) *AdminHandler {
	return &AdminHandler{products: products, analytics: analytics}
}

func (h *AdminHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.analytics.Stats())
}

func (h *AdminHandler) ExportInventory(c *gin.Context) {
	var buf bytes.Buffer
	if err := export.WriteInventory(&buf, h.products.List().Products); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export inventory"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="inventory.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ImportInventory replaces the catalog with the rows of an uploaded sheet.
func (h *AdminHandler) ImportInventory(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to open file"})
		return
	}
	defer file.Close()

	products, skipped, err := export.ReadInventory(file, header.Size)
	if err != nil {
		if errors.Is(err, export.ErrEmptySheet) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid spreadsheet"})
		return
	}
	if len(products) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no valid rows"})
		return
	}

	h.products.ReplaceAll(c.Request.Context(), products)
	c.JSON(http.StatusOK, dto.ImportResponse{Imported: len(products), Skipped: skipped})
}
