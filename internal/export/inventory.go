// Package export moves the product catalog in and out of spreadsheets.
package export

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx"

	"github.com/flicky/aqua-storefront/internal/model"
)

const SheetName = "Inventory"

var ErrEmptySheet = errors.New("inventory sheet is empty or missing header row")

var headers = []string{"ID", "SKU", "Name", "Category", "Price", "Weight", "Stock", "Description", "Image", "Featured"}

func WriteInventory(w io.Writer, products []model.Product) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet(SheetName)
	if err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}

	headerRow := sheet.AddRow()
	for _, h := range headers {
		headerRow.AddCell().SetValue(h)
	}

	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetValue(p.ID)
		row.AddCell().SetValue(p.SKU)
		row.AddCell().SetValue(p.Name)
		row.AddCell().SetValue(p.Category)
		row.AddCell().SetValue(p.Price)
		row.AddCell().SetValue(p.Weight.String())
		row.AddCell().SetValue(p.Stock)
		row.AddCell().SetValue(p.Description)
		row.AddCell().SetValue(p.Image)
		row.AddCell().SetValue(strconv.FormatBool(p.Featured))
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// ReadInventory parses a sheet laid out like WriteInventory's. Rows without an
// id, name or a valid price are skipped and counted.
func ReadInventory(r io.ReaderAt, size int64) ([]model.Product, int, error) {
	file, err := xlsx.OpenReaderAt(r, size)
	if err != nil {
		return nil, 0, fmt.Errorf("open workbook: %w", err)
	}
	if len(file.Sheets) == 0 || file.Sheets[0].MaxRow < 2 {
		return nil, 0, ErrEmptySheet
	}

	sheet := file.Sheets[0]
	var products []model.Product
	skipped := 0
	for i := 1; i < sheet.MaxRow; i++ {
		row := sheet.Rows[i]
		get := func(index int) string {
			if row != nil && index < len(row.Cells) {
				return strings.TrimSpace(row.Cells[index].String())
			}
			return ""
		}

		price, errPrice := strconv.ParseInt(get(4), 10, 64)
		if get(0) == "" || get(2) == "" || errPrice != nil || price <= 0 {
			skipped++
			continue
		}
		weight, err := decimal.NewFromString(get(5))
		if err != nil {
			weight = decimal.Zero
		}
		if weight.IsNegative() {
			skipped++
			continue
		}
		stock, err := strconv.Atoi(get(6))
		if err != nil || stock < 0 {
			stock = 0
		}
		featured, _ := strconv.ParseBool(get(9))

		products = append(products, model.Product{
			ID:          get(0),
			SKU:         get(1),
			Name:        get(2),
			Category:    get(3),
			Price:       price,
			Weight:      weight,
			Stock:       stock,
			Description: get(7),
			Image:       get(8),
			Featured:    featured,
		})
	}
	return products, skipped, nil
}
