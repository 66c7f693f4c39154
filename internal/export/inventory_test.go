package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"

	"github.com/flicky/aqua-storefront/internal/catalog"
)

func TestWriteInventory(t *testing.T) {
	var buf bytes.Buffer
	products := catalog.Seed()

	require.NoError(t, WriteInventory(&buf, products))

	file, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	sheet, ok := file.Sheet[SheetName]
	require.True(t, ok)
	require.Len(t, sheet.Rows, len(products)+1)
	assert.Equal(t, "SKU", sheet.Rows[0].Cells[1].String())
	assert.Equal(t, products[0].Name, sheet.Rows[1].Cells[2].String())
}

func TestReadInventory_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	products := catalog.Seed()
	require.NoError(t, WriteInventory(&buf, products))

	got, skipped, err := ReadInventory(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	assert.Zero(t, skipped)
	require.Len(t, got, len(products))
	for i := range products {
		assert.Equal(t, products[i].ID, got[i].ID)
		assert.Equal(t, products[i].Price, got[i].Price)
		assert.Equal(t, products[i].Stock, got[i].Stock)
		assert.True(t, products[i].Weight.Equal(got[i].Weight))
		assert.Equal(t, products[i].Featured, got[i].Featured)
	}
}

func TestReadInventory_SkipsInvalidRows(t *testing.T) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet(SheetName)
	require.NoError(t, err)
	for _, cells := range [][]string{
		headers,
		{"a", "SKU-A", "Valid", "Fish", "120", "0.5", "3", "", "", "false"},
		{"b", "SKU-B", "No price", "Fish", "abc", "0.5", "3", "", "", "false"},
		{"", "SKU-C", "No id", "Fish", "90", "0.5", "3", "", "", "false"},
		{"d", "SKU-D", "Negative weight", "Fish", "90", "-0.2", "3", "", "", "false"},
		{"e", "SKU-E", "Blank weight", "Fish", "60", "", "3", "", "", "false"},
	} {
		row := sheet.AddRow()
		for _, c := range cells {
			row.AddCell().SetString(c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, file.Write(&buf))

	got, skipped, err := ReadInventory(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	assert.Equal(t, 3, skipped)
	require.Len(t, got, 2)
	assert.Equal(t, int64(120), got[0].Price)
	assert.Equal(t, "e", got[1].ID)
	assert.True(t, got[1].Weight.IsZero())
}

func TestReadInventory_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteInventory(&buf, nil))

	_, _, err := ReadInventory(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	assert.ErrorIs(t, err, ErrEmptySheet)
}
