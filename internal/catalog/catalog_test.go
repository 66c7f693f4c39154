package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flicky/aqua-storefront/internal/model"
)

func TestSeed_ReturnsCopies(t *testing.T) {
	a := Seed()
	b := Seed()
	require.NotEmpty(t, a)
	a[0].Stock = 0
	assert.NotEqual(t, a[0].Stock, b[0].Stock)

	ids := make(map[string]bool)
	for _, p := range b {
		assert.False(t, ids[p.ID], "duplicate id %s", p.ID)
		ids[p.ID] = true
		assert.Positive(t, p.Price)
	}
}

func TestContext(t *testing.T) {
	got := Context([]model.Product{
		{Name: "Betta", Category: "Fish", Price: 450, Stock: 3, SKU: "FSH-1", Description: "Blue"},
		{Name: "Moss", Category: "Plants", Price: 99, Stock: 0, SKU: "PLT-2", Description: "Java"},
	})

	lines := strings.Split(got, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Product: Betta, Category: Fish, Price: ₹450, Stock: 3, SKU: FSH-1, Desc: Blue", lines[0])
	assert.Contains(t, lines[1], "Stock: 0")
}

func TestSearch(t *testing.T) {
	products := Seed()

	assert.Empty(t, Search(products, "  ", 5))

	got := Search(products, "fsh", 5)
	require.Len(t, got, 2)
	assert.Equal(t, "betta-halfmoon", got[0].ID)

	assert.Len(t, Search(products, "BETTA", 5), 1)
	assert.Len(t, Search(products, "-0", 2), 2)
}
