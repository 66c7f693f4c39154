package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flicky/aqua-storefront/internal/model"
)

func line(id, category string, price int64, qty int) model.CartItem {
	return model.CartItem{Product: model.Product{ID: id, Name: "Item " + id, Category: category, Price: price}, Quantity: qty}
}

func TestAnalyticsService_Stats(t *testing.T) {
	ctx := context.Background()
	today := time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC)
	st := newTestStore(t, testProduct("a", 100, "0.1", 3), testProduct("b", 250, "0.1", 2))
	st.AddOrder(ctx, model.Order{ID: "o1", Total: 500, Date: today.Add(-time.Hour),
		Items: []model.CartItem{line("a", "Fish", 100, 2), line("b", "Plants", 250, 1)}})
	st.AddOrder(ctx, model.Order{ID: "o2", Total: 300, Date: today.AddDate(0, 0, -2),
		Items: []model.CartItem{line("a", "Fish", 100, 3)}})
	st.AddOrder(ctx, model.Order{ID: "o3", Total: 999, Date: today.AddDate(0, 0, -10),
		Items: []model.CartItem{line("c", "Food", 999, 1)}})

	svc := NewAnalyticsService(st)
	svc.now = func() time.Time { return today }
	stats := svc.Stats()

	assert.Equal(t, int64(1799), stats.TotalRevenue)
	assert.Equal(t, 3, stats.OrderCount)
	assert.Equal(t, int64(100*3+250*2), stats.StockValuation)
	assert.Equal(t, []CategoryRevenue{{"Fish", 500}, {"Food", 999}, {"Plants", 250}}, stats.CategoryRevenue)

	require.Len(t, stats.TopProducts, 3)
	assert.Equal(t, ProductSales{ID: "a", Name: "Item a", Quantity: 5}, stats.TopProducts[0])

	require.Len(t, stats.DailyRevenue, 7)
	assert.Equal(t, "2024-04-30", stats.DailyRevenue[0].Date)
	assert.Equal(t, "2024-05-06", stats.DailyRevenue[6].Date)
	assert.Equal(t, "Mon", stats.DailyRevenue[6].Weekday)
	assert.Equal(t, int64(500), stats.DailyRevenue[6].Revenue)
	assert.Equal(t, int64(300), stats.DailyRevenue[4].Revenue)
	assert.False(t, stats.Online)
}

func TestAnalyticsService_TopProductsCapped(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	var items []model.CartItem
	for i, id := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		items = append(items, line(id, "Fish", 10, i+1))
	}
	st.AddOrder(ctx, model.Order{ID: "o1", Items: items})

	top := NewAnalyticsService(st).Stats().TopProducts

	require.Len(t, top, 5)
	assert.Equal(t, "g", top[0].ID)
	assert.Equal(t, "c", top[4].ID)
}
