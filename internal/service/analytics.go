package service

import (
	"sort"
	"strings"
	"time"

	"github.com/flicky/aqua-storefront/internal/store"
)

const (
	topProductsLimit = 5
	revenueDays      = 7
)

type CategoryRevenue struct {
	Category string `json:"category"`
	Revenue  int64  `json:"revenue"`
}

type ProductSales struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type DailyRevenue struct {
	Date    string `json:"date"`
	Weekday string `json:"weekday"`
	Revenue int64  `json:"revenue"`
}

type Stats struct {
	TotalRevenue    int64             `json:"totalRevenue"`
	OrderCount      int               `json:"orderCount"`
	StockValuation  int64             `json:"stockValuation"`
	CategoryRevenue []CategoryRevenue `json:"categoryRevenue"`
	TopProducts     []ProductSales    `json:"topProducts"`
	DailyRevenue    []DailyRevenue    `json:"dailyRevenue"`
	Online          bool              `json:"online"`
}

type AnalyticsService struct {
	store *store.Store
	now   func() time.Time
}

func NewAnalyticsService(st *store.Store) *AnalyticsService {
	return &AnalyticsService{store: st, now: time.Now}
}

func (s *AnalyticsService) Stats() Stats {
	orders := s.store.Orders()
	products := s.store.Products()
	st := Stats{OrderCount: len(orders), Online: s.store.Online()}

	for _, p := range products {
		st.StockValuation += p.Price * int64(p.Stock)
	}

	byCategory := make(map[string]int64)
	sales := make(map[string]*ProductSales)
	for _, o := range orders {
		st.TotalRevenue += o.Total
		for _, item := range o.Items {
			byCategory[item.Category] += item.LineTotal()
			ps, ok := sales[item.ID]
			if !ok {
				ps = &ProductSales{ID: item.ID, Name: item.Name}
				sales[item.ID] = ps
			}
			ps.Quantity += item.Quantity
		}
	}

	st.CategoryRevenue = make([]CategoryRevenue, 0, len(byCategory))
	for c, v := range byCategory {
		st.CategoryRevenue = append(st.CategoryRevenue, CategoryRevenue{Category: c, Revenue: v})
	}
	sort.Slice(st.CategoryRevenue, func(i, j int) bool {
		return st.CategoryRevenue[i].Category < st.CategoryRevenue[j].Category
	})

	st.TopProducts = make([]ProductSales, 0, len(sales))
	for _, ps := range sales {
		st.TopProducts = append(st.TopProducts, *ps)
	}
	sort.Slice(st.TopProducts, func(i, j int) bool {
		a, b := st.TopProducts[i], st.TopProducts[j]
		if a.Quantity != b.Quantity {
			return a.Quantity > b.Quantity
		}
		return a.Name < b.Name
	})
	if len(st.TopProducts) > topProductsLimit {
		st.TopProducts = st.TopProducts[:topProductsLimit]
	}

	today := s.now().UTC()
	st.DailyRevenue = make([]DailyRevenue, 0, revenueDays)
	for i := revenueDays - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		key := day.Format(time.DateOnly)
		var total int64
		for _, o := range orders {
			if strings.HasPrefix(o.Date.UTC().Format(time.RFC3339), key) {
				total += o.Total
			}
		}
		st.DailyRevenue = append(st.DailyRevenue, DailyRevenue{Date: key, Weekday: day.Format("Mon"), Revenue: total})
	}
	return st
}
