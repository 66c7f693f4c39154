package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/flicky/aqua-storefront/internal/config"
	"github.com/flicky/aqua-storefront/internal/identity"
	"github.com/flicky/aqua-storefront/internal/kv"
	"github.com/flicky/aqua-storefront/internal/model"
	"github.com/flicky/aqua-storefront/internal/store"
)

var testBusiness = config.BusinessConfig{
	Name:          "MVS Aqua",
	Tagline:       "Premium Aquarium Store",
	Address:       "15 Line, Upadhyaya Nagar, Tirupati, AP 517507",
	Phone:         "+91 94902 55775",
	WhatsAppPhone: "919490255775",
}

func newTestStore(t *testing.T, products ...model.Product) *store.Store {
	t.Helper()
	st, err := store.New(context.Background(),
		store.Local{Credentials: identity.Credentials{Email: "admin@mvsaqua.com", Password: "admin123"}},
		kv.NewMemory())
	require.NoError(t, err)
	t.Cleanup(st.Close)
	if products != nil {
		st.SetProducts(context.Background(), products)
	}
	return st
}

func testProduct(id string, price int64, weight string, stock int) model.Product {
	return model.Product{
		ID: id, SKU: "SKU-" + id, Name: "Item " + id, Category: "Fish",
		Price: price, Weight: decimal.RequireFromString(weight), Stock: stock,
	}
}

type recordingOpener struct{ links []string }

func (o *recordingOpener) Open(_ context.Context, link string) { o.links = append(o.links, link) }

type recordingPublisher struct {
	msgs []model.OrderMessage
	err  error
}

func (p *recordingPublisher) PublishOrder(_ context.Context, msg model.OrderMessage) error {
	p.msgs = append(p.msgs, msg)
	return p.err
}
