package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/dbtest"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type sentEvent struct {
	Topic string
	Key   string
	Type  string
}

type fakePublisher struct {
	mu     sync.Mutex
	events []sentEvent
}

func (p *fakePublisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	typ, _ := event.(map[string]any)["type"].(string)
	p.events = append(p.events, sentEvent{Topic: topic, Key: key, Type: typ})
	return nil
}

func (p *fakePublisher) Close() error { return nil }

func (p *fakePublisher) types(topic string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		if e.Topic == topic {
			out = append(out, e.Type)
		}
	}
	return out
}

type fakeIndex struct {
	mu      sync.Mutex
	docs    map[uint]search.Document
	hits    []uint
	fail    error
	queries []string
}

func newFakeIndex() *fakeIndex { return &fakeIndex{docs: map[uint]search.Document{}} }

func (f *fakeIndex) IndexProduct(_ context.Context, doc search.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs[doc.ID] = doc
	return nil
}

func (f *fakeIndex) DeleteProduct(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.docs, id)
	return nil
}

func (f *fakeIndex) Search(_ context.Context, q string, _, _ int) (int64, []uint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if f.fail != nil {
		return 0, nil, f.fail
	}
	return int64(len(f.hits)), f.hits, nil
}

type env struct {
	repo   *repo.GormRepo
	events *fakePublisher
	index  *fakeIndex
}

func newEnv(t *testing.T) *env {
	t.Helper()
	return &env{repo: repo.New(dbtest.New(t)), events: &fakePublisher{}, index: newFakeIndex()}
}

func (e *env) catalog() *CatalogService {
	return &CatalogService{Repo: e.repo, Search: e.index}
}

func (e *env) admin() *ProductAdminService {
	return &ProductAdminService{Repo: e.repo, Catalog: e.catalog(), Search: e.index, Events: e.events}
}

func (e *env) user(t *testing.T, email string) *models.User {
	t.Helper()
	u := &models.User{Email: email, PasswordHash: "x", Role: models.RoleUser, IsActive: true}
	require.NoError(t, e.repo.CreateUserIfNotExists(context.Background(), u))
	return u
}

func variantReq(sku, price string, stock int) transport.VariantRequest {
	return transport.VariantRequest{SKU: sku, Price: decimal.RequireFromString(price), Stock: stock, Color: "black", Size: "M"}
}

func (e *env) product(t *testing.T, name string, variants ...transport.VariantRequest) transport.ProductDetail {
	t.Helper()
	d, err := e.admin().Create(context.Background(), transport.CreateProductRequest{
		Name:      name,
		BrandName: "Acme",
		Category:  "Shirts",
		Variants:  variants,
	})
	require.NoError(t, err)
	return d
}

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }
