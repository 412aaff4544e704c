package service

import (
	"context"
	"errors"
	"time"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/util"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

const (
	NewInWindow     = 30 * 24 * time.Hour
	NewInLimit      = 50
	BestSellerLimit = 10
)

type CatalogService struct {
	Repo   *repo.GormRepo
	Search search.Index
	Now    func() time.Time
}

func (s *CatalogService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func productSummary(p models.Product) transport.ProductSummary {
	out := transport.ProductSummary{
		ID:        p.ID,
		Name:      p.Name,
		Slug:      p.Slug,
		Category:  p.Category,
		MainImage: p.MainImage,
		PriceMin:  p.PriceMin,
		PriceMax:  p.PriceMax,
		IsActive:  p.IsActive,
		CreatedAt: p.CreatedAt,
	}
	if p.Brand != nil {
		out.Brand = p.Brand.Name
	}
	return out
}

func productSummaries(ps []models.Product) []transport.ProductSummary {
	out := make([]transport.ProductSummary, len(ps))
	for i, p := range ps {
		out[i] = productSummary(p)
	}
	return out
}

func variantView(v models.Variant, images []string) transport.VariantView {
	if images == nil {
		images = []string{}
	}
	return transport.VariantView{
		ID:        v.ID,
		ProductID: v.ProductID,
		SKU:       v.SKU,
		Price:     v.Price,
		Discount:  v.Discount,
		UnitPrice: v.UnitPrice(),
		Stock:     v.Stock,
		Color:     v.Color,
		Size:      v.Size,
		Images:    images,
	}
}

// productDetail groups images by color. The first image of a color is its
// thumbnail and the first image overall stands in for a missing main image.
func productDetail(p models.Product) transport.ProductDetail {
	d := transport.ProductDetail{
		ProductSummary: productSummary(p),
		Description:    p.Description,
		Options:        make(map[string][]string, len(p.Options)),
		ColorImages:    map[string][]string{},
		Thumbnails:     map[string]string{},
		Variants:       make([]transport.VariantView, 0, len(p.Variants)),
	}
	for _, o := range p.Options {
		vals := make([]string, len(o.Values))
		for i, v := range o.Values {
			vals[i] = v.Value
		}
		d.Options[o.Name] = vals
	}
	for _, img := range p.Images {
		if _, ok := d.Thumbnails[img.Color]; !ok {
			d.Thumbnails[img.Color] = img.ImageURL
		}
		d.ColorImages[img.Color] = append(d.ColorImages[img.Color], img.ImageURL)
	}
	if d.MainImage == "" && len(p.Images) > 0 {
		d.MainImage = p.Images[0].ImageURL
	}
	for _, v := range p.Variants {
		d.Variants = append(d.Variants, variantView(v, d.ColorImages[v.Color]))
	}
	return d
}

func brandView(b models.Brand) transport.BrandView {
	return transport.BrandView{ID: b.ID, Name: b.Name, Description: b.Description, IsActive: b.IsActive}
}

func categoryView(c models.Category) transport.CategoryView {
	aliases := make([]string, len(c.Aliases))
	for i, a := range c.Aliases {
		aliases[i] = a.Alias
	}
	return transport.CategoryView{ID: c.ID, Name: c.Name, DisplayName: c.DisplayName, Aliases: aliases}
}

func page[T any](data []T, page, size int, total int64) transport.Page[T] {
	if data == nil {
		data = []T{}
	}
	return transport.Page[T]{Data: data, Meta: transport.Meta{Page: page, Size: size, Total: total}}
}

// ListProducts pages through products. An unknown category yields an empty
// page rather than an error.
func (s *CatalogService) ListProducts(ctx context.Context, pageNo, size int, category string, brandID uint, includeInactive bool) (transport.Page[transport.ProductSummary], error) {
	offset, limit := util.Calculate(pageNo, size)
	pageNo = offset/limit + 1

	f := repo.ProductFilter{BrandID: brandID, IncludeInactive: includeInactive}
	if category != "" {
		c, err := s.Repo.ResolveCategory(ctx, util.NormalizeCategory(category))
		if errors.Is(err, repo.ErrNotFound) {
			return page[transport.ProductSummary](nil, pageNo, limit, 0), nil
		}
		if err != nil {
			return transport.Page[transport.ProductSummary]{}, err
		}
		f.Category = c.Name
	}

	total, items, err := s.Repo.ListProducts(ctx, f, offset, limit)
	if err != nil {
		return transport.Page[transport.ProductSummary]{}, err
	}
	return page(productSummaries(items), pageNo, limit, total), nil
}

func (s *CatalogService) Detail(ctx context.Context, idOrSlug string) (transport.ProductDetail, error) {
	p, err := s.Repo.GetProductDetail(ctx, idOrSlug, false)
	if err != nil {
		return transport.ProductDetail{}, fromRepo(err, "product")
	}
	return productDetail(*p), nil
}

// AdminDetail includes inactive products.
func (s *CatalogService) AdminDetail(ctx context.Context, id string) (transport.ProductDetail, error) {
	p, err := s.Repo.GetProductDetail(ctx, id, true)
	if err != nil {
		return transport.ProductDetail{}, fromRepo(err, "product")
	}
	return productDetail(*p), nil
}

func (s *CatalogService) Variants(ctx context.Context, productID uint) ([]transport.VariantView, error) {
	p, err := s.Repo.GetProductDetail(ctx, util.FormatID(productID), false)
	if err != nil {
		return nil, fromRepo(err, "product")
	}
	return productDetail(*p).Variants, nil
}

func (s *CatalogService) Variant(ctx context.Context, id uint) (transport.VariantView, error) {
	v, err := s.Repo.GetVariant(ctx, id)
	if err != nil {
		return transport.VariantView{}, fromRepo(err, "variant")
	}
	p, err := s.Repo.GetProductDetail(ctx, util.FormatID(v.ProductID), false)
	if err != nil {
		return transport.VariantView{}, fromRepo(err, "variant")
	}
	return variantView(*v, productDetail(*p).ColorImages[v.Color]), nil
}

func (s *CatalogService) Brands(ctx context.Context, activeOnly bool) ([]transport.BrandView, error) {
	bs, err := s.Repo.ListBrands(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	out := make([]transport.BrandView, len(bs))
	for i, b := range bs {
		out[i] = brandView(b)
	}
	return out, nil
}

func (s *CatalogService) Categories(ctx context.Context) ([]transport.CategoryView, error) {
	cs, err := s.Repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]transport.CategoryView, len(cs))
	for i, c := range cs {
		out[i] = categoryView(c)
	}
	return out, nil
}

func (s *CatalogService) NewIn(ctx context.Context) ([]transport.ProductSummary, error) {
	ps, err := s.Repo.NewIn(ctx, s.now().Add(-NewInWindow), NewInLimit)
	if err != nil {
		return nil, err
	}
	return productSummaries(ps), nil
}

func (s *CatalogService) BestSellers(ctx context.Context) ([]transport.ProductSummary, error) {
	rows, err := s.Repo.BestSellers(ctx, BestSellerLimit)
	if err != nil {
		return nil, err
	}
	out := make([]transport.ProductSummary, len(rows))
	for i, r := range rows {
		out[i] = productSummary(r.Product)
		sold := r.TotalSold
		out[i].TotalSold = &sold
	}
	return out, nil
}

// Category lists the active products of a category addressed by its
// canonical name or one of its aliases.
func (s *CatalogService) Category(ctx context.Context, name string, pageNo, size int) (transport.CategoryProducts, error) {
	out := transport.CategoryProducts{Products: []transport.ProductSummary{}}
	c, err := s.Repo.ResolveCategory(ctx, util.NormalizeCategory(name))
	if errors.Is(err, repo.ErrNotFound) {
		return out, nil
	}
	if err != nil {
		return out, err
	}
	cv := categoryView(*c)
	out.Category = &cv

	offset, limit := util.Calculate(pageNo, size)
	_, items, err := s.Repo.ListProducts(ctx, repo.ProductFilter{Category: c.Name}, offset, limit)
	if err != nil {
		return out, err
	}
	out.Products = productSummaries(items)
	return out, nil
}

// SearchProducts prefers the search index and falls back to SQL when it is not
// configured or fails.
func (s *CatalogService) SearchProducts(ctx context.Context, q string, pageNo, size int) (transport.Page[transport.ProductSummary], error) {
	offset, limit := util.Calculate(pageNo, size)
	pageNo = offset/limit + 1
	if q == "" {
		return page[transport.ProductSummary](nil, pageNo, limit, 0), nil
	}

	if s.Search != nil {
		total, ids, err := s.Search.Search(ctx, q, offset, limit)
		if err == nil {
			ps, err := s.Repo.ProductsByIDs(ctx, ids)
			if err != nil {
				return transport.Page[transport.ProductSummary]{}, err
			}
			return page(productSummaries(ps), pageNo, limit, total), nil
		}
		logging.FromContext(ctx).Warn("search_index_failed", "error", err)
	}

	total, ps, err := s.Repo.SearchProducts(ctx, q, offset, limit)
	if err != nil {
		return transport.Page[transport.ProductSummary]{}, err
	}
	return page(productSummaries(ps), pageNo, limit, total), nil
}
