package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/util"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

// ProductAdminService backs the admin console. Successful writes are
// mirrored into the search index and announced on product_events.
type ProductAdminService struct {
	Repo    *repo.GormRepo
	Catalog *CatalogService
	Search  search.Index
	Events  mykafka.Publisher
}

func validatePrice(price, discount decimal.Decimal) error {
	if price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrValidation)
	}
	if discount.IsNegative() || discount.GreaterThan(price) {
		return fmt.Errorf("%w: discount must be between 0 and price", ErrValidation)
	}
	return nil
}

func newVariant(v transport.VariantRequest) (repo.NewVariant, error) {
	if strings.TrimSpace(v.SKU) == "" {
		return repo.NewVariant{}, fmt.Errorf("%w: sku is required", ErrValidation)
	}
	if v.Stock < 0 {
		return repo.NewVariant{}, fmt.Errorf("%w: stock must not be negative", ErrValidation)
	}
	if err := validatePrice(v.Price, v.Discount); err != nil {
		return repo.NewVariant{}, err
	}
	return repo.NewVariant{
		SKU:      strings.TrimSpace(v.SKU),
		Price:    v.Price,
		Discount: v.Discount,
		Stock:    v.Stock,
		Color:    strings.TrimSpace(v.Color),
		Size:     strings.TrimSpace(v.Size),
	}, nil
}

func (s *ProductAdminService) reindex(ctx context.Context, id uint) {
	if s.Search == nil {
		return
	}
	p, err := s.Repo.GetProductByID(ctx, id)
	if err != nil {
		logging.FromContext(ctx).Warn("search_reindex_failed", "product_id", id, "error", err)
		return
	}
	doc := search.Document{
		ID:          p.ID,
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		Category:    p.Category,
		IsActive:    p.IsActive,
	}
	if p.Brand != nil {
		doc.Brand = p.Brand.Name
	}
	if err := s.Search.IndexProduct(ctx, doc); err != nil {
		logging.FromContext(ctx).Warn("search_reindex_failed", "product_id", id, "error", err)
	}
}

func (s *ProductAdminService) productEvent(ctx context.Context, typ string, id uint) {
	publish(ctx, s.Events, mykafka.TopicProductEvents, id, typ, map[string]any{"product_id": id})
}

func (s *ProductAdminService) List(ctx context.Context, pageNo, size int) (transport.Page[transport.ProductSummary], error) {
	return s.Catalog.ListProducts(ctx, pageNo, size, "", 0, true)
}

func (s *ProductAdminService) Create(ctx context.Context, req transport.CreateProductRequest) (transport.ProductDetail, error) {
	l := logging.FromContext(ctx).With("svc", "admin.product_create")

	if strings.TrimSpace(req.Name) == "" {
		return transport.ProductDetail{}, fmt.Errorf("%w: name is required", ErrValidation)
	}
	in := repo.NewProduct{
		Name:        req.Name,
		BrandName:   req.BrandName,
		Category:    req.Category,
		Description: req.Description,
	}
	for _, v := range req.Variants {
		nv, err := newVariant(v)
		if err != nil {
			return transport.ProductDetail{}, err
		}
		in.Variants = append(in.Variants, nv)
	}
	names := make([]string, 0, len(req.Options))
	for name := range req.Options {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		in.Options = append(in.Options, repo.NewOption{Name: name, Values: req.Options[name]})
	}
	for _, img := range req.Images {
		in.Images = append(in.Images, repo.NewImage{Color: strings.TrimSpace(img.Color), URL: img.URL})
	}

	id, err := s.Repo.CreateProduct(ctx, in)
	if err != nil {
		l.Warn("product_create_error", "error", err)
		return transport.ProductDetail{}, fromRepo(err, "sku or slug")
	}
	s.reindex(ctx, id)
	s.productEvent(ctx, "product_created", id)
	l.Info("product_created", "product_id", id)
	return s.Catalog.AdminDetail(ctx, util.FormatID(id))
}

func (s *ProductAdminService) Update(ctx context.Context, id uint, req transport.UpdateProductRequest) (transport.ProductDetail, error) {
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return transport.ProductDetail{}, fmt.Errorf("%w: name must not be empty", ErrValidation)
	}
	err := s.Repo.UpdateProduct(ctx, id, repo.ProductPatch{
		Name:        req.Name,
		BrandName:   req.BrandName,
		Category:    req.Category,
		Description: req.Description,
		MainImage:   req.MainImage,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return transport.ProductDetail{}, fromRepo(err, "product")
	}
	s.reindex(ctx, id)
	s.productEvent(ctx, "product_updated", id)
	return s.Catalog.AdminDetail(ctx, util.FormatID(id))
}

func (s *ProductAdminService) Delete(ctx context.Context, id uint) error {
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		return fromRepo(err, "product")
	}
	if s.Search != nil {
		if err := s.Search.DeleteProduct(ctx, id); err != nil {
			logging.FromContext(ctx).Warn("search_delete_failed", "product_id", id, "error", err)
		}
	}
	s.productEvent(ctx, "product_deleted", id)
	logging.FromContext(ctx).Info("product_deleted", "product_id", id)
	return nil
}

func (s *ProductAdminService) AddVariant(ctx context.Context, productID uint, req transport.VariantRequest) (transport.VariantView, error) {
	nv, err := newVariant(req)
	if err != nil {
		return transport.VariantView{}, err
	}
	v, err := s.Repo.AddVariant(ctx, productID, nv)
	if err != nil {
		return transport.VariantView{}, fromRepo(err, "product or sku")
	}
	s.productEvent(ctx, "product_updated", productID)
	return variantView(*v, nil), nil
}

// UpdateVariant validates the price pair as it will be after the patch.
func (s *ProductAdminService) UpdateVariant(ctx context.Context, id uint, req transport.UpdateVariantRequest) (transport.VariantView, error) {
	cur, err := s.Repo.GetVariant(ctx, id)
	if err != nil {
		return transport.VariantView{}, fromRepo(err, "variant")
	}
	price, discount := cur.Price, cur.Discount
	if req.Price != nil {
		price = *req.Price
	}
	if req.Discount != nil {
		discount = *req.Discount
	}
	if err := validatePrice(price, discount); err != nil {
		return transport.VariantView{}, err
	}

	v, err := s.Repo.UpdateVariant(ctx, id, repo.VariantPatch{
		SKU:      req.SKU,
		Price:    req.Price,
		Discount: req.Discount,
		Color:    req.Color,
		Size:     req.Size,
	})
	if err != nil {
		return transport.VariantView{}, fromRepo(err, "sku")
	}
	s.productEvent(ctx, "product_updated", v.ProductID)
	return variantView(*v, nil), nil
}

func (s *ProductAdminService) DeleteVariant(ctx context.Context, id uint) error {
	v, err := s.Repo.GetVariant(ctx, id)
	if err != nil {
		return fromRepo(err, "variant")
	}
	if err := s.Repo.DeleteVariant(ctx, id); err != nil {
		return fromRepo(err, "variant")
	}
	s.productEvent(ctx, "product_updated", v.ProductID)
	return nil
}

func (s *ProductAdminService) AddImages(ctx context.Context, productID uint, req transport.AddImagesRequest) ([]models.ProductImage, error) {
	if len(req.URLs) == 0 {
		return nil, fmt.Errorf("%w: urls are required", ErrValidation)
	}
	imgs, err := s.Repo.AddImages(ctx, productID, strings.TrimSpace(req.Color), req.URLs)
	if err != nil {
		return nil, fromRepo(err, "product")
	}
	s.productEvent(ctx, "product_updated", productID)
	return imgs, nil
}

func (s *ProductAdminService) DeleteImage(ctx context.Context, id uint) error {
	return fromRepo(s.Repo.DeleteImage(ctx, id), "image")
}

func (s *ProductAdminService) CreateBrand(ctx context.Context, req transport.BrandRequest) (transport.BrandView, error) {
	if strings.TrimSpace(req.Name) == "" {
		return transport.BrandView{}, fmt.Errorf("%w: name is required", ErrValidation)
	}
	b := models.Brand{Name: req.Name, Description: req.Description}
	if err := s.Repo.CreateBrand(ctx, &b); err != nil {
		return transport.BrandView{}, fromRepo(err, "brand")
	}
	return brandView(b), nil
}

func (s *ProductAdminService) UpdateBrand(ctx context.Context, id uint, req transport.UpdateBrandRequest) (transport.BrandView, error) {
	b, err := s.Repo.UpdateBrand(ctx, id, req.Name, req.Description, req.IsActive)
	if err != nil {
		return transport.BrandView{}, fromRepo(err, "brand")
	}
	return brandView(*b), nil
}

func (s *ProductAdminService) DeleteBrand(ctx context.Context, id uint) error {
	return fromRepo(s.Repo.DeleteBrand(ctx, id), "brand")
}

func (s *ProductAdminService) CreateCategory(ctx context.Context, req transport.CategoryRequest) (transport.CategoryView, error) {
	if util.NormalizeCategory(req.Name) == "" {
		return transport.CategoryView{}, fmt.Errorf("%w: name is required", ErrValidation)
	}
	c, err := s.Repo.CreateCategory(ctx, req.Name, req.DisplayName, req.Aliases)
	if err != nil {
		return transport.CategoryView{}, fromRepo(err, "category")
	}
	return categoryView(*c), nil
}

func (s *ProductAdminService) AddCategoryAlias(ctx context.Context, categoryID uint, req transport.AliasRequest) (transport.CategoryView, error) {
	if _, err := s.Repo.AddCategoryAlias(ctx, categoryID, req.Alias); err != nil {
		return transport.CategoryView{}, fromRepo(err, "category or alias")
	}
	cs, err := s.Repo.ListCategories(ctx)
	if err != nil {
		return transport.CategoryView{}, err
	}
	for _, c := range cs {
		if c.ID == categoryID {
			return categoryView(c), nil
		}
	}
	return transport.CategoryView{}, fmt.Errorf("%w: category not found", ErrNotFound)
}

func (s *ProductAdminService) DeleteCategory(ctx context.Context, id uint) error {
	return fromRepo(s.Repo.DeleteCategory(ctx, id), "category")
}
