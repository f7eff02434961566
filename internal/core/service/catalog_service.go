package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/storefront/internal/core/domain"
	"github.com/example/storefront/internal/port"
)

type CatalogConfig struct {
	CacheTTL     time.Duration
	DefaultLimit int
	MaxLimit     int
}

// CatalogService is the cached read path over the product catalog. It has no
// invariants of its own; checkout owns stock.
type CatalogService struct {
	catalog port.CatalogRepository
	cache   port.CacheRepository
	cfg     CatalogConfig
	log     *slog.Logger
}

func NewCatalogService(catalog port.CatalogRepository, cache port.CacheRepository, cfg CatalogConfig, log *slog.Logger) *CatalogService {
	return &CatalogService{
		catalog: catalog,
		cache:   cache,
		cfg:     cfg,
		log:     log,
	}
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	key := productCacheKey(id)

	cached, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read product cache: %w", err)
	}
	if cached != nil {
		var p domain.Product
		if err := json.Unmarshal(cached, &p); err == nil {
			return &p, nil
		}
		s.log.Warn("dropping corrupt product cache entry", "key", key)
	}

	product, err := s.catalog.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load product: %w", err)
	}
	if product == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, id)
	}

	if blob, err := json.Marshal(product); err == nil {
		if err := s.cache.Set(ctx, key, blob, s.cfg.CacheTTL); err != nil {
			s.log.Warn("product cache populate failed", "key", key, "error", err)
		}
	}

	return product, nil
}

func (s *CatalogService) ListProducts(ctx context.Context, q port.ListQuery) (*domain.ProductPage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = s.cfg.DefaultLimit
	}
	if q.Limit > s.cfg.MaxLimit {
		q.Limit = s.cfg.MaxLimit
	}

	key := productListCacheKey(q.Page, q.Limit, q.Category, q.Search)

	cached, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read listing cache: %w", err)
	}
	if cached != nil {
		var page domain.ProductPage
		if err := json.Unmarshal(cached, &page); err == nil {
			return &page, nil
		}
		s.log.Warn("dropping corrupt listing cache entry", "key", key)
	}

	products, total, err := s.catalog.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	page := &domain.ProductPage{
		Products:      products,
		TotalPages:    (total + q.Limit - 1) / q.Limit,
		CurrentPage:   q.Page,
		TotalProducts: total,
	}

	if blob, err := json.Marshal(page); err == nil {
		if err := s.cache.Set(ctx, key, blob, s.cfg.CacheTTL); err != nil {
			s.log.Warn("listing cache populate failed", "key", key, "error", err)
		}
	}

	return page, nil
}
