package usecase

import (
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-structured-data/internal/cache"
	"github.com/fekuna/omnipos-structured-data/internal/jsonld"
	"github.com/fekuna/omnipos-structured-data/internal/logger"
	"github.com/fekuna/omnipos-structured-data/internal/metrics"
	"github.com/fekuna/omnipos-structured-data/internal/model"
	"github.com/fekuna/omnipos-structured-data/internal/structureddata"
	"github.com/fekuna/omnipos-structured-data/internal/structureddata/dto"
	"github.com/fekuna/omnipos-structured-data/internal/validator"
	"go.uber.org/zap"
)

const defaultPageSize = 24

var errEmptyInvalidationScope = errors.New("empty invalidation scope")

// Cache stores rendered documents. *cache.RedisClient satisfies it.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	SetIfVersion(ctx context.Context, key, value string, ttl time.Duration, versionKey string, version int64) (bool, error)
	Version(ctx context.Context, key string) (int64, error)
	BumpVersion(ctx context.Context, key string) error
	DeletePattern(ctx context.Context, pattern string) (int, error)
}

type Options struct {
	CacheTTL    time.Duration // 0 disables caching
	BaseURL     string
	MaxPageSize int
}

type structuredDataUseCase struct {
	repo    structureddata.Repository
	cache   Cache
	builder *jsonld.Builder
	opts    Options
	logger  logger.ZapLogger
}

func NewStructuredDataUseCase(repo structureddata.Repository, cache Cache, builder *jsonld.Builder, opts Options, log logger.ZapLogger) structureddata.UseCase {
	if opts.MaxPageSize <= 0 {
		opts.MaxPageSize = 100
	}
	return &structuredDataUseCase{
		repo:    repo,
		cache:   cache,
		builder: builder,
		opts:    opts,
		logger:  log,
	}
}

func (uc *structuredDataUseCase) ProductDocument(ctx context.Context, input *dto.ProductDocumentInput) (string, error) {
	if err := validator.Validate(input); err != nil {
		return "", err
	}

	key := fmt.Sprintf("jsonld:product:%s:%s:%s:%s", input.MerchantID, input.ProductID, input.Currency, storeKey(input.StoreID))
	return uc.render(ctx, metrics.KindProduct, input.MerchantID, key, func(ctx context.Context) (string, error) {
		p, err := uc.repo.FindProduct(ctx, input.MerchantID, input.ProductID)
		if err != nil {
			return "", fmt.Errorf("find product: %w", err)
		}
		if p == nil {
			return "", structureddata.ErrProductNotFound
		}

		var category *model.Category
		if p.CategoryID != nil {
			category, err = uc.repo.FindCategory(ctx, input.MerchantID, *p.CategoryID)
			if err != nil {
				return "", fmt.Errorf("find category: %w", err)
			}
		}

		variants, err := uc.repo.FindVariants(ctx, &dto.VariantFilters{
			MerchantID: input.MerchantID,
			ProductID:  p.ID,
			ActiveOnly: true,
		})
		if err != nil {
			return "", fmt.Errorf("find variants: %w", err)
		}

		images, err := uc.repo.ListImages(ctx, []string{p.ID})
		if err != nil {
			return "", fmt.Errorf("list images: %w", err)
		}
		imgs := indexImages(images)

		inventory, err := uc.repo.BatchGetInventory(ctx, input.MerchantID, variantIDs(variants), input.StoreID)
		if err != nil {
			return "", fmt.Errorf("get inventory: %w", err)
		}
		stock := indexInventory(inventory)

		product := toProduct(p, toCategory(category, uc.opts.BaseURL), imgs.primary[p.ID])
		pairs := make([]jsonld.VariantStock, 0, len(variants))
		for i := range variants {
			v := &variants[i]
			pairs = append(pairs, jsonld.VariantStock{
				Variant: jsonld.Variant{
					SKU:     v.SKU,
					Name:    v.VariantName,
					Image:   toImage(imgs.variant[v.ID]),
					Product: product,
				},
				Stock: stockInfo(p, v, stock[v.ID]),
			})
		}

		return uc.builder.ProductJSON(*product, pairs, input.Currency)
	})
}

func (uc *structuredDataUseCase) CategoryDocument(ctx context.Context, input *dto.CategoryDocumentInput) (string, error) {
	input.Page, input.PageSize = uc.normalizePage(input.Page, input.PageSize)
	if err := validator.Validate(input); err != nil {
		return "", err
	}

	key := fmt.Sprintf("jsonld:collection:%s:category:%s:%s:%d:%d",
		input.MerchantID, input.CategoryID, storeKey(input.StoreID), input.Page, input.PageSize)
	return uc.render(ctx, metrics.KindCategory, input.MerchantID, key, func(ctx context.Context) (string, error) {
		c, err := uc.repo.FindCategory(ctx, input.MerchantID, input.CategoryID)
		if err != nil {
			return "", fmt.Errorf("find category: %w", err)
		}
		if c == nil {
			return "", structureddata.ErrCategoryNotFound
		}

		variants, err := uc.repo.FindVariants(ctx, &dto.VariantFilters{
			MerchantID: input.MerchantID,
			CategoryID: c.ID,
			ActiveOnly: true,
			Page:       input.Page,
			PageSize:   input.PageSize,
		})
		if err != nil {
			return "", fmt.Errorf("find variants: %w", err)
		}

		items, err := uc.collectionItems(ctx, input.MerchantID, variants, input.StoreID, false)
		if err != nil {
			return "", err
		}
		return uc.builder.CollectionJSON(items, toCategory(c, uc.opts.BaseURL), nil)
	})
}

func (uc *structuredDataUseCase) SearchDocument(ctx context.Context, input *dto.SearchDocumentInput) (string, error) {
	input.Page, input.PageSize = uc.normalizePage(input.Page, input.PageSize)
	if err := validator.Validate(input); err != nil {
		return "", err
	}

	key := fmt.Sprintf("jsonld:collection:%s:search:%x:%s:%d:%d",
		input.MerchantID, md5.Sum([]byte(input.Query)), storeKey(input.StoreID), input.Page, input.PageSize)
	return uc.render(ctx, metrics.KindSearch, input.MerchantID, key, func(ctx context.Context) (string, error) {
		variants, err := uc.repo.FindVariants(ctx, &dto.VariantFilters{
			MerchantID:  input.MerchantID,
			SearchQuery: input.Query,
			ActiveOnly:  true,
			Page:        input.Page,
			PageSize:    input.PageSize,
		})
		if err != nil {
			return "", fmt.Errorf("find variants: %w", err)
		}

		items, err := uc.collectionItems(ctx, input.MerchantID, variants, input.StoreID, true)
		if err != nil {
			return "", err
		}
		name := fmt.Sprintf("Search results for %q", input.Query)
		return uc.builder.CollectionJSON(items, nil, &name)
	})
}

// collectionItems resolves the products, images and stock behind a page of
// variants. Product categories are only loaded when withCategories is set,
// category pages override them anyway.
func (uc *structuredDataUseCase) collectionItems(ctx context.Context, merchantID string, variants []model.ProductVariant, storeID *string, withCategories bool) ([]jsonld.VariantStock, error) {
	if len(variants) == 0 {
		return []jsonld.VariantStock{}, nil
	}

	productIDs := make([]string, 0, len(variants))
	seen := make(map[string]bool, len(variants))
	for _, v := range variants {
		if !seen[v.ProductID] {
			seen[v.ProductID] = true
			productIDs = append(productIDs, v.ProductID)
		}
	}

	products, err := uc.repo.FindProductsByIDs(ctx, merchantID, productIDs)
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	productByID := make(map[string]*model.Product, len(products))
	for i := range products {
		productByID[products[i].ID] = &products[i]
	}

	categories := map[string]*jsonld.Category{}
	if withCategories {
		categoryIDs := make([]string, 0, len(products))
		for _, p := range products {
			if p.CategoryID != nil {
				categoryIDs = append(categoryIDs, *p.CategoryID)
			}
		}
		found, err := uc.repo.FindCategoriesByIDs(ctx, merchantID, categoryIDs)
		if err != nil {
			return nil, fmt.Errorf("find categories: %w", err)
		}
		for i := range found {
			categories[found[i].ID] = toCategory(&found[i], uc.opts.BaseURL)
		}
	}

	images, err := uc.repo.ListImages(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	imgs := indexImages(images)

	inventory, err := uc.repo.BatchGetInventory(ctx, merchantID, variantIDs(variants), storeID)
	if err != nil {
		return nil, fmt.Errorf("get inventory: %w", err)
	}
	stock := indexInventory(inventory)

	jsonProducts := make(map[string]*jsonld.Product, len(products))
	items := make([]jsonld.VariantStock, 0, len(variants))
	for i := range variants {
		v := &variants[i]
		p, ok := productByID[v.ProductID]
		if !ok {
			uc.logger.Warn("variant without product skipped",
				zap.String("variant_id", v.ID),
				zap.String("product_id", v.ProductID),
			)
			continue
		}

		jp, ok := jsonProducts[p.ID]
		if !ok {
			var category *jsonld.Category
			if p.CategoryID != nil {
				category = categories[*p.CategoryID]
			}
			jp = toProduct(p, category, imgs.primary[p.ID])
			jsonProducts[p.ID] = jp
		}

		items = append(items, jsonld.VariantStock{
			Variant: jsonld.Variant{
				SKU:     v.SKU,
				Name:    v.VariantName,
				Image:   toImage(imgs.variant[v.ID]),
				Product: jp,
			},
			Stock: stockInfo(p, v, stock[v.ID]),
		})
	}
	return items, nil
}

// Ids come from catalog events and are escaped before they reach a SCAN pattern.
func (uc *structuredDataUseCase) InvalidateProduct(ctx context.Context, merchantID, productID string) error {
	if merchantID == "" || productID == "" {
		return errEmptyInvalidationScope
	}
	m, p := cache.EscapePattern(merchantID), cache.EscapePattern(productID)
	return uc.invalidate(ctx, merchantID,
		fmt.Sprintf("jsonld:product:%s:%s:*", m, p),
		fmt.Sprintf("jsonld:collection:%s:*", m),
	)
}

func (uc *structuredDataUseCase) InvalidateMerchant(ctx context.Context, merchantID string) error {
	if merchantID == "" {
		return errEmptyInvalidationScope
	}
	m := cache.EscapePattern(merchantID)
	return uc.invalidate(ctx, merchantID,
		fmt.Sprintf("jsonld:product:%s:*", m),
		fmt.Sprintf("jsonld:collection:%s:*", m),
	)
}

// invalidate bumps the merchant version before deleting, so renders that
// started earlier can no longer write their result back.
func (uc *structuredDataUseCase) invalidate(ctx context.Context, merchantID string, patterns ...string) error {
	if uc.cache == nil {
		return nil
	}
	if err := uc.cache.BumpVersion(ctx, versionKey(merchantID)); err != nil {
		return fmt.Errorf("bump version: %w", err)
	}
	for _, pattern := range patterns {
		n, err := uc.cache.DeletePattern(ctx, pattern)
		if err != nil {
			return fmt.Errorf("invalidate %s: %w", pattern, err)
		}
		uc.logger.Debug("invalidated cached documents", zap.String("pattern", pattern), zap.Int("keys", n))
	}
	return nil
}

// render serves key from cache or builds, records and caches it. Cache
// failures are logged and never fail the request.
func (uc *structuredDataUseCase) render(ctx context.Context, kind, merchantID, key string, build func(context.Context) (string, error)) (string, error) {
	caching := uc.cache != nil && uc.opts.CacheTTL > 0

	if caching {
		doc, ok, err := uc.cache.Get(ctx, key)
		switch {
		case err != nil:
			uc.logger.Warn("jsonld cache read failed", zap.String("key", key), zap.Error(err))
			metrics.CacheRequests.WithLabelValues(kind, "error").Inc()
		case ok:
			metrics.CacheRequests.WithLabelValues(kind, "hit").Inc()
			return doc, nil
		default:
			metrics.CacheRequests.WithLabelValues(kind, "miss").Inc()
		}
	}

	var version int64
	if caching {
		v, err := uc.cache.Version(ctx, versionKey(merchantID))
		if err != nil {
			uc.logger.Warn("jsonld cache version read failed", zap.String("merchant_id", merchantID), zap.Error(err))
			caching = false
		}
		version = v
	}

	start := time.Now()
	doc, err := build(ctx)
	metrics.RenderDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.RenderErrors.WithLabelValues(kind, errorReason(err)).Inc()
		return "", err
	}
	metrics.DocumentsRendered.WithLabelValues(kind).Inc()

	if caching {
		stored, err := uc.cache.SetIfVersion(ctx, key, doc, uc.opts.CacheTTL, versionKey(merchantID), version)
		switch {
		case err != nil:
			uc.logger.Warn("jsonld cache write failed", zap.String("key", key), zap.Error(err))
		case !stored:
			uc.logger.Debug("jsonld cache write skipped after invalidation", zap.String("key", key))
		}
	}
	return doc, nil
}

func (uc *structuredDataUseCase) normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > uc.opts.MaxPageSize {
		pageSize = uc.opts.MaxPageSize
	}
	return page, pageSize
}

func versionKey(merchantID string) string {
	return "jsonld:version:" + merchantID
}

func storeKey(storeID *string) string {
	if storeID == nil || *storeID == "" {
		return "-"
	}
	return *storeID
}

func errorReason(err error) string {
	var serr *jsonld.SerializationError
	switch {
	case errors.Is(err, structureddata.ErrProductNotFound), errors.Is(err, structureddata.ErrCategoryNotFound):
		return "not_found"
	case errors.Is(err, jsonld.ErrMissingRendition):
		return "missing_rendition"
	case errors.As(err, &serr):
		return "serialization"
	default:
		return "repository"
	}
}
