package structureddata

import (
	"context"

	"github.com/fekuna/omnipos-structured-data/internal/model"
	"github.com/fekuna/omnipos-structured-data/internal/structureddata/dto"
)

type Repository interface {
	FindProduct(ctx context.Context, merchantID, id string) (*model.Product, error)
	FindProductsByIDs(ctx context.Context, merchantID string, ids []string) ([]model.Product, error)

	FindCategory(ctx context.Context, merchantID, id string) (*model.Category, error)
	FindCategoriesByIDs(ctx context.Context, merchantID string, ids []string) ([]model.Category, error)

	FindVariants(ctx context.Context, filters *dto.VariantFilters) ([]model.ProductVariant, error)

	// Images come back ordered by sort_order with renditions attached
	ListImages(ctx context.Context, productIDs []string) ([]model.ProductImage, error)

	BatchGetInventory(ctx context.Context, merchantID string, variantIDs []string, storeID *string) ([]model.Inventory, error)
}
