package structureddata

import (
	"context"

	"github.com/fekuna/omnipos-structured-data/internal/structureddata/dto"
)

type UseCase interface {
	ProductDocument(ctx context.Context, input *dto.ProductDocumentInput) (string, error)
	CategoryDocument(ctx context.Context, input *dto.CategoryDocumentInput) (string, error)
	SearchDocument(ctx context.Context, input *dto.SearchDocumentInput) (string, error)

	// Cache invalidation, driven by catalog events
	InvalidateProduct(ctx context.Context, merchantID, productID string) error
	InvalidateMerchant(ctx context.Context, merchantID string) error
}
