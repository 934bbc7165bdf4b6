package auth

import (
	"context"

	"google.golang.org/grpc/metadata"
)

type contextKey string

const (
	merchantIDKey contextKey = "merchant_id"

	MerchantIDMetadata = "x-merchant-id"
	MerchantIDHeader   = "X-Merchant-ID"
)

func WithMerchantID(ctx context.Context, merchantID string) context.Context {
	return context.WithValue(ctx, merchantIDKey, merchantID)
}

// GetMerchantID reads the merchant set by the interceptor, falling back to incoming gRPC metadata.
func GetMerchantID(ctx context.Context) string {
	if val, ok := ctx.Value(merchantIDKey).(string); ok {
		return val
	}

	md, ok := metadata.FromIncomingContext(ctx)
	if ok {
		if val := md.Get(MerchantIDMetadata); len(val) > 0 {
			return val[0]
		}
	}
	return ""
}
