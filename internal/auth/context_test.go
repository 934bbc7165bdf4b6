package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/metadata"
)

func TestGetMerchantID(t *testing.T) {
	assert.Equal(t, "", GetMerchantID(context.Background()))

	md := metadata.Pairs(MerchantIDMetadata, "m-meta")
	ctx := metadata.NewIncomingContext(context.Background(), md)
	assert.Equal(t, "m-meta", GetMerchantID(ctx))

	assert.Equal(t, "m-ctx", GetMerchantID(WithMerchantID(ctx, "m-ctx")))
}
