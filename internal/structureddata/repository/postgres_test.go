package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fekuna/omnipos-structured-data/internal/structureddata/dto"
)

func newMockRepo(t *testing.T) (*PGRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPGRepository(sqlx.NewDb(db, "pgx")), mock
}

var productRowColumns = []string{
	"id", "merchant_id", "category_id", "sku", "name", "description", "base_price", "tax_rate",
	"currency", "track_inventory", "is_active", "created_at", "updated_at",
}

func TestPGRepository_FindProduct(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()
	catID := "cat-1"

	mock.ExpectQuery(regexp.QuoteMeta("FROM products WHERE merchant_id = $1 AND id = $2")).
		WithArgs("m-1", "p-1").
		WillReturnRows(sqlmock.NewRows(productRowColumns).
			AddRow("p-1", "m-1", catID, "RUN-1", "Runner", "Light shoe", "100.00", "10", "USD", true, true, now, now))

	p, err := repo.FindProduct(context.Background(), "m-1", "p-1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Runner", p.Name)
	assert.Equal(t, "cat-1", *p.CategoryID)
	assert.Equal(t, "100", p.BasePrice.String())
	assert.Equal(t, "USD", p.Currency)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepository_FindProduct_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM products WHERE merchant_id = $1 AND id = $2")).
		WithArgs("m-1", "missing").
		WillReturnRows(sqlmock.NewRows(productRowColumns))

	p, err := repo.FindProduct(context.Background(), "m-1", "missing")
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepository_FindCategory(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM categories WHERE merchant_id = $1 AND id = $2")).
		WithArgs("m-1", "c-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "merchant_id", "parent_id", "name", "slug", "description", "is_active", "created_at", "updated_at"}).
			AddRow("c-1", "m-1", nil, "Shoes", "shoes", "All shoes", true, now, now))

	c, err := repo.FindCategory(context.Background(), "m-1", "c-1")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "shoes", c.Slug)
	assert.Nil(t, c.ParentID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepository_FindVariants_Filters(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE p.merchant_id = $1 AND p.category_id = $2 AND (v.variant_name ILIKE $3 ESCAPE '\' OR v.sku ILIKE $4 ESCAPE '\' OR p.name ILIKE $5 ESCAPE '\') AND v.is_active = TRUE AND p.is_active = TRUE`) + `\s+ORDER BY p.name, v.sku LIMIT 10 OFFSET 10`).
		WithArgs("m-1", "c-1", "%run%", "%run%", "%run%").
		WillReturnRows(sqlmock.NewRows([]string{"id", "product_id", "sku", "variant_name", "price_adjustment", "is_active", "created_at", "updated_at"}).
			AddRow("v-1", "p-1", "RUN-1-42", "42", "0", true, now, now).
			AddRow("v-2", "p-1", "RUN-1-43", "43", "5.5", true, now, now))

	variants, err := repo.FindVariants(context.Background(), &dto.VariantFilters{
		MerchantID:  "m-1",
		CategoryID:  "c-1",
		SearchQuery: "run",
		ActiveOnly:  true,
		Page:        2,
		PageSize:    10,
	})
	require.NoError(t, err)
	require.Len(t, variants, 2)
	assert.Equal(t, "5.5", variants[1].PriceAdjustment.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepository_FindVariants_SearchMatchesLiterally(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{query: "50%_off", want: `%50\%\_off%`},
		{query: "%", want: `%\%%`},
		{query: `a\b`, want: `%a\\b%`},
	}

	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			repo, mock := newMockRepo(t)

			mock.ExpectQuery(regexp.QuoteMeta(`v.variant_name ILIKE $2 ESCAPE '\'`)).
				WithArgs("m-1", tc.want, tc.want, tc.want).
				WillReturnRows(sqlmock.NewRows([]string{"id", "product_id", "sku", "variant_name", "price_adjustment", "is_active", "created_at", "updated_at"}))

			variants, err := repo.FindVariants(context.Background(), &dto.VariantFilters{
				MerchantID:  "m-1",
				SearchQuery: tc.query,
			})
			require.NoError(t, err)
			assert.Empty(t, variants)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPGRepository_ListImages_AttachesRenditions(t *testing.T) {
	repo, mock := newMockRepo(t)
	variantID := "v-1"

	mock.ExpectQuery(regexp.QuoteMeta("FROM product_images")).
		WithArgs("p-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "product_id", "variant_id", "name", "sort_order"}).
			AddRow("img-1", "p-1", nil, "main", 0).
			AddRow("img-2", "p-1", variantID, "side", 1))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT image_id, size, url FROM image_renditions WHERE image_id IN ($1, $2)")).
		WithArgs("img-1", "img-2").
		WillReturnRows(sqlmock.NewRows([]string{"image_id", "size", "url"}).
			AddRow("img-1", "540x540", "https://cdn/main-540.jpg").
			AddRow("img-1", "60x60", "https://cdn/main-60.jpg"))

	images, err := repo.ListImages(context.Background(), []string{"p-1"})
	require.NoError(t, err)
	require.Len(t, images, 2)
	assert.Equal(t, "https://cdn/main-540.jpg", images[0].Renditions["540x540"])
	assert.Len(t, images[0].Renditions, 2)
	assert.NotNil(t, images[1].Renditions)
	assert.Empty(t, images[1].Renditions)
	assert.Equal(t, "v-1", *images[1].VariantID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepository_BatchGetInventory_StoreScope(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()
	storeID := "s-1"
	cols := []string{"id", "merchant_id", "store_id", "product_id", "variant_id", "quantity", "reserved_quantity", "available_quantity", "updated_at"}

	mock.ExpectQuery(regexp.QuoteMeta("WHERE merchant_id = $1 AND variant_id IN ($2, $3)") + `\s+AND store_id = \$4`).
		WithArgs("m-1", "v-1", "v-2", storeID).
		WillReturnRows(sqlmock.NewRows(cols).AddRow("i-1", "m-1", storeID, "p-1", "v-1", 5.0, 1.0, 4.0, now))

	items, err := repo.BatchGetInventory(context.Background(), "m-1", []string{"v-1", "v-2"}, &storeID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 4.0, items[0].AvailableQuantity)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE merchant_id = $1 AND variant_id IN ($2)") + `\s+AND store_id IS NULL`).
		WithArgs("m-1", "v-1").
		WillReturnRows(sqlmock.NewRows(cols))

	items, err = repo.BatchGetInventory(context.Background(), "m-1", []string{"v-1"}, nil)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepository_EmptyIDsSkipQuery(t *testing.T) {
	repo, mock := newMockRepo(t)
	ctx := context.Background()

	products, err := repo.FindProductsByIDs(ctx, "m-1", nil)
	require.NoError(t, err)
	assert.Empty(t, products)

	images, err := repo.ListImages(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, images)

	inv, err := repo.BatchGetInventory(ctx, "m-1", nil, nil)
	require.NoError(t, err)
	assert.Empty(t, inv)

	assert.NoError(t, mock.ExpectationsWereMet())
}
