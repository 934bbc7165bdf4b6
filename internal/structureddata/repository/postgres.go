package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-structured-data/internal/model"
	"github.com/fekuna/omnipos-structured-data/internal/structureddata/dto"
	"github.com/jmoiron/sqlx"
)

const (
	productColumns = `id, merchant_id, category_id, sku, name, description, base_price, tax_rate,
        currency, track_inventory, is_active, created_at, updated_at`
	categoryColumns  = `id, merchant_id, parent_id, name, slug, description, is_active, created_at, updated_at`
	inventoryColumns = `id, merchant_id, store_id, product_id, variant_id, quantity, reserved_quantity,
        available_quantity, updated_at`
)

// likeEscaper makes user input match literally inside an ILIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) FindProduct(ctx context.Context, merchantID, id string) (*model.Product, error) {
	var product model.Product
	query := `SELECT ` + productColumns + ` FROM products WHERE merchant_id = $1 AND id = $2 LIMIT 1`
	err := r.DB.GetContext(ctx, &product, query, merchantID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func (r *PGRepository) FindProductsByIDs(ctx context.Context, merchantID string, ids []string) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	query, args, err := sqlx.In(`SELECT `+productColumns+` FROM products WHERE merchant_id = ? AND id IN (?)`, merchantID, ids)
	if err != nil {
		return nil, err
	}

	var products []model.Product
	err = r.DB.SelectContext(ctx, &products, r.DB.Rebind(query), args...)
	return products, err
}

func (r *PGRepository) FindCategory(ctx context.Context, merchantID, id string) (*model.Category, error) {
	var category model.Category
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE merchant_id = $1 AND id = $2 LIMIT 1`
	err := r.DB.GetContext(ctx, &category, query, merchantID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

func (r *PGRepository) FindCategoriesByIDs(ctx context.Context, merchantID string, ids []string) ([]model.Category, error) {
	if len(ids) == 0 {
		return []model.Category{}, nil
	}

	query, args, err := sqlx.In(`SELECT `+categoryColumns+` FROM categories WHERE merchant_id = ? AND id IN (?)`, merchantID, ids)
	if err != nil {
		return nil, err
	}

	var categories []model.Category
	err = r.DB.SelectContext(ctx, &categories, r.DB.Rebind(query), args...)
	return categories, err
}

func (r *PGRepository) FindVariants(ctx context.Context, f *dto.VariantFilters) ([]model.ProductVariant, error) {
	conditions := []string{"p.merchant_id = :merchant_id"}
	args := map[string]interface{}{"merchant_id": f.MerchantID}

	if f.ProductID != "" {
		conditions = append(conditions, "v.product_id = :product_id")
		args["product_id"] = f.ProductID
	}
	if f.CategoryID != "" {
		conditions = append(conditions, "p.category_id = :category_id")
		args["category_id"] = f.CategoryID
	}
	if f.SearchQuery != "" {
		conditions = append(conditions, `(v.variant_name ILIKE :search ESCAPE '\' OR v.sku ILIKE :search ESCAPE '\' OR p.name ILIKE :search ESCAPE '\')`)
		args["search"] = "%" + likeEscaper.Replace(f.SearchQuery) + "%"
	}
	if f.ActiveOnly {
		conditions = append(conditions, "v.is_active = TRUE AND p.is_active = TRUE")
	}

	query := `
        SELECT v.id, v.product_id, v.sku, v.variant_name, v.price_adjustment, v.is_active,
               v.created_at, v.updated_at
        FROM product_variants v
        JOIN products p ON p.id = v.product_id
        WHERE ` + strings.Join(conditions, " AND ") + `
        ORDER BY p.name, v.sku`

	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, (page-1)*f.PageSize)
	}

	named, bound, err := sqlx.Named(query, args)
	if err != nil {
		return nil, err
	}

	var variants []model.ProductVariant
	err = r.DB.SelectContext(ctx, &variants, r.DB.Rebind(named), bound...)
	if err != nil {
		return nil, err
	}
	return variants, nil
}

func (r *PGRepository) ListImages(ctx context.Context, productIDs []string) ([]model.ProductImage, error) {
	if len(productIDs) == 0 {
		return []model.ProductImage{}, nil
	}

	query, args, err := sqlx.In(`
        SELECT id, product_id, variant_id, name, sort_order
        FROM product_images
        WHERE product_id IN (?)
        ORDER BY product_id, sort_order, id
    `, productIDs)
	if err != nil {
		return nil, err
	}

	var images []model.ProductImage
	if err := r.DB.SelectContext(ctx, &images, r.DB.Rebind(query), args...); err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return images, nil
	}

	imageIDs := make([]string, len(images))
	for i, img := range images {
		imageIDs[i] = img.ID
	}

	query, args, err = sqlx.In(`SELECT image_id, size, url FROM image_renditions WHERE image_id IN (?)`, imageIDs)
	if err != nil {
		return nil, err
	}

	var renditions []model.ImageRendition
	if err := r.DB.SelectContext(ctx, &renditions, r.DB.Rebind(query), args...); err != nil {
		return nil, err
	}

	byImage := make(map[string]map[string]string, len(images))
	for _, rd := range renditions {
		if byImage[rd.ImageID] == nil {
			byImage[rd.ImageID] = make(map[string]string)
		}
		byImage[rd.ImageID][rd.Size] = rd.URL
	}
	for i := range images {
		images[i].Renditions = byImage[images[i].ID]
		if images[i].Renditions == nil {
			images[i].Renditions = map[string]string{}
		}
	}
	return images, nil
}

func (r *PGRepository) BatchGetInventory(ctx context.Context, merchantID string, variantIDs []string, storeID *string) ([]model.Inventory, error) {
	if len(variantIDs) == 0 {
		return []model.Inventory{}, nil
	}

	query, args, err := sqlx.In(`
        SELECT `+inventoryColumns+` FROM inventory
        WHERE merchant_id = ? AND variant_id IN (?)
    `, merchantID, variantIDs)
	if err != nil {
		return nil, err
	}

	if storeID != nil && *storeID != "" {
		query += ` AND store_id = ?`
		args = append(args, *storeID)
	} else {
		query += ` AND store_id IS NULL`
	}

	var items []model.Inventory
	err = r.DB.SelectContext(ctx, &items, r.DB.Rebind(query), args...)
	return items, err
}
