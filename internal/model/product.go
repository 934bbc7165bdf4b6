package model

import "github.com/shopspring/decimal"

type Product struct {
	BaseModel
	MerchantID     string          `db:"merchant_id" json:"merchant_id"`
	CategoryID     *string         `db:"category_id" json:"category_id"` // Nullable
	SKU            string          `db:"sku" json:"sku"`
	Name           string          `db:"name" json:"name"`
	Description    *string         `db:"description" json:"description"`
	BasePrice      decimal.Decimal `db:"base_price" json:"base_price"`
	TaxRate        decimal.Decimal `db:"tax_rate" json:"tax_rate"` // Percent
	Currency       string          `db:"currency" json:"currency"`
	TrackInventory bool            `db:"track_inventory" json:"track_inventory"`
	IsActive       bool            `db:"is_active" json:"is_active"`
}

type ProductVariant struct {
	BaseModel
	ProductID       string          `db:"product_id" json:"product_id"`
	SKU             string          `db:"sku" json:"sku"`
	VariantName     string          `db:"variant_name" json:"variant_name"`
	PriceAdjustment decimal.Decimal `db:"price_adjustment" json:"price_adjustment"`
	IsActive        bool            `db:"is_active" json:"is_active"`
}
