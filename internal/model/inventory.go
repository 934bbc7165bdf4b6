package model

import "time"

type Inventory struct {
	ID                string    `db:"id"`
	MerchantID        string    `db:"merchant_id"`
	StoreID           *string   `db:"store_id"`
	ProductID         string    `db:"product_id"`
	VariantID         *string   `db:"variant_id"`
	Quantity          float64   `db:"quantity"`
	ReservedQuantity  float64   `db:"reserved_quantity"`
	AvailableQuantity float64   `db:"available_quantity"` // Generated column
	UpdatedAt         time.Time `db:"updated_at"`
}
