// Package jsonld renders catalog records as schema.org JSON-LD documents.
package jsonld

import (
	"github.com/shopspring/decimal"
)

const (
	SchemaContext = "http://schema.org"

	ConditionNew = "http://schema.org/NewCondition"
	InStock      = "http://schema.org/InStock"
	OutOfStock   = "http://schema.org/OutOfStock"

	// ThumbnailSize is the rendition used for every ImageObject.
	ThumbnailSize = "540x540"
	thumbnailEdge = 540
)

// Image is a stored picture with its generated thumbnail renditions keyed by size ("540x540").
type Image struct {
	Name       string
	Renditions map[string]string
}

func (i Image) Rendition(size string) (string, error) {
	url, ok := i.Renditions[size]
	if !ok {
		return "", &RenditionError{Image: i.Name, Size: size}
	}
	return url, nil
}

type Money struct {
	Gross    decimal.Decimal
	Currency string
}

// StockInfo is the pricing and inventory snapshot of a variant. A nil *StockInfo means no stock record.
type StockInfo struct {
	Price    Money
	Quantity int
}

type Category struct {
	Name        string
	Description string
	URL         string
}

func (c Category) String() string {
	return c.Name
}

type Product struct {
	ID          string
	Name        string
	Description string
	Category    *Category // Nullable
	Image       *Image    // Primary image, nullable
}

func (p Product) String() string {
	return p.Name
}

type Variant struct {
	SKU     string
	Name    string
	Image   *Image // First variant image, nullable
	Product *Product
}

func (v Variant) String() string {
	if v.Name != "" {
		return v.Name
	}
	return v.SKU
}

// VariantStock pairs a variant with its stock snapshot.
type VariantStock struct {
	Variant Variant
	Stock   *StockInfo
}

func categoryLabel(c *Category) string {
	if c == nil {
		return ""
	}
	return c.String()
}
