package jsonld

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// BuildProduct assembles the product page document: one Offer per variant
// wrapped in an AggregateOffer. currency only feeds the aggregate
// priceCurrency; offers keep the currency of their own stock.
func BuildProduct(p Product, variants []VariantStock, currency string) (*Document, error) {
	category := categoryLabel(p.Category)

	offers := make([]*Document, 0, len(variants))
	prices := make([]decimal.Decimal, 0, len(variants))

	for _, vs := range variants {
		if vs.Stock != nil {
			prices = append(prices, vs.Stock.Price.Gross)
		}

		offer := Offer(vs.Stock, p.Description, vs.Variant, category)

		image := vs.Variant.Image
		if image == nil {
			image = p.Image
		}
		if image != nil {
			img, err := ImageObject(*image, "")
			if err != nil {
				return nil, fmt.Errorf("offer %s: %w", vs.Variant.SKU, err)
			}
			offer.Set("image", img)
		}

		offers = append(offers, offer)
	}

	availability := OutOfStock
	for _, offer := range offers {
		if v, _ := offer.Get("availability"); v == InStock {
			availability = InStock
			break
		}
	}

	aggregate := newTyped("AggregateOffer").
		Set("availability", availability).
		Set("priceCurrency", currency).
		Set("sku", p.ID).
		Set("category", category).
		Set("offerCount", len(offers)).
		Set("offers", offers)

	if len(prices) > 0 {
		aggregate.Set("lowPrice", decimal.Min(prices[0], prices[1:]...))
		aggregate.Set("highPrice", decimal.Max(prices[0], prices[1:]...))
	}

	if p.Image != nil {
		img, err := ImageObject(*p.Image, p.Name)
		if err != nil {
			return nil, fmt.Errorf("product image: %w", err)
		}
		aggregate.Set("image", img)
	}

	return NewDocument().
		Set("@context", SchemaContext).
		Set("@type", "Product").
		Set("name", p.String()).
		Set("description", p.Description).
		Set("offers", aggregate), nil
}
