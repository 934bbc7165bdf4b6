package jsonld

// Offer builds the schema.org Offer for a single variant. Price fields are
// present iff stock is non-nil; availability is InStock only when stock is
// present with a positive quantity.
func Offer(stock *StockInfo, description string, v Variant, category string) *Document {
	offer := newTyped("Offer").
		Set("itemCondition", ConditionNew).
		Set("description", description).
		Set("name", v.String()).
		Set("gtin13", v.SKU).
		Set("category", category)

	if stock != nil {
		offer.Set("price", stock.Price.Gross)
		offer.Set("priceCurrency", stock.Price.Currency)
	}

	if stock != nil && stock.Quantity > 0 {
		offer.Set("availability", InStock)
	} else {
		offer.Set("availability", OutOfStock)
	}
	return offer
}
