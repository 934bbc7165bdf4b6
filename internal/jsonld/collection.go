package jsonld

import "fmt"

// listingDescription is the description every collection item and its offer
// carry, a single space rather than the product description.
const listingDescription = " "

// BuildCollection assembles a category or search page document. When
// category is set its fields overwrite the container's, and a non-empty
// defaultName overwrites name after that.
func BuildCollection(items []VariantStock, category *Category, defaultName *string) (*Document, error) {
	products := make([]*Document, 0, len(items))

	for _, item := range items {
		v := item.Variant

		effective := category
		if effective == nil && v.Product != nil {
			effective = v.Product.Category
		}

		offer := Offer(item.Stock, listingDescription, v, categoryLabel(effective))
		if v.Image != nil {
			img, err := ImageObject(*v.Image, v.Name)
			if err != nil {
				return nil, fmt.Errorf("item %s: %w", v.SKU, err)
			}
			offer.Set("image", img)
		}

		products = append(products, newTyped("Product").
			Set("description", listingDescription).
			Set("name", v.String()).
			Set("offers", offer))
	}

	doc := NewDocument().
		Set("@context", SchemaContext).
		Set("@type", "Offer").
		Set("itemOffered", products)

	if category != nil {
		doc.Set("name", category.Name).
			Set("url", category.URL).
			Set("description", category.Description).
			Set("category", category.String())
	}
	if defaultName != nil && *defaultName != "" {
		doc.Set("name", *defaultName)
	}
	return doc, nil
}
