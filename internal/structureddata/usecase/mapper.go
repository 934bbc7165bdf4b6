package usecase

import (
	"fmt"
	"math"

	"github.com/fekuna/omnipos-structured-data/internal/jsonld"
	"github.com/fekuna/omnipos-structured-data/internal/model"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// grossPrice is the variant's tax-inclusive unit price rounded to cents.
func grossPrice(p *model.Product, v *model.ProductVariant) decimal.Decimal {
	net := p.BasePrice.Add(v.PriceAdjustment)
	rate := decimal.NewFromInt(1).Add(p.TaxRate.Div(hundred))
	return net.Mul(rate).Round(2)
}

// stockInfo returns nil when the variant has no inventory row.
func stockInfo(p *model.Product, v *model.ProductVariant, inv *model.Inventory) *jsonld.StockInfo {
	if inv == nil {
		return nil
	}
	return &jsonld.StockInfo{
		Price: jsonld.Money{
			Gross:    grossPrice(p, v),
			Currency: p.Currency,
		},
		Quantity: int(math.Floor(inv.AvailableQuantity)),
	}
}

func toImage(img *model.ProductImage) *jsonld.Image {
	if img == nil {
		return nil
	}
	return &jsonld.Image{Name: img.Name, Renditions: img.Renditions}
}

func toCategory(c *model.Category, baseURL string) *jsonld.Category {
	if c == nil {
		return nil
	}
	out := &jsonld.Category{
		Name: c.Name,
		URL:  categoryURL(baseURL, c),
	}
	if c.Description != nil {
		out.Description = *c.Description
	}
	return out
}

func categoryURL(baseURL string, c *model.Category) string {
	return fmt.Sprintf("%s/category/%s-%s/", baseURL, c.Slug, c.ID)
}

func toProduct(p *model.Product, category *jsonld.Category, primary *model.ProductImage) *jsonld.Product {
	out := &jsonld.Product{
		ID:       p.ID,
		Name:     p.Name,
		Category: category,
		Image:    toImage(primary),
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	return out
}

// imageIndex picks the primary image of each product (first image not tied to
// a variant) and the first image of each variant. Input must be in sort order.
type imageIndex struct {
	primary map[string]*model.ProductImage // by product id
	variant map[string]*model.ProductImage // by variant id
}

func indexImages(images []model.ProductImage) imageIndex {
	idx := imageIndex{
		primary: make(map[string]*model.ProductImage),
		variant: make(map[string]*model.ProductImage),
	}
	for i := range images {
		img := &images[i]
		if img.VariantID == nil {
			if _, ok := idx.primary[img.ProductID]; !ok {
				idx.primary[img.ProductID] = img
			}
			continue
		}
		if _, ok := idx.variant[*img.VariantID]; !ok {
			idx.variant[*img.VariantID] = img
		}
	}
	return idx
}

func indexInventory(items []model.Inventory) map[string]*model.Inventory {
	out := make(map[string]*model.Inventory, len(items))
	for i := range items {
		if items[i].VariantID != nil {
			out[*items[i].VariantID] = &items[i]
		}
	}
	return out
}

func variantIDs(variants []model.ProductVariant) []string {
	ids := make([]string, len(variants))
	for i, v := range variants {
		ids[i] = v.ID
	}
	return ids
}
