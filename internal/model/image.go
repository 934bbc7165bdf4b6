package model

type ProductImage struct {
	ID         string            `db:"id"`
	ProductID  string            `db:"product_id"`
	VariantID  *string           `db:"variant_id"` // Nullable, set for variant images
	Name       string            `db:"name"`
	SortOrder  int               `db:"sort_order"`
	Renditions map[string]string `db:"-"` // size -> url, from image_renditions
}

type ImageRendition struct {
	ImageID string `db:"image_id"`
	Size    string `db:"size"`
	URL     string `db:"url"`
}
