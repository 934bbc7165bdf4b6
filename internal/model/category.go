package model

type Category struct {
	BaseModel
	MerchantID  string  `db:"merchant_id"`
	ParentID    *string `db:"parent_id"` // Nullable
	Name        string  `db:"name"`
	Slug        string  `db:"slug"`
	Description *string `db:"description"`
	IsActive    bool    `db:"is_active"`
}
