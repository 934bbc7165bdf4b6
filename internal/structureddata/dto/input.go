package dto

type ProductDocumentInput struct {
	MerchantID string  `validate:"required"`
	ProductID  string  `validate:"required,uuid"`
	Currency   string  `validate:"required,iso4217"`
	StoreID    *string `validate:"omitempty,uuid"` // Nil for merchant-wide stock
}

type CategoryDocumentInput struct {
	MerchantID string  `validate:"required"`
	CategoryID string  `validate:"required,uuid"`
	StoreID    *string `validate:"omitempty,uuid"`
	Page       int     `validate:"gte=1"`
	PageSize   int     `validate:"gte=1"`
}

type SearchDocumentInput struct {
	MerchantID string  `validate:"required"`
	Query      string  `validate:"required,max=200"`
	StoreID    *string `validate:"omitempty,uuid"`
	Page       int     `validate:"gte=1"`
	PageSize   int     `validate:"gte=1"`
}
