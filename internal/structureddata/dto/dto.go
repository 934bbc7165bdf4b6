package dto

type VariantFilters struct {
	MerchantID  string
	ProductID   string
	CategoryID  string
	SearchQuery string // variant name, sku or product name
	ActiveOnly  bool
	Page        int
	PageSize    int // 0 means no limit
}
