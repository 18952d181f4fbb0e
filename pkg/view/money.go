package view

// Money carries paise alongside the formatted rupee string.
type Money struct {
	Cents   int    `json:"cents"`
	Display string `json:"display"`
}

func INR(paise int) Money { return Money{Cents: paise, Display: Rupees(paise)} }

// Page wraps one page of a listing.
type Page[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

func NewPage[T any](items []T, total int64, page, size int) Page[T] {
	if items == nil {
		items = []T{}
	}
	if page < 1 {
		page = 1
	}
	pages := 0
	if size > 0 {
		pages = int((total + int64(size) - 1) / int64(size))
	}
	return Page[T]{Items: items, Total: total, Page: page, PageSize: size, TotalPages: pages}
}
