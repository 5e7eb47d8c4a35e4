package models

// Page sizes for the two restaurant listing variants and the order history.
const (
	RestaurantAPIPageSize  = 8
	RestaurantViewPageSize = 12
	OrderPageSize          = 10
)

// Page is an offset-paginated result with its metadata.
type Page[T any] struct {
	Data        []T   `json:"data"`
	CurrentPage int   `json:"current_page"`
	LastPage    int   `json:"last_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
}

// NewPage builds the metadata for page out of total rows. An empty result
// still has a last page of 1.
func NewPage[T any](data []T, page, perPage int, total int64) Page[T] {
	if data == nil {
		data = []T{}
	}
	return Page[T]{
		Data:        data,
		CurrentPage: page,
		LastPage:    LastPage(total, perPage),
		PerPage:     perPage,
		Total:       total,
	}
}

func LastPage(total int64, perPage int) int {
	if total <= 0 || perPage <= 0 {
		return 1
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}

// MaxPage bounds requested page numbers so offsets stay well inside the
// range of a PostgreSQL bigint.
const MaxPage = 1_000_000

// NormalizePage clamps a requested page number into [1, MaxPage].
func NormalizePage(page int) int {
	switch {
	case page < 1:
		return 1
	case page > MaxPage:
		return MaxPage
	}
	return page
}

// Offset is the row offset of page for the given page size.
func Offset(page, perPage int) uint64 {
	if perPage <= 0 {
		return 0
	}
	return uint64(NormalizePage(page)-1) * uint64(perPage)
}
