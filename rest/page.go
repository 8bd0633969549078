package rest

// Page is the pagination envelope every list endpoint returns. The page
// index is zero-based.
type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	Number        int   `json:"number"`
	Size          int   `json:"size"`
	First         bool  `json:"first"`
	Last          bool  `json:"last"`
	Empty         bool  `json:"empty"`
}

// EmptyPage is the fallback a list view renders when the fetch fails:
// an empty result set with a single page, never a crash.
func EmptyPage[T any](size int) Page[T] {
	return Page[T]{
		Content:    []T{},
		TotalPages: 1,
		Size:       size,
		First:      true,
		Last:       true,
		Empty:      true,
	}
}
