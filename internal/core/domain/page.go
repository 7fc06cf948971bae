package domain

// Page is the envelope returned by every listing endpoint.
// Next and Prev are 1-based page numbers, nil when there is no such page.
type Page[T any] struct {
	Data  []T  `json:"data"`
	Next  *int `json:"next"`
	Prev  *int `json:"prev"`
	Pages int  `json:"pages"`
}
