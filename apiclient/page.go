package apiclient

// Page is the pagination envelope every list endpoint uses.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// HasNext reports whether another page follows.
func (p Page[T]) HasNext() bool { return p.Next != nil && *p.Next != "" }
