package models

import "bytes"

// Page is a decoded list response. Listing endpoints answer either with an
// envelope {"total","page","page_size","items"} or with a bare array.
type Page[T any] struct {
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Items    []T `json:"items"`
}

func (p *Page[T]) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		*p = Page[T]{Total: len(items), Page: 1, PageSize: len(items), Items: items}
		return nil
	}

	var env pageEnvelope[T]
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return err
	}
	*p = Page[T](env)
	if p.Total < len(p.Items) {
		p.Total = len(p.Items)
	}
	return nil
}

// pageEnvelope has Page's layout without its UnmarshalJSON method.
type pageEnvelope[T any] struct {
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Items    []T `json:"items"`
}

// MapPage converts the items of a page while keeping the paging metadata.
func MapPage[T, U any](p Page[T], fn func(T) U) Page[U] {
	out := Page[U]{Total: p.Total, Page: p.Page, PageSize: p.PageSize, Items: make([]U, 0, len(p.Items))}
	for _, it := range p.Items {
		out.Items = append(out.Items, fn(it))
	}
	return out
}
