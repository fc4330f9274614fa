// Package dto provides request and response types for the reader API.
// These types are used by huma to generate OpenAPI documentation and perform validation.
package dto

// ListResponse is a generic list response.
type ListResponse[T any] struct {
	Items []T `json:"items" doc:"List of items"`
	Total int `json:"total" doc:"Number of items"`
}

// NewList wraps items, never returning a nil slice.
func NewList[T any](items []T) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{Items: items, Total: len(items)}
}

// IDParam is a path parameter for resource IDs.
type IDParam struct {
	ID string `path:"id" doc:"Resource identifier"`
}

// MessageResponse is a simple success message response.
type MessageResponse struct {
	Message string `json:"message" doc:"Success message"`
}

// MessageOutput wraps a message response for huma.
type MessageOutput struct {
	Body MessageResponse
}
