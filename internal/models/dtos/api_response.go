package dtos

// APIResponse is the envelope of every JSON response
type APIResponse struct {
	Status       string      `json:"status"`
	Message      string      `json:"message,omitempty"`
	Error        string      `json:"error,omitempty"`
	ResponseTime string      `json:"response_time"`
	Data         interface{} `json:"data,omitempty"`
}

// Paginated wraps a page of results
type Paginated[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}
