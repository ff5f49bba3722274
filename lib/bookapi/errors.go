package bookapi

import "fmt"

// NetworkError is returned when the transport or HTTP layer reports a
// non-success status before a server verdict could be read.
type NetworkError struct {
	StatusCode int
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

// SearchError is returned when the search endpoint responded but
// explicitly signaled failure.
type SearchError struct {
	Message string
}

func (e *SearchError) Error() string {
	if e.Message == "" {
		return "search failed, please try again"
	}
	return e.Message
}

// ExportError is returned when the export endpoint responded but the
// export could not be completed.
type ExportError struct {
	Message string
}

func (e *ExportError) Error() string {
	if e.Message == "" {
		return "export failed, please try again"
	}
	return e.Message
}
