package model

import "fmt"

// Error is the CouchDB shaped error surfaced to callers.
type Error struct {
	Status  int    `json:"status"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Name, e.Status, e.Message)
}

func QueryParseError(format string, args ...interface{}) *Error {
	return &Error{
		Status:  400,
		Name:    "query_parse_error",
		Message: fmt.Sprintf(format, args...),
	}
}

func NotFoundError(format string, args ...interface{}) *Error {
	return &Error{
		Status:  404,
		Name:    "not_found",
		Message: fmt.Sprintf(format, args...),
	}
}

func InvalidValueError(format string, args ...interface{}) *Error {
	return &Error{
		Status:  500,
		Name:    "invalid_value",
		Message: fmt.Sprintf(format, args...),
	}
}
