package yadisk

import "strings"

// Link is the body Yandex.Disk returns for asynchronous operations and
// upload requests. For an accepted upload-by-URL it points at the operation
// status resource.
type Link struct {
	Href      string `json:"href"`
	Method    string `json:"method"`
	Templated bool   `json:"templated"`
}

// ErrorResponse is the error body returned by the REST API on failures
type ErrorResponse struct {
	Message     string `json:"message"`
	Description string `json:"description"`
	Error       string `json:"error"`
}

// String renders the most useful parts of the error body
func (e ErrorResponse) String() string {
	var parts []string
	if e.Error != "" {
		parts = append(parts, e.Error)
	}
	switch {
	case e.Message != "":
		parts = append(parts, e.Message)
	case e.Description != "":
		parts = append(parts, e.Description)
	}
	return strings.Join(parts, ": ")
}
