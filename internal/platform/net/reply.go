package net

import (
	"net/http"

	perr "narrativeradar/internal/platform/errors"
)

// Wire is the JSON envelope every API response uses
type Wire struct {
	StatusCode int            `json:"status_code"`
	Status     string         `json:"status"`
	Code       perr.ErrorCode `json:"code,omitempty"`
	Error      string         `json:"error,omitempty"`
	Field      string         `json:"field,omitempty"`
	RequestID  string         `json:"request_id,omitempty"`
	Data       any            `json:"data,omitempty"`
}

func envelope(status int, data any, reqID string) (int, Wire) {
	return status, Wire{
		StatusCode: status,
		Status:     http.StatusText(status),
		RequestID:  reqID,
		Data:       data,
	}
}

// OK builds a 200 envelope
func OK(data any, reqID string) (int, Wire) { return envelope(http.StatusOK, data, reqID) }

// Accepted builds a 202 envelope
func Accepted(data any, reqID string) (int, Wire) { return envelope(http.StatusAccepted, data, reqID) }

// NoContent builds a 204 envelope
func NoContent(reqID string) (int, Wire) { return envelope(http.StatusNoContent, nil, reqID) }

// HTTPStatus maps err to a status code; nil is 200
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	return perr.HTTPStatus(err)
}

// Error builds an error envelope from any error
func Error(err error, reqID string) (int, Wire) {
	if err == nil {
		return OK(nil, reqID)
	}
	status := perr.HTTPStatus(err)
	w := perr.WireFrom(err)
	return status, Wire{
		StatusCode: status,
		Status:     http.StatusText(status),
		Code:       w.Code,
		Error:      w.Message,
		Field:      w.Field,
		RequestID:  reqID,
	}
}
