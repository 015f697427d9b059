package net

import (
	"net/http"

	perr "tasksync/internal/platform/errors"
)

// Wire is the response envelope shared by every transport
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

// Created builds a 201 envelope
func Created(data any, reqID string) (int, Wire) { return envelope(http.StatusCreated, data, reqID) }

// Accepted builds a 202 envelope, used for dry runs that applied nothing
func Accepted(data any, reqID string) (int, Wire) { return envelope(http.StatusAccepted, data, reqID) }

// Error builds an error envelope from any error; nil yields OK
func Error(err error, reqID string) (int, Wire) {
	if err == nil {
		return OK(nil, reqID)
	}
	status := perr.HTTPStatus(err)
	w := perr.WireFrom(err)
	_, out := envelope(status, nil, reqID)
	out.Code = w.Code
	out.Error = w.Message
	out.Field = w.Field
	return status, out
}
