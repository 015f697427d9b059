// Package http adapts handlers to chi and writes the shared JSON envelope
package http

import (
	"encoding/json"
	stdhttp "net/http"

	pnet "tasksync/internal/platform/net"
)

// JSON writes v as application/json with status
func JSON(w stdhttp.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Response is returned by return-style handlers. A non-nil error Body wins over Status
type Response struct {
	Status int
	Body   any
	Header stdhttp.Header
}

// Handle adapts a Response-returning handler to net/http
func Handle(h func(r *stdhttp.Request) Response) stdhttp.HandlerFunc {
	return func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		h(r).write(w, r)
	}
}

func (resp Response) write(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	for k, vv := range resp.Header {
		for _, v := range vv {
			w.Header().Add(k, v)
		}
	}
	reqID := pnet.RequestID(r.Context())

	if err, ok := resp.Body.(error); ok && err != nil {
		status, body := pnet.Error(err, reqID)
		JSON(w, status, body)
		return
	}

	var (
		status int
		body   pnet.Wire
	)
	switch resp.Status {
	case 0, stdhttp.StatusOK:
		status, body = pnet.OK(resp.Body, reqID)
	case stdhttp.StatusCreated:
		status, body = pnet.Created(resp.Body, reqID)
	case stdhttp.StatusAccepted:
		status, body = pnet.Accepted(resp.Body, reqID)
	case stdhttp.StatusNoContent:
		w.WriteHeader(stdhttp.StatusNoContent)
		return
	default:
		status, body = resp.Status, pnet.Wire{StatusCode: resp.Status, Status: stdhttp.StatusText(resp.Status), RequestID: reqID, Data: resp.Body}
	}
	JSON(w, status, body)
}

// OK returns a 200 response
func OK(data any) Response { return Response{Status: stdhttp.StatusOK, Body: data} }

// Created returns a 201 response
func Created(data any) Response { return Response{Status: stdhttp.StatusCreated, Body: data} }

// Accepted returns a 202 response
func Accepted(data any) Response { return Response{Status: stdhttp.StatusAccepted, Body: data} }

// NoContent returns a 204 response
func NoContent() Response { return Response{Status: stdhttp.StatusNoContent} }

// Error returns a response whose status comes from the error code
func Error(err error) Response { return Response{Body: err} }

// Page wraps a list payload with its total
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

// List returns a 200 response with a Page body
func List[T any](items []T, total int) Response {
	if items == nil {
		items = []T{}
	}
	return OK(Page[T]{Items: items, Total: total})
}
