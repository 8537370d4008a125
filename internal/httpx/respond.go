// Package httpx holds the JSON request/response envelope shared by all
// handlers.
package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/minibnb/minibnb/internal/apperr"
)

// Envelope is the wire shape of every API response.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Meta    *Meta  `json:"meta,omitempty"`
}

// Meta carries pagination metadata for list responses.
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

// NewMeta computes totalPages from the page size.
func NewMeta(total int64, page, limit int) *Meta {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return &Meta{Total: total, Page: page, Limit: limit, TotalPages: pages}
}

// JSON writes v as the response body with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write json response")
	}
}

// OK writes a 200 success envelope.
func OK(w http.ResponseWriter, data any, meta *Meta) {
	JSON(w, http.StatusOK, Envelope{Success: true, Data: data, Meta: meta})
}

// Created writes a 201 success envelope.
func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, Envelope{Success: true, Data: data})
}

// Error maps err through the apperr taxonomy and writes the failure envelope.
// Non-domain errors are logged and reported as a generic 500.
func Error(w http.ResponseWriter, err error) {
	status := apperr.StatusOf(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Msg("unhandled error")
	}
	JSON(w, status, Envelope{Success: false, Message: apperr.MessageOf(err)})
}

// Decode reads the request body into dst, mapping malformed payloads to a
// 400 domain error.
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.BadRequest("request body required")
		}
		return apperr.BadRequest("invalid request body")
	}
	return nil
}

// Page is a 1-based pagination window parsed from query parameters.
type Page struct {
	Page  int
	Limit int
}

// ParsePage reads page/limit query parameters, falling back to page 1 with
// 10 items.
func ParsePage(r *http.Request) Page {
	p := Page{Page: 1, Limit: 10}
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		p.Page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 100 {
		p.Limit = v
	}
	return p
}

// Offset returns the row offset for the window.
func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}
