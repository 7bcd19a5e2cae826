// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pagination parses page-based list queries and builds the "meta"
// block returned with each page.
//
// Pages are 1-indexed. A malformed page or limit is reported to the caller
// rather than replaced, so a client typo does not quietly return page one.
package pagination

import (
	"fmt"
	"net/http"
	"strconv"
)

const (
	// DefaultLimit is the number of items per page if not specified.
	DefaultLimit = 20
	// MaxLimit caps a requested limit. Larger values are lowered to it.
	MaxLimit = 100
	// DefaultPage is the starting page (1-indexed).
	DefaultPage = 1
)

// InvalidParamError names the query parameter that could not be used.
type InvalidParamError struct {
	Param string
	Value string
}

func (err *InvalidParamError) Error() string {
	return fmt.Sprintf("pagination: %s must be a positive integer, got %q", err.Param, err.Value)
}

// Params holds the parsed page and limit from a request's query string.
type Params struct {
	Page  int
	Limit int
}

// Offset returns the SQL OFFSET for the page.
func (p Params) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Meta builds the response metadata for this page given the total count.
func (p Params) Meta(total int) Meta {
	totalPages := 0
	if p.Limit > 0 {
		totalPages = (total + p.Limit - 1) / p.Limit
	}
	return Meta{
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    p.Page < totalPages,
	}
}

// Meta is the pagination metadata included in API list responses.
type Meta struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
}

// FromRequest parses the "page" and "limit" query parameters.
//
// Absent parameters take their defaults. A limit above [MaxLimit] is lowered
// to it. Anything that is not a positive integer yields an
// [*InvalidParamError].
func FromRequest(r *http.Request) (Params, error) {
	query := r.URL.Query()

	page, err := positive(query.Get("page"), "page", DefaultPage)
	if err != nil {
		return Params{}, err
	}
	limit, err := positive(query.Get("limit"), "limit", DefaultLimit)
	if err != nil {
		return Params{}, err
	}

	return Params{Page: page, Limit: min(limit, MaxLimit)}, nil
}

func positive(raw, param string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, &InvalidParamError{Param: param, Value: raw}
	}
	return n, nil
}
