// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pagination_test

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/helphub/pkg/pagination"
)

func TestFromRequest(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  pagination.Params
	}{
		{"defaults", "", pagination.Params{Page: 1, Limit: pagination.DefaultLimit}},
		{"explicit", "?page=3&limit=5", pagination.Params{Page: 3, Limit: 5}},
		{"limit capped", "?limit=1000", pagination.Params{Page: 1, Limit: pagination.MaxLimit}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params, err := pagination.FromRequest(httptest.NewRequest("GET", "/accounts"+tt.query, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.want, params)
		})
	}
}

func TestFromRequest_RejectsMalformedValues(t *testing.T) {
	tests := []struct {
		query string
		param string
	}{
		{"?page=0", "page"},
		{"?page=two", "page"},
		{"?limit=-1", "limit"},
		{"?page=2&limit=abc", "limit"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			_, err := pagination.FromRequest(httptest.NewRequest("GET", "/accounts"+tt.query, nil))

			var invalid *pagination.InvalidParamError
			require.True(t, errors.As(err, &invalid))
			assert.Equal(t, tt.param, invalid.Param)
		})
	}
}

func TestParams_Meta(t *testing.T) {
	params := pagination.Params{Page: 2, Limit: 10}
	assert.Equal(t, 10, params.Offset())

	meta := params.Meta(25)
	assert.Equal(t, 3, meta.TotalPages)
	assert.True(t, meta.HasNext)

	last := pagination.Params{Page: 3, Limit: 10}.Meta(25)
	assert.False(t, last.HasNext)

	empty := pagination.Params{Page: 1, Limit: 10}.Meta(0)
	assert.Zero(t, empty.TotalPages)
	assert.False(t, empty.HasNext)
}
