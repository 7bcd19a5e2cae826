// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and common
body decoding patterns, ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/helphub/internal/platform/apperr"
	"github.com/taibuivan/helphub/internal/platform/constants"
	"github.com/taibuivan/helphub/internal/platform/ctxutil"
	"github.com/taibuivan/helphub/internal/platform/validate"
)

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - request: *http.Request
  - target: interface{} (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target interface{}) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
Param retrieves a named URL parameter from the request, percent-decoded.
*/
func Param(request *http.Request, name string) string {
	raw := chi.URLParam(request, name)
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}

/*
Int64Param parses a named URL parameter as a positive integer id.

Returns:
  - int64: The parsed id
  - error: VALIDATION_ERROR when missing or malformed
*/
func Int64Param(request *http.Request, name string) (int64, error) {
	raw := chi.URLParam(request, name)

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, validate.RequiredError(name, "Must be a positive integer")
	}
	return id, nil
}

/*
BearerToken extracts the session token from 'Authorization: Bearer <token>'.

It returns "" when the header is absent. A header with another scheme is
reported as an error so clients get a precise message.
*/
func BearerToken(request *http.Request) (string, error) {
	header := strings.TrimSpace(request.Header.Get(constants.HeaderAuthorization))
	if header == "" {
		return "", nil
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, constants.BearerScheme) {
		return "", apperr.Unauthorized("Invalid authorization format")
	}
	return strings.TrimSpace(token), nil
}

/*
Principal returns the account resolved by the authorization gate, or nil for
anonymous requests.
*/
func Principal(request *http.Request) *ctxutil.Principal {
	return ctxutil.GetPrincipal(request.Context())
}
