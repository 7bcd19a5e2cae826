// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/helphub/internal/users/auth"
	"github.com/taibuivan/helphub/internal/users/permission"
	"github.com/taibuivan/helphub/internal/users/usertest"
)

func serve(handler http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	request := httptest.NewRequest(method, path, strings.NewReader(body))
	request.Header.Set("Content-Type", "application/json")
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

func TestHandler_LoginSessionLogout(t *testing.T) {
	h := newHarness(t, true)
	h.CreateAccount(t, "pin.alice", "correct horse", permission.RolePIN)
	router := auth.NewHandler(h.service, usertest.IdleTimeout, nil).Routes()

	recorder := serve(router, http.MethodPost, "/login", `{"username":"pin.alice","password":"correct horse"}`, "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var body struct {
		Data struct {
			Token     string `json:"token"`
			TokenType string `json:"token_type"`
			ExpiresIn int64  `json:"expires_in"`
			Account   struct {
				Username    string   `json:"username"`
				RoleName    string   `json:"role_name"`
				Permissions []string `json:"permissions"`
			} `json:"account"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, "Bearer", body.Data.TokenType)
	assert.Equal(t, int64(usertest.IdleTimeout.Seconds()), body.Data.ExpiresIn)
	assert.Equal(t, "PIN", body.Data.Account.RoleName)
	assert.Contains(t, body.Data.Account.Permissions, "VIEW_OWN_REQUESTS")
	assert.NotContains(t, recorder.Body.String(), "passwordhash")

	token := body.Data.Token
	require.NotEmpty(t, token)

	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/session", "", token).Code)
	assert.Equal(t, http.StatusNoContent, serve(router, http.MethodPost, "/logout", "", token).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodGet, "/session", "", token).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodPost, "/logout", "", token).Code)
}

func TestHandler_LoginFailures(t *testing.T) {
	h := newHarness(t, true)
	h.CreateAccount(t, "pin.alice", "correct horse", permission.RolePIN)
	router := auth.NewHandler(h.service, usertest.IdleTimeout, nil).Routes()

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"malformed json", `{`, http.StatusBadRequest},
		{"missing password", `{"username":"pin.alice"}`, http.StatusBadRequest},
		{"wrong password", `{"username":"pin.alice","password":"nope"}`, http.StatusUnauthorized},
		{"unknown user", `{"username":"ghost","password":"nope"}`, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := serve(router, http.MethodPost, "/login", tt.body, "")
			assert.Equal(t, tt.status, recorder.Code)
		})
	}
}

func TestHandler_SessionWithoutToken(t *testing.T) {
	h := newHarness(t, true)
	router := auth.NewHandler(h.service, usertest.IdleTimeout, nil).Routes()

	recorder := serve(router, http.MethodGet, "/session", "", "")
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "authentication required")
}
