// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/helphub/internal/platform/middleware"
	"github.com/taibuivan/helphub/internal/users/account"
	"github.com/taibuivan/helphub/internal/users/authz"
	"github.com/taibuivan/helphub/internal/users/permission"
	"github.com/taibuivan/helphub/internal/users/usertest"
)

func newRouter(fixture *usertest.Fixture) http.Handler {
	gate := authz.NewGate(fixture.Sessions, nil, usertest.Logger())
	return account.NewHandler(fixture.Accounts, middleware.NewGuard(gate)).Routes()
}

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

func TestHandler_ListRequiresViewAllUsers(t *testing.T) {
	fixture := usertest.NewFixture(t)
	router := newRouter(fixture)

	admin := fixture.CreateAccount(t, "admin.ann", "s3cret", permission.RoleUserAdmin)
	pin := fixture.CreateAccount(t, "pin.alice", "s3cret", permission.RolePIN)

	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodGet, "/", "", "").Code)
	assert.Equal(t, http.StatusForbidden, serve(router, http.MethodGet, "/", "", fixture.Login(t, pin)).Code)

	recorder := serve(router, http.MethodGet, "/?limit=1", "", fixture.Login(t, admin))
	require.Equal(t, http.StatusOK, recorder.Code)

	var body struct {
		Data []struct {
			Username string `json:"username"`
		} `json:"data"`
		Meta struct {
			Total   int  `json:"total"`
			HasNext bool `json:"has_next"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Len(t, body.Data, 1)
	assert.Equal(t, 2, body.Meta.Total)
	assert.True(t, body.Meta.HasNext)
}

func TestHandler_ListRejectsMalformedPaging(t *testing.T) {
	fixture := usertest.NewFixture(t)
	router := newRouter(fixture)
	token := fixture.Login(t, fixture.CreateAccount(t, "admin.ann", "s3cret", permission.RoleUserAdmin))

	recorder := serve(router, http.MethodGet, "/?page=0", "", token)
	require.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"field":"page"`)
}

func TestHandler_Create(t *testing.T) {
	fixture := usertest.NewFixture(t)
	router := newRouter(fixture)
	token := fixture.Login(t, fixture.CreateAccount(t, "admin.ann", "s3cret", permission.RoleUserAdmin))

	recorder := serve(router, http.MethodPost, "/",
		`{"username":"CSR.Dave","display_name":"Dave","password":"s3cret","role_name":"CSR Rep"}`, token)
	require.Equal(t, http.StatusCreated, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"username":"csr.dave"`)
	assert.NotContains(t, recorder.Body.String(), "s3cret")

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"duplicate", `{"username":"csr.dave","password":"x","role_name":"CSR Rep"}`, http.StatusConflict},
		{"unknown role", `{"username":"csr.erin","password":"x","role_name":"Wizard"}`, http.StatusBadRequest},
		{"malformed", `{`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, serve(router, http.MethodPost, "/", tt.body, token).Code)
		})
	}
}

func TestHandler_GetOwnerOrViewUser(t *testing.T) {
	fixture := usertest.NewFixture(t)
	router := newRouter(fixture)

	alice := fixture.CreateAccount(t, "pin.alice", "s3cret", permission.RolePIN)
	bob := fixture.CreateAccount(t, "pin.bob", "s3cret", permission.RolePIN)
	admin := fixture.CreateAccount(t, "admin.ann", "s3cret", permission.RoleUserAdmin)

	alicePath := fmt.Sprintf("/%d", alice.ID)

	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, alicePath, "", fixture.Login(t, alice)).Code)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, alicePath, "", fixture.Login(t, admin)).Code)

	denied := serve(router, http.MethodGet, alicePath, "", fixture.Login(t, bob))
	assert.Equal(t, http.StatusForbidden, denied.Code)
	assert.Contains(t, denied.Body.String(), authz.MessageNotOwnerNorPermitted)

	assert.Equal(t, http.StatusBadRequest, serve(router, http.MethodGet, "/abc", "", "").Code)
}

func TestHandler_UpdateRoleNeedsUpdateUser(t *testing.T) {
	fixture := usertest.NewFixture(t)
	router := newRouter(fixture)

	alice := fixture.CreateAccount(t, "pin.alice", "s3cret", permission.RolePIN)
	aliceToken := fixture.Login(t, alice)
	adminToken := fixture.Login(t, fixture.CreateAccount(t, "admin.ann", "s3cret", permission.RoleUserAdmin))
	path := fmt.Sprintf("/%d", alice.ID)

	recorder := serve(router, http.MethodPatch, path, `{"display_name":"Alice L."}`, aliceToken)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"display_name":"Alice L."`)

	escalation := serve(router, http.MethodPatch, path, `{"role_name":"User Admin"}`, aliceToken)
	assert.Equal(t, http.StatusForbidden, escalation.Code)
	assert.Contains(t, escalation.Body.String(), "Required permission: UPDATE_USER")

	recorder = serve(router, http.MethodPatch, path, `{"role_name":"CSR Rep"}`, adminToken)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"role_name":"CSR Rep"`)
}

func TestHandler_Delete(t *testing.T) {
	fixture := usertest.NewFixture(t)
	router := newRouter(fixture)

	alice := fixture.CreateAccount(t, "pin.alice", "s3cret", permission.RolePIN)
	aliceToken := fixture.Login(t, alice)
	adminToken := fixture.Login(t, fixture.CreateAccount(t, "admin.ann", "s3cret", permission.RoleUserAdmin))
	fixture.Store.AddServiceRequest(alice.ID)
	path := fmt.Sprintf("/%d", alice.ID)

	assert.Equal(t, http.StatusForbidden, serve(router, http.MethodDelete, path, "", aliceToken).Code)

	recorder := serve(router, http.MethodDelete, path, "", adminToken)
	require.Equal(t, http.StatusOK, recorder.Code)

	var body struct {
		Data account.DeletionReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, int64(1), body.Data.Sessions)
	assert.Equal(t, int64(1), body.Data.Requests)

	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodGet, path, "", aliceToken).Code,
		"the deleted account's session is gone")
	assert.Equal(t, http.StatusNotFound, serve(router, http.MethodDelete, path, "", adminToken).Code)
}
