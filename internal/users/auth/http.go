// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/helphub/internal/platform/apperr"
	"github.com/taibuivan/helphub/internal/platform/constants"
	requestutil "github.com/taibuivan/helphub/internal/platform/request"
	"github.com/taibuivan/helphub/internal/platform/respond"
	"github.com/taibuivan/helphub/internal/platform/validate"
	"github.com/taibuivan/helphub/internal/users/account"
)

// # Definitions & Constructors

// Handler implements the /auth HTTP endpoints.
type Handler struct {
	authService    *Service
	sessionTimeout time.Duration
	loginLimit     func(http.Handler) http.Handler
}

// NewHandler constructs a new [Handler]. loginLimit throttles POST /login and
// may be nil.
func NewHandler(service *Service, sessionTimeout time.Duration, loginLimit func(http.Handler) http.Handler) *Handler {
	return &Handler{authService: service, sessionTimeout: sessionTimeout, loginLimit: loginLimit}
}

// Routes returns a [chi.Router] configured with authentication routes.
//
// # Endpoints
//   - POST /login   : Exchanges credentials for a session token.
//   - POST /logout  : Ends the session of the bearer token.
//   - GET  /session : Validates the bearer token and refreshes its activity.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	login := router.With()
	if handler.loginLimit != nil {
		login = router.With(handler.loginLimit)
	}
	login.Post("/login", handler.login)

	router.Post("/logout", handler.logout)
	router.Get("/session", handler.session)

	return router
}

// # Request Payloads

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// # Response Payloads

type accountView struct {
	*account.Account
	Permissions []string `json:"permissions"`
}

func viewOf(acc *account.Account) *accountView {
	if acc == nil {
		return nil
	}
	perms := acc.Profile.Permissions()
	names := make([]string, len(perms))
	for i, perm := range perms {
		names[i] = perm.String()
	}
	return &accountView{Account: acc, Permissions: names}
}

/*
Login authenticates an account and opens a session.

POST /api/v1/auth/login

Request:
  - Body: loginRequest (Username, Password)

Response:
  - 200: Session token and account
  - 400: ErrInvalidJSON / VALIDATION_ERROR: Missing fields
  - 401: UNAUTHORIZED: Invalid credentials
  - 429: Too many attempts
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required("username", input.Username).
		Required("password", input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.authService.Login(request.Context(), input.Username, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	if !result.Success {
		respond.Error(writer, request, apperr.Unauthorized(result.Message))
		return
	}

	respond.OK(writer, map[string]any{
		"token":      result.Token,
		"token_type": constants.BearerScheme,
		"expires_in": int64(handler.sessionTimeout / time.Second),
		"account":    viewOf(result.Account),
	})
}

/*
Logout ends the current session.

POST /api/v1/auth/logout

Response:
  - 204: Session ended
  - 400: VALIDATION_ERROR: No bearer token
  - 401: UNAUTHORIZED: Unknown or already ended session
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	token, err := requestutil.BearerToken(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.authService.Logout(request.Context(), token)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	if !result.Success {
		respond.Error(writer, request, apperr.Unauthorized(result.Message))
		return
	}

	respond.NoContent(writer)
}

/*
Session reports whether the bearer token is still valid.

GET /api/v1/auth/session

Response:
  - 200: Account and permissions
  - 401: UNAUTHORIZED: Missing, unknown or timed out session
*/
func (handler *Handler) session(writer http.ResponseWriter, request *http.Request) {
	token, err := requestutil.BearerToken(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.authService.ValidateSession(request.Context(), token)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	if !result.Valid {
		respond.Error(writer, request, apperr.Unauthorized(result.Message))
		return
	}

	respond.OK(writer, map[string]any{
		"valid":   true,
		"account": viewOf(result.Account),
	})
}
