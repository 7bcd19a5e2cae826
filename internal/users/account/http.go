// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/helphub/internal/platform/apperr"
	requestutil "github.com/taibuivan/helphub/internal/platform/request"
	"github.com/taibuivan/helphub/internal/platform/respond"
	"github.com/taibuivan/helphub/internal/platform/validate"
	"github.com/taibuivan/helphub/internal/users/permission"
	"github.com/taibuivan/helphub/pkg/pagination"
)

// Handler exposes account administration over HTTP.
type Handler struct {
	service *Service
	guard   permission.Guard
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service, guard permission.Guard) *Handler {
	return &Handler{service: service, guard: guard}
}

// Routes returns the account routes.
//
// # Endpoints
//   - GET    /      : VIEW_ALL_USERS (paginated)
//   - POST   /      : CREATE_USER
//   - GET    /{id}  : owner or VIEW_USER
//   - PATCH  /{id}  : owner or UPDATE_USER (role and status changes need UPDATE_USER)
//   - DELETE /{id}  : DELETE_USER
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	ownerOf := func(request *http.Request) (int64, error) { return requestutil.Int64Param(request, "id") }

	router.With(handler.guard.Require(permission.ViewAllUsers)).Get("/", handler.list)
	router.With(handler.guard.Require(permission.CreateUser)).Post("/", handler.create)
	router.With(handler.guard.RequireOwnerOr(permission.ViewUser, ownerOf)).Get("/{id}", handler.get)
	router.With(handler.guard.RequireOwnerOr(permission.UpdateUser, ownerOf)).Patch("/{id}", handler.update)
	router.With(handler.guard.Require(permission.DeleteUser)).Delete("/{id}", handler.delete)

	return router
}

// # Request Payloads

type createRequest struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	RoleName    string `json:"role_name"`
}

type updateRequest struct {
	DisplayName *string `json:"display_name"`
	Email       *string `json:"email"`
	RoleName    *string `json:"role_name"`
	Active      *bool   `json:"active"`
	Password    *string `json:"password"`
}

func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	params, err := pagination.FromRequest(request)
	if err != nil {
		var invalid *pagination.InvalidParamError
		if errors.As(err, &invalid) {
			err = validate.RequiredError(invalid.Param, "Must be a positive integer")
		}
		respond.Error(writer, request, err)
		return
	}

	accounts, total, err := handler.service.List(request.Context(), params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, accounts, params.Meta(total))
}

/*
create handles POST /api/v1/accounts.

Response:
  - 201: Account
  - 400: Validation failure or unknown role
  - 409: Username already taken
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	var input createRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, err := handler.service.Create(request.Context(), CreateInput{
		Username:    input.Username,
		DisplayName: input.DisplayName,
		Email:       input.Email,
		Secret:      input.Password,
		RoleName:    input.RoleName,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, account)
}

func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.Int64Param(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, err := handler.service.FindByID(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, account)
}

/*
update handles PATCH /api/v1/accounts/{id}.

Owners may change their own display name, email and password. Changing the
role or the active flag always requires UPDATE_USER.
*/
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.Int64Param(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if input.RoleName != nil || input.Active != nil {
		if !requestutil.Principal(request).Has(string(permission.UpdateUser)) {
			respond.Error(writer, request, apperr.Forbidden("Access denied. Required permission: "+string(permission.UpdateUser)))
			return
		}
	}

	account, err := handler.service.Update(request.Context(), id, UpdateInput{
		DisplayName: input.DisplayName,
		Email:       input.Email,
		RoleName:    input.RoleName,
		Active:      input.Active,
		Secret:      input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, account)
}

func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.Int64Param(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	report, err := handler.service.Delete(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, report)
}
