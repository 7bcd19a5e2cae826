// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package role

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/helphub/internal/platform/request"
	"github.com/taibuivan/helphub/internal/platform/respond"
	"github.com/taibuivan/helphub/internal/platform/validate"
	"github.com/taibuivan/helphub/internal/users/permission"
)

// Handler exposes role profile administration over HTTP.
type Handler struct {
	service *Service
	guard   permission.Guard
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service, guard permission.Guard) *Handler {
	return &Handler{service: service, guard: guard}
}

// Routes returns the profile routes. Every route is gated on a profile permission.
//
// # Endpoints
//   - GET    /            : VIEW_ALL_PROFILES
//   - POST   /            : CREATE_PROFILE
//   - GET    /{roleName}  : VIEW_PROFILE
//   - PUT    /{roleName}  : UPDATE_PROFILE
//   - DELETE /{roleName}  : DELETE_PROFILE
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.With(handler.guard.Require(permission.ViewAllProfiles)).Get("/", handler.list)
	router.With(handler.guard.Require(permission.CreateProfile)).Post("/", handler.create)
	router.With(handler.guard.Require(permission.ViewProfile)).Get("/{roleName}", handler.get)
	router.With(handler.guard.Require(permission.UpdateProfile)).Put("/{roleName}", handler.update)
	router.With(handler.guard.Require(permission.DeleteProfile)).Delete("/{roleName}", handler.delete)

	return router
}

// # Request Payloads

type createRequest struct {
	RoleName    string   `json:"role_name"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

type updateRequest struct {
	RoleName    *string   `json:"role_name"`
	Description *string   `json:"description"`
	Permissions *[]string `json:"permissions"`
}

func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	profiles, err := handler.service.List(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, profiles)
}

/*
create handles POST /api/v1/profiles.

Response:
  - 201: Profile
  - 400: Blank role name or unknown permission
  - 409: Role name already exists
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	var input createRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.RoleName("role_name", input.RoleName).
		MaxLen("description", input.Description, validate.MaxDescriptionLength)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	profile, err := handler.service.Create(request.Context(), CreateInput{
		RoleName:    input.RoleName,
		Description: input.Description,
		Permissions: input.Permissions,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, profile)
}

func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	profile, err := handler.service.Get(request.Context(), requestutil.Param(request, "roleName"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, profile)
}

func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	var input updateRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	profile, err := handler.service.Update(request.Context(), requestutil.Param(request, "roleName"), UpdateInput{
		RoleName:    input.RoleName,
		Description: input.Description,
		Permissions: input.Permissions,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profile)
}

func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.Delete(request.Context(), requestutil.Param(request, "roleName")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
