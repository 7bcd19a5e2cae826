// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package permission

import "net/http"

// OwnerFunc extracts the id of the account owning the resource addressed by a request.
type OwnerFunc func(request *http.Request) (int64, error)

// Guard gates HTTP routes on permissions. Domain handlers depend on this
// interface so they can be mounted behind the authorization gate without
// importing it.
type Guard interface {

	// Require admits the request when the caller's role grants action.
	Require(action Permission) func(http.Handler) http.Handler

	// RequireOwnerOr admits the request when the caller owns the resource or
	// their role grants action.
	RequireOwnerOr(action Permission, owner OwnerFunc) func(http.Handler) http.Handler
}
