// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements the login boundary: exchanging a username and secret
for a session token, ending sessions, and validating a presented token.

Architecture:

  - Service: Login, Logout and ValidateSession on top of the account service,
    the session manager and the authorization gate.
  - Handler: the /auth HTTP routes.

Login failures never reveal whether the username exists: unknown accounts,
wrong secrets and deactivated accounts all yield the same message, and an
unknown username still pays for one bcrypt comparison.
*/
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/taibuivan/helphub/internal/platform/apperr"
	"github.com/taibuivan/helphub/internal/platform/sec"
	"github.com/taibuivan/helphub/internal/platform/telemetry"
	"github.com/taibuivan/helphub/internal/users/account"
	"github.com/taibuivan/helphub/internal/users/authz"
	"github.com/taibuivan/helphub/internal/users/session"
)

// # Contracts & Types

// Accounts looks accounts up by username.
type Accounts interface {
	FindByUsername(context context.Context, username string) (*account.Account, error)
}

// Sessions is the part of [session.Manager] the login flow needs.
type Sessions interface {
	Create(context context.Context, owner *account.Account) (*session.Session, error)
	FindByToken(context context.Context, token string) (*session.Session, error)
	End(context context.Context, session *session.Session) error
	EndAllForAccount(context context.Context, accountID int64) (int64, error)
}

// Authenticator resolves a token without a permission predicate.
type Authenticator interface {
	Authenticate(context context.Context, token string) (authz.Decision, error)
}

// Messages returned to callers.
const (
	MessageLoginSucceeded     = "login successful"
	MessageInvalidCredentials = "invalid credentials"
	MessageMissingCredentials = "username and password are required"
	MessageLoggedOut          = "logged out"
	MessageMissingToken       = "session token is required"
)

// Login outcomes, used as the metric attribute.
const (
	outcomeSuccess        = "success"
	outcomeUnknownAccount = "unknown_account"
	outcomeBadSecret      = "bad_secret"
	outcomeInactive       = "inactive"
)

// LoginResult is the outcome of [Service.Login].
type LoginResult struct {
	Success bool             `json:"success"`
	Token   string           `json:"token,omitempty"`
	Account *account.Account `json:"account,omitempty"`
	Message string           `json:"message"`
}

// LogoutResult is the outcome of [Service.Logout].
type LogoutResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Validation is the outcome of [Service.ValidateSession].
type Validation struct {
	Valid   bool             `json:"valid"`
	Account *account.Account `json:"account,omitempty"`
	Message string           `json:"message"`
}

// Options tunes a [Service].
type Options struct {

	// SingleSessionPerAccount ends the account's other sessions on login.
	SingleSessionPerAccount bool
}

// Service implements the login boundary.
//
// # Review Process
//
// This service is critical for security. Changes to the credential check or
// the failure messages must keep every failure indistinguishable.
type Service struct {
	accounts Accounts
	sessions Sessions
	gate     Authenticator
	options  Options
	metrics  *telemetry.Metrics
	logger   *slog.Logger
}

// NewService constructs a new [Service]. metrics may be nil.
func NewService(accounts Accounts, sessions Sessions, gate Authenticator, options Options, metrics *telemetry.Metrics, logger *slog.Logger) *Service {
	return &Service{
		accounts: accounts,
		sessions: sessions,
		gate:     gate,
		options:  options,
		metrics:  metrics,
		logger:   logger,
	}
}

// # Authentication Flow

/*
Login verifies the credentials and opens a session.

With SingleSessionPerAccount the account's other sessions are ended first.
Two concurrent logins of the same account can interleave between ending and
creating, leaving zero or two live sessions; that race is accepted.

Parameters:
  - context: context.Context
  - username: string
  - secret: string

Returns:
  - LoginResult: Success with a token, or a generic failure message
  - error: VALIDATION_ERROR on missing input, PERSISTENCE_ERROR on storage failure
*/
func (service *Service) Login(context context.Context, username, secret string) (LoginResult, error) {
	if strings.TrimSpace(username) == "" || secret == "" {
		return LoginResult{Message: MessageMissingCredentials}, apperr.ValidationError(MessageMissingCredentials)
	}

	failed := LoginResult{Message: MessageInvalidCredentials}

	owner, err := service.accounts.FindByUsername(context, username)
	if err != nil {
		if apperr.IsNotFound(err) {
			sec.BurnVerify(secret)
			service.recordFailure(context, outcomeUnknownAccount, 0)
			return failed, nil
		}
		return LoginResult{}, fmt.Errorf("auth_service_login_lookup_failed: %w", err)
	}

	// Verify before the active check so both failures cost the same.
	verified := owner.Credential.Verify(secret)
	if !verified {
		service.recordFailure(context, outcomeBadSecret, owner.ID)
		return failed, nil
	}
	if !owner.Active {
		service.recordFailure(context, outcomeInactive, owner.ID)
		return failed, nil
	}

	if service.options.SingleSessionPerAccount {
		ended, err := service.sessions.EndAllForAccount(context, owner.ID)
		if err != nil {
			return LoginResult{}, fmt.Errorf("auth_service_login_end_previous_failed: %w", err)
		}
		if ended > 0 {
			service.logger.InfoContext(context, "auth_previous_sessions_ended",
				slog.Int64("account_id", owner.ID),
				slog.Int64("sessions_ended", ended),
			)
		}
	}

	created, err := service.sessions.Create(context, owner)
	if err != nil {
		return LoginResult{}, fmt.Errorf("auth_service_login_session_failed: %w", err)
	}

	service.metrics.RecordLogin(context, outcomeSuccess)
	service.logger.InfoContext(context, "auth_login_succeeded",
		slog.Int64("account_id", owner.ID),
		slog.String("role_name", owner.RoleName),
	)

	return LoginResult{
		Success: true,
		Token:   created.Token,
		Account: owner,
		Message: MessageLoginSucceeded,
	}, nil
}

/*
Logout ends the session identified by token.

Returns:
  - LogoutResult: Success, or "invalid or expired session" for an unknown token
  - error: VALIDATION_ERROR on a missing token, PERSISTENCE_ERROR on storage failure
*/
func (service *Service) Logout(context context.Context, token string) (LogoutResult, error) {
	if token == "" {
		return LogoutResult{Message: MessageMissingToken}, apperr.ValidationError(MessageMissingToken)
	}

	current, err := service.sessions.FindByToken(context, token)
	if err != nil {
		if session.IsNotFound(err) {
			return LogoutResult{Message: authz.MessageInvalidSession}, nil
		}
		return LogoutResult{}, fmt.Errorf("auth_service_logout_lookup_failed: %w", err)
	}

	if err := service.sessions.End(context, current); err != nil {
		return LogoutResult{}, fmt.Errorf("auth_service_logout_failed: %w", err)
	}

	service.logger.InfoContext(context, "auth_logout_succeeded", slog.Int64("account_id", current.AccountID))
	return LogoutResult{Success: true, Message: MessageLoggedOut}, nil
}

// ValidateSession runs the gate without a predicate. Like every gate check it
// refreshes the session's activity.
func (service *Service) ValidateSession(context context.Context, token string) (Validation, error) {
	decision, err := service.gate.Authenticate(context, token)
	if err != nil {
		return Validation{}, fmt.Errorf("auth_service_validate_failed: %w", err)
	}

	return Validation{
		Valid:   decision.Authorized,
		Account: decision.Account,
		Message: decision.Message,
	}, nil
}

func (service *Service) recordFailure(context context.Context, outcome string, accountID int64) {
	service.metrics.RecordLogin(context, outcome)

	attrs := []any{slog.String("outcome", outcome)}
	if accountID != 0 {
		attrs = append(attrs, slog.Int64("account_id", accountID))
	}
	service.logger.WarnContext(context, "auth_login_failed", attrs...)
}
