package apperrors

import (
	"net/http"
)

// ErrInvalidOperation builds a 400 for an operation that is not allowed.
func ErrInvalidOperation(domain, message string) *AppError {
	return New(CodeInvalidOperation, domain, message, http.StatusBadRequest)
}

// ErrFetchFailed wraps a platform client failure. Retryable by the caller.
func ErrFetchFailed(err error) *AppError {
	return Wrap(err, CodeExternalServiceError, "integration", "Fetching candidates failed", http.StatusBadGateway)
}

// --- Integrations ---

// ErrIntegrationUnavailable: the platform is not registered or has no client.
// Configuration problem, never retried.
var ErrIntegrationUnavailable = New(
	CodeIntegrationUnavailable,
	"integration",
	"Integration unavailable",
	http.StatusUnprocessableEntity,
)

// ErrInvalidCredentials: credential failed the platform's validation.
var ErrInvalidCredentials = New(
	CodeInvalidCredentials,
	"integration",
	"Invalid credentials",
	http.StatusBadRequest,
)

// ErrNotConnected: the connection has no stored credential.
var ErrNotConnected = New(
	CodeNotConnected,
	"integration",
	"Platform is not connected",
	http.StatusConflict,
)

// ErrTokenExpired: the OAuth token is expired and no refresh token is stored.
var ErrTokenExpired = New(
	CodeReconnectRequired,
	"integration",
	"Access token expired, reconnect required",
	http.StatusConflict,
)

// ErrTokenRefreshFailed: the provider rejected the refresh.
var ErrTokenRefreshFailed = New(
	CodeReconnectRequired,
	"integration",
	"Token refresh failed, reconnect required",
	http.StatusConflict,
)

// ErrInvalidOAuthState: the callback state is missing, forged or expired.
var ErrInvalidOAuthState = New(
	CodeInvalidToken,
	"oauth",
	"Invalid or expired OAuth state",
	http.StatusBadRequest,
)

var ErrConnectionNotFound = New(
	CodeNotFound,
	"integration",
	"Connection not found",
	http.StatusNotFound,
)

// --- Candidates & hiring ---

var ErrCandidateNotFound = New(
	CodeNotFound,
	"candidate",
	"Candidate not found",
	http.StatusNotFound,
)

var ErrCandidateEmailTaken = New(
	CodeAlreadyExists,
	"candidate",
	"A candidate with this email already exists",
	http.StatusConflict,
)

var ErrCandidateAlreadyHired = New(
	CodeConflict,
	"hiring",
	"Candidate has already been hired",
	http.StatusConflict,
)

var ErrInvalidStatusTransition = New(
	CodeInvalidStatus,
	"candidate",
	"Status transition is not allowed",
	http.StatusBadRequest,
)

// ErrStatusChanged: the candidate changed status concurrently.
var ErrStatusChanged = New(
	CodeConflict,
	"candidate",
	"Candidate status changed concurrently, reload and retry",
	http.StatusConflict,
)

// --- Auth ---

var ErrInsufficientPermissions = New(
	CodeForbidden,
	"auth",
	"Insufficient permissions",
	http.StatusForbidden,
)
