package auth

import "net/http"

// AuthError is a client facing authentication or authorization failure.
// Code and Message are returned to the caller in the error envelope.
type AuthError struct {
	Code       string
	Message    string
	StatusCode int
}

func (e *AuthError) Error() string {
	return e.Code + ": " + e.Message
}

func unauthorized(code, message string) *AuthError {
	return &AuthError{Code: code, Message: message, StatusCode: http.StatusUnauthorized}
}

const (
	CodeHeaderMissing        = "authorization_header_missing"
	CodeInvalidAuthorization = "invalid_authorization"
	CodeInvalidHeader        = "invalid_header"
	CodeTokenExpired         = "token_expired"
	CodeInvalidClaims        = "invalid_claims"
	CodeAccessDenied         = "access_denied"
)
