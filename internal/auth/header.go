package auth

import "strings"

const bearerPrefix = "Bearer "

// TokenFromHeader extracts the token from an Authorization header value of
// the form "Bearer <token>".
func TokenFromHeader(header string) (string, error) {
	if header == "" {
		return "", unauthorized(CodeHeaderMissing, "Authorization not in header")
	}
	parts := strings.Split(header, bearerPrefix)
	if len(parts) != 2 || parts[0] != "" {
		return "", unauthorized(CodeInvalidAuthorization, "Authorization header is invalid. Bearer token not found")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", unauthorized(CodeInvalidAuthorization, "Authorization header is invalid. Bearer token is empty")
	}
	if strings.ContainsAny(token, " \t") {
		return "", unauthorized(CodeInvalidAuthorization, "Authorization header is invalid. Bearer token not found")
	}
	return token, nil
}
