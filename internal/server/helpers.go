package server

import (
	"aggregat4/coffeeshop/internal/auth"
	"aggregat4/coffeeshop/internal/logging"
	"aggregat4/coffeeshop/internal/metrics"
	"encoding/json"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/labstack/echo/v4"
)

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Success bool        `json:"success"`
	Error   errorDetail `json:"error"`
}

var statusErrors = map[int]errorDetail{
	http.StatusBadRequest:            {Code: "bad_request", Message: "Malformed request body"},
	http.StatusNotFound:              {Code: "not_found", Message: "Resource not found"},
	http.StatusMethodNotAllowed:      {Code: "method_not_allowed", Message: "Method not allowed"},
	http.StatusConflict:              {Code: "conflict", Message: "A drink with this title already exists"},
	http.StatusUnsupportedMediaType:  {Code: "unsupported_media_type", Message: "Unsupported media type"},
	http.StatusUnprocessableEntity:   {Code: "unprocessable", Message: "Request body is incomplete"},
	http.StatusInternalServerError:   {Code: "internal_server_error", Message: "Internal server error"},
	http.StatusRequestEntityTooLarge: {Code: "request_too_large", Message: "Request body too large"},
}

// errorHandler renders every error as {"success": false, "error": {...}}.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status := http.StatusInternalServerError
	detail := statusErrors[status]

	var authErr *auth.AuthError
	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &authErr):
		metrics.RecordAuthFailure(authErr.Code)
		status = authErr.StatusCode
		detail = errorDetail{Code: authErr.Code, Message: authErr.Message}
	case errors.As(err, &httpErr):
		status = httpErr.Code
		known, ok := statusErrors[status]
		if !ok {
			known = errorDetail{
				Code:    strings.ReplaceAll(strings.ToLower(http.StatusText(status)), " ", "_"),
				Message: http.StatusText(status),
			}
		}
		detail = known
		if msg, ok := httpErr.Message.(string); ok && msg != "" && msg != http.StatusText(status) {
			detail.Message = msg
		}
		if status >= http.StatusInternalServerError {
			logging.Error(logger, "Request failed: {Error}", err)
		}
	default:
		logging.Error(logger, "Request failed: {Error}", err)
	}

	var respErr error
	if c.Request().Method == http.MethodHead {
		respErr = c.NoContent(status)
	} else {
		respErr = c.JSON(status, errorResponse{Success: false, Error: detail})
	}
	if respErr != nil {
		logging.Error(logger, "Failed to write error response: {Error}", respErr)
	}
}

func isJsonContentType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == echo.MIMEApplicationJSON || strings.HasSuffix(mediaType, "+json")
}

// readJsonBody decodes a JSON object body. With requireAll every key must be
// present, otherwise at least one of them.
func readJsonBody(c echo.Context, keys []string, requireAll bool) (map[string]json.RawMessage, error) {
	if !isJsonContentType(c.Request().Header.Get(echo.HeaderContentType)) {
		return nil, echo.NewHTTPError(http.StatusUnsupportedMediaType)
	}
	var body map[string]json.RawMessage
	if err := json.NewDecoder(http.MaxBytesReader(c.Response(), c.Request().Body, 1<<20)).Decode(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, echo.NewHTTPError(http.StatusRequestEntityTooLarge)
		}
		return nil, echo.NewHTTPError(http.StatusBadRequest)
	}
	if body == nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest)
	}
	present := 0
	for _, key := range keys {
		if _, ok := body[key]; ok {
			present++
		}
	}
	if (requireAll && present != len(keys)) || present == 0 {
		return nil, echo.NewHTTPError(http.StatusUnprocessableEntity, "Request body needs "+describeKeys(keys, requireAll))
	}
	return body, nil
}

func describeKeys(keys []string, requireAll bool) string {
	if requireAll {
		return strings.Join(keys, " and ")
	}
	return strings.Join(keys, " or ")
}

func parseTitle(raw json.RawMessage) (string, error) {
	var title string
	if err := json.Unmarshal(raw, &title); err != nil {
		return "", echo.NewHTTPError(http.StatusUnprocessableEntity, "Title must be a string")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return "", echo.NewHTTPError(http.StatusUnprocessableEntity, "Title must not be empty")
	}
	return title, nil
}

// parseId treats ids that are not positive integers as unknown routes.
func parseId(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusNotFound)
	}
	return id, nil
}
