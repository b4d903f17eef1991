package handler // handler defines http handlers

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// errNoUser is returned by getUserID when the context carries no usable
// authenticated user id.
var errNoUser = errors.New("no user in context")

// emailRe is a pragmatic email shape check applied at the request
// boundary, not a full RFC 5322 validator.
var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// getUserID extracts the user_id placed in context by the JWT middleware
// and converts it to uint64.  JWT numeric claims decode as float64, but
// other producers may store native integer types.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errNoUser
}

// parseIDParam parses a numeric path parameter.
func parseIDParam(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

// validEmail reports whether a trimmed, lower-cased email looks well
// formed.
func validEmail(email string) bool {
	return emailRe.MatchString(email)
}

// normalizeEmail trims and lower-cases an email address the same way the
// repository stores it.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
