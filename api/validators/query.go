package validators

import (
	"net/http"
	"strings"

	pkgerrors "github.com/organictrace/organictrace-backend/pkg/errors"
)

// QueryString returns the trimmed query value or the default when absent.
func QueryString(r *http.Request, key, defaultVal string) string {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultVal
	}
	return raw
}

// RequiredQuery returns the trimmed query value or a validation error naming
// the missing parameter.
func RequiredQuery(r *http.Request, key string) (string, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "missing query parameter").WithField(key)
	}
	return raw, nil
}
