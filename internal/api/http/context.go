package http

import (
	"context"
	"net/http"
	"strings"
)

// UserNameHeader carries the caller identity. It is trusted as supplied.
const UserNameHeader = "X-User-Name"

type userNameKey struct{}

// RequireUserName rejects requests without a caller identity and stores the
// identity in the request context.
func RequireUserName(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimSpace(r.Header.Get(UserNameHeader))
		if name == "" {
			writeMessage(w, http.StatusBadRequest, UserNameHeader+" header is required")
			return
		}
		ctx := context.WithValue(r.Context(), userNameKey{}, name)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserNameFromContext returns the identity stored by RequireUserName.
func GetUserNameFromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(userNameKey{}).(string)
	return name, ok && name != ""
}
