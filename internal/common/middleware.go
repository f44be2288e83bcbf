package common

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

type contextKey string

const (
	userIDKey contextKey = "user_id"
	nameKey   contextKey = "name"
)

// AuthMiddleware extracts the Bearer token, validates it and injects the
// acting identity into the request context. Requests without a valid token
// are rejected with 401 before reaching any handler.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Browsers cannot set headers on websocket handshakes, so a token
		// query parameter is accepted as a fallback.
		token := r.URL.Query().Get("token")

		if header := r.Header.Get("Authorization"); header != "" {
			parts := strings.Fields(header)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				WriteError(w, Unauthenticated("invalid auth header"))
				return
			}
			token = parts[1]
		}

		if token == "" {
			WriteError(w, Unauthenticated("authorization required"))
			return
		}

		claims, err := ValidToken(token)
		if err != nil {
			WriteError(w, Unauthenticated("invalid or expired token"))
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
		ctx = context.WithValue(ctx, nameKey, claims.Name)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// WriteError renders an AppError as a JSON body with the mapped HTTP status.
func WriteError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(HTTPStatus(err))

	body := map[string]string{
		"code":  string(CodeOf(err)),
		"error": err.Error(),
	}
	json.NewEncoder(w).Encode(body)
}

func WriteJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
