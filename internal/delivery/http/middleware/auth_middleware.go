package middleware

import (
	"context"
	"net/http"

	"solemate-backend/internal/domain"
	pkgerrors "solemate-backend/pkg/errors"
	"solemate-backend/pkg/logger"
	"solemate-backend/pkg/utils"
)

// AuthMiddleware resolves the bearer token (or accessToken cookie) into a user on the context.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := utils.ExtractClaims(r)
		if err != nil || claims.UserID == "" {
			utils.WriteError(r.Context(), w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid or missing token"))
			return
		}

		// Token claims are sufficient; no DB hit per request.
		user := &domain.User{
			ID:    claims.UserID,
			Email: claims.Email,
			Role:  claims.Role,
		}

		ctx := context.WithValue(r.Context(), domain.UserContextKey, user)
		ctx = logger.With(ctx, "user_id", user.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserFromContext returns the authenticated user, or nil outside AuthMiddleware.
func UserFromContext(ctx context.Context) *domain.User {
	user, _ := ctx.Value(domain.UserContextKey).(*domain.User)
	return user
}
