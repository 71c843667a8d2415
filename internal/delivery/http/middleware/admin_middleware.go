package middleware

import (
	"net/http"

	pkgerrors "solemate-backend/pkg/errors"
	"solemate-backend/pkg/utils"
)

// AdminMiddleware ensures the authenticated user has the 'admin' role.
// MUST be used AFTER AuthMiddleware.
func AdminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := UserFromContext(r.Context())
		if user == nil {
			utils.WriteError(r.Context(), w, pkgerrors.New(pkgerrors.CodeUnauthorized, "no user found in context"))
			return
		}

		if !user.IsAdmin() {
			utils.WriteError(r.Context(), w, pkgerrors.New(pkgerrors.CodeForbidden, "admins only"))
			return
		}

		next.ServeHTTP(w, r)
	})
}
