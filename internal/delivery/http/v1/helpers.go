package v1

import (
	"net/http"
	"time"

	"solemate-backend/internal/delivery/http/middleware"
	"solemate-backend/internal/domain"
	pkgerrors "solemate-backend/pkg/errors"
	"solemate-backend/pkg/utils"
)

const (
	defaultPageSize = 20
	dateLayout      = "2006-01-02"
)

// requireUser returns the authenticated user or writes 401.
func requireUser(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	user := middleware.UserFromContext(r.Context())
	if user == nil || user.ID == "" {
		utils.WriteError(r.Context(), w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
		return nil, false
	}
	return user, true
}

// pageParams reads ?page=&limit= with sane bounds.
func pageParams(r *http.Request) (page, limit, offset int) {
	page = utils.ParseInt(r.URL.Query().Get("page"), 1)
	if page < 1 {
		page = 1
	}
	limit = utils.ParseInt(r.URL.Query().Get("limit"), defaultPageSize)
	if limit < 1 || limit > 100 {
		limit = defaultPageSize
	}
	return page, limit, (page - 1) * limit
}

// dateRange reads ?from=&to= as calendar days; to is inclusive. Defaults to the last 30 days.
func dateRange(r *http.Request, now time.Time) (time.Time, time.Time, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	from, to := today.AddDate(0, 0, -29), today

	if v := r.URL.Query().Get("from"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return time.Time{}, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "from must be YYYY-MM-DD")
		}
		from = t
	}
	if v := r.URL.Query().Get("to"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return time.Time{}, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "to must be YYYY-MM-DD")
		}
		to = t
	}
	return from, to.AddDate(0, 0, 1), nil
}
