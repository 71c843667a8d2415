package v1

import (
	"net/http"
	"time"

	"solemate-backend/internal/usecase"
	"solemate-backend/pkg/utils"
)

type AdminReportHandler struct {
	reportUC *usecase.ReportUsecase
	now      func() time.Time
}

func NewAdminReportHandler(uc *usecase.ReportUsecase) *AdminReportHandler {
	return &AdminReportHandler{reportUC: uc, now: time.Now}
}

// SalesReport aggregates non-cancelled lines in the range.
// GET /api/v1/admin/reports/sales?from=2026-03-01&to=2026-03-31
func (h *AdminReportHandler) SalesReport(w http.ResponseWriter, r *http.Request) {
	from, to, err := dateRange(r, h.now())
	if err != nil {
		utils.WriteError(r.Context(), w, err)
		return
	}
	report, err := h.reportUC.SalesReport(r.Context(), from, to)
	if err != nil {
		utils.WriteError(r.Context(), w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, report)
}

// ExportSalesReport uploads the report as CSV and returns its URL.
// POST /api/v1/admin/reports/sales/export?from=&to=
func (h *AdminReportHandler) ExportSalesReport(w http.ResponseWriter, r *http.Request) {
	from, to, err := dateRange(r, h.now())
	if err != nil {
		utils.WriteError(r.Context(), w, err)
		return
	}
	url, err := h.reportUC.ExportSalesReport(r.Context(), from, to)
	if err != nil {
		utils.WriteError(r.Context(), w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, map[string]string{"url": url})
}
