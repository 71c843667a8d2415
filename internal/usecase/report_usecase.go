package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"time"

	"solemate-backend/internal/domain"
	"solemate-backend/pkg/cache"
	pkgerrors "solemate-backend/pkg/errors"
	"solemate-backend/pkg/logger"

	"github.com/shopspring/decimal"
)

const salesReportCachePrefix = "report:sales:"

// ReportUsecase builds back-office sales figures from order line snapshots only,
// so later catalog price or offer changes never rewrite history.
type ReportUsecase struct {
	reportRepo domain.ReportRepository
	cache      cache.CacheService
	storage    domain.ReportStorage
	ttl        time.Duration
	now        func() time.Time
}

func NewReportUsecase(reportRepo domain.ReportRepository, cache cache.CacheService, storage domain.ReportStorage, ttl time.Duration) *ReportUsecase {
	return &ReportUsecase{
		reportRepo: reportRepo,
		cache:      cache,
		storage:    storage,
		ttl:        ttl,
		now:        time.Now,
	}
}

func (uc *ReportUsecase) SalesReport(ctx context.Context, from, to time.Time) (*domain.SalesReport, error) {
	if !to.After(from) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "report end must be after start")
	}
	if to.Sub(from) > 366*24*time.Hour {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "report range cannot exceed one year")
	}

	key := fmt.Sprintf("%s%d:%d", salesReportCachePrefix, from.Unix(), to.Unix())
	if cached, ok := uc.cache.Get(key); ok {
		if report, ok := cached.(*domain.SalesReport); ok {
			return report, nil
		}
	}

	lines, err := uc.reportRepo.ListReportLines(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load report lines: %w", err)
	}
	report := BuildSalesReport(lines, from, to, uc.now())
	uc.cache.Set(key, report, uc.ttl)
	return report, nil
}

// InvalidateSalesReports drops every cached report.
func (uc *ReportUsecase) InvalidateSalesReports() {
	uc.cache.DeletePrefix(salesReportCachePrefix)
}

// BuildSalesReport aggregates line snapshots. Cancelled and returned lines are counted
// but contribute no revenue.
func BuildSalesReport(lines []domain.ReportLine, from, to, now time.Time) *domain.SalesReport {
	report := &domain.SalesReport{
		From:           from,
		To:             to,
		GrossSales:     decimal.Zero,
		OfferDiscount:  decimal.Zero,
		CouponDiscount: decimal.Zero,
		NetSales:       decimal.Zero,
		ByMethod:       map[domain.PaymentMethod]decimal.Decimal{},
		GeneratedAt:    now,
	}
	orders := map[string]struct{}{}

	for _, l := range lines {
		switch l.Status {
		case domain.LineStatusCancelled:
			report.CancelledLines++
			continue
		case domain.LineStatusReturned:
			report.ReturnedLines++
			continue
		}
		qty := decimal.NewFromInt(int64(l.Quantity))
		orders[l.OrderID] = struct{}{}
		report.UnitsSold += l.Quantity

		gross := l.OriginalPrice.Mul(qty)
		paid := l.Price.Mul(qty)
		net := paid.Sub(l.CouponDiscountAllocated)

		report.GrossSales = report.GrossSales.Add(gross)
		report.OfferDiscount = report.OfferDiscount.Add(gross.Sub(paid))
		report.CouponDiscount = report.CouponDiscount.Add(l.CouponDiscountAllocated)
		report.NetSales = report.NetSales.Add(net)
		report.ByMethod[l.PaymentMethod] = report.ByMethod[l.PaymentMethod].Add(net)
	}

	report.Orders = len(orders)
	report.GrossSales = domain.RoundMinor(report.GrossSales)
	report.OfferDiscount = domain.RoundMinor(report.OfferDiscount)
	report.CouponDiscount = domain.RoundMinor(report.CouponDiscount)
	report.NetSales = domain.RoundMinor(report.NetSales)
	for m, v := range report.ByMethod {
		report.ByMethod[m] = domain.RoundMinor(v)
	}
	return report
}

// RenderSalesReportCSV writes the report as a two-column metric/value CSV.
func RenderSalesReportCSV(report *domain.SalesReport) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	rows := [][]string{
		{"metric", "value"},
		{"from", report.From.Format(time.RFC3339)},
		{"to", report.To.Format(time.RFC3339)},
		{"orders", strconv.Itoa(report.Orders)},
		{"units_sold", strconv.Itoa(report.UnitsSold)},
		{"cancelled_lines", strconv.Itoa(report.CancelledLines)},
		{"returned_lines", strconv.Itoa(report.ReturnedLines)},
		{"gross_sales", report.GrossSales.StringFixed(2)},
		{"offer_discount", report.OfferDiscount.StringFixed(2)},
		{"coupon_discount", report.CouponDiscount.StringFixed(2)},
		{"net_sales", report.NetSales.StringFixed(2)},
	}

	methods := make([]string, 0, len(report.ByMethod))
	for m := range report.ByMethod {
		methods = append(methods, string(m))
	}
	sort.Strings(methods)
	for _, m := range methods {
		rows = append(rows, []string{"net_sales_" + m, report.ByMethod[domain.PaymentMethod(m)].StringFixed(2)})
	}

	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportSalesReport uploads the CSV rendering and returns its URL.
func (uc *ReportUsecase) ExportSalesReport(ctx context.Context, from, to time.Time) (string, error) {
	if uc.storage == nil {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "report storage is not configured")
	}
	report, err := uc.SalesReport(ctx, from, to)
	if err != nil {
		return "", err
	}
	data, err := RenderSalesReportCSV(report)
	if err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}

	key := fmt.Sprintf("reports/sales-%s-%s-%d.csv", from.Format("20060102"), to.Format("20060102"), uc.now().Unix())
	url, err := uc.storage.UploadBuffer(ctx, data, key, "text/csv")
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to upload report")
	}
	logger.FromContext(ctx).Info().Str("url", url).Msg("sales report exported")
	return url, nil
}
