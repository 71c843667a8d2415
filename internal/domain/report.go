package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ReportLine is one order line snapshot within a reporting window.
type ReportLine struct {
	OrderID                 string          `json:"orderId"`
	OrderNumber             string          `json:"orderNumber"`
	PaymentMethod           PaymentMethod   `json:"paymentMethod"`
	Status                  LineStatus      `json:"status"`
	Quantity                int             `json:"quantity"`
	Price                   decimal.Decimal `json:"price"`
	OriginalPrice           decimal.Decimal `json:"originalPrice"`
	CouponDiscountAllocated decimal.Decimal `json:"couponDiscountAllocated"`
	OrderedAt               time.Time       `json:"orderedAt"`
}

type SalesReport struct {
	From           time.Time                         `json:"from"`
	To             time.Time                         `json:"to"`
	Orders         int                               `json:"orders"`
	UnitsSold      int                               `json:"unitsSold"`
	CancelledLines int                               `json:"cancelledLines"`
	ReturnedLines  int                               `json:"returnedLines"`
	GrossSales     decimal.Decimal                   `json:"grossSales"`
	OfferDiscount  decimal.Decimal                   `json:"offerDiscount"`
	CouponDiscount decimal.Decimal                   `json:"couponDiscount"`
	NetSales       decimal.Decimal                   `json:"netSales"`
	ByMethod       map[PaymentMethod]decimal.Decimal `json:"byPaymentMethod"`
	GeneratedAt    time.Time                         `json:"generatedAt"`
}

type ReportRepository interface {
	ListReportLines(ctx context.Context, from, to time.Time) ([]ReportLine, error)
}

// ReportStorage persists rendered report files and returns their public location.
type ReportStorage interface {
	UploadBuffer(ctx context.Context, data []byte, key, contentType string) (string, error)
}
