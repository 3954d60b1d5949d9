package models

import (
	"github.com/shopspring/decimal"
)

// Paid status values stored in invoices.paid_status.
const (
	StatusPaid    = "Paid"
	StatusNotPaid = "Not Paid"
	// StatusUnpaid is the column default given to rows that predate payment tracking.
	StatusUnpaid = "Unpaid"
)

type Invoice struct {
	ID              uint            `gorm:"column:invoice_id;primaryKey;autoIncrement" json:"invoice_id"`
	Date            string          `gorm:"column:date" json:"date"`
	Venue           string          `gorm:"column:venue" json:"venue"`
	CustomerName    string          `gorm:"column:customer_name" json:"customer_name"`
	CustomerPhone   string          `gorm:"column:customer_phone" json:"customer_phone"`
	TotalAmount     decimal.Decimal `gorm:"column:total_amount;type:numeric(12,2)" json:"total_amount"`
	PaidAmount      decimal.Decimal `gorm:"column:paid_amount;type:numeric(12,2)" json:"paid_amount"`
	RemainingAmount decimal.Decimal `gorm:"column:remaining_amount;type:numeric(12,2)" json:"remaining_amount"`
	PaidStatus      string          `gorm:"column:paid_status" json:"paid_status"`
	Items           []InvoiceItem   `gorm:"foreignKey:InvoiceID;references:ID" json:"items,omitempty"`
}

// TableName overrides the table name
func (Invoice) TableName() string {
	return "invoices"
}

// ItemsTotal sums the stored total price of every loaded item.
func (i *Invoice) ItemsTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range i.Items {
		sum = sum.Add(item.TotalPrice)
	}
	return sum
}

// ApplyPayment records paid against the current total and derives the
// remaining amount and paid status from it. paid is rounded to cents.
func (i *Invoice) ApplyPayment(paid decimal.Decimal) {
	paid = paid.Round(2)
	i.PaidAmount = paid
	i.RemainingAmount = i.TotalAmount.Sub(paid)
	i.PaidStatus = PaidStatusFor(i.RemainingAmount)
}

// IsPaid reports whether nothing remains outstanding. Legacy "Unpaid" rows are not paid.
func (i *Invoice) IsPaid() bool {
	return i.PaidStatus == StatusPaid
}

// PaidStatusFor returns StatusPaid only when remaining is exactly zero.
func PaidStatusFor(remaining decimal.Decimal) string {
	if remaining.IsZero() {
		return StatusPaid
	}
	return StatusNotPaid
}
