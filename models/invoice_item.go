package models

import (
	"github.com/shopspring/decimal"
)

type InvoiceItem struct {
	ID          uint            `gorm:"column:item_id;primaryKey;autoIncrement" json:"item_id"`
	InvoiceID   uint            `gorm:"column:invoice_id;index" json:"invoice_id"`
	Name        string          `gorm:"column:name" json:"name"`
	Description string          `gorm:"column:description" json:"description"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(12,2)" json:"price"`
	Quantity    int             `gorm:"column:quantity" json:"quantity"`
	TotalPrice  decimal.Decimal `gorm:"column:total_price;type:numeric(12,2)" json:"total_price"`
}

// TableName overrides the table name
func (InvoiceItem) TableName() string {
	return "invoice_items"
}

// NewInvoiceItem builds a line item with its total fixed at price × quantity.
// The price is rounded to cents first so stored totals add up exactly.
func NewInvoiceItem(name, description string, price decimal.Decimal, quantity int) InvoiceItem {
	price = price.Round(2)
	return InvoiceItem{
		Name:        name,
		Description: description,
		Price:       price,
		Quantity:    quantity,
		TotalPrice:  price.Mul(decimal.NewFromInt(int64(quantity))),
	}
}
