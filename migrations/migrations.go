// Package migrations holds the versioned schema history of the invoice store.
// Each step snapshots the tables as they looked at that version, so later
// model changes never rewrite history.
package migrations

import (
	"fmt"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

type invoiceV1 struct {
	ID            uint    `gorm:"column:invoice_id;primaryKey;autoIncrement"`
	Date          string  `gorm:"column:date"`
	Venue         string  `gorm:"column:venue"`
	CustomerName  string  `gorm:"column:customer_name"`
	CustomerPhone string  `gorm:"column:customer_phone"`
	TotalAmount   float64 `gorm:"column:total_amount;type:numeric(12,2)"`
}

func (invoiceV1) TableName() string { return "invoices" }

type invoiceItemV1 struct {
	ID          uint       `gorm:"column:item_id;primaryKey;autoIncrement"`
	InvoiceID   uint       `gorm:"column:invoice_id;index"`
	Invoice     *invoiceV1 `gorm:"foreignKey:InvoiceID;references:ID"`
	Name        string     `gorm:"column:name"`
	Description string     `gorm:"column:description"`
	Price       float64    `gorm:"column:price;type:numeric(12,2)"`
	Quantity    int        `gorm:"column:quantity"`
	TotalPrice  float64    `gorm:"column:total_price;type:numeric(12,2)"`
}

func (invoiceItemV1) TableName() string { return "invoice_items" }

type invoiceV2 struct {
	ID              uint    `gorm:"column:invoice_id;primaryKey;autoIncrement"`
	PaidAmount      float64 `gorm:"column:paid_amount;type:numeric(12,2);default:0"`
	RemainingAmount float64 `gorm:"column:remaining_amount;type:numeric(12,2);default:0"`
	PaidStatus      string  `gorm:"column:paid_status;type:text;default:'Unpaid'"`
}

func (invoiceV2) TableName() string { return "invoices" }

var paymentColumns = []string{"PaidAmount", "RemainingAmount", "PaidStatus"}

var history = []*gormigrate.Migration{
	{
		// Tables written by the legacy tool already exist and are adopted as-is.
		ID: "202405010900_create_invoices",
		Migrate: func(tx *gorm.DB) error {
			m := tx.Migrator()
			if !m.HasTable(&invoiceV1{}) {
				if err := m.CreateTable(&invoiceV1{}); err != nil {
					return fmt.Errorf("create invoices: %w", err)
				}
			}
			if !m.HasTable(&invoiceItemV1{}) {
				if err := m.CreateTable(&invoiceItemV1{}); err != nil {
					return fmt.Errorf("create invoice_items: %w", err)
				}
			}
			return nil
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&invoiceItemV1{}, &invoiceV1{})
		},
	},
	{
		ID: "202405150900_add_payment_tracking",
		Migrate: func(tx *gorm.DB) error {
			m := tx.Migrator()
			for _, field := range paymentColumns {
				if m.HasColumn(&invoiceV2{}, field) {
					continue
				}
				if err := m.AddColumn(&invoiceV2{}, field); err != nil {
					return fmt.Errorf("add invoices.%s: %w", field, err)
				}
			}
			return nil
		},
		Rollback: func(tx *gorm.DB) error {
			m := tx.Migrator()
			for _, field := range paymentColumns {
				if err := m.DropColumn(&invoiceV2{}, field); err != nil {
					return err
				}
			}
			return nil
		},
	},
}

func newMigrator(db *gorm.DB) *gormigrate.Gormigrate {
	return gormigrate.New(db, gormigrate.DefaultOptions, history)
}

// Run applies every migration not yet recorded. Safe to call on every start.
func Run(db *gorm.DB) error {
	return newMigrator(db).Migrate()
}

// RollbackLast undoes the most recently applied migration.
func RollbackLast(db *gorm.DB) error {
	return newMigrator(db).RollbackLast()
}

// Latest is the ID of the newest known migration.
func Latest() string {
	return history[len(history)-1].ID
}
