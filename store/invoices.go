package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/yourusername/event-invoicer/models"
	"gorm.io/gorm"
)

var ErrInvoiceNotFound = errors.New("invoice not found")

// Store is the data-access layer for invoices and their items. It holds an
// explicit handle; every call is scoped to the context it is given.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// CreateInvoice inserts inv and all of its items in one transaction and fills
// in the assigned ids. On error nothing is written.
func (s *Store) CreateInvoice(ctx context.Context, inv *models.Invoice) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items := inv.Items
		if err := tx.Omit("Items").Create(inv).Error; err != nil {
			return fmt.Errorf("insert invoice: %w", err)
		}

		for i := range items {
			items[i].ID = 0
			items[i].InvoiceID = inv.ID
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return fmt.Errorf("insert invoice items: %w", err)
			}
		}
		inv.Items = items
		return nil
	})
}

// GetInvoice loads one invoice with its items in entry order.
func (s *Store) GetInvoice(ctx context.Context, id uint) (*models.Invoice, error) {
	var inv models.Invoice
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("item_id")
		}).
		First(&inv, "invoice_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %d", ErrInvoiceNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load invoice %d: %w", id, err)
	}
	return &inv, nil
}

// ListInvoices returns every invoice header, oldest first. Items are not loaded.
func (s *Store) ListInvoices(ctx context.Context) ([]models.Invoice, error) {
	var invoices []models.Invoice
	if err := s.db.WithContext(ctx).Order("invoice_id").Find(&invoices).Error; err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	return invoices, nil
}
