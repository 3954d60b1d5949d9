package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/event-invoicer/migrations"
	"github.com/yourusername/event-invoicer/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "invoices.db")
	db, err := gorm.Open(sqlite.Open(path+"?_foreign_keys=on"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, migrations.Run(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func newInvoice(customer string) *models.Invoice {
	inv := &models.Invoice{
		Date:          "2024-06-01",
		Venue:         "Riverside Hall",
		CustomerName:  customer,
		CustomerPhone: "07700 900123",
		Items: []models.InvoiceItem{
			models.NewInvoiceItem("Item 1", "Description 1", decimal.RequireFromString("10.00"), 2),
			models.NewInvoiceItem("Item 2", "Description 2", decimal.RequireFromString("15.00"), 3),
			models.NewInvoiceItem("Item 3", "Description 3", decimal.RequireFromString("5.00"), 1),
		},
	}
	inv.TotalAmount = inv.ItemsTotal()
	inv.ApplyPayment(decimal.RequireFromString("50.00"))
	return inv
}

func TestCreateAndGetInvoice(t *testing.T) {
	s := New(setupTestDB(t))
	ctx := context.Background()

	inv := newInvoice("Jordan Lee")
	require.NoError(t, s.CreateInvoice(ctx, inv))
	require.NotZero(t, inv.ID)
	for _, item := range inv.Items {
		assert.NotZero(t, item.ID)
		assert.Equal(t, inv.ID, item.InvoiceID)
	}

	got, err := s.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jordan Lee", got.CustomerName)
	assert.Equal(t, "Riverside Hall", got.Venue)
	assert.True(t, decimal.RequireFromString("70").Equal(got.TotalAmount))
	assert.True(t, decimal.RequireFromString("50").Equal(got.PaidAmount))
	assert.True(t, decimal.RequireFromString("20").Equal(got.RemainingAmount))
	assert.Equal(t, models.StatusNotPaid, got.PaidStatus)

	require.Len(t, got.Items, 3)
	assert.Equal(t, "Item 1", got.Items[0].Name)
	assert.Equal(t, "Item 3", got.Items[2].Name)
	assert.True(t, decimal.RequireFromString("45").Equal(got.Items[1].TotalPrice))
	assert.Equal(t, 3, got.Items[1].Quantity)
	assert.True(t, got.ItemsTotal().Equal(got.TotalAmount))
}

func TestGetInvoiceNotFound(t *testing.T) {
	s := New(setupTestDB(t))

	_, err := s.GetInvoice(context.Background(), 404)
	assert.ErrorIs(t, err, ErrInvoiceNotFound)
}

func TestListInvoices(t *testing.T) {
	s := New(setupTestDB(t))
	ctx := context.Background()

	invoices, err := s.ListInvoices(ctx)
	require.NoError(t, err)
	assert.Empty(t, invoices)

	require.NoError(t, s.CreateInvoice(ctx, newInvoice("First")))
	require.NoError(t, s.CreateInvoice(ctx, newInvoice("Second")))

	invoices, err = s.ListInvoices(ctx)
	require.NoError(t, err)
	require.Len(t, invoices, 2)
	assert.Equal(t, "First", invoices[0].CustomerName)
	assert.Equal(t, "Second", invoices[1].CustomerName)
	assert.Less(t, invoices[0].ID, invoices[1].ID)
	assert.Empty(t, invoices[0].Items)
}

func TestCreateInvoiceIsAtomic(t *testing.T) {
	db := setupTestDB(t)
	s := New(db)
	ctx := context.Background()

	// Dropping the items table makes the second insert fail after the first succeeded.
	require.NoError(t, db.Migrator().DropTable("invoice_items"))

	err := s.CreateInvoice(ctx, newInvoice("Rolled Back"))
	require.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&models.Invoice{}).Count(&count).Error)
	assert.Zero(t, count)
}
