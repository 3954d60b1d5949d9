package migrations

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "invoices.db")
	db, err := gorm.Open(sqlite.Open(path+"?_foreign_keys=on"), &gorm.Config{})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func appliedIDs(t *testing.T, db *gorm.DB) []string {
	var ids []string
	require.NoError(t, db.Table("migrations").Order("id").Pluck("id", &ids).Error)
	return ids
}

func TestRunOnEmptyDatabase(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, Run(db))

	m := db.Migrator()
	assert.True(t, m.HasTable("invoices"))
	assert.True(t, m.HasTable("invoice_items"))
	for _, column := range []string{"invoice_id", "date", "venue", "customer_name", "customer_phone",
		"total_amount", "paid_amount", "remaining_amount", "paid_status"} {
		assert.True(t, m.HasColumn("invoices", column), column)
	}
	for _, column := range []string{"item_id", "invoice_id", "name", "description", "price", "quantity", "total_price"} {
		assert.True(t, m.HasColumn("invoice_items", column), column)
	}
	assert.Equal(t, []string{"202405010900_create_invoices", Latest()}, appliedIDs(t, db))
}

func TestRunIsIdempotent(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, Run(db))
	require.NoError(t, Run(db))

	assert.Len(t, appliedIDs(t, db), 2)
}

func TestRunAdoptsLegacyDatabase(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.Exec(`CREATE TABLE invoices
		(invoice_id INTEGER PRIMARY KEY AUTOINCREMENT,
		 date TEXT, venue TEXT, customer_name TEXT, customer_phone TEXT, total_amount REAL)`).Error)
	require.NoError(t, db.Exec(`CREATE TABLE invoice_items
		(item_id INTEGER PRIMARY KEY AUTOINCREMENT, invoice_id INTEGER, name TEXT, description TEXT,
		 price REAL, quantity INTEGER, total_price REAL,
		 FOREIGN KEY(invoice_id) REFERENCES invoices(invoice_id))`).Error)
	require.NoError(t, db.Exec(`INSERT INTO invoices (date, venue, customer_name, customer_phone, total_amount)
		VALUES ('01/06/2024', 'Old Barn', 'Sam', '0123', 70.0)`).Error)

	require.NoError(t, Run(db))

	var row struct {
		PaidAmount      float64
		RemainingAmount float64
		PaidStatus      string
	}
	require.NoError(t, db.Table("invoices").Select("paid_amount, remaining_amount, paid_status").Take(&row).Error)
	assert.Equal(t, 0.0, row.PaidAmount)
	assert.Equal(t, 0.0, row.RemainingAmount)
	assert.Equal(t, "Unpaid", row.PaidStatus)
}

func TestRollbackLast(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, Run(db))

	require.NoError(t, RollbackLast(db))

	assert.False(t, db.Migrator().HasColumn("invoices", "paid_status"))
	assert.Equal(t, []string{"202405010900_create_invoices"}, appliedIDs(t, db))

	require.NoError(t, Run(db))
	assert.True(t, db.Migrator().HasColumn("invoices", "paid_status"))
}
