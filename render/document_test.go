package render

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/event-invoicer/models"
)

func sampleInvoice(itemCount int) *models.Invoice {
	inv := &models.Invoice{
		ID:            12,
		Date:          "2024-06-01",
		Venue:         "Riverside Hall",
		CustomerName:  "Jordan Lee",
		CustomerPhone: "07700 900123",
	}
	for i := 0; i < itemCount; i++ {
		item := models.NewInvoiceItem(
			fmt.Sprintf("Item %d", i+1),
			strings.Repeat("Edited gallery with prints ", i%4+1),
			decimal.RequireFromString("15.00"),
			i%3+1,
		)
		item.InvoiceID = inv.ID
		inv.Items = append(inv.Items, item)
	}
	inv.TotalAmount = inv.ItemsTotal()
	inv.ApplyPayment(decimal.RequireFromString("20.00"))
	return inv
}

func sampleOptions() Options {
	return Options{
		BusinessName:    "Lens & Light Studio",
		BusinessAddress: "4 Market Street",
		BusinessPhone:   "01632 960000",
		Bank: BankDetails{
			Name:          "Northern Bank",
			AccountName:   "Lens & Light Studio",
			AccountNumber: "12345678",
			SortCode:      "12-34-56",
		},
	}
}

func pageCount(pdf []byte) int {
	return bytes.Count(pdf, []byte("/Type /Page\n"))
}

func TestRender(t *testing.T) {
	t.Run("Original", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Render(&buf, sampleInvoice(3), sampleOptions()))

		assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
		assert.Equal(t, 1, pageCount(buf.Bytes()))
	})

	t.Run("Duplicate adds terms page", func(t *testing.T) {
		opts := sampleOptions()
		opts.Duplicate = true

		var buf bytes.Buffer
		require.NoError(t, Render(&buf, sampleInvoice(3), opts))
		assert.Equal(t, 2, pageCount(buf.Bytes()))
	})

	t.Run("Long item list breaks across pages", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Render(&buf, sampleInvoice(60), sampleOptions()))
		assert.Greater(t, pageCount(buf.Bytes()), 1)
	})

	t.Run("Missing logo is skipped", func(t *testing.T) {
		opts := sampleOptions()
		opts.LogoPath = filepath.Join(t.TempDir(), "logo.png")

		var buf bytes.Buffer
		require.NoError(t, Render(&buf, sampleInvoice(1), opts))
	})

	t.Run("Invoice without items", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Render(&buf, sampleInvoice(0), sampleOptions()))
	})
}

func TestWriteFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out", "duplicates")

	path, err := WriteFile(dir, sampleInvoice(2), sampleOptions())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "invoice_12.pdf"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestWriteFileUnwritableDirectory(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	_, err := WriteFile(filepath.Join(blocker, "sub"), sampleInvoice(1), sampleOptions())
	assert.Error(t, err)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "invoice_7.pdf", FileName(7))
}

func TestOverlongItemRowIsSplitAcrossPages(t *testing.T) {
	d := newDocument(sampleOptions())
	autoBreaks := 0
	d.pdf.SetAcceptPageBreakFunc(func() bool {
		autoBreaks++
		return true
	})
	d.pdf.AddPage()
	d.pdf.SetY(100)

	description := strings.Repeat("lorem ipsum ", 400)
	item := models.NewInvoiceItem("Album", description, decimal.RequireFromString("45"), 1)
	d.items([]models.InvoiceItem{item})

	require.NoError(t, d.pdf.Error())
	assert.Zero(t, autoBreaks, "item rows must not break inside a cell")
	assert.Greater(t, d.pdf.PageNo(), 1)
	assert.LessOrEqual(t, d.pdf.GetY(), pageHeight-bottomMargin)
}

func TestSplitRow(t *testing.T) {
	d := newDocument(Options{})
	d.pdf.AddPage()
	d.pdf.SetFont("Helvetica", "", 10)

	t.Run("Short row is kept whole", func(t *testing.T) {
		texts := []string{"Album", "Twenty pages", "45.00", "1", "45.00"}
		rows := d.splitRow(itemCellWidth, maxItemLines, texts)
		require.Len(t, rows, 1)
		assert.Equal(t, texts, rows[0])
	})

	t.Run("Tall row becomes continuation rows", func(t *testing.T) {
		texts := []string{"Album", strings.Repeat("lorem ipsum ", 400), "45.00", "1", "45.00"}
		total := len(d.pdf.SplitLines([]byte(texts[1]), itemCellWidth))
		require.Greater(t, total, maxItemLines)

		rows := d.splitRow(itemCellWidth, maxItemLines, texts)
		assert.Len(t, rows, (total+maxItemLines-1)/maxItemLines)
		assert.Equal(t, "Album", rows[0][0])
		assert.Equal(t, "45.00", rows[0][4])

		lines := 0
		for _, row := range rows {
			h := d.rowHeight(itemCellWidth, itemLineH, row)
			assert.LessOrEqual(t, h, float64(maxItemLines)*itemLineH)
			lines += len(d.pdf.SplitLines([]byte(row[1]), itemCellWidth))
		}
		assert.Equal(t, total, lines)
		assert.Empty(t, rows[1][0])
	})
}
