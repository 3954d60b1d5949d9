package render

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/yourusername/event-invoicer/models"
)

const (
	pageWidth    = 210.0
	pageHeight   = 297.0
	margin       = 10.0
	bottomMargin = 20.0
	contentWidth = pageWidth - 2*margin
	headerHeight = 32.0

	itemColumns   = 5
	itemCellWidth = contentWidth / itemColumns
	headLineH     = 8.0
	itemLineH     = 6.0
	detailLineH   = 6.0
	totalsCellW   = itemCellWidth
)

// maxItemLines is how many wrapped lines one item row may hold below the
// repeated headings of a fresh page.
var maxItemLines = int(math.Floor((pageHeight - bottomMargin - margin - headLineH) / itemLineH))

var itemHeadings = []string{"Item Name", "Description", "Price", "Quantity", "Total Price"}

// BankDetails is printed in the "Pay To" column of the detail grid.
type BankDetails struct {
	Name          string
	AccountName   string
	AccountNumber string
	SortCode      string
}

// Options controls the business-specific parts of the invoice document.
type Options struct {
	BusinessName    string
	BusinessAddress string
	BusinessPhone   string
	Bank            BankDetails
	LogoPath        string
	// Terms replaces DefaultTerms on the duplicate's terms page when non-empty.
	Terms     []string
	Duplicate bool
}

// DefaultTerms is the boilerplate printed on the duplicate copy.
var DefaultTerms = []string{
	"A non-refundable deposit of 50% of the total amount secures the event date. The booking is confirmed only once the deposit has been received.",
	"The remaining balance is due no later than 7 days before the event. Coverage may be withdrawn if the balance is outstanding on the event day.",
	"Edited photographs are delivered through an online gallery within 4 weeks of the event. Raw, unedited files are not supplied.",
	"Copyright in all images remains with the photographer. The client is granted a personal, non-commercial licence to print and share the images.",
	"Cancellations made less than 30 days before the event forfeit the deposit. Date changes are accommodated subject to availability.",
	"The photographer is not liable for coverage missed because of venue restrictions, guest interference or circumstances beyond reasonable control.",
}

// FileName is the name every rendered copy of an invoice is written under.
func FileName(invoiceID uint) string {
	return fmt.Sprintf("invoice_%d.pdf", invoiceID)
}

// WriteFile renders inv into dir, creating dir if needed, and returns the file path.
func WriteFile(dir string, inv *models.Invoice, opts Options) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	path := filepath.Join(dir, FileName(inv.ID))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}

	if err := Render(f, inv, opts); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}
	return path, nil
}

// Render writes the invoice document for inv to w.
func Render(w io.Writer, inv *models.Invoice, opts Options) error {
	d := newDocument(opts)
	pdf := d.pdf

	pdf.AddPage()
	d.header(inv)
	d.details(inv)
	d.items(inv.Items)
	d.totals(inv)
	if opts.Duplicate {
		d.terms()
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render invoice %d: %w", inv.ID, err)
	}
	return nil
}

type document struct {
	pdf  *gofpdf.Fpdf
	tr   func(string) string
	opts Options
}

func newDocument(opts Options) *document {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, bottomMargin)
	pdf.AliasNbPages("")

	d := &document{
		pdf:  pdf,
		tr:   pdf.UnicodeTranslatorFromDescriptor(""),
		opts: opts,
	}
	pdf.SetFooterFunc(d.footer)
	return d
}

func (d *document) header(inv *models.Invoice) {
	pdf := d.pdf

	pdf.SetFillColor(38, 50, 56)
	pdf.Rect(0, 0, pageWidth, headerHeight, "F")

	textX := margin
	if d.hasLogo() {
		pdf.ImageOptions(d.opts.LogoPath, margin, 6, 0, 20, false, gofpdf.ImageOptions{ReadDpi: true}, 0, "")
		textX = margin + 30
	}

	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetXY(textX, 7)
	pdf.CellFormat(110, 9, d.tr(d.opts.BusinessName), "", 2, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	contact := strings.TrimSpace(strings.Join(nonEmpty(d.opts.BusinessAddress, d.opts.BusinessPhone), " | "))
	pdf.CellFormat(110, 5, d.tr(contact), "", 0, "L", false, 0, "")

	title := "INVOICE"
	if d.opts.Duplicate {
		title = "INVOICE - DUPLICATE"
	}
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(pageWidth-margin-80, 9)
	pdf.CellFormat(80, 9, title, "", 2, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(80, 6, fmt.Sprintf("No. %d", inv.ID), "", 0, "R", false, 0, "")

	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(margin, headerHeight+6)
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(contentWidth/2, 6, d.tr("Invoice ID: "+strconv.FormatUint(uint64(inv.ID), 10)), "", 0, "L", false, 0, "")
	pdf.CellFormat(contentWidth/2, 6, d.tr("Date: "+inv.Date), "", 1, "R", false, 0, "")
	pdf.Ln(4)
}

func (d *document) details(inv *models.Invoice) {
	pdf := d.pdf
	width := contentWidth / 2

	pdf.SetFont("Helvetica", "B", 11)
	LayoutRow(pdf, 2, width, detailLineH+1, []string{"Bill To", "Pay To"}, true)

	customer := []string{
		"Customer Name: " + inv.CustomerName,
		"Customer Phone: " + inv.CustomerPhone,
		"Venue: " + inv.Venue,
	}
	bank := []string{
		"Bank: " + d.opts.Bank.Name,
		"Account Name: " + d.opts.Bank.AccountName,
		"Account Number: " + d.opts.Bank.AccountNumber,
		"Sort Code: " + d.opts.Bank.SortCode,
	}
	pdf.SetFont("Helvetica", "", 10)
	LayoutRow(pdf, 2, width, detailLineH, []string{
		d.tr(strings.Join(customer, "\n")),
		d.tr(strings.Join(bank, "\n")),
	}, false)
	pdf.Ln(8)
}

func (d *document) items(items []models.InvoiceItem) {
	d.itemHeadings()

	d.pdf.SetFont("Helvetica", "", 10)
	for _, item := range items {
		texts := []string{
			d.tr(item.Name),
			d.tr(item.Description),
			item.Price.StringFixed(2),
			strconv.Itoa(item.Quantity),
			item.TotalPrice.StringFixed(2),
		}
		for _, row := range d.splitRow(itemCellWidth, maxItemLines, texts) {
			if d.ensureSpace(d.rowHeight(itemCellWidth, itemLineH, row)) {
				d.itemHeadings()
				d.pdf.SetFont("Helvetica", "", 10)
			}
			LayoutRow(d.pdf, itemColumns, itemCellWidth, itemLineH, row, false)
		}
	}
	d.pdf.Ln(6)
}

func (d *document) itemHeadings() {
	d.pdf.SetFont("Helvetica", "B", 11)
	LayoutRow(d.pdf, itemColumns, itemCellWidth, headLineH, itemHeadings, true)
}

func (d *document) totals(inv *models.Invoice) {
	rows := [][]string{
		{"Total Amount", inv.TotalAmount.StringFixed(2)},
		{"Paid Amount", inv.PaidAmount.StringFixed(2)},
		{"Remaining", inv.RemainingAmount.StringFixed(2)},
		{"Status", inv.PaidStatus},
	}
	d.ensureSpace(float64(len(rows)) * headLineH)

	left := pageWidth - margin - 2*totalsCellW
	for i, row := range rows {
		style := ""
		if i == 0 {
			style = "B"
		}
		d.pdf.SetFont("Helvetica", style, 11)
		d.pdf.SetX(left)
		LayoutRow(d.pdf, 2, totalsCellW, headLineH, row, i == 0)
	}
}

func (d *document) terms() {
	pdf := d.pdf
	terms := d.opts.Terms
	if len(terms) == 0 {
		terms = DefaultTerms
	}

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentWidth, 10, "Terms & Conditions", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 10)
	for i, term := range terms {
		pdf.MultiCell(contentWidth, 5, d.tr(fmt.Sprintf("%d. %s", i+1, term)), "", "L", false)
		pdf.Ln(2)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(contentWidth, 5, "This duplicate was issued from the invoice archive and carries the same amounts as the original.", "", "L", false)
}

func (d *document) footer() {
	d.pdf.SetY(-15)
	d.pdf.SetFont("Helvetica", "I", 8)
	d.pdf.CellFormat(0, 10, fmt.Sprintf("Page %d of {nb}", d.pdf.PageNo()), "", 0, "C", false, 0, "")
}

// ensureSpace starts a new page when a block of height h would cross the
// bottom margin, so LayoutRow never triggers an automatic break mid-row.
func (d *document) ensureSpace(h float64) bool {
	if d.pdf.GetY()+h <= pageHeight-bottomMargin {
		return false
	}
	d.pdf.AddPage()
	return true
}

func (d *document) rowHeight(width, lineH float64, texts []string) float64 {
	lines := 1
	for _, text := range texts {
		if n := len(d.pdf.SplitLines([]byte(text), width)); n > lines {
			lines = n
		}
	}
	return float64(lines) * lineH
}

// splitRow breaks a row whose cells wrap past maxLines into consecutive rows
// of at most maxLines lines each. Rows that fit are returned unchanged.
func (d *document) splitRow(width float64, maxLines int, texts []string) [][]string {
	cells := make([][]string, len(texts))
	lines := 1
	for i, text := range texts {
		for _, line := range d.pdf.SplitLines([]byte(text), width) {
			cells[i] = append(cells[i], string(line))
		}
		lines = max(lines, len(cells[i]))
	}
	if lines <= maxLines {
		return [][]string{texts}
	}

	var rows [][]string
	for start := 0; start < lines; start += maxLines {
		row := make([]string, len(texts))
		for i, cell := range cells {
			if start < len(cell) {
				row[i] = strings.Join(cell[start:min(start+maxLines, len(cell))], "\n")
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func (d *document) hasLogo() bool {
	if d.opts.LogoPath == "" {
		return false
	}
	switch strings.ToLower(filepath.Ext(d.opts.LogoPath)) {
	case ".png", ".jpg", ".jpeg", ".gif":
	default:
		return false
	}
	info, err := os.Stat(d.opts.LogoPath)
	return err == nil && !info.IsDir()
}

func nonEmpty(values ...string) []string {
	out := values[:0]
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
