package invoicing

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/yourusername/event-invoicer/models"
)

var (
	ErrInvalidNumber = errors.New("please enter a valid number")
	ErrMissingFields = errors.New("please fill all fields")
	ErrNoItems       = errors.New("please add at least one item")
)

// MissingFieldsError names the required header fields left empty.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return ErrMissingFields.Error() + ": " + strings.Join(e.Fields, ", ")
}

func (e *MissingFieldsError) Unwrap() error {
	return ErrMissingFields
}

var validate = validator.New()

var fieldLabels = map[string]string{
	"Date":          "date",
	"Venue":         "venue",
	"CustomerName":  "customer name",
	"CustomerPhone": "customer phone",
}

// Draft is an invoice being filled in. Items are priced when they are added;
// nothing is persisted until the draft is saved.
type Draft struct {
	Date          string `validate:"required"`
	Venue         string `validate:"required"`
	CustomerName  string `validate:"required"`
	CustomerPhone string `validate:"required"`
	PaidAmount    string
	Items         []models.InvoiceItem
}

// Summary is the running state of a draft shown while it is edited.
type Summary struct {
	Items     []models.InvoiceItem `json:"items"`
	Total     decimal.Decimal      `json:"total_amount"`
	Paid      decimal.Decimal      `json:"paid_amount"`
	Remaining decimal.Decimal      `json:"remaining_amount"`
	Status    string               `json:"paid_status"`
}

// AddItem parses price and quantity as typed and appends the priced item.
// A value that does not parse rejects the item and leaves the draft unchanged.
func (d *Draft) AddItem(name, description, priceText, quantityText string) (models.InvoiceItem, error) {
	price, err := ParseAmount(priceText)
	if err != nil {
		return models.InvoiceItem{}, fmt.Errorf("price: %w", err)
	}
	quantity, err := ParseQuantity(quantityText)
	if err != nil {
		return models.InvoiceItem{}, fmt.Errorf("quantity: %w", err)
	}

	item := models.NewInvoiceItem(name, description, price, quantity)
	d.Items = append(d.Items, item)
	return item, nil
}

// Total is the sum of the item totals entered so far.
func (d *Draft) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range d.Items {
		total = total.Add(item.TotalPrice)
	}
	return total
}

// Paid parses the paid amount; an empty value means nothing has been paid.
func (d *Draft) Paid() (decimal.Decimal, error) {
	if strings.TrimSpace(d.PaidAmount) == "" {
		return decimal.Zero, nil
	}
	paid, err := ParseAmount(d.PaidAmount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("paid amount: %w", err)
	}
	return paid, nil
}

// Validate checks the draft can be saved.
func (d *Draft) Validate() error {
	if err := validate.Struct(d); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		missing := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			missing = append(missing, fieldLabels[fe.Field()])
		}
		return &MissingFieldsError{Fields: missing}
	}
	if len(d.Items) == 0 {
		return ErrNoItems
	}
	_, err := d.Paid()
	return err
}

// Summary reports the draft's totals without requiring the header to be complete.
func (d *Draft) Summary() (Summary, error) {
	paid, err := d.Paid()
	if err != nil {
		return Summary{}, err
	}
	inv := models.Invoice{TotalAmount: d.Total()}
	inv.ApplyPayment(paid)

	items := d.Items
	if items == nil {
		items = []models.InvoiceItem{}
	}
	return Summary{
		Items:     items,
		Total:     inv.TotalAmount,
		Paid:      inv.PaidAmount,
		Remaining: inv.RemainingAmount,
		Status:    inv.PaidStatus,
	}, nil
}

// Invoice validates the draft and builds the record to persist.
func (d *Draft) Invoice() (*models.Invoice, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	paid, err := d.Paid()
	if err != nil {
		return nil, err
	}

	inv := &models.Invoice{
		Date:          d.Date,
		Venue:         d.Venue,
		CustomerName:  d.CustomerName,
		CustomerPhone: d.CustomerPhone,
		TotalAmount:   d.Total(),
		Items:         append([]models.InvoiceItem(nil), d.Items...),
	}
	inv.ApplyPayment(paid)
	return inv, nil
}

// ParseAmount parses a money value as typed into the form.
func ParseAmount(text string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(text))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidNumber, text)
	}
	return amount, nil
}

// ParseQuantity parses a whole-number quantity as typed into the form.
func ParseQuantity(text string) (int, error) {
	quantity, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, text)
	}
	return quantity, nil
}
