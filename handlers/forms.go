package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/yourusername/event-invoicer/invoicing"
)

// FormValue is a form field as typed. JSON strings and numbers are both
// accepted so numeric parsing stays with the invoicing rules.
type FormValue string

func (v *FormValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*v = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = FormValue(s)
	default:
		*v = FormValue(data)
	}
	return nil
}

type ItemForm struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       FormValue `json:"price"`
	Quantity    FormValue `json:"quantity"`
}

type InvoiceForm struct {
	Date          string     `json:"date"`
	Venue         string     `json:"venue"`
	CustomerName  string     `json:"customer_name"`
	CustomerPhone string     `json:"customer_phone"`
	PaidAmount    FormValue  `json:"paid_amount"`
	Items         []ItemForm `json:"items"`
}

// Draft enters the form into a draft one item at a time, stopping at the
// first item whose numbers do not parse.
func (f *InvoiceForm) Draft() (*invoicing.Draft, error) {
	draft := &invoicing.Draft{
		Date:          f.Date,
		Venue:         f.Venue,
		CustomerName:  f.CustomerName,
		CustomerPhone: f.CustomerPhone,
		PaidAmount:    string(f.PaidAmount),
	}
	for i, item := range f.Items {
		if _, err := draft.AddItem(item.Name, item.Description, string(item.Price), string(item.Quantity)); err != nil {
			return nil, fmt.Errorf("item %d: %w", i+1, err)
		}
	}
	return draft, nil
}
