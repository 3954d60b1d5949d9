package handlers

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/event-invoicer/invoicing"
)

func TestFormValueAcceptsStringsAndNumbers(t *testing.T) {
	var item ItemForm
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Prints","price":12.5,"quantity":"3"}`), &item))
	assert.Equal(t, FormValue("12.5"), item.Price)
	assert.Equal(t, FormValue("3"), item.Quantity)

	var form InvoiceForm
	require.NoError(t, json.Unmarshal([]byte(`{"paid_amount":null}`), &form))
	assert.Equal(t, FormValue(""), form.PaidAmount)
}

func TestInvoiceFormDraft(t *testing.T) {
	form := InvoiceForm{
		Date:  "2024-06-01",
		Venue: "Hall",
		Items: []ItemForm{
			{Name: "A", Price: "1", Quantity: "1"},
			{Name: "B", Price: "x", Quantity: "1"},
		},
	}

	_, err := form.Draft()
	assert.ErrorIs(t, err, invoicing.ErrInvalidNumber)
	assert.Contains(t, err.Error(), "item 2")

	form.Items = form.Items[:1]
	draft, err := form.Draft()
	require.NoError(t, err)
	assert.Len(t, draft.Items, 1)
	assert.Equal(t, "Hall", draft.Venue)
}
