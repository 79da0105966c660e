package model

import (
	"math"
	"strconv"
	"strings"
)

// Field names used in MalformedLineItemError.
const (
	FieldQuantity  = "quantity"
	FieldUnitPrice = "unit_price"
)

// toCents converts a currency amount to integer cents.
func toCents(v float64) int64 {
	return int64(math.Round(v * 100))
}

func fromCents(c int64) float64 {
	return float64(c) / 100
}

// round2 rounds to currency precision.
func round2(v float64) float64 {
	return fromCents(toCents(v))
}

// CheckLineItem returns a MalformedLineItemError if the item's quantity or
// unit price is unusable.
func CheckLineItem(it LineItem) error {
	if it.Quantity < 0 {
		return &MalformedLineItemError{
			ItemNo: it.ItemNo,
			Field:  FieldQuantity,
			Value:  strconv.Itoa(it.Quantity),
			Reason: "must be non-negative",
		}
	}
	if math.IsNaN(it.UnitPrice) || math.IsInf(it.UnitPrice, 0) {
		return &MalformedLineItemError{
			ItemNo: it.ItemNo,
			Field:  FieldUnitPrice,
			Value:  strconv.FormatFloat(it.UnitPrice, 'f', -1, 64),
			Reason: "must be a finite number",
		}
	}
	if it.UnitPrice < 0 {
		return &MalformedLineItemError{
			ItemNo: it.ItemNo,
			Field:  FieldUnitPrice,
			Value:  strconv.FormatFloat(it.UnitPrice, 'f', -1, 64),
			Reason: "must be non-negative",
		}
	}
	return nil
}

// ComputeTotals returns a copy of items with Subtotal set to
// Quantity x UnitPrice, and the grand total of all subtotals.
// All items are checked before any arithmetic, so a malformed item yields
// no partial result. Amounts are summed in cents. Feeding the returned
// items back in gives the same subtotals and total.
func ComputeTotals(items []LineItem) ([]LineItem, float64, error) {
	for _, it := range items {
		if err := CheckLineItem(it); err != nil {
			return nil, 0, err
		}
	}

	out := copyItems(items)
	var total int64
	for i := range out {
		sub := int64(out[i].Quantity) * toCents(out[i].UnitPrice)
		out[i].Subtotal = fromCents(sub)
		total += sub
	}
	return out, fromCents(total), nil
}

// CoerceQuantity parses an imported quantity cell. Integral values such as
// "2" or "2.0" are accepted; fractional, negative or non-numeric values are not.
func CoerceQuantity(s string) (int, error) {
	raw := strings.TrimSpace(s)
	bad := func(reason string) error {
		return &MalformedLineItemError{Field: FieldQuantity, Value: s, Reason: reason}
	}
	if raw == "" {
		return 0, bad("is empty")
	}
	if n, err := strconv.Atoi(raw); err == nil {
		if n < 0 {
			return 0, bad("must be non-negative")
		}
		return n, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, bad("is not a number")
	}
	if f < 0 {
		return 0, bad("must be non-negative")
	}
	if f != math.Trunc(f) {
		return 0, bad("must be a whole number")
	}
	if f > math.MaxInt32 {
		return 0, bad("is too large")
	}
	return int(f), nil
}

// CoercePrice parses an imported unit price cell. A leading "$" and
// thousands separators are tolerated.
func CoercePrice(s string) (float64, error) {
	raw := strings.TrimSpace(s)
	raw = strings.TrimSpace(strings.TrimPrefix(raw, "$"))
	raw = strings.ReplaceAll(raw, ",", "")
	bad := func(reason string) error {
		return &MalformedLineItemError{Field: FieldUnitPrice, Value: s, Reason: reason}
	}
	if raw == "" {
		return 0, bad("is empty")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, bad("is not a number")
	}
	if f < 0 {
		return 0, bad("must be non-negative")
	}
	return f, nil
}
