package model

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeTotalsEngine(t *testing.T) {
	items, total, err := ComputeTotals(GetTemplate(TemplateEngine).Items)
	require.NoError(t, err)
	assert.Equal(t, 4095.00, total)
	assert.Len(t, items, 10)
	assert.Equal(t, 390.00, items[1].Subtotal) // 6 x 65
	assert.Equal(t, 850.00, items[0].Subtotal)
}

func TestComputeTotalsTable(t *testing.T) {
	items, total, err := ComputeTotals(GetTemplate(TemplateTable).Items)
	require.NoError(t, err)
	assert.Equal(t, 232.70, total)

	want := []float64{85, 50, 39, 11.20, 3.20, 4.80, 6.50, 14, 17, 2}
	for i, w := range want {
		assert.Equalf(t, w, items[i].Subtotal, "item %s", items[i].ItemNo)
	}
}

func TestComputeTotalsAllTemplates(t *testing.T) {
	want := map[TemplateID]float64{
		TemplateEngine:       4095.00,
		TemplateTransmission: 3930.00,
		TemplateSuspension:   2010.00,
		TemplateChair:        136.80,
		TemplateShelf:        201.62,
		TemplateTable:        232.70,
	}
	for id, w := range want {
		_, total, err := ComputeTotals(GetTemplate(id).Items)
		require.NoError(t, err)
		assert.Equalf(t, w, total, "template %s", id)
	}
}

func TestComputeTotalsIdempotent(t *testing.T) {
	first, total1, err := ComputeTotals(GetTemplate(TemplateShelf).Items)
	require.NoError(t, err)

	second, total2, err := ComputeTotals(first)
	require.NoError(t, err)

	assert.Equal(t, total1, total2)
	assert.Equal(t, first, second)
}

func TestComputeTotalsDoesNotMutateInput(t *testing.T) {
	in := []LineItem{{ItemNo: "1", Quantity: 3, UnitPrice: 1.10}}
	out, total, err := ComputeTotals(in)
	require.NoError(t, err)
	assert.Equal(t, 3.30, total)
	assert.Equal(t, 3.30, out[0].Subtotal)
	assert.Zero(t, in[0].Subtotal)
}

func TestComputeTotalsEmpty(t *testing.T) {
	out, total, err := ComputeTotals(nil)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Zero(t, total)
}

func TestComputeTotalsMalformed(t *testing.T) {
	tests := []struct {
		name  string
		item  LineItem
		field string
	}{
		{"negative quantity", LineItem{ItemNo: "3", Quantity: -1, UnitPrice: 1}, FieldQuantity},
		{"negative price", LineItem{ItemNo: "3", Quantity: 1, UnitPrice: -0.01}, FieldUnitPrice},
		{"NaN price", LineItem{ItemNo: "3", Quantity: 1, UnitPrice: math.NaN()}, FieldUnitPrice},
		{"infinite price", LineItem{ItemNo: "3", Quantity: 1, UnitPrice: math.Inf(1)}, FieldUnitPrice},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := []LineItem{
				{ItemNo: "1", Quantity: 1, UnitPrice: 10},
				{ItemNo: "2", Quantity: 2, UnitPrice: 5},
				tt.item,
			}
			out, total, err := ComputeTotals(items)
			require.Error(t, err)
			assert.Nil(t, out, "no partial result expected")
			assert.Zero(t, total)

			var mErr *MalformedLineItemError
			require.True(t, errors.As(err, &mErr))
			assert.Equal(t, "3", mErr.ItemNo)
			assert.Equal(t, tt.field, mErr.Field)
		})
	}
}

func TestComputeTotalsZeroQuantityAllowed(t *testing.T) {
	_, total, err := ComputeTotals([]LineItem{{ItemNo: "1", Quantity: 0, UnitPrice: 99}})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestCoerceQuantity(t *testing.T) {
	good := map[string]int{"2": 2, " 40 ": 40, "2.0": 2, "0": 0}
	for in, want := range good {
		got, err := CoerceQuantity(in)
		if assert.NoErrorf(t, err, "input %q", in) {
			assert.Equal(t, want, got)
		}
	}

	for _, in := range []string{"2.5", "-1", "abc", "", "NaN", "1e99"} {
		_, err := CoerceQuantity(in)
		var mErr *MalformedLineItemError
		if assert.Errorf(t, err, "input %q", in) {
			assert.True(t, errors.As(err, &mErr))
			assert.Equal(t, FieldQuantity, mErr.Field)
		}
	}
}

func TestCoercePrice(t *testing.T) {
	good := map[string]float64{"12.50": 12.50, "$ 1,250.00": 1250, "0": 0, "0.08": 0.08}
	for in, want := range good {
		got, err := CoercePrice(in)
		if assert.NoErrorf(t, err, "input %q", in) {
			assert.InDelta(t, want, got, 1e-9)
		}
	}

	for _, in := range []string{"-3", "free", "", "Inf"} {
		_, err := CoercePrice(in)
		assert.Errorf(t, err, "input %q", in)
	}
}

func TestMalformedLineItemErrorMessage(t *testing.T) {
	err := &MalformedLineItemError{ItemNo: "4", Row: 5, Field: FieldQuantity, Value: "x", Reason: "is not a number"}
	assert.Equal(t, `malformed line item "4" (row 5): quantity "x" is not a number`, err.Error())
}
