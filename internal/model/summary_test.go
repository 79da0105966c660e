package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustResult(t *testing.T, name string) AssemblyResult {
	t.Helper()
	r, err := NewAssemblyResult(name, "/tmp/"+name, CategoryUnknown)
	require.NoError(t, err)
	return r
}

func TestAggregateInputOrder(t *testing.T) {
	results := []AssemblyResult{
		mustResult(t, "table.png"),
		mustResult(t, "demo_engine.png"),
		mustResult(t, "chair.jpg"),
	}
	s, err := Aggregate(results, DefaultValidationPolicy())
	require.NoError(t, err)

	require.Len(t, s.Assemblies, 3)
	assert.Equal(t, "table.png", s.Assemblies[0].Name)
	assert.Equal(t, "demo_engine.png", s.Assemblies[1].Name)
	assert.Equal(t, "chair.jpg", s.Assemblies[2].Name)
	assert.Equal(t, 10, s.Assemblies[0].PartCount)
	assert.Equal(t, 4464.50, s.OverallTotal)
	assert.Empty(t, s.Violations)
}

func TestAggregateWithholdsSummaryWhenEnforced(t *testing.T) {
	results := []AssemblyResult{
		mustResult(t, "demo_engine.png"),
		mustResult(t, "table.png"),
	}
	s, err := Aggregate(results, DefaultValidationPolicy())
	require.Error(t, err)

	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Len(t, vErr.Violations, 1)
	assert.Contains(t, vErr.Violations[0], "at least 3 assemblies")
	assert.Empty(t, s.Assemblies, "summary must be withheld entirely")
	assert.Zero(t, s.OverallTotal)
}

func TestAggregateShortAssembly(t *testing.T) {
	short := mustResult(t, "table.png")
	short.Name = "short.png"
	short.Items = short.Items[:4]
	results := []AssemblyResult{mustResult(t, "a.png"), mustResult(t, "b.png"), short}

	_, err := Aggregate(results, DefaultValidationPolicy())
	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Contains(t, vErr.Error(), `"short.png" has 4 parts`)
}

func TestAggregateInformational(t *testing.T) {
	policy := DefaultValidationPolicy()
	policy.Enforce = false

	results := []AssemblyResult{mustResult(t, "demo_engine.png")}
	s, err := Aggregate(results, policy)
	require.NoError(t, err)
	assert.Len(t, s.Assemblies, 1)
	assert.Equal(t, 4095.00, s.OverallTotal)
	assert.NotEmpty(t, s.Violations)
}

func TestAggregateEmptyBatch(t *testing.T) {
	policy := ValidationPolicy{}
	s, err := Aggregate(nil, policy)
	require.NoError(t, err)
	assert.Empty(t, s.Assemblies)
	assert.Zero(t, s.OverallTotal)
}
