package main

import (
	"bytes"
	"testing"

	"github.com/couchcryptid/climate-dashboard/internal/adapter/gistemp"
	"github.com/couchcryptid/climate-dashboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Deterministic(t *testing.T) {
	opts := options{start: 1880, end: 1900, partialMonths: 12, seed: 7}

	first, err := generate(opts)
	require.NoError(t, err)
	second, err := generate(opts)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	opts.seed = 8
	other, err := generate(opts)
	require.NoError(t, err)
	assert.NotEqual(t, first, other)
}

func TestGenerate_CleansToCompleteYears(t *testing.T) {
	data, err := generate(options{start: 1880, end: 1920, partialMonths: 9, headerEvery: 10, seed: 1})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte(titleLine+"\n")))

	raw, err := gistemp.Parse(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, domain.Columns, raw.Header)

	table, stats, err := domain.Clean(raw)
	require.NoError(t, err)
	assert.Equal(t, 1880, table[0].Year)
	assert.Equal(t, 1919, table[len(table)-1].Year)
	assert.Equal(t, 4, stats.DroppedYear, "repeated headers")
	assert.Equal(t, 1, stats.DroppedAnnual, "partial last year")
	assert.Nil(t, table[0].DN, "first year has no previous December")
}

func TestFormatAnomaly(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0.96, ".96"},
		{-0.17, "-.17"},
		{1.28, "1.28"},
		{-1.05, "-1.05"},
		{0, ".00"},
		{-0.001, ".00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatAnomaly(tt.in), "%v", tt.in)
	}
}
