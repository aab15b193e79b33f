package dispatch

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/voco-sh/voco/internal/coerce"
)

func TestFormatValueScalars(t *testing.T) {
	cases := []struct {
		value any
		want  string
	}{
		{"left", "left"},
		{true, "true"},
		{int(-3), "-3"},
		{int8(7), "7"},
		{int16(7), "7"},
		{int32(7), "7"},
		{int64(7), "7"},
		{uint(7), "7"},
		{uint8(7), "7"},
		{uint16(7), "7"},
		{uint32(7), "7"},
		{uint64(7), "7"},
		{float32(2.5), "2.5"},
		{float64(2.5), "2.5"},
		{decimal.RequireFromString("19.99"), "19.99"},
	}

	for _, tc := range cases {
		tokens, err := formatValue(tc.value)
		require.NoError(t, err, "%T", tc.value)
		require.Equal(t, []string{tc.want}, tokens, "%T", tc.value)
	}
}

func TestFormatValueTime(t *testing.T) {
	ts := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
	tokens, err := formatValue(ts)
	require.NoError(t, err)
	require.Equal(t, []string{"2024-03-01T10:30:00Z"}, tokens)
}

func TestFormatValueCollectionFlattens(t *testing.T) {
	tokens, err := formatValue([]any{1.5, 2.5, 3.5})
	require.NoError(t, err)
	require.Equal(t, []string{"1.5", "2.5", "3.5"}, tokens)
}

func TestFormatValueUnsupported(t *testing.T) {
	_, err := formatValue(struct{}{})
	require.Error(t, err)
}

func TestExecHandlerShapesAndName(t *testing.T) {
	shapes := []Shape{{{Tag: coerce.TagString}, {Tag: coerce.TagFloat64}}}
	h := NewExecHandler("robot", []string{"robotctl", "--json"}, shapes, 0)
	require.Equal(t, "robot", h.Name())
	require.Equal(t, shapes, h.Shapes())
}
