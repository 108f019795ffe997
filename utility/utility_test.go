package utility

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRound(t *testing.T) {
	assert.Equal(t, 1.2346, Round(1.23456, 4))
	assert.Equal(t, 0.6, Round(0.6000000000000001, 4))
	assert.Equal(t, -1.3, Round(-1.25, 1))
}

func TestUnique(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, Unique([]string{"a", "", "b", "a"}))
	assert.False(t, Contains(nil, "a"))
	assert.False(t, Contains([]string{"b"}, "a"))
}

func TestNameUUID(t *testing.T) {
	id := NameUUID("DE", "ABC", "session-1")
	assert.Equal(t, id, NameUUID("DE", "ABC", "session-1"))
	assert.NotEqual(t, id, NameUUID("DE", "ABC", "session-2"))
	assert.Len(t, id, 36)
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "102.35 EUR", FormatPrice(102.3456, "EUR"))
	assert.Equal(t, "0.60", FormatPrice(0.6, ""))
}

func TestValidate(t *testing.T) {
	type sample struct {
		Code  string  `validate:"required,len=2"`
		Price float64 `validate:"gte=0"`
	}
	require.NoError(t, Validate(&sample{Code: "DE", Price: 1}))

	err := Validate(&sample{Code: "DEU", Price: -1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sample.Code failed on len")
	assert.Contains(t, err.Error(), "sample.Price failed on gte")
}
