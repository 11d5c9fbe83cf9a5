package referral

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerialDateConversion(t *testing.T) {
	got := SerialToTime(45562)
	assert.Equal(t, "2024-09-27", got.Format("2006-01-02"))

	assert.Equal(t, "1970-01-01T00:00:00.000Z", SerialToTime(25569).Format(ISOLayout))
	assert.Equal(t, "2024-09-27T12:00:00.000Z", SerialToTime(45562.5).Format(ISOLayout))
}

func TestParseOrderTimeForms(t *testing.T) {
	cases := map[string]string{
		"2024-09-27T00:00:00.000Z":  "2024-09-27T00:00:00.000Z",
		"45562":                     "2024-09-27T00:00:00.000Z",
		"2024-01-15":                "2024-01-15T00:00:00.000Z",
		"2024-01-15T10:30:00+02:00": "2024-01-15T08:30:00.000Z",
		"01/15/2024":                "2024-01-15T00:00:00.000Z",
	}
	for in, want := range cases {
		got, err := ParseOrderTime(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got.Format(ISOLayout), in)
	}
}

func TestParseOrderTimeRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "yesterday", "-5", "0"} {
		_, err := ParseOrderTime(in)
		assert.ErrorIs(t, err, ErrBadDate, in)
	}
}

func TestSerialDateRange(t *testing.T) {
	got, err := ParseOrderTime("2958465")
	require.NoError(t, err)
	assert.Equal(t, "9999-12-31T00:00:00.000Z", got.Format(ISOLayout))

	got, err = ParseOrderTime("1")
	require.NoError(t, err)
	assert.Equal(t, "1899-12-31", got.Format("2006-01-02"))

	for _, in := range []string{"0.5", "2958466", "3000000", "1e300", "NaN", "+Inf"} {
		_, err := ParseOrderTime(in)
		assert.ErrorIs(t, err, ErrBadDate, in)
	}
}
