package rpc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHours(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{in: "1 day", want: 24},
		{in: "2 weeks", want: 336},
		{in: "3 months", want: 2160},
		{in: "1 y", want: 8760},
		{in: "5 h", want: 5},
		{in: "7 hrs", want: 7},
		{in: "1 mo", want: 720},
		{in: "4 Days", want: 96},
	}
	for _, tc := range cases {
		got, err := ParseHours(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestParseHoursRejectsMalformed(t *testing.T) {
	for _, in := range []string{"5", "5 fortnights", "x days", "1  day", "1 day extra", "0 days", "-2 weeks", ""} {
		_, err := ParseHours(in)
		assert.Error(t, err, in)
	}
}

func TestParseHoursCapsWindowLength(t *testing.T) {
	got, err := ParseHours("100 years")
	require.NoError(t, err)
	assert.Equal(t, MaxPremiumHours, got)

	for _, in := range []string{"101 years", "300 years", "2200000000000000 years", "876001 hours", "1300 months"} {
		_, err := ParseHours(in)
		assert.ErrorIs(t, err, errDurationLong, in)
	}
}

func TestParseBool(t *testing.T) {
	for _, in := range []string{"true", "T", "y", "Y", "TRUE"} {
		got, err := ParseBool(in)
		require.NoError(t, err, in)
		assert.True(t, got, in)
	}
	for _, in := range []string{"false", "F", "n", "N"} {
		got, err := ParseBool(in)
		require.NoError(t, err, in)
		assert.False(t, got, in)
	}
	for _, in := range []string{"maybe", "yes", "no", "1", ""} {
		_, err := ParseBool(in)
		assert.ErrorIs(t, err, errInvalidBool, in)
	}
}

func TestParseInt(t *testing.T) {
	got, err := ParseInt(" 42 ")
	require.NoError(t, err)
	assert.Equal(t, 42, got)

	got, err = ParseInt("-3")
	require.NoError(t, err)
	assert.Equal(t, -3, got)

	_, err = ParseInt("4.5")
	assert.EqualError(t, err, `invalid integer "4.5"`)
}

func TestParseID(t *testing.T) {
	got, err := ParseID("007")
	require.NoError(t, err)
	assert.Equal(t, "7", got)

	for _, in := range []string{"0", "-1", "abc", "99999999999999999999"} {
		_, err := ParseID(in)
		assert.ErrorIs(t, err, errInvalidID, in)
	}
}

func TestParseTeamID(t *testing.T) {
	got, err := ParseTeamID("6BA7B810-9DAD-11D1-80B4-00C04FD430C8")
	require.NoError(t, err)
	assert.Equal(t, "6ba7b810-9dad-11d1-80b4-00c04fd430c8", got)

	_, err = ParseTeamID("team-one")
	assert.ErrorIs(t, err, errInvalidTeamID)
}
