package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRound2(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2.145", "2.15"}, // half rounds up
		{"2.144", "2.14"},
		{"2.155", "2.16"},
		{"10", "10"},
		{"0.005", "0.01"},
		{"-5.125", "-5.12"}, // negative ties go up too
		{"-5.126", "-5.13"},
		{"-5.124", "-5.12"},
	}

	for _, tc := range cases {
		got := Round2(MustMoney(tc.in))
		assert.True(t, got.Equal(MustMoney(tc.want)), "Round2(%s) = %s, want %s", tc.in, got, tc.want)
	}
}

func TestClampZero(t *testing.T) {
	assert.True(t, ClampZero(MustMoney("-3.50")).IsZero())
	assert.True(t, ClampZero(MustMoney("3.50")).Equal(MustMoney("3.50")))
	assert.True(t, ClampZero(Zero()).IsZero())
}

func TestNewMoneyFromString(t *testing.T) {
	m, err := NewMoneyFromString("12.34")
	require.NoError(t, err)
	assert.Equal(t, "12.34", m.StringFixed(2))

	_, err = NewMoneyFromString("not-a-number")
	require.Error(t, err)
}
