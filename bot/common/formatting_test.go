package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatBeans(t *testing.T) {
	tests := []struct {
		amount int64
		want   string
	}{
		{0, "0"},
		{7, "7"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-4500, "-4,500"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatBeans(tt.amount))
	}
}

func TestFormatBalance(t *testing.T) {
	assert.Equal(t, "🌟 alice has 🫘 1,500 beans! 🌟", FormatBalance("alice", 1500))
}

func TestFormatReels(t *testing.T) {
	expected := []string{"🍒", "🍋", "🍉"}
	actual := []string{"🍒", "💎", "🍉"}

	assert.Equal(t, "🍒 🍒 | 🍋 💎 | 🍉 🍉", FormatReels(expected, actual))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "23s", FormatDuration(22*time.Second+600*time.Millisecond))
	assert.Equal(t, "1s", FormatDuration(300*time.Millisecond))
}
