package common

import (
	"fmt"
	"strings"
	"time"
)

// FormatBeans formats a bean amount with thousand separators
func FormatBeans(amount int64) string {
	str := fmt.Sprintf("%d", amount)
	if amount < 0 {
		str = str[1:]
	}

	n := len(str)
	if n > 3 {
		var result strings.Builder
		for i, digit := range str {
			if i > 0 && (n-i)%3 == 0 {
				result.WriteRune(',')
			}
			result.WriteRune(digit)
		}
		str = result.String()
	}

	if amount < 0 {
		return "-" + str
	}
	return str
}

// FormatBalance formats the balance report for one nick
func FormatBalance(nick string, beans int64) string {
	return fmt.Sprintf("🌟 %s has 🫘 %s beans! 🌟", nick, FormatBeans(beans))
}

// FormatTransfer formats a successful transfer announcement
func FormatTransfer(from, to string, amount, fromBalance, toBalance int64) string {
	return fmt.Sprintf("🎉 %s gave 🫘 %s beans to %s! 🎉 %s now has 🫘 %s beans, and %s has 🫘 %s beans!",
		from, FormatBeans(amount), to, from, FormatBeans(fromBalance), to, FormatBeans(toBalance))
}

// FormatMint formats an admin bean creation announcement
func FormatMint(actor, target string, amount, targetBalance int64) string {
	return fmt.Sprintf("✨ %s created 🫘 %s beans and gave them to %s! ✨ %s now has 🫘 %s beans!",
		actor, FormatBeans(amount), target, target, FormatBeans(targetBalance))
}

// FormatDuration renders a cooldown wait in whole seconds
func FormatDuration(d time.Duration) string {
	seconds := int64(d.Round(time.Second) / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	return fmt.Sprintf("%ds", seconds)
}

// FormatReels renders the two slot rows side by side, position by position
func FormatReels(expected, actual []string) string {
	pairs := make([]string, len(expected))
	for i := range expected {
		pairs[i] = fmt.Sprintf("%s %s", expected[i], actual[i])
	}
	return strings.Join(pairs, " | ")
}
