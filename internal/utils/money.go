package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatBirr renders an integer amount as "ETB 1,500".
func FormatBirr(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return "ETB " + sign + formatThousand(amount)
}

// FormatBirrFloat is FormatBirr for wallet amounts, keeping cents only
// when they are non-zero.
func FormatBirrFloat(amount float64) string {
	cents := int64(math.Round(amount * 100))
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	out := "ETB " + sign + formatThousand(cents/100)
	if frac := cents % 100; frac != 0 {
		out += fmt.Sprintf(".%02d", frac)
	}
	return out
}

func formatThousand(n int64) string {
	if n == 0 {
		return "0"
	}
	str := strconv.FormatInt(n, 10)
	var out strings.Builder
	for i, c := range str {
		if i != 0 && (len(str)-i)%3 == 0 {
			out.WriteByte(',')
		}
		out.WriteRune(c)
	}
	return out.String()
}
