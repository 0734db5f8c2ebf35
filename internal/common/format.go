package common

import (
	"fmt"
	"strings"
)

// FormatMoney formats a value as a dollar amount with thousands separators.
func FormatMoney(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := fmt.Sprintf("%.2f", v)
	parts := strings.SplitN(s, ".", 2)
	whole := groupThousands(parts[0])
	out := "$" + whole + "." + parts[1]
	if neg {
		return "-" + out
	}
	return out
}

// FormatSignedMoney formats a value with an explicit sign.
func FormatSignedMoney(v float64) string {
	if v >= 0 {
		return "+" + FormatMoney(v)
	}
	return FormatMoney(v)
}

// FormatSignedPct formats a percentage with an explicit sign.
func FormatSignedPct(v float64) string {
	if v >= 0 {
		return fmt.Sprintf("+%.2f%%", v)
	}
	return fmt.Sprintf("%.2f%%", v)
}

func groupThousands(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}
	var sb strings.Builder
	rem := n % 3
	if rem > 0 {
		sb.WriteString(digits[:rem])
	}
	for i := rem; i < n; i += 3 {
		if sb.Len() > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(digits[i : i+3])
	}
	return sb.String()
}
