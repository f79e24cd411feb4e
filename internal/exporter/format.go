package exporter

import (
	"strconv"

	"egxcli/pkg/contracts/domain"
)

// formatFloat formats a value with the shortest exact representation.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatNum leaves missing values empty.
func formatNum(n domain.Num) string {
	if !n.Valid() {
		return ""
	}
	return formatFloat(n.Float())
}

// formatRatio rounds to four decimals, enough for probabilities and
// correlations.
func formatRatio(n domain.Num) string {
	if !n.Valid() {
		return ""
	}
	return strconv.FormatFloat(n.Float(), 'f', 4, 64)
}
