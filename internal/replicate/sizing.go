package replicate

import (
	"math"
	"strings"
)

// SizeChildOrder computes the child order quantity in lots:
// max(1, floor(masterQty * multiplier / lotSize)).
// Non-positive multiplier or lot size fall back to 1.
func SizeChildOrder(masterQty int64, multiplier float64, lotSize int64) int64 {
	if multiplier <= 0 {
		multiplier = 1
	}
	if lotSize <= 0 {
		lotSize = 1
	}
	qty := int64(math.Floor(float64(masterQty) * multiplier / float64(lotSize)))
	if qty < 1 {
		return 1
	}
	return qty
}

const canonicalStopLoss = "STOPLOSS"

var separatorCollapser = strings.NewReplacer(" ", "", "-", "", "_", "")

// NormalizeOrderType upper-cases an order type and collapses separators
// so "STOP LOSS", "STOP_LOSS" and "Stop-Loss" all map to one canonical
// spelling. Every other type passes through upper-cased.
func NormalizeOrderType(s string) string {
	upper := strings.ToUpper(strings.TrimSpace(s))
	if separatorCollapser.Replace(upper) == canonicalStopLoss {
		return canonicalStopLoss
	}
	return upper
}
