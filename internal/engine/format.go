package engine

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spec-kit/support-bot/internal/domain"
)

// FormatPrice renders a price as currency: two decimals with a comma
// separator, integral amounts without a fraction, absent price as нет.
func FormatPrice(price *float64) string {
	if price == nil {
		return "нет"
	}
	cents := math.Round(*price * 100)
	if math.Mod(cents, 100) == 0 {
		return fmt.Sprintf("%d гр.", int64(cents)/100)
	}
	s := strings.Replace(fmt.Sprintf("%.2f", cents/100), ".", ",", 1)
	return s + " гр."
}

// ProductLine renders the single-line price answer for a product.
func ProductLine(p domain.Product) string {
	return p.Name + " - " + FormatPrice(p.Price)
}

// PublicQty caps the stock count shown to customers: exact up to 10,
// never reveal larger counts.
func PublicQty(qty int) string {
	switch {
	case qty <= 0:
		return "0"
	case qty <= 10:
		return strconv.Itoa(qty)
	default:
		return "Больше 10"
	}
}
