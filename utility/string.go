package utility

import (
	"github.com/google/uuid"
	"math"
	"strconv"
	"strings"
)

// Round rounds half away from zero to the given decimal places
func Round(value float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(value*factor) / factor
}

// FormatPrice formats an amount like 102.3456 EUR as "102.35 EUR"
func FormatPrice(value float64, currency string) string {
	text := strconv.FormatFloat(value, 'f', 2, 64)
	if currency == "" {
		return text
	}
	return text + " " + currency
}

// NameUUID returns a stable name-based id for the joined parts
func NameUUID(parts ...string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(strings.Join(parts, "/"))).String()
}
