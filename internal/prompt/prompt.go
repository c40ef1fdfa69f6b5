// Package prompt renders summary statistics into the market-summary request text.
package prompt

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/KaramelBytes/housing-cli/internal/analysis"
)

// CurrencySymbol prefixes the average price.
const CurrencySymbol = "€"

// Build renders s into the fixed summary template. The average price is
// grouped in thousands with no decimals; the other averages keep one decimal.
func Build(s analysis.Summary) string {
	p := message.NewPrinter(language.English)
	var b strings.Builder
	b.WriteString("\nHousing Market Summary (Daft dataset):\n")
	b.WriteString("- Average price: " + CurrencySymbol + p.Sprintf("%.0f", s.AvgPrice) + "\n")
	b.WriteString(fmt.Sprintf("- Average bedrooms: %.1f\n", s.AvgBedrooms))
	b.WriteString(fmt.Sprintf("- Average bathrooms: %.1f\n", s.AvgBathrooms))
	b.WriteString(fmt.Sprintf("- Average floor area: %.1f m²\n", s.AvgFloorArea))
	b.WriteString(fmt.Sprintf("- Most common property type: %s\n", s.MostCommonType))
	b.WriteString(fmt.Sprintf("- Most listed county: %s\n", s.MostCommonCounty))
	b.WriteString("\nWrite a short analysis of this housing market data, and mention any interesting patterns.\n")
	return b.String()
}
