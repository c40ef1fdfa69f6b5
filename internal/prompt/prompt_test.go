package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/KaramelBytes/housing-cli/internal/analysis"
)

func TestBuild(t *testing.T) {
	s := analysis.Summary{
		AvgPrice:         412345.6,
		AvgBedrooms:      3.04,
		AvgBathrooms:     2.26,
		AvgFloorArea:     118.96,
		MostCommonType:   "Semi-D",
		MostCommonCounty: "Dublin",
	}
	want := "\nHousing Market Summary (Daft dataset):\n" +
		"- Average price: €412,346\n" +
		"- Average bedrooms: 3.0\n" +
		"- Average bathrooms: 2.3\n" +
		"- Average floor area: 119.0 m²\n" +
		"- Most common property type: Semi-D\n" +
		"- Most listed county: Dublin\n" +
		"\nWrite a short analysis of this housing market data, and mention any interesting patterns.\n"
	assert.Equal(t, want, Build(s))
}

func TestBuildIsPure(t *testing.T) {
	s := analysis.Summary{AvgPrice: 1250000, AvgBedrooms: 4, AvgBathrooms: 3, AvgFloorArea: 210, MostCommonType: "Detached", MostCommonCounty: "Wicklow"}
	first := Build(s)
	assert.Equal(t, first, Build(s))
	assert.Contains(t, first, "€1,250,000")
}
