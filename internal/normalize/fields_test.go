package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCount(t *testing.T) {
	cases := []struct {
		in   string
		want Number
	}{
		{"3 Bed", Some(3)},
		{"2.5 Baths", Some(2.5)},
		{"Studio", Missing},
		{"", Missing},
		{"No info", Missing},
		{"NaN", Missing},
		{"112 m²", Some(112)},
		{"2 Bed, 1 Study", Some(2)},
		{"approx. 95.5m2", Some(95.5)},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, Count(tc.in))
		})
	}
}

func TestPrice(t *testing.T) {
	cases := []struct {
		in   string
		want Number
	}{
		{"€350,000", Some(350000)},
		{"AMV: 1400000", Some(1400000)},
		{"€1,200,000", Some(1200000)},
		{"", Missing},
		{"None", Missing},
		{"No price", Missing},
		{"Price on Application", Missing},
		{"€275,000.50", Some(275000.5)},
		{"1.2.3", Missing},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, Price(tc.in))
		})
	}
}

func TestCleanersAreIdempotent(t *testing.T) {
	for _, raw := range []string{"€350,000", "AMV: 1400000", "€275,000.50"} {
		first := Price(raw)
		require.True(t, first.Valid, raw)
		assert.Equal(t, first, Price(first.String()), raw)
	}
	for _, raw := range []string{"3 Bed", "2.5 Baths", "140.25 m²"} {
		first := Count(raw)
		require.True(t, first.Valid, raw)
		assert.Equal(t, first, Count(first.String()), raw)
	}
}

func TestParse(t *testing.T) {
	assert.Equal(t, Some(53.35), Parse("53.35"))
	assert.Equal(t, Some(-6.26), Parse(" -6.26 "))
	assert.Equal(t, Missing, Parse("n/a"))
	assert.Equal(t, Missing, Parse("unknown"))
}

func TestNumberString(t *testing.T) {
	assert.Equal(t, "", Missing.String())
	assert.Equal(t, "350000", Some(350000).String())
	assert.Equal(t, "2.5", Some(2.5).String())
	v, ok := Some(4).Float64()
	assert.True(t, ok)
	assert.Equal(t, 4.0, v)
}
